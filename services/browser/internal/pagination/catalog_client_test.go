package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	httpclient "github.com/shestoi/catalog-browser/services/browser/internal/client/http"
	"github.com/shestoi/catalog-browser/services/browser/internal/store"
)

// feedTransport отвечает JSON страницей после release и уважает отмену ctx
type feedTransport struct {
	release chan struct{}
	entered chan string
}

func (f *feedTransport) FetchPage(ctx context.Context, query string, page, pageSize int) ([]byte, error) {
	select {
	case f.entered <- query:
	default:
	}

	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	products := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		products = append(products, fmt.Sprintf(`{"id":%d,"title":%q}`, i, query))
	}
	return []byte(`{"products":[` + strings.Join(products, ",") + `]}`), nil
}

func (f *feedTransport) FetchItem(ctx context.Context, id int64) ([]byte, error) {
	return nil, errors.New("not used")
}

func TestController_BackToBackResetsWithCatalogClient(t *testing.T) {
	for run := 0; run < 50; run++ {
		transport := &feedTransport{
			release: make(chan struct{}),
			entered: make(chan string, 4),
		}
		client := catalog.NewClient(transport, httpclient.JSONDecoder{}, zap.NewNop())
		s := store.New(zap.NewNop())
		c := New(client, s, 21, zap.NewNop())

		ctx := context.Background()
		c.ResetAndLoad(ctx, "shoe")
		c.ResetAndLoad(ctx, "shoes")

		// ждём, пока запрос активного поиска дойдёт до транспорта
		deadline := time.After(time.Second)
		for waiting := true; waiting; {
			select {
			case q := <-transport.entered:
				waiting = q != "shoes"
			case <-deadline:
				t.Fatal("active search request never reached the transport")
			}
		}
		close(transport.release)
		c.Wait()

		state := s.Snapshot()
		require.NoError(t, state.LastError, "run %d", run)
		require.Equal(t, "shoes", state.Query)
		require.Len(t, state.Items, 3, "run %d", run)
		for _, item := range state.Items {
			require.Equal(t, "shoes", item.Title)
		}
		require.False(t, state.Loading)
		s.Close()
	}
}
