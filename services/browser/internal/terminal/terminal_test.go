package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
	"github.com/shestoi/catalog-browser/services/browser/internal/render"
	"github.com/shestoi/catalog-browser/services/browser/internal/service"
)

// stubCatalog отдаёт фиксированный каталог без сети
type stubCatalog struct {
	items []model.Item
}

func (c *stubCatalog) FetchPage(ctx context.Context, query string, page, pageSize int) ([]model.Item, error) {
	var matched []model.Item
	for _, it := range c.items {
		if query == "" || strings.Contains(strings.ToLower(it.Title), strings.ToLower(query)) {
			matched = append(matched, it)
		}
	}
	start := (page - 1) * (pageSize - 1)
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (c *stubCatalog) FetchItem(ctx context.Context, id int64) (model.ItemDetail, error) {
	for _, it := range c.items {
		if it.ID == id {
			return model.ItemDetail{Item: it, ShortDescription: "desc " + it.Title}, nil
		}
	}
	return model.ItemDetail{}, context.Canceled
}

// syncBuffer bytes.Buffer с блокировкой: пишут две горутины терминала
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminal_Session(t *testing.T) {
	catalog := &stubCatalog{items: []model.Item{
		{ID: 1, Title: "Boots", Price: 50},
		{ID: 2, Title: "Socks", Price: 3},
		{ID: 3, Title: "Snow boots", Price: 80},
	}}
	browser := service.NewBrowserService(zap.NewNop(), catalog, nil, service.Options{
		PageSize: 21,
		Debounce: 5 * time.Millisecond,
	})
	defer browser.Close()
	require.NoError(t, browser.Start(context.Background()))
	require.Eventually(t, func() bool { return len(browser.Snapshot().Items) == 3 }, time.Second, time.Millisecond)

	renderer, err := render.NewRenderer(zap.NewNop())
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"help",
		"add 1",
		"+ 1",
		"open 1",
		"+",
		"back",
		"open 9",
		"show x",
		"bogus",
		"quit",
	}, "\n"))
	out := &syncBuffer{}

	term := New(zap.NewNop(), browser, renderer, in, out)
	require.NoError(t, term.Run(context.Background()))

	text := out.String()
	require.Contains(t, text, "commands:")
	require.Contains(t, text, "[1] Socks")
	require.Contains(t, text, "desc Socks")
	require.Contains(t, text, "-- detail of list item [1] --")
	require.Contains(t, text, "cannot open item")
	require.Contains(t, text, "expected an item index")
	require.Contains(t, text, "unknown command")
	require.Equal(t, 3, browser.Snapshot().Items[1].SelectedAmount)
	require.False(t, browser.Snapshot().Navigation.Active)
}

func TestTerminal_SearchAndEOF(t *testing.T) {
	catalog := &stubCatalog{items: []model.Item{
		{ID: 1, Title: "Boots"},
		{ID: 2, Title: "Socks"},
	}}
	browser := service.NewBrowserService(zap.NewNop(), catalog, nil, service.Options{
		PageSize: 21,
		Debounce: 5 * time.Millisecond,
	})
	defer browser.Close()
	require.NoError(t, browser.Start(context.Background()))

	renderer, err := render.NewRenderer(zap.NewNop())
	require.NoError(t, err)

	pr, pw := io.Pipe()
	out := &syncBuffer{}
	term := New(zap.NewNop(), browser, renderer, pr, out)

	errCh := make(chan error, 1)
	go func() { errCh <- term.Run(context.Background()) }()

	_, _ = pw.Write([]byte("search sock\n"))
	require.Eventually(t, func() bool {
		s := browser.Snapshot()
		return s.Query == "sock" && len(s.Items) == 1
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `-- search: "sock" --`)
	}, time.Second, time.Millisecond)

	require.NoError(t, pw.Close())
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("terminal did not stop on EOF")
	}
}
