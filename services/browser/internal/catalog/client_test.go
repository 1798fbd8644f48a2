package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog/mocks"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

func TestClient_FetchPage(t *testing.T) {
	ctx := context.Background()
	raw := []byte(`{"products":[]}`)

	tests := []struct {
		name         string
		transportErr error
		decodeErr    error
		decoded      []model.Item
		check        func(t *testing.T, items []model.Item, err error)
	}{
		{
			name:    "success",
			decoded: []model.Item{{ID: 1, Title: "Boots"}},
			check: func(t *testing.T, items []model.Item, err error) {
				require.NoError(t, err)
				require.Equal(t, []model.Item{{ID: 1, Title: "Boots"}}, items)
			},
		},
		{
			name:         "plain transport error is wrapped",
			transportErr: errors.New("connection reset"),
			check: func(t *testing.T, items []model.Item, err error) {
				require.Error(t, err)
				require.True(t, IsTransport(err))
				require.Contains(t, err.Error(), "connection reset")
				require.Nil(t, items)
			},
		},
		{
			name:         "typed transport error is kept",
			transportErr: &TransportError{Op: "http.FetchPage", StatusCode: 502, Err: errors.New("bad gateway")},
			check: func(t *testing.T, items []model.Item, err error) {
				var te *TransportError
				require.ErrorAs(t, err, &te)
				require.Equal(t, 502, te.StatusCode)
				require.Equal(t, "http.FetchPage", te.Op)
			},
		},
		{
			name:      "decode error",
			decodeErr: errors.New("unexpected EOF"),
			check: func(t *testing.T, items []model.Item, err error) {
				require.True(t, IsDecode(err))
				require.False(t, IsTransport(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewTransport(t)
			decoder := mocks.NewDecoder(t)

			if tt.transportErr != nil {
				transport.On("FetchPage", mock.Anything, "boot", 1, 21).Return(nil, tt.transportErr).Once()
			} else {
				transport.On("FetchPage", mock.Anything, "boot", 1, 21).Return(raw, nil).Once()
				decoder.On("DecodePage", raw).Return(tt.decoded, tt.decodeErr).Once()
			}

			client := NewClient(transport, decoder, zap.NewNop())
			items, err := client.FetchPage(ctx, "boot", 1, 21)
			tt.check(t, items, err)
		})
	}
}

func TestClient_FetchPageHonoursContext(t *testing.T) {
	transport := mocks.NewTransport(t)
	decoder := mocks.NewDecoder(t)

	transport.On("FetchPage", mock.Anything, "old", 1, 21).
		Return(func(ctx context.Context, _ string, _, _ int) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}, nil).Once()

	client := NewClient(transport, decoder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchPage(ctx, "old", 1, 21)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, IsTransport(err))
}

func TestClient_FetchPageConcurrentCallsDoNotCancelEachOther(t *testing.T) {
	transport := mocks.NewTransport(t)
	decoder := mocks.NewDecoder(t)

	release := make(chan struct{})
	for _, q := range []string{"shoe", "shoes"} {
		raw := []byte(q)
		transport.On("FetchPage", mock.Anything, q, 1, 21).
			Return(func(ctx context.Context, _ string, _, _ int) ([]byte, error) {
				select {
				case <-release:
					return raw, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}, nil).Once()
		decoder.On("DecodePage", raw).Return([]model.Item{{ID: 1, Title: q}}, nil).Once()
	}

	client := NewClient(transport, decoder, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, q := range []string{"shoe", "shoes"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			_, errs[i] = client.FetchPage(context.Background(), q, 1, 21)
		}(i, q)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
}

func TestClient_FetchItemSharedCallSurvivesCallerCancel(t *testing.T) {
	transport := mocks.NewTransport(t)
	decoder := mocks.NewDecoder(t)

	started := make(chan struct{})
	release := make(chan struct{})
	transport.On("FetchItem", mock.Anything, int64(5)).
		Return(func(ctx context.Context, _ int64) ([]byte, error) {
			close(started)
			select {
			case <-release:
				return []byte("item"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}, nil).Once()
	decoder.On("DecodeItem", []byte("item")).Return(model.ItemDetail{Item: model.Item{ID: 5}}, nil).Once()

	client := NewClient(transport, decoder, zap.NewNop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchItem(firstCtx, 5)
		firstErr <- err
	}()
	<-started

	second := make(chan model.ItemDetail, 1)
	go func() {
		item, err := client.FetchItem(context.Background(), 5)
		require.NoError(t, err)
		second <- item
	}()
	// даём второму вызову присоединиться к общему
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	select {
	case item := <-second:
		require.Equal(t, int64(5), item.ID)
	case <-time.After(time.Second):
		t.Fatal("second caller did not get the shared result")
	}
}

func TestClient_FetchItemDeduplicates(t *testing.T) {
	transport := mocks.NewTransport(t)
	decoder := mocks.NewDecoder(t)

	release := make(chan struct{})
	transport.On("FetchItem", mock.Anything, int64(42)).
		Return(func(ctx context.Context, _ int64) ([]byte, error) {
			<-release
			return []byte("item"), nil
		}, nil).Once()
	detail := model.ItemDetail{
		Item:       model.Item{ID: 42, Title: "Kettle"},
		Categories: []model.Category{{ID: 1, Title: "Kitchen"}},
	}
	decoder.On("DecodeItem", []byte("item")).Return(detail, nil).Once()

	client := NewClient(transport, decoder, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]model.ItemDetail, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item, err := client.FetchItem(context.Background(), 42)
			require.NoError(t, err)
			results[i] = item
		}(i)
	}

	// даём второму вызову присоединиться к первому
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, detail, results[0])
	require.Equal(t, detail, results[1])
	results[0].Categories[0].Title = "changed"
	require.Equal(t, "Kitchen", results[1].Categories[0].Title)
}

func TestClient_FetchItemError(t *testing.T) {
	transport := mocks.NewTransport(t)
	decoder := mocks.NewDecoder(t)
	transport.On("FetchItem", mock.Anything, int64(1)).Return(nil, errors.New("timeout")).Once()

	client := NewClient(transport, decoder, zap.NewNop())
	_, err := client.FetchItem(context.Background(), 1)
	require.True(t, IsTransport(err))
}
