package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_RunsInReverseOrderOnce(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	var order []string
	m.Add("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Add("second", func(ctx context.Context) error {
		order = append(order, "second")
		return errors.New("boom")
	})
	m.Add("third", func(ctx context.Context) error {
		order = append(order, "third")
		return nil
	})

	m.Shutdown()
	m.Shutdown()

	// ошибка одной функции не останавливает остальные
	require.Equal(t, []string{"third", "second", "first"}, order)
}

func TestManager_WaitContext(t *testing.T) {
	m := New(time.Second, nil)

	done := make(chan struct{})
	m.Add("mark", func(ctx context.Context) error {
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.WaitContext(ctx)

	select {
	case <-done:
	default:
		t.Fatal("shutdown function was not executed")
	}
}

type closerStub struct{ closed bool }

func (c *closerStub) Close() error {
	c.closed = true
	return nil
}

func TestCloseWithError(t *testing.T) {
	c := &closerStub{}
	require.NoError(t, CloseWithError(c)(context.Background()))
	require.True(t, c.closed)
}
