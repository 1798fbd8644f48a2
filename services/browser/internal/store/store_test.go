package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func items(ids ...int64) []model.Item {
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Item{ID: id, Title: "item"})
	}
	return out
}

func next(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func TestStore_DeliversChangesInOrder(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Close()
	sub := s.Subscribe()

	s.Reset("shoe")
	s.SetLoading(true)
	s.SetLoading(true)
	s.Append(items(1, 2))
	s.SetLoading(false)
	s.Append(items(3))

	var kinds []ChangeKind
	var seqs []uint64
	for i := 0; i < 5; i++ {
		c := next(t, sub)
		kinds = append(kinds, c.Kind)
		seqs = append(seqs, c.Seq)
	}
	require.Equal(t, []ChangeKind{ChangeReset, ChangeLoading, ChangeAppended, ChangeLoading, ChangeAppended}, kinds)
	require.IsIncreasing(t, seqs)

	state := s.Snapshot()
	require.Equal(t, "shoe", state.Query)
	require.Len(t, state.Items, 3)
	require.False(t, state.Loading)
}

func TestStore_SlowSubscriberDoesNotBlockWriters(t *testing.T) {
	s := New(nil)
	defer s.Close()
	sub := s.Subscribe()

	for i := 1; i <= 1000; i++ {
		s.Append(items(int64(i)))
	}

	for i := 0; i < 1000; i++ {
		c := next(t, sub)
		require.Equal(t, i, c.From)
		require.Equal(t, int64(i+1), c.Items[0].ID)
	}
}

func TestStore_SubscriptionCloseClosesChannel(t *testing.T) {
	s := New(nil)
	sub := s.Subscribe()
	s.Append(items(1))
	sub.Close()
	sub.Close()

	// канал закрывается, недоставленные изменения отбрасываются
	for range sub.C() {
	}
	s.Append(items(2))
}

func TestStore_ApplyCartUpdate(t *testing.T) {
	s := New(nil)
	defer s.Close()
	s.Reset("")
	s.Append(items(10, 11, 12))
	sub := s.Subscribe()

	s.ApplyCartUpdate(model.CartUpdate{Index: 1, ItemID: 11, Quantity: 3, ShouldReloadView: true})
	c := next(t, sub)
	require.Equal(t, ChangeItemUpdated, c.Kind)
	require.Equal(t, 1, c.Index)
	require.Equal(t, 3, c.Item.SelectedAmount)
	require.Equal(t, model.ReloadFull, c.Reload)

	// устаревший индекс или другой товар по индексу: no-op
	s.ApplyCartUpdate(model.CartUpdate{Index: 7, ItemID: 11, Quantity: 5})
	s.ApplyCartUpdate(model.CartUpdate{Index: 2, ItemID: 11, Quantity: 5})

	id, qty, ok := s.Resolve(1)
	require.True(t, ok)
	require.Equal(t, int64(11), id)
	require.Equal(t, 3, qty)

	_, qty, _ = s.Resolve(2)
	require.Zero(t, qty)

	_, _, ok = s.Resolve(-1)
	require.False(t, ok)
}

func TestStore_FailKeepsItems(t *testing.T) {
	s := New(nil)
	defer s.Close()
	s.Reset("q")
	s.SetLoading(true)
	s.Append(items(1, 2))
	sub := s.Subscribe()

	boom := errors.New("boom")
	s.Fail(boom)

	require.Equal(t, ChangeLoading, next(t, sub).Kind)
	c := next(t, sub)
	require.Equal(t, ChangeError, c.Kind)
	require.ErrorIs(t, c.Err, boom)

	state := s.Snapshot()
	require.Len(t, state.Items, 2)
	require.False(t, state.Loading)
	require.ErrorIs(t, state.LastError, boom)
}

func TestStore_Navigate(t *testing.T) {
	s := New(nil)
	defer s.Close()
	s.Append(items(5, 6))

	_, err := s.Navigate(9)
	require.ErrorIs(t, err, catalog.ErrIndexOutOfRange)

	item, err := s.Navigate(1)
	require.NoError(t, err)
	require.Equal(t, int64(6), item.ID)
	require.Equal(t, Navigation{Active: true, Index: 1, ItemID: 6}, s.Snapshot().Navigation)

	s.ClearNavigate(5)
	require.True(t, s.Snapshot().Navigation.Active)
	s.ClearNavigate(6)
	require.False(t, s.Snapshot().Navigation.Active)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New(nil)
	defer s.Close()
	s.Append(items(1))

	state, sub := s.SubscribeWithSnapshot()
	defer sub.Close()
	state.Items[0].Title = "changed"

	require.Equal(t, "item", s.Snapshot().Items[0].Title)
}
