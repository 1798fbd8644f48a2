package debounce

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock ручное время: таймеры срабатывают синхронно внутри Advance
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recorder struct {
	mu      sync.Mutex
	commits []string
}

func (r *recorder) commit(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, text)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commits...)
}

func TestDebouncer_BurstCommitsOnceWithFinalText(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	for _, text := range []string{"s", "sh", "sho", "shoe"} {
		d.OnTextChanged(text)
		clock.Advance(300 * time.Millisecond)
	}
	require.Empty(t, rec.got())
	require.Equal(t, "shoe", d.Pending())
	require.Equal(t, 1, clock.active(), "superseded timers must be stopped")

	clock.Advance(time.Second)
	require.Equal(t, []string{"shoe"}, rec.got())
	require.Zero(t, clock.active())
}

func TestDebouncer_SuppressesEqualCommits(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	d.OnTextChanged("")
	clock.Advance(time.Second)

	// ввод и возврат к тому же значению не даёт нового коммита
	d.OnTextChanged("a")
	clock.Advance(100 * time.Millisecond)
	d.OnTextChanged("")
	clock.Advance(time.Second)

	d.OnTextChanged("")
	clock.Advance(time.Second)

	require.Equal(t, []string{""}, rec.got())
}

func TestDebouncer_ComparesWithLastCommittedNotLastRaw(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	d.OnTextChanged("a")
	clock.Advance(time.Second)
	d.OnTextChanged("ab")
	clock.Advance(time.Second)
	d.OnTextChanged("a")
	clock.Advance(time.Second)

	require.Equal(t, []string{"a", "ab", "a"}, rec.got())
}

func TestDebouncer_StaleTimerCallbackIgnored(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	d.OnTextChanged("old")
	d.mu.Lock()
	staleGen := d.generation
	d.mu.Unlock()
	d.OnTextChanged("new")

	// сработавший после замены таймер ничего не коммитит
	d.fire(staleGen)
	require.Empty(t, rec.got())

	clock.Advance(time.Second)
	require.Equal(t, []string{"new"}, rec.got())
}

func TestDebouncer_CommitNow(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	require.True(t, d.CommitNow(""))
	require.False(t, d.CommitNow(""))

	d.OnTextChanged("x")
	require.True(t, d.CommitNow("y"))
	clock.Advance(time.Second)

	require.Equal(t, []string{"", "y"}, rec.got())
}

func TestDebouncer_Stop(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}
	d := New(time.Second, clock, rec.commit)

	d.OnTextChanged("x")
	d.Stop()
	clock.Advance(time.Second)
	d.OnTextChanged("y")
	clock.Advance(time.Second)

	require.Empty(t, rec.got())
	require.False(t, d.CommitNow("z"))
	require.Zero(t, clock.active())
}

func TestDebouncer_RealClock(t *testing.T) {
	committed := make(chan string, 4)
	d := New(20*time.Millisecond, nil, func(text string) { committed <- text })
	defer d.Stop()

	d.OnTextChanged("a")
	d.OnTextChanged("ab")

	select {
	case text := <-committed:
		require.Equal(t, "ab", text)
	case <-time.After(time.Second):
		t.Fatal("commit did not fire")
	}

	select {
	case text := <-committed:
		t.Fatalf("unexpected second commit %q", text)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_StopWaitsForRunningCommit(t *testing.T) {
	clock := &fakeClock{}
	entered := make(chan struct{})
	release := make(chan struct{})
	d := New(time.Second, clock, func(text string) {
		close(entered)
		<-release
	})

	d.OnTextChanged("boots")
	advanced := make(chan struct{})
	go func() {
		defer close(advanced)
		clock.Advance(time.Second)
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		d.Stop()
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a commit was still running")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the commit finished")
	}
	<-advanced
}
