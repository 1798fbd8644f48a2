package debounce

import (
	"sync"
	"time"
)

// Debouncer склеивает быстрый ввод текста в одно событие "запрос зафиксирован".
// Каждый вызов OnTextChanged заменяет отложенный коммит новым таймером.
// Одинаковые подряд коммиты подавляются: сравнение идёт с последним зафиксированным значением.
type Debouncer struct {
	window   time.Duration
	clock    Clock
	onCommit func(text string)

	// emitMu держится на время onCommit, чтобы коммиты не обгоняли друг друга
	emitMu sync.Mutex

	mu         sync.Mutex
	timer      Timer
	generation uint64
	pending    string
	last       string
	committed  bool
	stopped    bool
}

// New создаёт Debouncer. clock == nil означает RealClock.
func New(window time.Duration, clock Clock, onCommit func(text string)) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{
		window:   window,
		clock:    clock,
		onCommit: onCommit,
	}
}

// OnTextChanged запоминает текст и (пере)запускает окно тишины
func (d *Debouncer) OnTextChanged(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopTimerLocked()
	d.generation++
	d.pending = text

	gen := d.generation
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(gen) })
}

// CommitNow отменяет отложенный коммит и сразу фиксирует text.
// Возвращает false, если text совпал с последним зафиксированным значением.
func (d *Debouncer) CommitNow(text string) bool {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.stopTimerLocked()
	d.generation++
	d.pending = text
	ok := d.acceptLocked(text)
	d.mu.Unlock()

	if ok {
		d.onCommit(text)
	}
	return ok
}

// Pending последний введённый текст, в том числе ещё не зафиксированный
func (d *Debouncer) Pending() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop отменяет отложенный коммит; после Stop ввод игнорируется.
// Если onCommit уже выполняется, Stop дожидается его завершения.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.generation++
	d.stopTimerLocked()
	d.mu.Unlock()

	d.emitMu.Lock()
	d.emitMu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	// таймер мог сработать уже после того, как его заменили
	if gen != d.generation || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	text := d.pending
	ok := d.acceptLocked(text)
	d.mu.Unlock()

	if ok {
		d.onCommit(text)
	}
}

func (d *Debouncer) acceptLocked(text string) bool {
	if d.committed && text == d.last {
		return false
	}
	d.last = text
	d.committed = true
	return true
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
