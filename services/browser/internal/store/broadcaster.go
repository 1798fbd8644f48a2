package store

import "sync"

// Broadcaster раздаёт изменения подписчикам в порядке Publish.
// У каждого подписчика свой неограниченный почтовый ящик, медленный подписчик не тормозит писателя.
type Broadcaster struct {
	mu     sync.Mutex
	seq    uint64
	nextID uint64
	subs   map[uint64]*Subscription
}

// NewBroadcaster создаёт Broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]*Subscription)}
}

// Publish присваивает изменению Seq и кладёт его во все ящики
func (b *Broadcaster) Publish(c Change) Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	c.Seq = b.seq
	for _, s := range b.subs {
		s.push(c)
	}
	return c
}

// Subscribe возвращает подписку на изменения после момента вызова
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{
		id:   b.nextID,
		hub:  b,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Change),
	}
	b.subs[s.id] = s
	go s.run()
	return s
}

// CloseAll закрывает все подписки
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscription подписка на изменения. C закрывается после Close.
type Subscription struct {
	id  uint64
	hub *Broadcaster

	mu    sync.Mutex
	queue []Change

	wake      chan struct{}
	done      chan struct{}
	out       chan Change
	closeOnce sync.Once
}

// C канал изменений в порядке публикации, без склейки
func (s *Subscription) C() <-chan Change {
	return s.out
}

// Close отписывает и освобождает горутину доставки; недоставленные изменения теряются
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s.id)
		close(s.done)
	})
}

func (s *Subscription) push(c Change) {
	s.mu.Lock()
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer close(s.out)
	for {
		select {
		case <-s.wake:
		case <-s.done:
			return
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.queue[0]
			s.queue[0] = Change{}
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- next:
			case <-s.done:
				return
			}
		}
	}
}
