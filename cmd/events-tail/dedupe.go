package main

import (
	"sync"
	"time"
)

// seenEvents in-memory набор уже показанных event_id с ttl.
// Consumer group доставляет at-least-once, после ребалансировки сообщения могут прийти повторно.
type seenEvents struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	events    map[string]time.Time // eventID -> expiresAt
	nextPurge time.Time
}

func newSeenEvents(ttl time.Duration) *seenEvents {
	return &seenEvents{
		ttl:    ttl,
		now:    time.Now,
		events: make(map[string]time.Time),
	}
}

// markNew помечает eventID и возвращает false, если он уже встречался и ttl не истёк
func (s *seenEvents) markNew(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextPurge) {
		s.purgeLocked(now)
	}

	if expiresAt, ok := s.events[eventID]; ok && !now.After(expiresAt) {
		return false
	}
	s.events[eventID] = now.Add(s.ttl)
	return true
}

// purgeLocked удаляет протухшие записи не чаще раза в ttl
func (s *seenEvents) purgeLocked(now time.Time) {
	for id, expiresAt := range s.events {
		if now.After(expiresAt) {
			delete(s.events, id)
		}
	}
	s.nextPurge = now.Add(s.ttl)
}
