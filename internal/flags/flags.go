// Package flags holds small shared console settings, such as whether the
// vitals panel is shown, behind a typed publish/subscribe store. Readers
// subscribe instead of polling; every write notifies all current
// subscribers.
package flags

import "sync"

// Store is a concurrency-safe value cell with change notification.
type Store[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[int]func(T)
	next  int
}

func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies every subscriber with the new value.
// Callbacks run outside the store's lock, on the caller's goroutine.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	callbacks := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(value)
	}
}

// Subscribe registers fn for future changes and returns an unsubscribe
// function. The current value is not replayed; call Get for it.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
