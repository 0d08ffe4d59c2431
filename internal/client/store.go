package client

import "sync"

// Store holds the client state. Dispatches are applied one at a time; the
// last one to finish wins for each slice.
type Store struct {
	mu        sync.RWMutex
	state     State
	storage   TokenStorage
	listeners map[int]func(State)
	nextID    int
}

// NewStore returns a store whose initial token is read from storage.
func NewStore(storage TokenStorage) *Store {
	if storage == nil {
		storage = NewMemoryTokenStorage("")
	}
	return &Store{
		state:     InitialState(storage.Load()),
		storage:   storage,
		listeners: make(map[int]func(State)),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Storage returns the token storage the store keeps in sync.
func (s *Store) Storage() TokenStorage {
	return s.storage
}

// Dispatch reduces a into the state, keeps the token storage in step with the
// auth slice and notifies subscribers.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state.Auth.Token
	s.state = Reduce(s.state, a)
	next := s.state
	if next.Auth.Token != prev {
		if next.Auth.Token == "" {
			s.storage.Clear()
		} else {
			s.storage.Save(next.Auth.Token)
		}
	}
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Subscribe registers fn to run after every dispatch and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
