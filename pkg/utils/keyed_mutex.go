// Package utils holds small shared helpers.
package utils

import "sync"

// KeyedMutex serializes work per key. The ledger mutator uses it to order
// concurrent mutations against the same wallet; the sync engine uses it to
// keep one in-flight sync per entity type and owner.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{locks: make(map[K]*keyedLock)}
}

// Lock acquires the mutex for key, blocking until it is free.
func (m *KeyedMutex[K]) Lock(key K) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the mutex for key. The per-key lock is dropped once no
// goroutine holds or waits on it.
func (m *KeyedMutex[K]) Unlock(key K) {
	m.mu.Lock()
	l := m.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()

	l.mu.Unlock()
}
