package service

import "sync"

// keyedLocker serializes work per client number inside this process.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the function that releases it.
func (l *keyedLocker) Lock(key string) func() {
	l.mu.Lock()

	k, ok := l.locks[key]
	if !ok {
		k = &keyedLock{}
		l.locks[key] = k
	}

	k.refs++
	l.mu.Unlock()

	k.mu.Lock()

	return func() {
		k.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		k.refs--
		if k.refs == 0 {
			delete(l.locks, key)
		}
	}
}
