package ingest

import "sync"

// Mutual exclusion per key, entries are removed when nobody holds them
type keyedMutex struct {
	mtx   sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*keyedEntry),
	}
}

// Lock blocks until the key is free and returns the function releasing it
func (self *keyedMutex) Lock(key string) (unlock func()) {
	self.mtx.Lock()
	entry, ok := self.locks[key]
	if !ok {
		entry = new(keyedEntry)
		self.locks[key] = entry
	}
	entry.refs++
	self.mtx.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		self.mtx.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(self.locks, key)
		}
		self.mtx.Unlock()
	}
}
