package trust

import "sync"

// keyLocks serializes coordinator operations per (guild,user) key so two
// concurrent signals for the same user cannot both read stale trust.
// Different keys proceed fully in parallel.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}

// Lock acquires the per-key mutex and returns its unlock function.
func (k *keyLocks) Lock(guildID, userID string) func() {
	lock := k.get(guildID + ":" + userID)
	lock.Lock()
	return lock.Unlock
}
