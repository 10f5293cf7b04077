// Package lock serializes lifecycle writes that touch the same animal.
//
// Two implementations share the Locker interface:
//   - KeyedMutex: in-process, one mutex per key, reference counted so idle
//     keys do not accumulate.
//   - RedisLocker: cross-process, SET NX PX with a token-checked release,
//     for deployments that run several replicas against one database.
//
// Acquire blocks until the lock is held or ctx is done. The returned release
// function must be called exactly once.
package lock

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// ErrNotAcquired is returned when ctx ends before the lock is obtained.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires named exclusive locks.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AnimalKey is the lock key guarding all adoption writes for one animal.
func AnimalKey(animalID uint) string {
	return "adoption:animal:" + strconv.FormatUint(uint64(animalID), 10)
}

type entry struct {
	ch   chan struct{} // buffered(1); holding the token means holding the lock
	refs int
}

// KeyedMutex is an in-process Locker. The zero value is ready to use.
type KeyedMutex struct {
	mu   sync.Mutex
	keys map[string]*entry
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{keys: make(map[string]*entry)}
}

// Acquire implements Locker.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	if k.keys == nil {
		k.keys = make(map[string]*entry)
	}
	e, ok := k.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.keys[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, e)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.unref(key, e)
		})
	}, nil
}

func (k *KeyedMutex) unref(key string, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.keys, key)
	}
	k.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.keys)
}
