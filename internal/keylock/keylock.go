// Package keylock serializes work on a single document key inside the process.
//
// Keys hash onto a fixed set of mutex stripes, so two distinct keys may share
// a stripe. Callers must never hold two locks at once.
package keylock

import (
	"sync"

	"github.com/cespare/xxhash"
)

const stripes = 256

type Locker struct {
	mu [stripes]sync.Mutex
}

func New() *Locker {
	return &Locker{}
}

// Lock blocks until key is held and returns the matching unlock function.
func (l *Locker) Lock(key string) func() {
	m := &l.mu[xxhash.Sum64String(key)%stripes]
	m.Lock()
	return m.Unlock
}
