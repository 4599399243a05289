// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sync"
)

// Observable holds a snapshot of T and notifies subscribers after every
// update. Snapshots are treated as immutable: updates build a new value
// instead of editing slices or pointers reachable from the old one.
type Observable[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]func(T)
	nextID int
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current snapshot
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Subscribe registers fn for every future snapshot. The returned function
// removes the subscription.
func (o *Observable[T]) Subscribe(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// Update applies fn atomically and notifies subscribers with the result.
// fn reports whether it changed anything; unchanged updates notify nobody.
func (o *Observable[T]) Update(fn func(T) (T, bool)) (T, bool) {
	o.mu.Lock()
	next, changed := fn(o.value)
	if !changed {
		o.mu.Unlock()
		return next, false
	}
	o.value = next
	subs := make([]func(T), 0, len(o.subs))
	for _, s := range o.subs {
		subs = append(subs, s)
	}
	o.mu.Unlock()

	// Notify without holding the lock so subscribers may read the store
	for _, s := range subs {
		s(next)
	}
	return next, true
}

// Set replaces the snapshot unconditionally.
func (o *Observable[T]) Set(v T) {
	o.Update(func(T) (T, bool) { return v, true })
}
