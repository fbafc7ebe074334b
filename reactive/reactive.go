// Package reactive provides the pull-based cached values the loupe lens
// layer hands out from Subscribe. A Value wraps an external notification
// source: it installs an observer on first read, recomputes its cached
// result on every notification, and tears the observer down exactly once
// on Close. A Family keys stable Values for per-element addressing.
package reactive

import "sync"

// Value is a cached, subscription-driven value. Between two notifications
// repeated Gets return the identical cached result; when notifications
// stop arriving (for example because the observed container was detached)
// the value freezes at its last computed state.
//
// The mutex only guards embedder teardown paths where Close may race with
// notification delivery; the lens layer itself is single-threaded.
type Value[T any] struct {
	mu sync.Mutex

	read    func() T
	install func(invalidate func()) (uninstall func())

	uninstall    func()
	current      T
	materialized bool
	closed       bool
}

// NewValue returns an unmaterialized value. read computes the current
// result; install registers an observer on the underlying source and
// returns its teardown. Nothing is installed until the first Get.
func NewValue[T any](read func() T, install func(invalidate func()) (uninstall func())) *Value[T] {
	return &Value[T]{read: read, install: install}
}

// Get returns the cached value, materializing on first use: the observer
// is installed and the initial value computed. Subsequent calls return the
// cache until a notification triggers a recompute.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.materialized {
		v.materialized = true
		if !v.closed && v.install != nil {
			v.uninstall = v.install(v.recompute)
		}
		v.current = v.read()
	}
	return v.current
}

// Peek returns the cached value without materializing. The second result
// reports whether a value has been computed yet.
func (v *Value[T]) Peek() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.materialized
}

// recompute is the notification callback: it refreshes the cache in place.
func (v *Value[T]) recompute() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || !v.materialized {
		return
	}
	v.current = v.read()
}

// Close uninstalls the observer. It is idempotent and safe to call when
// the underlying source is already gone; the last computed value remains
// readable through Get.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.uninstall != nil {
		v.uninstall()
		v.uninstall = nil
	}
}

// Family hands out one stable Value per key, so repeated subscriptions to
// the same logical element share a cache and an observer.
type Family[K comparable, T any] struct {
	mu     sync.Mutex
	build  func(K) *Value[T]
	values map[K]*Value[T]
}

// NewFamily returns a Family constructing per-key values with build.
func NewFamily[K comparable, T any](build func(K) *Value[T]) *Family[K, T] {
	return &Family[K, T]{build: build, values: make(map[K]*Value[T])}
}

// Get returns the Value for k, constructing it on first use. The same
// pointer is returned for every subsequent Get of the same key until
// Release.
func (f *Family[K, T]) Get(k K) *Value[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[k]; ok {
		return v
	}
	v := f.build(k)
	f.values[k] = v
	return v
}

// Release closes and forgets the Value for k, if any.
func (f *Family[K, T]) Release(k K) {
	f.mu.Lock()
	v, ok := f.values[k]
	delete(f.values, k)
	f.mu.Unlock()
	if ok {
		v.Close()
	}
}

// Close releases every key.
func (f *Family[K, T]) Close() {
	f.mu.Lock()
	values := f.values
	f.values = make(map[K]*Value[T])
	f.mu.Unlock()
	for _, v := range values {
		v.Close()
	}
}
