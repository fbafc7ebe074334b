package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// MapLens is the lens over a keyed-map position: a map container with
// dynamic string keys and a homogeneous value schema.
type MapLens struct {
	doc  *Document
	node schema.Node
	rest schema.Node
	path string
	m    *shared.Map
}

// Schema implements Lens.
func (l MapLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l MapLens) Path() string { return l.path }

// Container returns the underlying map container.
func (l MapLens) Container() *shared.Map { return l.m }

// Len returns the number of entries.
func (l MapLens) Len() int { return l.m.Len() }

// Has reports whether key currently has an entry.
func (l MapLens) Has(key string) bool { return l.m.Has(key) }

// Keys returns the current keys in sorted order.
func (l MapLens) Keys() []string { return l.m.Keys() }

// Focus narrows to the entry lens for key. A missing entry's container is
// created on first focus for structural value types, pre-populated the way
// the tree builder pre-populates new structs - navigation with a mutating
// side effect.
func (l MapLens) Focus(key string) (Lens, error) {
	return childLens(l.doc, l.m, key, l.rest, childPath(l.path, key))
}

// Delete removes the entry at key, detaching its container. Removing an
// absent key is a no-op.
func (l MapLens) Delete(key string) error {
	return l.doc.Transact(func() error {
		l.m.Delete(key)
		return nil
	})
}

// Get reconstructs the whole map as plain values.
func (l MapLens) Get() any {
	return readValue(l.node, l.m)
}

// SafeGet reads the map and validates every entry.
func (l MapLens) SafeGet() (any, error) {
	v, err := schema.Decode(l.node, l.Get())
	if err != nil {
		return nil, validationError(l.path, err)
	}
	return v, nil
}

// Set validates the input object, clears all existing entries, then
// rewrites every key from the input, as one batch.
func (l MapLens) Set(v any) error {
	decoded, err := schema.Decode(l.node, v)
	if err != nil {
		return validationError(l.path, err)
	}
	return l.doc.Transact(func() error {
		return writeMapContents(l.doc, l.rest, l.m, decoded.(map[string]any), l.path)
	})
}

// MustSet is Set for programmer-error call sites: it panics on failure.
func (l MapLens) MustSet(v any) {
	if err := l.Set(v); err != nil {
		panic(err)
	}
}

// Subscribe returns a deep reactive view of the whole map.
func (l MapLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.m, Deep, l.Get)
}

// Readonly returns the read-only view of this lens.
func (l MapLens) Readonly() ReadonlyMap { return ReadonlyMap{l} }
