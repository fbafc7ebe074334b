package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// ListLens is the lens over a plain ordered-list position. It has no
// focus operation and no positional addressing: index-based bindings are
// unstable under insertion and removal, so only the node-identity variant
// offers element handles.
type ListLens struct {
	doc  *Document
	node schema.Node
	elem schema.Node
	path string
	list *shared.List
}

// Schema implements Lens.
func (l ListLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l ListLens) Path() string { return l.path }

// Container returns the underlying list container.
func (l ListLens) Container() *shared.List { return l.list }

// Len returns the number of elements.
func (l ListLens) Len() int { return l.list.Len() }

// Get returns the sequence as a plain slice: struct elements
// reconstructed, primitives passed through.
func (l ListLens) Get() any {
	return readValue(l.node, l.list)
}

// SafeGet reads the sequence and validates every element.
func (l ListLens) SafeGet() (any, error) {
	v, err := schema.Decode(l.node, l.Get())
	if err != nil {
		return nil, validationError(l.path, err)
	}
	return v, nil
}

// Set validates the input and replaces the entire sequence: clear, then
// append every element, creating a fresh container per structural
// element. Commits as one batch.
func (l ListLens) Set(v any) error {
	decoded, err := schema.Decode(l.node, v)
	if err != nil {
		return validationError(l.path, err)
	}
	return l.doc.Transact(func() error {
		return writeListContents(l.doc, l.elem, l.list, decoded.([]any), l.path)
	})
}

// MustSet is Set for programmer-error call sites: it panics on failure.
func (l ListLens) MustSet(v any) {
	if err := l.Set(v); err != nil {
		panic(err)
	}
}

// Subscribe returns a deep reactive view of the whole sequence.
func (l ListLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.list, Deep, l.Get)
}

// Readonly returns the read-only view of this lens.
func (l ListLens) Readonly() ReadonlyList { return ReadonlyList{l} }
