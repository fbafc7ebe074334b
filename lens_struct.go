package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// StructLens is the lens over a struct position: a map container with
// fixed named fields.
type StructLens struct {
	doc  *Document
	node schema.Node
	obj  *schema.Object
	path string
	m    *shared.Map
}

// Schema implements Lens.
func (l StructLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l StructLens) Path() string { return l.path }

// Container returns the underlying map container.
func (l StructLens) Container() *shared.Map { return l.m }

// Focus narrows to the named field's lens. Focusing a structural field
// whose container is missing creates it - navigation with a mutating side
// effect (see the package documentation). Fields outside the schema are a
// programmer error unless the struct carries a dynamic rest schema.
func (l StructLens) Focus(name string) (Lens, error) {
	fs, ok := l.obj.FieldSchema(name)
	if !ok {
		if l.obj.Rest == nil {
			return nil, misuseError(l.path, "struct has no field %q", name)
		}
		fs = l.obj.Rest
	}
	return childLens(l.doc, l.m, name, fs, childPath(l.path, name))
}

// Get recursively reconstructs the record: nested structs and maps
// recurse, lists map their elements, text fields yield their container
// handles, primitives pass through raw.
func (l StructLens) Get() any {
	return readStruct(l.obj, l.m)
}

// SafeGet reads the record and validates it against the struct schema.
func (l StructLens) SafeGet() (any, error) {
	v, err := schema.Decode(l.node, l.Get())
	if err != nil {
		return nil, validationError(l.path, err)
	}
	return v, nil
}

// Set validates the whole record and performs a structural write: nested
// struct containers are written into field-by-field with their identity
// preserved, nested lists and maps are fully replaced, and text fields in
// the input are silently skipped - text is mutated only through its own
// container operations, and whole-value replacement of collaborative text
// has no meaningful merge. All mutations commit as one batch.
func (l StructLens) Set(v any) error {
	decoded, err := schema.Decode(l.node, v)
	if err != nil {
		return validationError(l.path, err)
	}
	return l.doc.Transact(func() error {
		return writeStruct(l.doc, l.obj, l.m, decoded.(map[string]any), l.path)
	})
}

// MustSet is Set for programmer-error call sites: it panics on failure.
func (l StructLens) MustSet(v any) {
	if err := l.Set(v); err != nil {
		panic(err)
	}
}

// Subscribe returns a deep reactive view: the cached record recomputes on
// any change anywhere under this struct.
func (l StructLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.m, Deep, l.Get)
}

// Readonly returns the read-only view of this lens.
func (l StructLens) Readonly() ReadonlyStruct { return ReadonlyStruct{l} }
