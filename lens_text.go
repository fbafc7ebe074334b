package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// TextLens is the lens over a collaborative-text position. It has no Set
// and no Focus at the type level: whole-value replacement has no
// meaningful merge for concurrent text edits, so text is mutated only
// through the container's own insert/delete operations.
type TextLens struct {
	doc  *Document
	node schema.Node
	path string
	t    *shared.Text
}

// Schema implements Lens.
func (l TextLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l TextLens) Path() string { return l.path }

// Text returns the text container handle for character-level editing.
func (l TextLens) Text() *shared.Text { return l.t }

// Get returns the text container handle itself, not a string snapshot.
func (l TextLens) Get() any { return l.t }

// SafeGet returns the container handle; text positions accept any stored
// form, so validation never fails here.
func (l TextLens) SafeGet() (any, error) {
	if _, err := schema.Decode(l.node, l.t); err != nil {
		return nil, validationError(l.path, err)
	}
	return l.t, nil
}

// Insert places s at rune position i, committing as one batch.
func (l TextLens) Insert(i int, s string) error {
	return l.doc.Transact(func() error {
		l.t.Insert(i, s)
		return nil
	})
}

// Delete removes n runes starting at position i.
func (l TextLens) Delete(i, n int) error {
	return l.doc.Transact(func() error {
		l.t.Delete(i, n)
		return nil
	})
}

// Append adds s at the end.
func (l TextLens) Append(s string) error {
	return l.Insert(l.t.Len(), s)
}

// String returns the current contents as a snapshot.
func (l TextLens) String() string { return l.t.String() }

// Subscribe returns a reactive view recomputing the string snapshot on
// every edit.
func (l TextLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.t, Deep, func() any { return l.t.String() })
}

// Readonly returns the read-only view of this lens.
func (l TextLens) Readonly() ReadonlyText { return ReadonlyText{l} }
