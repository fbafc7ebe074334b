package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// NodeListLens is the lens over an ordered-node-list position: a list of
// struct containers, each carrying a generated identity in a reserved
// field. The identity is the only address that is stable across
// structural mutation; indexes are intentionally unstable.
type NodeListLens struct {
	doc  *Document
	node schema.Node
	nl   *schema.NodeList
	path string
	list *shared.List
}

// Schema implements Lens.
func (l NodeListLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l NodeListLens) Path() string { return l.path }

// Container returns the underlying list container.
func (l NodeListLens) Container() *shared.List { return l.list }

// Len returns the number of elements.
func (l NodeListLens) Len() int { return l.list.Len() }

// Append validates v against the element schema, builds a new element
// with a fresh identity, inserts it at the end and returns the identity.
func (l NodeListLens) Append(v any) (NodeID, error) {
	return l.insert(l.list.Len(), v)
}

// Prepend inserts a new element at the front.
func (l NodeListLens) Prepend(v any) (NodeID, error) {
	return l.insert(0, v)
}

// InsertAt inserts a new element at index i.
func (l NodeListLens) InsertAt(i int, v any) (NodeID, error) {
	if i < 0 || i > l.list.Len() {
		return "", misuseError(l.path, "insert index %d out of range [0..%d]", i, l.list.Len())
	}
	return l.insert(i, v)
}

// InsertAfter inserts a new element directly after the element with
// identity id, resolving id by linear scan.
func (l NodeListLens) InsertAfter(id NodeID, v any) (NodeID, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return "", notFoundError(l.path, id)
	}
	return l.insert(idx+1, v)
}

func (l NodeListLens) insert(i int, v any) (NodeID, error) {
	decoded, err := schema.Decode(l.nl.Elem, v)
	if err != nil {
		return "", validationError(l.path, err)
	}
	var id NodeID
	err = l.doc.Transact(func() error {
		elem, newID, err := newNodeContainer(l.doc, l.nl.Elem, decoded.(map[string]any), indexPath(l.path, i))
		if err != nil {
			return err
		}
		id = newID
		l.list.Insert(i, elem)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveAt structurally deletes the element at index i.
func (l NodeListLens) RemoveAt(i int) error {
	if i < 0 || i >= l.list.Len() {
		return misuseError(l.path, "remove index %d out of range [0..%d]", i, l.list.Len()-1)
	}
	return l.doc.Transact(func() error {
		l.list.Delete(i, 1)
		return nil
	})
}

// Remove structurally deletes the element with identity id.
func (l NodeListLens) Remove(id NodeID) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return notFoundError(l.path, id)
	}
	return l.RemoveAt(idx)
}

// At returns a struct lens bound to whatever element currently occupies
// index i. The binding does not track the element under reordering; use
// Find for a position-independent handle.
func (l NodeListLens) At(i int) (StructLens, error) {
	if i < 0 || i >= l.list.Len() {
		return StructLens{}, misuseError(l.path, "index %d out of range [0..%d]", i, l.list.Len()-1)
	}
	m, ok := l.list.Get(i).(*shared.Map)
	if !ok {
		return StructLens{}, misuseError(l.path, "element %d holds %T, expected a map container", i, l.list.Get(i))
	}
	return l.elementLens(m), nil
}

// Find resolves id by scanning the identity field and returns a struct
// lens bound directly to that element's container. The binding is stable
// across insertions and removals elsewhere in the list.
func (l NodeListLens) Find(id NodeID) (StructLens, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return StructLens{}, notFoundError(l.path, id)
	}
	return l.elementLens(l.list.Get(idx).(*shared.Map)), nil
}

// Nodes returns a snapshot mapping every present identity to a stable
// lens for its element, for bulk reconciliation by a consuming layer.
func (l NodeListLens) Nodes() map[NodeID]StructLens {
	out := make(map[NodeID]StructLens, l.list.Len())
	for _, v := range l.list.Slice() {
		m, ok := v.(*shared.Map)
		if !ok {
			continue
		}
		if id, ok := elementID(m); ok {
			out[id] = l.elementLens(m)
		}
	}
	return out
}

// Get returns the sequence as plain records with the reserved identity
// field stripped: identities are an addressing detail, not part of the
// declared element schema.
func (l NodeListLens) Get() any {
	return readValue(l.node, l.list)
}

// SafeGet reads the sequence and validates every element.
func (l NodeListLens) SafeGet() (any, error) {
	v, err := schema.Decode(l.node, l.Get())
	if err != nil {
		return nil, validationError(l.path, err)
	}
	return v, nil
}

// Set validates the input and replaces the entire sequence. Every element
// receives a newly generated identity; whole-list writes never preserve
// identities.
func (l NodeListLens) Set(v any) error {
	decoded, err := schema.Decode(l.node, v)
	if err != nil {
		return validationError(l.path, err)
	}
	return l.doc.Transact(func() error {
		return writeNodeListContents(l.doc, l.nl, l.list, decoded.([]any), l.path)
	})
}

// MustSet is Set for programmer-error call sites: it panics on failure.
func (l NodeListLens) MustSet(v any) {
	if err := l.Set(v); err != nil {
		panic(err)
	}
}

// Subscribe returns a deep reactive view of the whole list: it recomputes
// on structural changes and on field edits inside any element.
func (l NodeListLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.list, Deep, l.Get)
}

// IDs returns the identity-set view: a shallow reactive value holding the
// identities currently present, in list order. It recomputes when
// elements are added, removed or reordered, and deliberately not on a
// field edit inside an existing element - that asymmetry lets a consumer
// tell "membership changed" apart from "an element's data changed"
// without recomputing the whole list on every keystroke.
func (l NodeListLens) IDs() *reactive.Value[[]NodeID] {
	return makeReactive(l.list, Shallow, func() []NodeID {
		ids := make([]NodeID, 0, l.list.Len())
		for _, v := range l.list.Slice() {
			if m, ok := v.(*shared.Map); ok {
				if id, ok := elementID(m); ok {
					ids = append(ids, id)
				}
			}
		}
		return ids
	})
}

// NodeView returns the detach-tolerant reactive view of one element,
// shared per identity across calls. After the element is removed its
// container is detached, notifications stop, and the view freezes at its
// last computed value - consumers learn about removal from IDs, not from
// the element's own view. An identity never present yields a view frozen
// at nil.
func (l NodeListLens) NodeView(id NodeID) *reactive.Value[any] {
	return l.doc.nodeViewFamily(l).Get(id)
}

// ReleaseNodeView closes and forgets the shared view for id.
func (l NodeListLens) ReleaseNodeView(id NodeID) {
	l.doc.nodeViewFamily(l).Release(id)
}

func (l NodeListLens) elementLens(m *shared.Map) StructLens {
	path := l.path
	if id, ok := elementID(m); ok {
		path = childPath(l.path, string(id))
	}
	return StructLens{doc: l.doc, node: l.nl.Elem, obj: l.nl.Elem, path: path, m: m}
}

func (l NodeListLens) indexOf(id NodeID) int {
	return l.list.IndexOf(func(v any) bool {
		m, ok := v.(*shared.Map)
		if !ok {
			return false
		}
		got, ok := elementID(m)
		return ok && got == id
	})
}

// elementID reads the reserved identity field of an element container.
func elementID(m *shared.Map) (NodeID, bool) {
	v, ok := m.Get(schema.NodeIDField)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return NodeID(s), ok
}

// Readonly returns the read-only view of this lens.
func (l NodeListLens) Readonly() ReadonlyNodeList { return ReadonlyNodeList{l} }

// nodeViewFamily returns the per-element reactive family for a node-list
// container, creating it on first use.
func (d *Document) nodeViewFamily(l NodeListLens) *reactive.Family[NodeID, any] {
	if f, ok := d.nodeViews[l.list]; ok {
		return f
	}
	f := reactive.NewFamily(func(id NodeID) *reactive.Value[any] {
		idx := l.indexOf(id)
		if idx < 0 {
			// Never present (or already gone): a view frozen at nil.
			return reactive.NewValue(func() any { return nil }, nil)
		}
		m := l.list.Get(idx).(*shared.Map)
		return makeReactive[any](m, Deep, func() any {
			return readNodeElement(l.nl.Elem, m)
		})
	})
	d.nodeViews[l.list] = f
	return f
}
