package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// Lens is the operation surface common to every lens kind. Lenses are
// cheap value handles: creating one never subscribes to anything, and any
// number of lenses may independently focus the same path.
type Lens interface {
	// Schema returns the schema node the lens is bound to.
	Schema() schema.Node

	// Path returns the dotted document position, for error context.
	Path() string

	// Get reads the current value, trusting the stored data.
	Get() any

	// SafeGet reads and validates against the schema, surfacing a
	// structured failure for untrusted or remote data.
	SafeGet() (any, error)

	// Subscribe returns a reactive view of this position: a cached value
	// recomputed on every change in the position's subtree. The caller
	// owns the returned value and must Close it.
	Subscribe() *reactive.Value[any]
}

// ObservationMode selects the notification scope of a reactive view.
type ObservationMode int

const (
	// Shallow observes only structural changes to the exact container:
	// entries added, removed or reordered.
	Shallow ObservationMode = iota

	// Deep observes any change anywhere in the container's subtree.
	Deep
)

// makeReactive bridges a container's notification API into a cached
// reactive value. The observer is installed on first read and removed by
// Close; once the container is detached, notifications stop and the value
// freezes at its last computed state.
func makeReactive[T any](c shared.Container, mode ObservationMode, read func() T) *reactive.Value[T] {
	install := func(invalidate func()) func() {
		fn := func([]shared.Event) { invalidate() }
		if mode == Shallow {
			return c.Observe(fn)
		}
		return c.ObserveDeep(fn)
	}
	return reactive.NewValue(read, install)
}

// ValueLens is the lens over a primitive position. It has no container of
// its own: it is bound to its parent map and key, and the value lives
// inline in that slot.
type ValueLens struct {
	doc    *Document
	node   schema.Node
	path   string
	parent *shared.Map
	key    string
}

// Schema implements Lens.
func (l ValueLens) Schema() schema.Node { return l.node }

// Path implements Lens.
func (l ValueLens) Path() string { return l.path }

// Get returns the raw stored value, or nil when the slot was never
// written.
func (l ValueLens) Get() any {
	v, _ := l.parent.Get(l.key)
	return v
}

// SafeGet validates the stored value against the schema.
func (l ValueLens) SafeGet() (any, error) {
	v, err := schema.Decode(l.node, l.Get())
	if err != nil {
		return nil, validationError(l.path, err)
	}
	return v, nil
}

// Set validates v and writes it into the parent slot.
func (l ValueLens) Set(v any) error {
	decoded, err := schema.Decode(l.node, v)
	if err != nil {
		return validationError(l.path, err)
	}
	return l.doc.Transact(func() error {
		l.parent.Set(l.key, decoded)
		return nil
	})
}

// MustSet is Set for programmer-error call sites: it panics on validation
// failure.
func (l ValueLens) MustSet(v any) {
	if err := l.Set(v); err != nil {
		panic(err)
	}
}

// Subscribe returns a reactive view of the slot. Primitive slots are
// structural entries of the parent map, so the view observes the parent
// shallowly.
func (l ValueLens) Subscribe() *reactive.Value[any] {
	return makeReactive(l.parent, Shallow, l.Get)
}

// Readonly returns the read-only view of this lens.
func (l ValueLens) Readonly() ReadonlyValue { return ReadonlyValue{l} }

// childLens constructs the lens for one child slot of a map container,
// creating the child's container when the slot is empty. The
// auto-vivification is a deliberate mutating side effect of navigation:
// newly created struct containers are eagerly pre-populated exactly like
// the tree builder would.
func childLens(d *Document, parent *shared.Map, key string, node schema.Node, path string) (Lens, error) {
	class, err := schema.Classify(node)
	if err != nil {
		return nil, unsupportedSchemaError(path, err)
	}
	switch class {
	case schema.ClassPrimitive:
		return ValueLens{doc: d, node: node, path: path, parent: parent, key: key}, nil
	case schema.ClassText:
		var t *shared.Text
		if v, ok := parent.Get(key); ok {
			if t, ok = v.(*shared.Text); !ok {
				return nil, misuseError(path, "slot holds %T, expected a text container", v)
			}
		} else {
			t = shared.NewText()
			if err := d.Transact(func() error { parent.Set(key, t); return nil }); err != nil {
				return nil, err
			}
		}
		return TextLens{doc: d, node: node, path: path, t: t}, nil
	case schema.ClassStruct:
		obj := schema.Underlying(node).(*schema.Object)
		var m *shared.Map
		if v, ok := parent.Get(key); ok {
			if m, ok = v.(*shared.Map); !ok {
				return nil, misuseError(path, "slot holds %T, expected a map container", v)
			}
		} else {
			m = shared.NewMap()
			if err := d.Transact(func() error {
				if err := buildStruct(m, obj, path); err != nil {
					return err
				}
				parent.Set(key, m)
				return nil
			}); err != nil {
				return nil, err
			}
		}
		return StructLens{doc: d, node: node, obj: obj, path: path, m: m}, nil
	case schema.ClassMap:
		obj := schema.Underlying(node).(*schema.Object)
		var m *shared.Map
		if v, ok := parent.Get(key); ok {
			if m, ok = v.(*shared.Map); !ok {
				return nil, misuseError(path, "slot holds %T, expected a map container", v)
			}
		} else {
			m = shared.NewMap()
			if err := d.Transact(func() error { parent.Set(key, m); return nil }); err != nil {
				return nil, err
			}
		}
		return MapLens{doc: d, node: node, rest: obj.Rest, path: path, m: m}, nil
	case schema.ClassList, schema.ClassNodeList:
		var list *shared.List
		if v, ok := parent.Get(key); ok {
			if list, ok = v.(*shared.List); !ok {
				return nil, misuseError(path, "slot holds %T, expected a list container", v)
			}
		} else {
			list = shared.NewList()
			if err := d.Transact(func() error { parent.Set(key, list); return nil }); err != nil {
				return nil, err
			}
		}
		if class == schema.ClassNodeList {
			nl := schema.Underlying(node).(*schema.NodeList)
			return NodeListLens{doc: d, node: node, nl: nl, path: path, list: list}, nil
		}
		elem := schema.Underlying(node).(*schema.List).Elem
		return ListLens{doc: d, node: node, elem: elem, path: path, list: list}, nil
	}
	return nil, misuseError(path, "unsupported schema class %s", class)
}
