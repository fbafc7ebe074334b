package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
)

// ReadonlyLens is the read-only operation surface. Read-only lenses never
// auto-vivify: focusing a slot whose container was never materialized is
// reported instead of silently creating it.
type ReadonlyLens interface {
	Schema() schema.Node
	Path() string
	Get() any
	SafeGet() (any, error)
	Subscribe() *reactive.Value[any]
}

// roChild builds the read-only child lens for one slot, without the
// vivification the writable Focus performs.
func roChild(d *Document, l Lens, err error) (ReadonlyLens, error) {
	if err != nil {
		return nil, err
	}
	switch t := l.(type) {
	case ValueLens:
		return ReadonlyValue{t}, nil
	case StructLens:
		return ReadonlyStruct{t}, nil
	case MapLens:
		return ReadonlyMap{t}, nil
	case ListLens:
		return ReadonlyList{t}, nil
	case TextLens:
		return ReadonlyText{t}, nil
	case NodeListLens:
		return ReadonlyNodeList{t}, nil
	}
	return nil, misuseError(l.Path(), "no read-only form for %T", l)
}

// ReadonlyStruct is the read-only view of a StructLens.
type ReadonlyStruct struct{ l StructLens }

func (r ReadonlyStruct) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyStruct) Path() string        { return r.l.Path() }
func (r ReadonlyStruct) Get() any            { return r.l.Get() }

func (r ReadonlyStruct) SafeGet() (any, error) { return r.l.SafeGet() }

func (r ReadonlyStruct) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// Focus narrows to the named field without creating anything: a
// structural field whose container is missing is a not-found error.
func (r ReadonlyStruct) Focus(name string) (ReadonlyLens, error) {
	fs, ok := r.l.obj.FieldSchema(name)
	if !ok {
		if r.l.obj.Rest == nil {
			return nil, misuseError(r.l.path, "struct has no field %q", name)
		}
		fs = r.l.obj.Rest
	}
	path := childPath(r.l.path, name)
	if err := requireMaterialized(r.l.doc, r.l.m, name, fs, path); err != nil {
		return nil, err
	}
	cl, err := childLens(r.l.doc, r.l.m, name, fs, path)
	return roChild(r.l.doc, cl, err)
}

// ReadonlyMap is the read-only view of a MapLens.
type ReadonlyMap struct{ l MapLens }

func (r ReadonlyMap) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyMap) Path() string        { return r.l.Path() }
func (r ReadonlyMap) Len() int            { return r.l.Len() }
func (r ReadonlyMap) Has(key string) bool { return r.l.Has(key) }
func (r ReadonlyMap) Keys() []string      { return r.l.Keys() }
func (r ReadonlyMap) Get() any            { return r.l.Get() }

func (r ReadonlyMap) SafeGet() (any, error) { return r.l.SafeGet() }

func (r ReadonlyMap) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// Focus narrows to an entry without creating it; a missing entry is a
// not-found error.
func (r ReadonlyMap) Focus(key string) (ReadonlyLens, error) {
	path := childPath(r.l.path, key)
	if err := requireMaterialized(r.l.doc, r.l.m, key, r.l.rest, path); err != nil {
		return nil, err
	}
	cl, err := childLens(r.l.doc, r.l.m, key, r.l.rest, path)
	return roChild(r.l.doc, cl, err)
}

// ReadonlyList is the read-only view of a ListLens.
type ReadonlyList struct{ l ListLens }

func (r ReadonlyList) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyList) Path() string        { return r.l.Path() }
func (r ReadonlyList) Len() int            { return r.l.Len() }
func (r ReadonlyList) Get() any            { return r.l.Get() }

func (r ReadonlyList) SafeGet() (any, error) { return r.l.SafeGet() }

func (r ReadonlyList) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// ReadonlyText is the read-only view of a TextLens. Unlike the writable
// lens it does not expose the container handle - Get returns a string
// snapshot, so holders genuinely cannot edit.
type ReadonlyText struct{ l TextLens }

func (r ReadonlyText) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyText) Path() string        { return r.l.Path() }
func (r ReadonlyText) Len() int            { return r.l.t.Len() }
func (r ReadonlyText) String() string      { return r.l.String() }
func (r ReadonlyText) Get() any            { return r.l.String() }

func (r ReadonlyText) SafeGet() (any, error) { return r.l.String(), nil }

func (r ReadonlyText) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// ReadonlyNodeList is the read-only view of a NodeListLens: identity
// resolution and reactive views without the structural operations.
type ReadonlyNodeList struct{ l NodeListLens }

func (r ReadonlyNodeList) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyNodeList) Path() string        { return r.l.Path() }
func (r ReadonlyNodeList) Len() int            { return r.l.Len() }
func (r ReadonlyNodeList) Get() any            { return r.l.Get() }

func (r ReadonlyNodeList) SafeGet() (any, error) { return r.l.SafeGet() }

func (r ReadonlyNodeList) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// At returns the read-only element view at index i.
func (r ReadonlyNodeList) At(i int) (ReadonlyStruct, error) {
	el, err := r.l.At(i)
	if err != nil {
		return ReadonlyStruct{}, err
	}
	return ReadonlyStruct{el}, nil
}

// Find resolves an identity to a read-only element view.
func (r ReadonlyNodeList) Find(id NodeID) (ReadonlyStruct, error) {
	el, err := r.l.Find(id)
	if err != nil {
		return ReadonlyStruct{}, err
	}
	return ReadonlyStruct{el}, nil
}

// Nodes returns a read-only snapshot of every present element.
func (r ReadonlyNodeList) Nodes() map[NodeID]ReadonlyStruct {
	nodes := r.l.Nodes()
	out := make(map[NodeID]ReadonlyStruct, len(nodes))
	for id, el := range nodes {
		out[id] = ReadonlyStruct{el}
	}
	return out
}

// IDs returns the shallow identity-set view.
func (r ReadonlyNodeList) IDs() *reactive.Value[[]NodeID] { return r.l.IDs() }

// NodeView returns the detach-tolerant per-element view.
func (r ReadonlyNodeList) NodeView(id NodeID) *reactive.Value[any] { return r.l.NodeView(id) }

// ReadonlyValue is the read-only view of a primitive slot.
type ReadonlyValue struct{ l ValueLens }

func (r ReadonlyValue) Schema() schema.Node { return r.l.Schema() }
func (r ReadonlyValue) Path() string        { return r.l.Path() }
func (r ReadonlyValue) Get() any            { return r.l.Get() }

func (r ReadonlyValue) SafeGet() (any, error) { return r.l.SafeGet() }

func (r ReadonlyValue) Subscribe() *reactive.Value[any] { return r.l.Subscribe() }

// requireMaterialized rejects read-only focus into a structural slot that
// has no container yet.
func requireMaterialized(d *Document, m interface{ Has(string) bool }, key string, node schema.Node, path string) error {
	class, err := schema.Classify(node)
	if err != nil {
		return unsupportedSchemaError(path, err)
	}
	if class.Structural() && !m.Has(key) {
		return &Error{Code: ErrCodeNodeNotFound, Path: path, Message: "container not materialized"}
	}
	return nil
}
