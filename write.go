package loupe

import (
	"fmt"

	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// The write functions receive values that already passed schema.Decode;
// remaining failures are structural (union rejection inside lazily-built
// regions) and surface as *Error.

// writeStruct performs a structural write of a decoded record into m:
// primitives are set inline, nested struct containers are written into
// field-by-field with their identity preserved, lists and maps are fully
// replaced, text fields are never touched. Dynamic rest keys follow
// keyed-map semantics: stale ones are removed, the rest rewritten.
func writeStruct(d *Document, obj *schema.Object, m *shared.Map, val map[string]any, path string) error {
	for _, f := range obj.Fields {
		fpath := childPath(path, f.Name)
		class, err := schema.Classify(f.Schema)
		if err != nil {
			return unsupportedSchemaError(fpath, err)
		}
		if class == schema.ClassText {
			// Text is mutated only through its own container operations;
			// a text value in the record is dropped, not an error.
			continue
		}
		v, ok := val[f.Name]
		if !ok {
			continue
		}
		switch class {
		case schema.ClassPrimitive:
			m.Set(f.Name, v)
		case schema.ClassStruct:
			child, err := structContainer(m, f.Name, fpath)
			if err != nil {
				return err
			}
			nested := schema.Underlying(f.Schema).(*schema.Object)
			if err := buildStruct(child, nested, fpath); err != nil {
				return err
			}
			if err := writeStruct(d, nested, child, v.(map[string]any), fpath); err != nil {
				return err
			}
		case schema.ClassMap:
			child, err := mapContainer(m, f.Name, fpath)
			if err != nil {
				return err
			}
			rest := schema.Underlying(f.Schema).(*schema.Object).Rest
			if err := writeMapContents(d, rest, child, v.(map[string]any), fpath); err != nil {
				return err
			}
		case schema.ClassList:
			child, err := listContainer(m, f.Name, fpath)
			if err != nil {
				return err
			}
			elem := schema.Underlying(f.Schema).(*schema.List).Elem
			if err := writeListContents(d, elem, child, v.([]any), fpath); err != nil {
				return err
			}
		case schema.ClassNodeList:
			child, err := listContainer(m, f.Name, fpath)
			if err != nil {
				return err
			}
			nl := schema.Underlying(f.Schema).(*schema.NodeList)
			if err := writeNodeListContents(d, nl, child, v.([]any), fpath); err != nil {
				return err
			}
		}
	}
	if obj.Rest != nil {
		return writeRestKeys(d, obj, m, val, path)
	}
	return nil
}

// writeRestKeys applies keyed-map semantics to the dynamic keys of a mixed
// struct: container keys outside the fixed fields and the input are
// removed, input keys are rewritten with fresh containers.
func writeRestKeys(d *Document, obj *schema.Object, m *shared.Map, val map[string]any, path string) error {
	fixed := make(map[string]bool, len(obj.Fields))
	for _, f := range obj.Fields {
		fixed[f.Name] = true
	}
	for _, k := range m.Keys() {
		if fixed[k] {
			continue
		}
		if _, ok := val[k]; !ok {
			m.Delete(k)
		}
	}
	for k, v := range val {
		if fixed[k] {
			continue
		}
		mv, err := materializeValue(d, obj.Rest, v, childPath(path, k))
		if err != nil {
			return err
		}
		m.Set(k, mv)
	}
	return nil
}

// writeMapContents clears every existing entry, then rewrites each key of
// the input with a freshly created container per structural value.
func writeMapContents(d *Document, rest schema.Node, m *shared.Map, val map[string]any, path string) error {
	m.Clear()
	for k, v := range val {
		mv, err := materializeValue(d, rest, v, childPath(path, k))
		if err != nil {
			return err
		}
		m.Set(k, mv)
	}
	return nil
}

// writeListContents replaces the whole sequence: clear, then append every
// element, creating a fresh container per structural element.
func writeListContents(d *Document, elem schema.Node, l *shared.List, items []any, path string) error {
	l.Clear()
	for i, v := range items {
		mv, err := materializeValue(d, elem, v, indexPath(path, i))
		if err != nil {
			return err
		}
		l.Push(mv)
	}
	return nil
}

// writeNodeListContents replaces the whole node list. Every element gets a
// newly generated identity; whole-list writes never preserve identities.
func writeNodeListContents(d *Document, nl *schema.NodeList, l *shared.List, items []any, path string) error {
	l.Clear()
	for i, v := range items {
		elem, _, err := newNodeContainer(d, nl.Elem, v.(map[string]any), indexPath(path, i))
		if err != nil {
			return err
		}
		l.Push(elem)
	}
	return nil
}

// materializeValue turns a decoded value into what the parent slot stores:
// the value itself for primitives, or a freshly created container for
// structural classes. New struct containers are eagerly pre-populated the
// same way the tree builder does it.
func materializeValue(d *Document, node schema.Node, v any, path string) (any, error) {
	class, err := schema.Classify(node)
	if err != nil {
		return nil, unsupportedSchemaError(path, err)
	}
	switch class {
	case schema.ClassPrimitive:
		return v, nil
	case schema.ClassText:
		// A fresh text position starts empty regardless of the input;
		// content arrives only through text operations.
		return shared.NewText(), nil
	case schema.ClassStruct:
		obj := schema.Underlying(node).(*schema.Object)
		m := shared.NewMap()
		if err := buildStruct(m, obj, path); err != nil {
			return nil, err
		}
		if err := writeStruct(d, obj, m, v.(map[string]any), path); err != nil {
			return nil, err
		}
		return m, nil
	case schema.ClassMap:
		rest := schema.Underlying(node).(*schema.Object).Rest
		m := shared.NewMap()
		if err := writeMapContents(d, rest, m, v.(map[string]any), path); err != nil {
			return nil, err
		}
		return m, nil
	case schema.ClassList:
		elem := schema.Underlying(node).(*schema.List).Elem
		l := shared.NewList()
		if err := writeListContents(d, elem, l, v.([]any), path); err != nil {
			return nil, err
		}
		return l, nil
	case schema.ClassNodeList:
		nl := schema.Underlying(node).(*schema.NodeList)
		l := shared.NewList()
		if err := writeNodeListContents(d, nl, l, v.([]any), path); err != nil {
			return nil, err
		}
		return l, nil
	}
	return v, nil
}

// newNodeContainer builds a node-list element: an eagerly pre-populated
// struct container carrying a freshly generated identity in the reserved
// field. The identity is assigned exactly once, here.
func newNodeContainer(d *Document, elem *schema.Object, val map[string]any, path string) (*shared.Map, NodeID, error) {
	m := shared.NewMap()
	if err := buildStruct(m, elem, path); err != nil {
		return nil, "", err
	}
	if err := writeStruct(d, elem, m, val, path); err != nil {
		return nil, "", err
	}
	id := d.gen.NewID()
	m.Set(schema.NodeIDField, string(id))
	return m, id, nil
}

// mapContainer returns the map container at key, creating it when absent.
func mapContainer(m *shared.Map, key, path string) (*shared.Map, error) {
	return structContainer(m, key, path)
}

// listContainer returns the list container at key, creating it when
// absent.
func listContainer(m *shared.Map, key, path string) (*shared.List, error) {
	v, ok := m.Get(key)
	if !ok {
		child := shared.NewList()
		m.Set(key, child)
		return child, nil
	}
	child, ok := v.(*shared.List)
	if !ok {
		return nil, misuseError(path, "slot holds %T, expected a list container", v)
	}
	return child, nil
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
