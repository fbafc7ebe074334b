package loupe

import (
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// readValue reconstructs a plain value from a container slot, trusting the
// stored data: nested structs and maps recurse, lists map their elements,
// text slots yield the container handle itself, primitives pass through
// raw. Values that do not match the schema's container shape are returned
// as-is rather than rejected - SafeGet layers validation on top.
func readValue(node schema.Node, raw any) any {
	class, err := schema.Classify(node)
	if err != nil {
		return raw
	}
	switch class {
	case schema.ClassPrimitive, schema.ClassText:
		return raw
	case schema.ClassStruct:
		m, ok := raw.(*shared.Map)
		if !ok {
			return raw
		}
		return readStruct(schema.Underlying(node).(*schema.Object), m)
	case schema.ClassMap:
		m, ok := raw.(*shared.Map)
		if !ok {
			return raw
		}
		rest := schema.Underlying(node).(*schema.Object).Rest
		out := make(map[string]any, m.Len())
		m.ForEach(func(k string, v any) {
			out[k] = readValue(rest, v)
		})
		return out
	case schema.ClassList:
		l, ok := raw.(*shared.List)
		if !ok {
			return raw
		}
		elem := schema.Underlying(node).(*schema.List).Elem
		out := make([]any, 0, l.Len())
		for _, v := range l.Slice() {
			out = append(out, readValue(elem, v))
		}
		return out
	case schema.ClassNodeList:
		l, ok := raw.(*shared.List)
		if !ok {
			return raw
		}
		elem := schema.Underlying(node).(*schema.NodeList).Elem
		out := make([]any, 0, l.Len())
		for _, v := range l.Slice() {
			if m, ok := v.(*shared.Map); ok {
				out = append(out, readNodeElement(elem, m))
			} else {
				out = append(out, v)
			}
		}
		return out
	}
	return raw
}

// readStruct reconstructs a record: every field present in the container
// is read through its own classification. Freshly built documents have
// all structural fields present and all primitive fields absent.
func readStruct(obj *schema.Object, m *shared.Map) map[string]any {
	out := make(map[string]any)
	fixed := make(map[string]bool, len(obj.Fields))
	for _, f := range obj.Fields {
		fixed[f.Name] = true
		if raw, ok := m.Get(f.Name); ok {
			out[f.Name] = readValue(f.Schema, raw)
		}
	}
	if obj.Rest != nil {
		m.ForEach(func(k string, v any) {
			if !fixed[k] {
				out[k] = readValue(obj.Rest, v)
			}
		})
	}
	return out
}

// readNodeElement reads a node-list element, stripping the reserved
// identity field: the identity is an addressing detail, not part of the
// declared element schema.
func readNodeElement(elem *schema.Object, m *shared.Map) map[string]any {
	out := readStruct(elem, m)
	delete(out, schema.NodeIDField)
	return out
}
