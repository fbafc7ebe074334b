package loupe

import (
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// buildStruct materializes the containers for every structural field of
// obj into m, recursing into nested structs so the whole struct region is
// navigable immediately. Map and list containers are created empty; their
// contents are lazy. Primitive fields get no slot until first write.
//
// Existing slots are left untouched, which makes re-building against an
// already-populated map (the bind path) idempotent.
func buildStruct(m *shared.Map, obj *schema.Object, path string) error {
	for _, f := range obj.Fields {
		fpath := childPath(path, f.Name)
		class, err := schema.Classify(f.Schema)
		if err != nil {
			return unsupportedSchemaError(fpath, err)
		}
		switch class {
		case schema.ClassPrimitive:
			// Stored inline in m on first set.
		case schema.ClassText:
			if !m.Has(f.Name) {
				m.Set(f.Name, shared.NewText())
			}
		case schema.ClassMap:
			if !m.Has(f.Name) {
				m.Set(f.Name, shared.NewMap())
			}
		case schema.ClassList, schema.ClassNodeList:
			if !m.Has(f.Name) {
				m.Set(f.Name, shared.NewList())
			}
		case schema.ClassStruct:
			child, err := structContainer(m, f.Name, fpath)
			if err != nil {
				return err
			}
			nested := schema.Underlying(f.Schema).(*schema.Object)
			if err := buildStruct(child, nested, fpath); err != nil {
				return err
			}
		}
	}
	return nil
}

// structContainer returns the map container at key, creating it when the
// slot is empty.
func structContainer(m *shared.Map, key, path string) (*shared.Map, error) {
	v, ok := m.Get(key)
	if !ok {
		child := shared.NewMap()
		m.Set(key, child)
		return child, nil
	}
	child, ok := v.(*shared.Map)
	if !ok {
		return nil, misuseError(path, "slot holds %T, expected a map container", v)
	}
	return child, nil
}
