package schema

import (
	"errors"
	"fmt"
)

// Class is the closed set of container classes a schema position can
// occupy. The tree builder materializes one shared container kind per
// class, and the lens hierarchy binds one lens kind per class; both consult
// the same classification, so the mapping is computed once and cached.
type Class int

const (
	// ClassPrimitive positions hold leaf values stored inline in the
	// parent container.
	ClassPrimitive Class = iota

	// ClassStruct positions are map containers with fixed named fields.
	ClassStruct

	// ClassMap positions are map containers with dynamic string keys and a
	// homogeneous value schema.
	ClassMap

	// ClassList positions are array containers with a fixed element schema.
	ClassList

	// ClassText positions are collaborative text containers.
	ClassText

	// ClassNodeList positions are array containers of struct elements, each
	// carrying a generated stable identity.
	ClassNodeList
)

func (c Class) String() string {
	switch c {
	case ClassPrimitive:
		return "primitive"
	case ClassStruct:
		return "struct"
	case ClassMap:
		return "map"
	case ClassList:
		return "list"
	case ClassText:
		return "text"
	case ClassNodeList:
		return "node-list"
	}
	return "unknown"
}

// Structural reports whether the class is backed by its own shared
// container (everything except primitive).
func (c Class) Structural() bool { return c != ClassPrimitive }

// UnsupportedUnionError reports a union of two or more structural variants.
// Such schemas are rejected outright: concurrent replicas changing the
// shape of one value have no defined merge, so the container kind must
// never depend on runtime data.
type UnsupportedUnionError struct {
	// Tag is the shared literal-valued discriminator field, when the
	// variants carry one.
	Tag string

	// Variants is the number of structural alternatives in the union.
	Variants int
}

func (e *UnsupportedUnionError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("unsupported schema: discriminated union of %d structural variants (tag %q)", e.Variants, e.Tag)
	}
	return fmt.Sprintf("unsupported schema: union of %d structural variants", e.Variants)
}

// IsUnsupportedUnion returns true if err is a structural-union rejection.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedUnion(err error) bool {
	var ue *UnsupportedUnionError
	return errors.As(err, &ue)
}

// Classify returns the container class for n, rejecting structural unions.
// The result is cached on the node; repeated calls are O(1).
func Classify(n Node) (Class, error) {
	m := n.memo()
	m.once.Do(func() { m.class, m.err = classify(n) })
	return m.class, m.err
}

func classify(n Node) (Class, error) {
	switch s := n.(type) {
	case *Text:
		return ClassText, nil
	case *NodeList:
		return ClassNodeList, nil
	case *Object:
		if len(s.Fields) > 0 {
			// Fixed members win over a dynamic rest schema.
			return ClassStruct, nil
		}
		if s.Rest != nil {
			return ClassMap, nil
		}
		return ClassStruct, nil
	case *List:
		return ClassList, nil
	case *Primitive:
		return ClassPrimitive, nil
	case *OneOf:
		return classifyUnion(s)
	case *Refine:
		return Classify(s.Inner)
	case *Transform:
		return Classify(s.Inner)
	case *Lazy:
		return Classify(s.Node())
	}
	return ClassPrimitive, fmt.Errorf("unknown schema node %T", n)
}

// classifyUnion accepts unions of primitive/literal variants (a plain leaf
// choice) and rejects anything with two or more structural alternatives.
func classifyUnion(u *OneOf) (Class, error) {
	structural := 0
	tag := ""
	var objects []*Object
	for _, v := range u.Variants {
		c, err := Classify(v)
		if err != nil {
			return 0, err
		}
		if c.Structural() {
			structural++
			if obj, ok := Underlying(v).(*Object); ok {
				objects = append(objects, obj)
			}
		}
	}
	if structural >= 2 {
		tag = sharedLiteralTag(objects)
		return 0, &UnsupportedUnionError{Tag: tag, Variants: structural}
	}
	// Zero or one structural variant: the union is a leaf choice, stored
	// inline. With a single structural variant no shape conflict between
	// replicas is possible, so it is not rejected.
	return ClassPrimitive, nil
}

// sharedLiteralTag finds a field name present in every object variant with
// a literal-valued schema, for the error message only.
func sharedLiteralTag(objects []*Object) string {
	if len(objects) < 2 {
		return ""
	}
	for _, f := range objects[0].Fields {
		if !isLiteralField(f.Schema) {
			continue
		}
		shared := true
		for _, o := range objects[1:] {
			s, ok := o.FieldSchema(f.Name)
			if !ok || !isLiteralField(s) {
				shared = false
				break
			}
		}
		if shared {
			return f.Name
		}
	}
	return ""
}

func isLiteralField(n Node) bool {
	p, ok := Underlying(n).(*Primitive)
	return ok && p.Type == PrimLiteral
}
