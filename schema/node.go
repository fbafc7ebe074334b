package schema

import "sync"

// Node is a sealed interface representing one position in a structural
// schema. Only the types in this package implement it.
//
// All variants are used by pointer and must not be mutated after
// construction: lenses and the tree builder hold references to them for the
// lifetime of a document.
type Node interface {
	memo() *classMemo // Sealed - doubles as the per-node classification cache
}

// classMemo caches the result of classification so the shape analysis runs
// at most once per node.
type classMemo struct {
	once  sync.Once
	class Class
	err   error
}

func (m *classMemo) memo() *classMemo { return m }

// PrimType identifies the primitive value family a Primitive node accepts.
type PrimType int

const (
	// PrimString accepts string values.
	PrimString PrimType = iota

	// PrimNumber accepts numeric values; integers are widened to float64.
	PrimNumber

	// PrimBool accepts boolean values.
	PrimBool

	// PrimLiteral accepts exactly one value, held in Primitive.Literal.
	PrimLiteral

	// PrimAny accepts any value as-is.
	PrimAny
)

func (t PrimType) String() string {
	switch t {
	case PrimString:
		return "string"
	case PrimNumber:
		return "number"
	case PrimBool:
		return "bool"
	case PrimLiteral:
		return "literal"
	case PrimAny:
		return "any"
	}
	return "unknown"
}

// Primitive is a leaf value schema. Primitive positions are stored inline
// in their parent container; the tree builder never creates a container
// for them.
type Primitive struct {
	classMemo

	Type PrimType

	// Literal holds the single accepted value when Type is PrimLiteral.
	Literal any
}

// String returns a schema accepting string values.
func String() *Primitive { return &Primitive{Type: PrimString} }

// Number returns a schema accepting numeric values.
func Number() *Primitive { return &Primitive{Type: PrimNumber} }

// Bool returns a schema accepting boolean values.
func Bool() *Primitive { return &Primitive{Type: PrimBool} }

// Literal returns a schema accepting exactly v.
func Literal(v any) *Primitive { return &Primitive{Type: PrimLiteral, Literal: v} }

// Any returns a schema accepting any value unchecked.
func Any() *Primitive { return &Primitive{Type: PrimAny} }

// Field is one fixed named member of an Object.
type Field struct {
	Name   string
	Schema Node
}

// Object describes a structural position with fixed named fields, a
// dynamic string-keyed rest schema, or both.
//
// An Object with at least one fixed field classifies as struct (fixed
// members win even when Rest is set - a deliberate simplification, not a
// rejection). An Object with no fixed fields and a Rest schema classifies
// as keyed-map. An empty Object is a struct with no fields.
type Object struct {
	classMemo

	Fields []Field
	Rest   Node
}

// NewObject returns an Object schema with the given fixed fields.
func NewObject(fields ...Field) *Object {
	return &Object{Fields: fields}
}

// NewStringMap returns an Object schema with no fixed fields and value
// schemas for arbitrary string keys; it classifies as keyed-map.
func NewStringMap(value Node) *Object {
	return &Object{Rest: value}
}

// WithRest returns a copy of o that additionally accepts arbitrary string
// keys decoding against value.
func (o *Object) WithRest(value Node) *Object {
	return &Object{Fields: o.Fields, Rest: value}
}

// FieldSchema returns the schema for the named fixed field.
func (o *Object) FieldSchema(name string) (Node, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return nil, false
}

// List describes a fixed-schema ordered sequence; it classifies as
// ordered-list (plain variant).
type List struct {
	classMemo

	Elem Node
}

// NewList returns an ordered-list schema with the given element schema.
func NewList(elem Node) *List { return &List{Elem: elem} }

// Text marks a collaborative text position. Text positions are backed by a
// dedicated text container and are mutated only through that container's
// insert/delete operations, never by whole-value replacement.
type Text struct {
	classMemo
}

// NewText returns a collaborative-text schema.
func NewText() *Text { return &Text{} }

// NodeList marks an ordered list whose elements are struct containers, each
// carrying a generated stable identity. Elem must classify as struct.
type NodeList struct {
	classMemo

	Elem *Object
}

// NewNodeList returns an ordered-node-list schema over elem.
func NewNodeList(elem *Object) *NodeList { return &NodeList{Elem: elem} }

// OneOf describes a union of alternatives. Unions whose variants are all
// primitive or literal classify as primitive; unions with two or more
// structural variants are rejected by Classify.
type OneOf struct {
	classMemo

	Variants []Node
}

// NewOneOf returns a union schema over the given variants.
func NewOneOf(variants ...Node) *OneOf { return &OneOf{Variants: variants} }

// Refine wraps an inner schema with an extra predicate applied after the
// inner decode succeeds. Classification ignores the wrapper.
type Refine struct {
	classMemo

	Inner Node

	// Name labels the refinement in decode issues.
	Name string

	Check func(v any) error
}

// NewRefine returns inner constrained by check.
func NewRefine(inner Node, name string, check func(v any) error) *Refine {
	return &Refine{Inner: inner, Name: name, Check: check}
}

// Transform wraps an inner schema with a conversion applied to the decoded
// value. Classification ignores the wrapper.
type Transform struct {
	classMemo

	Inner Node
	Apply func(v any) (any, error)
}

// NewTransform returns inner with apply run on every decoded value.
func NewTransform(inner Node, apply func(v any) (any, error)) *Transform {
	return &Transform{Inner: inner, Apply: apply}
}

// Lazy defers schema construction until first use, enabling recursive
// references. The resolver runs at most once.
type Lazy struct {
	classMemo

	resolve func() Node
	once    sync.Once
	inner   Node
}

// NewLazy returns a schema resolved on first classification or decode.
func NewLazy(resolve func() Node) *Lazy { return &Lazy{resolve: resolve} }

// Node returns the resolved inner schema.
func (l *Lazy) Node() Node {
	l.once.Do(func() { l.inner = l.resolve() })
	return l.inner
}

// Underlying unwraps Refine, Transform and Lazy wrappers until it reaches a
// structural or primitive node. Lenses use it to reach the Object/List/etc.
// shape after classification has picked the container kind.
func Underlying(n Node) Node {
	for {
		switch w := n.(type) {
		case *Refine:
			n = w.Inner
		case *Transform:
			n = w.Inner
		case *Lazy:
			n = w.Node()
		default:
			return n
		}
	}
}
