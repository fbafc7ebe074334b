// Package cueschema compiles CUE definitions into loupe schema trees, so
// document schemas can live in .cue files instead of Go constructors.
//
// The mapping:
//   - structs            -> struct schemas (fixed fields)
//   - {[string]: T}      -> keyed-map schemas (pattern constraint as rest)
//   - [...T]             -> ordered-list schemas
//   - string/number/bool -> primitives; concrete values become literals
//   - a | b | c          -> unions
//
// Two field attributes mark the special containers:
//
//	body:  string  @loupe(text)   // collaborative text
//	tasks: [...#T] @loupe(nodes)  // ordered node list
package cueschema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/loupelabs/loupe/schema"
)

// attrName is the field attribute carrying container markers.
const attrName = "loupe"

// Compile parses a CUE value into a schema node tree. Uses the CUE SDK's
// Go API directly (not a CLI subprocess).
func Compile(v cue.Value) (schema.Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileValue(v, "")
}

// CompileString compiles CUE source text. The root of the source must
// evaluate to a struct.
func CompileString(src string) (schema.Node, error) {
	ctx := cuecontext.New()
	return Compile(ctx.CompileString(src))
}

// CompileFile compiles the CUE file at path.
func CompileFile(path string) (schema.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return CompileString(string(src))
}

func compileValue(v cue.Value, path string) (schema.Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Container markers take priority over shape analysis.
	if marker, ok := attrMarker(v); ok {
		switch marker {
		case "text":
			return schema.NewText(), nil
		case "nodes":
			return compileNodeList(v, path)
		default:
			return nil, &CompileError{
				Path:    path,
				Message: fmt.Sprintf("unknown @%s marker %q", attrName, marker),
				Pos:     v.Pos(),
			}
		}
	}

	// Disjunctions compile to unions; classification decides later
	// whether the union is acceptable.
	if op, args := v.Expr(); op == cue.OrOp && len(args) > 1 {
		variants := make([]schema.Node, 0, len(args))
		for i, arg := range args {
			variant, err := compileValue(arg, fmt.Sprintf("%s|%d", path, i))
			if err != nil {
				return nil, err
			}
			variants = append(variants, variant)
		}
		return schema.NewOneOf(variants...), nil
	}

	switch v.IncompleteKind() {
	case cue.StructKind:
		return compileStruct(v, path)
	case cue.ListKind:
		return compileList(v, path)
	case cue.StringKind:
		if v.IsConcrete() {
			s, err := v.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return schema.Literal(s), nil
		}
		return schema.String(), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		if v.IsConcrete() {
			f, err := v.Float64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return schema.Literal(f), nil
		}
		return schema.Number(), nil
	case cue.BoolKind:
		if v.IsConcrete() {
			b, err := v.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return schema.Literal(b), nil
		}
		return schema.Bool(), nil
	case cue.TopKind:
		return schema.Any(), nil
	default:
		return nil, &CompileError{
			Path:    path,
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// compileStruct maps fixed fields and, when present, the [string]: T
// pattern constraint as the dynamic rest schema.
func compileStruct(v cue.Value, path string) (schema.Node, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	var fields []schema.Field
	for iter.Next() {
		name := iter.Label()
		fieldPath := joinPath(path, name)
		fs, err := compileValue(iter.Value(), fieldPath)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field{Name: name, Schema: fs})
	}

	var rest schema.Node
	if pattern := v.LookupPath(cue.MakePath(cue.AnyString)); pattern.Exists() {
		rest, err = compileValue(pattern, joinPath(path, "[string]"))
		if err != nil {
			return nil, err
		}
	}

	obj := schema.NewObject(fields...)
	if rest != nil {
		obj = obj.WithRest(rest)
	}
	return obj, nil
}

func compileList(v cue.Value, path string) (schema.Node, error) {
	elem, err := listElem(v, path)
	if err != nil {
		return nil, err
	}
	return schema.NewList(elem), nil
}

// compileNodeList handles the @loupe(nodes) marker: the field must be a
// list of structs.
func compileNodeList(v cue.Value, path string) (schema.Node, error) {
	if v.IncompleteKind() != cue.ListKind {
		return nil, &CompileError{
			Path:    path,
			Message: fmt.Sprintf("@%s(nodes) requires a list type, got %v", attrName, v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	elem, err := listElem(v, path)
	if err != nil {
		return nil, err
	}
	obj, ok := schema.Underlying(elem).(*schema.Object)
	if !ok {
		return nil, &CompileError{
			Path:    path,
			Message: fmt.Sprintf("@%s(nodes) requires struct elements", attrName),
			Pos:     v.Pos(),
		}
	}
	return schema.NewNodeList(obj), nil
}

// listElem extracts the element schema of an open list ([...T]).
func listElem(v cue.Value, path string) (schema.Node, error) {
	pattern := v.LookupPath(cue.MakePath(cue.AnyIndex))
	if !pattern.Exists() {
		return nil, &CompileError{
			Path:    path,
			Message: "list must be open ([...T]) so the element schema is known",
			Pos:     v.Pos(),
		}
	}
	return compileValue(pattern, joinPath(path, "[]"))
}

// attrMarker reads the first argument of the field's @loupe attribute.
func attrMarker(v cue.Value) (string, bool) {
	a := v.Attribute(attrName)
	if a.Err() != nil {
		return "", false
	}
	marker, err := a.String(0)
	if err != nil {
		return "", false
	}
	return marker, true
}

func joinPath(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Path, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Path:    "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
