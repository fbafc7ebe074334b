package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Issue codes reported by Decode.
const (
	CodeInvalidType    = "INVALID_TYPE"
	CodeInvalidLiteral = "INVALID_LITERAL"
	CodeMissingField   = "MISSING_FIELD"
	CodeUnknownField   = "UNKNOWN_FIELD"
	CodeNoVariant      = "NO_VARIANT"
	CodeRefineFailed   = "REFINE_FAILED"
	CodeTransformError = "TRANSFORM_ERROR"
)

// Issue is one decode problem at one position of the input value.
type Issue struct {
	// Path is the dotted position in the input ("position.x", "tags[1]").
	// Empty for the root value.
	Path string `json:"path"`

	// Code identifies the problem category.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s at %s: %s", i.Code, i.Path, i.Message)
}

// DecodeError is the structured failure returned by Decode. It collects
// every issue found rather than stopping at the first.
type DecodeError struct {
	Issues []Issue
}

func (e *DecodeError) Error() string {
	if len(e.Issues) == 1 {
		return "decode failed: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("decode failed (%d issues): %s", len(e.Issues), strings.Join(parts, "; "))
}

// IsDecodeError returns true if err is a validation failure from Decode.
// Uses errors.As to handle wrapped errors.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decode validates v against n and returns the normalized value: integer
// numbers widened to float64, transforms applied, refinements checked.
// Text positions accept any input unchanged - writes ignore them anyway,
// so rejecting them would only break whole-record round trips.
//
// On failure the returned error is always a *DecodeError.
func Decode(n Node, v any) (any, error) {
	d := &decoder{}
	out := d.decode(n, v, "")
	if len(d.issues) > 0 {
		return nil, &DecodeError{Issues: d.issues}
	}
	return out, nil
}

type decoder struct {
	issues []Issue
}

func (d *decoder) fail(path, code, format string, args ...any) any {
	d.issues = append(d.issues, Issue{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
	return nil
}

func (d *decoder) decode(n Node, v any, path string) any {
	switch s := n.(type) {
	case *Primitive:
		return d.decodePrimitive(s, v, path)
	case *Object:
		return d.decodeObject(s, v, path, false)
	case *List:
		return d.decodeList(s.Elem, v, path)
	case *Text:
		return v
	case *NodeList:
		return d.decodeNodeList(s, v, path)
	case *OneOf:
		return d.decodeUnion(s, v, path)
	case *Refine:
		out := d.decode(s.Inner, v, path)
		if len(d.issues) > 0 {
			return nil
		}
		if err := s.Check(out); err != nil {
			return d.fail(path, CodeRefineFailed, "%s: %v", s.Name, err)
		}
		return out
	case *Transform:
		out := d.decode(s.Inner, v, path)
		if len(d.issues) > 0 {
			return nil
		}
		applied, err := s.Apply(out)
		if err != nil {
			return d.fail(path, CodeTransformError, "%v", err)
		}
		return applied
	case *Lazy:
		return d.decode(s.Node(), v, path)
	}
	return d.fail(path, CodeInvalidType, "unknown schema node %T", n)
}

func (d *decoder) decodePrimitive(p *Primitive, v any, path string) any {
	switch p.Type {
	case PrimAny:
		return v
	case PrimString:
		if s, ok := v.(string); ok {
			return s
		}
		return d.fail(path, CodeInvalidType, "expected string, got %T", v)
	case PrimBool:
		if b, ok := v.(bool); ok {
			return b
		}
		return d.fail(path, CodeInvalidType, "expected bool, got %T", v)
	case PrimNumber:
		if f, ok := asFloat(v); ok {
			return f
		}
		return d.fail(path, CodeInvalidType, "expected number, got %T", v)
	case PrimLiteral:
		if literalEqual(p.Literal, v) {
			return normalizeLiteral(v)
		}
		return d.fail(path, CodeInvalidLiteral, "expected %v, got %v", p.Literal, v)
	}
	return d.fail(path, CodeInvalidType, "unknown primitive type %v", p.Type)
}

// decodeObject validates fixed fields and, when a rest schema is present,
// the remaining dynamic keys. allowNodeID admits the reserved node-identity
// key that node-list elements carry internally.
func (d *decoder) decodeObject(o *Object, v any, path string, allowNodeID bool) any {
	m, ok := v.(map[string]any)
	if !ok {
		return d.fail(path, CodeInvalidType, "expected object, got %T", v)
	}
	out := make(map[string]any, len(m))
	seen := make(map[string]bool, len(o.Fields))
	for _, f := range o.Fields {
		seen[f.Name] = true
		fv, present := m[f.Name]
		if !present {
			// Text fields are mutated only through their container, so
			// their absence from a whole-record value is normal.
			if c, err := Classify(f.Schema); err == nil && c == ClassText {
				continue
			}
			d.fail(childPath(path, f.Name), CodeMissingField, "required field missing")
			continue
		}
		out[f.Name] = d.decode(f.Schema, fv, childPath(path, f.Name))
	}
	for k, kv := range m {
		if seen[k] {
			continue
		}
		if allowNodeID && k == NodeIDField {
			continue
		}
		if o.Rest == nil {
			d.fail(childPath(path, k), CodeUnknownField, "field not in schema")
			continue
		}
		out[k] = d.decode(o.Rest, kv, childPath(path, k))
	}
	return out
}

func (d *decoder) decodeList(elem Node, v any, path string) any {
	items, ok := v.([]any)
	if !ok {
		return d.fail(path, CodeInvalidType, "expected array, got %T", v)
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = d.decode(elem, it, indexPath(path, i))
	}
	return out
}

func (d *decoder) decodeNodeList(nl *NodeList, v any, path string) any {
	items, ok := v.([]any)
	if !ok {
		return d.fail(path, CodeInvalidType, "expected array, got %T", v)
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = d.decodeObject(nl.Elem, it, indexPath(path, i), true)
	}
	return out
}

// decodeUnion tries each variant in order; the first one that decodes
// cleanly wins. Issues from failed attempts are discarded.
func (d *decoder) decodeUnion(u *OneOf, v any, path string) any {
	for _, variant := range u.Variants {
		sub := &decoder{}
		out := sub.decode(variant, v, path)
		if len(sub.issues) == 0 {
			return out
		}
	}
	return d.fail(path, CodeNoVariant, "value matches none of %d variants", len(u.Variants))
}

// NodeIDField is the reserved map key holding an ordered-node-list
// element's generated identity. It is an addressing detail: whole-list
// reads strip it, and decode ignores it inside node-list elements.
const NodeIDField = "$id"

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// literalEqual compares a literal schema value with an input, treating all
// numeric representations as equal when their widened values match.
func literalEqual(want, got any) bool {
	wf, wok := asFloat(want)
	gf, gok := asFloat(got)
	if wok && gok {
		return wf == gf
	}
	return reflect.DeepEqual(want, got)
}

// normalizeLiteral widens numeric literals so decoded output is uniformly
// float64 like every other number.
func normalizeLiteral(v any) any {
	if f, ok := asFloat(v); ok {
		return f
	}
	return v
}
