package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Snapshot markers distinguishing container kinds from inline values in
// the encoded form.
const (
	textMarker   = "~text"
	inlineMarker = "~any"
)

// Snapshot encodes the document's container tree as canonical JSON:
// object keys sorted by UTF-16 code units, strings NFC normalized, no HTML
// escaping. Equal documents always produce identical bytes, so snapshots
// are usable as golden-test material and as docstore rows.
//
// Text containers encode as {"~text": "..."}; composite values stored
// inline at primitive positions encode as {"~any": ...} so Apply can tell
// them apart from map containers.
func Snapshot(d *Doc) ([]byte, error) {
	names := d.RootNames()
	sort.Strings(names)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeString(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		root, err := encodeValue(d.roots[name])
		if err != nil {
			return nil, err
		}
		buf.Write(root)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Apply rebuilds the container tree from a Snapshot into d, replacing the
// contents of every root named in the snapshot. The whole rebuild commits
// as one batch.
func Apply(d *Doc, data []byte) error {
	var roots map[string]any
	if err := json.Unmarshal(data, &roots); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return d.Transact(func() error {
		names := make([]string, 0, len(roots))
		for name := range roots {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			obj, ok := roots[name].(map[string]any)
			if ok && isMarker(obj) {
				return fmt.Errorf("snapshot root %q is not a map container", name)
			}
			if !ok {
				return fmt.Errorf("snapshot root %q is not a map container", name)
			}
			root := d.GetMap(name)
			root.Clear()
			if err := applyMap(root, obj); err != nil {
				return fmt.Errorf("root %q: %w", name, err)
			}
		}
		return nil
	})
}

func applyMap(m *Map, entries map[string]any) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := reviveValue(entries[k])
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		m.Set(k, v)
	}
	return nil
}

// reviveValue turns one decoded snapshot value back into a container or an
// inline primitive.
func reviveValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if s, ok := val[textMarker]; ok && len(val) == 1 {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("text marker holds %T, want string", s)
			}
			t := NewText()
			t.runes = []rune(str)
			return t, nil
		}
		if inner, ok := val[inlineMarker]; ok && len(val) == 1 {
			return inner, nil
		}
		m := NewMap()
		if err := applyMap(m, val); err != nil {
			return nil, err
		}
		return m, nil
	case []any:
		l := NewList()
		for i, item := range val {
			rv, err := reviveValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			l.Push(rv)
		}
		return l, nil
	default:
		return v, nil
	}
}

func isMarker(obj map[string]any) bool {
	if len(obj) != 1 {
		return false
	}
	_, t := obj[textMarker]
	_, a := obj[inlineMarker]
	return t || a
}

func encodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case *Map:
		return encodeMap(val)
	case *List:
		return encodeList(val)
	case *Text:
		s, err := encodeString(val.String())
		if err != nil {
			return nil, err
		}
		return []byte(fmt.Sprintf("{%q:%s}", textMarker, s)), nil
	case string:
		return encodeString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case float64:
		return encodeNumber(val)
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	default:
		// Composite value stored inline at a primitive position.
		return encodeInline(val)
	}
}

// encodeInline wraps an inline map/slice value so Apply does not mistake
// it for a container.
func encodeInline(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("inline value %T: %w", v, err)
	}
	inner := bytes.TrimRight(buf.Bytes(), "\n")
	return []byte(fmt.Sprintf("{%q:%s}", inlineMarker, inner)), nil
}

func encodeMap(m *Map) ([]byte, error) {
	keys := m.Keys()
	// Canonical form sorts keys by UTF-16 code units, which differs from
	// byte order only for keys with supplementary-plane characters.
	sort.SliceStable(keys, func(i, j int) bool {
		return lessUTF16(keys[i], keys[j])
	})
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v, _ := m.Get(k)
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(ev)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeList(l *List) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range l.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		buf.Write(ev)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// encodeString writes an NFC-normalized JSON string without HTML escaping.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// encodeNumber renders a float64 canonically: integral values without a
// fraction, everything else in shortest round-trip form.
func encodeNumber(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v cannot be encoded", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return []byte(strconv.FormatInt(int64(f), 10)), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// lessUTF16 compares strings by UTF-16 code units per RFC 8785.
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
