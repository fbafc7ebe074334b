package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCanonicalForm(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	m.Set("zeta", 1.0)
	m.Set("alpha", "hi")
	m.Set("flag", true)

	out, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t, `{"doc":{"alpha":"hi","flag":true,"zeta":1}}`, string(out))
}

func TestSnapshotIsInsertionOrderIndependent(t *testing.T) {
	build := func(keys []string) []byte {
		d := NewDoc()
		m := d.GetMap("doc")
		for _, k := range keys {
			m.Set(k, k)
		}
		out, err := Snapshot(d)
		require.NoError(t, err)
		return out
	}

	a := build([]string{"x", "a", "m"})
	b := build([]string{"m", "x", "a"})
	assert.Equal(t, a, b)
}

func TestSnapshotNumberRendering(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	m.Set("int", 42.0)
	m.Set("neg", -3.0)
	m.Set("frac", 1.5)

	out, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t, `{"doc":{"frac":1.5,"int":42,"neg":-3}}`, string(out))
}

func TestSnapshotEncodesContainers(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")

	child := NewMap()
	m.Set("child", child)
	child.Set("x", 1.0)

	l := NewList()
	m.Set("items", l)
	l.Push("a")
	l.Push(2.0)

	txt := NewText()
	m.Set("body", txt)
	txt.Append("hi")

	out, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t,
		`{"doc":{"body":{"~text":"hi"},"child":{"x":1},"items":["a",2]}}`,
		string(out))
}

func TestSnapshotInlineCompositeMarker(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	m.Set("blob", map[string]any{"k": "v"})

	out, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t, `{"doc":{"blob":{"~any":{"k":"v"}}}}`, string(out))
}

func TestSnapshotStringsAreNFC(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	// Decomposed e + combining accent normalizes to a single code point.
	m.Set("name", "café")

	out, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t, "{\"doc\":{\"name\":\"café\"}}", string(out))
}

func TestSnapshotRejectsNonFiniteNumbers(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	m.Set("bad", math.Inf(1))

	_, err := Snapshot(d)
	require.Error(t, err)
}

func TestApplyRoundTrip(t *testing.T) {
	d := NewDoc()
	m := d.GetMap("doc")
	child := NewMap()
	m.Set("meta", child)
	child.Set("author", "sam")
	l := NewList()
	m.Set("tags", l)
	l.Push("a")
	txt := NewText()
	m.Set("body", txt)
	txt.Append("hello")
	m.Set("count", 3.0)

	first, err := Snapshot(d)
	require.NoError(t, err)

	restored := NewDoc()
	require.NoError(t, Apply(restored, first))

	second, err := Snapshot(restored)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// The revived tree holds live containers, not inline maps.
	rm := restored.GetMap("doc")
	meta, ok := rm.Get("meta")
	require.True(t, ok)
	assert.IsType(t, &Map{}, meta)
	body, ok := rm.Get("body")
	require.True(t, ok)
	require.IsType(t, &Text{}, body)
	assert.Equal(t, "hello", body.(*Text).String())
}

func TestApplyCommitsAsOneBatch(t *testing.T) {
	src := NewDoc()
	sm := src.GetMap("doc")
	sm.Set("a", 1.0)
	sm.Set("b", 2.0)
	snap, err := Snapshot(src)
	require.NoError(t, err)

	dst := NewDoc()
	m := dst.GetMap("doc")
	var batches int
	stop := m.Observe(func([]Event) { batches++ })
	defer stop()

	require.NoError(t, Apply(dst, snap))
	assert.Equal(t, 1, batches)
}

func TestApplyReplacesExistingContents(t *testing.T) {
	src := NewDoc()
	src.GetMap("doc").Set("fresh", true)
	snap, err := Snapshot(src)
	require.NoError(t, err)

	dst := NewDoc()
	m := dst.GetMap("doc")
	m.Set("stale", 1.0)

	require.NoError(t, Apply(dst, snap))
	assert.False(t, m.Has("stale"))
	assert.True(t, m.Has("fresh"))
}

func TestApplyRejectsNonMapRoot(t *testing.T) {
	d := NewDoc()
	assert.Error(t, Apply(d, []byte(`{"doc":[1,2]}`)))
	assert.Error(t, Apply(d, []byte(`{"doc":{"~text":"x"}}`)))
	assert.Error(t, Apply(d, []byte(`not json`)))
}
