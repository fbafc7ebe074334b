package loupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/schema"
)

func TestReadonlyStructFocusNeverVivifies(t *testing.T) {
	root := schema.NewObject(
		schema.Field{Name: "labels", Schema: schema.NewStringMap(schema.String())},
	)
	d, err := New(root)
	require.NoError(t, err)

	// Drop the built container to simulate an unmaterialized slot.
	d.Root().Container().Delete("labels")

	ro := d.Root().Readonly()
	_, err = ro.Focus("labels")
	require.Error(t, err)
	assert.True(t, IsNodeNotFoundError(err))
	assert.False(t, d.Root().Container().Has("labels"),
		"read-only focus must not create the container")

	// The writable path vivifies; afterwards the read-only focus works.
	_, err = d.Root().Focus("labels")
	require.NoError(t, err)
	roLabels, err := ro.Focus("labels")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, roLabels.Get())
}

func TestReadonlyValueFocusOnUnwrittenPrimitive(t *testing.T) {
	d := newTracker(t)

	// Primitive slots have no container; read-only focus succeeds and
	// reads nil.
	ro, err := d.Root().Readonly().Focus("title")
	require.NoError(t, err)
	assert.Nil(t, ro.Get())
}

func TestReadonlyMapFocusMissingEntry(t *testing.T) {
	d := newTracker(t)
	f, err := d.Root().Focus("labels")
	require.NoError(t, err)
	labels := f.(MapLens)
	require.NoError(t, labels.Set(map[string]any{"p1": "urgent"}))

	ro := labels.Readonly()
	got, err := ro.Focus("p1")
	require.NoError(t, err)
	assert.Equal(t, "urgent", got.Get())

	// Entries are primitive-valued here, so a missing key reads nil
	// rather than erroring; nothing is created.
	before := labels.Len()
	missing, err := ro.Focus("nope")
	require.NoError(t, err)
	assert.Nil(t, missing.Get())
	assert.Equal(t, before, labels.Len())
}

func TestReadonlyMapFocusMissingStructuralEntry(t *testing.T) {
	root := schema.NewObject(
		schema.Field{Name: "groups", Schema: schema.NewStringMap(
			schema.NewObject(schema.Field{Name: "name", Schema: schema.String()}),
		)},
	)
	d, err := New(root)
	require.NoError(t, err)

	f, err := d.Root().Focus("groups")
	require.NoError(t, err)
	groups := f.(MapLens)

	_, err = groups.Readonly().Focus("missing")
	require.Error(t, err)
	assert.True(t, IsNodeNotFoundError(err))
	assert.Equal(t, 0, groups.Len(), "no vivification through the read-only path")
}

func TestReadonlyTextExposesSnapshotOnly(t *testing.T) {
	d := newTracker(t)
	f, err := d.Root().Focus("notes")
	require.NoError(t, err)
	notes := f.(TextLens)
	require.NoError(t, notes.Append("hello"))

	ro := notes.Readonly()
	assert.Equal(t, "hello", ro.String())
	assert.Equal(t, "hello", ro.Get(), "read-only text yields a string, not the container")
	assert.Equal(t, 5, ro.Len())
}

func TestReadonlyNodeListViews(t *testing.T) {
	d := newTracker(t, "a", "b")
	tasks := tasksLens(t, d)
	idA, err := tasks.Append(map[string]any{"text": "one", "done": false})
	require.NoError(t, err)

	ro := tasks.Readonly()
	assert.Equal(t, 1, ro.Len())

	el, err := ro.Find(idA)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "one", "done": false}, el.Get())

	byIdx, err := ro.At(0)
	require.NoError(t, err)
	assert.Equal(t, el.Get(), byIdx.Get())

	nodes := ro.Nodes()
	assert.Len(t, nodes, 1)

	ids := ro.IDs()
	defer ids.Close()
	assert.Equal(t, []NodeID{idA}, ids.Get())

	view := ro.NodeView(idA)
	assert.Equal(t, map[string]any{"text": "one", "done": false}, view.Get())
}

func TestReadonlySubscribeStillUpdates(t *testing.T) {
	d := newTracker(t)
	meta, err := d.Root().Focus("meta")
	require.NoError(t, err)

	sub := meta.(StructLens).Readonly().Subscribe()
	defer sub.Close()
	assert.Equal(t, map[string]any{}, sub.Get())

	require.NoError(t, meta.(StructLens).Set(map[string]any{"author": "sam", "version": 1}))
	assert.Equal(t, "sam", sub.Get().(map[string]any)["author"])
}
