package loupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// trackerSchema is the root schema used across the document tests: fixed
// primitives, a nested struct, a keyed map, a plain list, collaborative
// text, and an identity-carrying task list.
func trackerSchema() schema.Node {
	return schema.NewObject(
		schema.Field{Name: "title", Schema: schema.String()},
		schema.Field{Name: "meta", Schema: schema.NewObject(
			schema.Field{Name: "author", Schema: schema.String()},
			schema.Field{Name: "version", Schema: schema.Number()},
		)},
		schema.Field{Name: "labels", Schema: schema.NewStringMap(schema.String())},
		schema.Field{Name: "tags", Schema: schema.NewList(schema.String())},
		schema.Field{Name: "notes", Schema: schema.NewText()},
		schema.Field{Name: "tasks", Schema: schema.NewNodeList(schema.NewObject(
			schema.Field{Name: "text", Schema: schema.String()},
			schema.Field{Name: "done", Schema: schema.Bool()},
		))},
	)
}

func newTracker(t *testing.T, ids ...string) *Document {
	t.Helper()
	opts := []Option{}
	if len(ids) > 0 {
		opts = append(opts, WithIDGenerator(NewFixedIDGenerator(ids...)))
	}
	d, err := New(trackerSchema(), opts...)
	require.NoError(t, err)
	return d
}

func TestNewBuildsStructuralContainersEagerly(t *testing.T) {
	d := newTracker(t)
	m := d.Root().Container()

	// Structural fields exist immediately; primitives have no slot.
	assert.True(t, m.Has("meta"))
	assert.True(t, m.Has("labels"))
	assert.True(t, m.Has("tags"))
	assert.True(t, m.Has("notes"))
	assert.True(t, m.Has("tasks"))
	assert.False(t, m.Has("title"))
}

func TestGetIsTotalOnFreshDocument(t *testing.T) {
	d := newTracker(t)

	got := d.Root().Get().(map[string]any)
	assert.Equal(t, map[string]any{}, got["meta"])
	assert.Equal(t, map[string]any{}, got["labels"])
	assert.Equal(t, []any{}, got["tags"])
	assert.Equal(t, []any{}, got["tasks"])
	assert.NotContains(t, got, "title", "unwritten primitives are absent, not nil")
}

func TestNewRejectsNonStructRoot(t *testing.T) {
	_, err := New(schema.NewList(schema.String()))
	require.Error(t, err)
	assert.True(t, IsMisuseError(err))

	_, err = New(schema.String())
	require.Error(t, err)
}

func TestNewRejectsStructuralUnionWithPath(t *testing.T) {
	root := schema.NewObject(
		schema.Field{Name: "payload", Schema: schema.NewOneOf(
			schema.NewObject(schema.Field{Name: "kind", Schema: schema.Literal("a")}),
			schema.NewObject(schema.Field{Name: "kind", Schema: schema.Literal("b")}),
		)},
	)

	_, err := New(root)
	require.Error(t, err)
	assert.True(t, IsUnsupportedSchemaError(err))
	assert.Contains(t, err.Error(), "payload", "error names the offending position")
}

func TestBindOverExistingSharedDocIsIdempotent(t *testing.T) {
	sd := shared.NewDoc()
	d1, err := Bind(sd, trackerSchema())
	require.NoError(t, err)

	meta1, err := d1.Root().Focus("meta")
	require.NoError(t, err)
	require.NoError(t, meta1.(StructLens).Set(map[string]any{"author": "sam", "version": 2}))

	// A second bind over the same shared doc reuses every existing
	// container and touches nothing.
	d2, err := Bind(sd, trackerSchema())
	require.NoError(t, err)

	meta2, err := d2.Root().Focus("meta")
	require.NoError(t, err)
	assert.Same(t, meta1.(StructLens).Container(), meta2.(StructLens).Container())
	assert.Equal(t, map[string]any{"author": "sam", "version": float64(2)}, meta2.Get())
}

func TestTransactBatchesLensWrites(t *testing.T) {
	d := newTracker(t)
	root := d.Root()

	var batches int
	stop := root.Container().ObserveDeep(func([]shared.Event) { batches++ })
	defer stop()

	err := d.Transact(func() error {
		title, err := root.Focus("title")
		if err != nil {
			return err
		}
		if err := title.(ValueLens).Set("Plan"); err != nil {
			return err
		}
		tags, err := root.Focus("tags")
		if err != nil {
			return err
		}
		return tags.(ListLens).Set([]any{"go"})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batches, "transaction delivers one combined notification")
}

func TestSnapshotOfPopulatedDocument(t *testing.T) {
	d := newTracker(t, "t1")
	root := d.Root()

	title, err := root.Focus("title")
	require.NoError(t, err)
	require.NoError(t, title.(ValueLens).Set("Plan"))

	tasks, err := root.Focus("tasks")
	require.NoError(t, err)
	_, err = tasks.(NodeListLens).Append(map[string]any{"text": "ship", "done": false})
	require.NoError(t, err)

	snap, err := shared.Snapshot(d.Shared())
	require.NoError(t, err)
	assert.Equal(t,
		`{"loupe":{"labels":{},"meta":{},"notes":{"~text":""},"tags":[],"tasks":[{"$id":"t1","done":false,"text":"ship"}],"title":"Plan"}}`,
		string(snap))
}

func TestBindRestoresLensAccessOverSnapshot(t *testing.T) {
	first := newTracker(t, "t1")
	root := first.Root()
	title, err := root.Focus("title")
	require.NoError(t, err)
	require.NoError(t, title.(ValueLens).Set("Plan"))
	tasks, err := root.Focus("tasks")
	require.NoError(t, err)
	id, err := tasks.(NodeListLens).Append(map[string]any{"text": "ship", "done": false})
	require.NoError(t, err)

	snap, err := shared.Snapshot(first.Shared())
	require.NoError(t, err)

	sd := shared.NewDoc()
	require.NoError(t, shared.Apply(sd, snap))
	second, err := Bind(sd, trackerSchema())
	require.NoError(t, err)

	lens, err := FocusPath(second.Root(), "tasks", string(id), "text")
	require.NoError(t, err)
	assert.Equal(t, "ship", lens.Get())
}
