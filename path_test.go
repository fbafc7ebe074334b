package loupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocusPathNavigation(t *testing.T) {
	d := newTracker(t, "t1", "t2")
	root := d.Root()

	_, err := tasksLens(t, d).Append(map[string]any{"text": "ship", "done": false})
	require.NoError(t, err)
	_, err = tasksLens(t, d).Append(map[string]any{"text": "test", "done": true})
	require.NoError(t, err)

	tests := []struct {
		name string
		segs []string
		want any
	}{
		{"struct field", []string{"meta"}, map[string]any{}},
		{"node list by index", []string{"tasks", "1", "text"}, "test"},
		{"node list by identity", []string{"tasks", "t1", "text"}, "ship"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lens, err := FocusPath(root, tt.segs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lens.Get())
		})
	}
}

func TestFocusPathEmptyReturnsSelf(t *testing.T) {
	d := newTracker(t)
	lens, err := FocusPath(d.Root())
	require.NoError(t, err)
	assert.IsType(t, StructLens{}, lens)
}

func TestFocusPathIntoMapEntry(t *testing.T) {
	d := newTracker(t)
	f, err := d.Root().Focus("labels")
	require.NoError(t, err)
	require.NoError(t, f.(MapLens).Set(map[string]any{"p1": "urgent"}))

	lens, err := FocusPath(d.Root(), "labels", "p1")
	require.NoError(t, err)
	assert.Equal(t, "urgent", lens.Get())
}

func TestFocusPathErrors(t *testing.T) {
	d := newTracker(t, "t1")
	_, err := tasksLens(t, d).Append(map[string]any{"text": "x", "done": false})
	require.NoError(t, err)

	tests := []struct {
		name  string
		segs  []string
		check func(error) bool
	}{
		{"unknown struct field", []string{"bogus"}, IsMisuseError},
		{"focus into primitive", []string{"title", "deeper"}, IsMisuseError},
		{"focus into plain list", []string{"tags", "0"}, IsMisuseError},
		{"focus into text", []string{"notes", "0"}, IsMisuseError},
		{"unknown node identity", []string{"tasks", "ghost"}, IsNodeNotFoundError},
		{"node index out of range", []string{"tasks", "7"}, IsMisuseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FocusPath(d.Root(), tt.segs...)
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}
