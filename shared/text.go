package shared

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Text is a collaborative text container: a rune sequence with positional
// insert and delete. Whole-value replacement is deliberately absent - the
// lens layer mutates text exclusively through these operations.
type Text struct {
	container
	runes []rune
}

// NewText returns an empty, unattached text container.
func NewText() *Text {
	t := &Text{}
	t.self = t
	return t
}

// Len returns the length in runes.
func (t *Text) Len() int { return len(t.runes) }

// String returns the current contents.
func (t *Text) String() string { return string(t.runes) }

// Insert places s at rune position i. The inserted string is NFC
// normalized so equal-looking edits from different input methods converge
// on one representation.
func (t *Text) Insert(i int, s string) {
	if s == "" {
		return
	}
	t.check(i, len(t.runes))
	ins := []rune(norm.NFC.String(s))
	t.runes = append(t.runes, ins...)
	copy(t.runes[i+len(ins):], t.runes[i:len(t.runes)-len(ins)])
	copy(t.runes[i:], ins)
	t.record(Event{Kind: EventTextEdit, Target: t.self, Index: i, Inserted: len(ins)})
}

// Delete removes n runes starting at position i.
func (t *Text) Delete(i, n int) {
	if n == 0 {
		return
	}
	t.check(i, len(t.runes)-1)
	t.check(i+n, len(t.runes))
	t.runes = append(t.runes[:i], t.runes[i+n:]...)
	t.record(Event{Kind: EventTextEdit, Target: t.self, Index: i, Removed: n})
}

// Append adds s at the end.
func (t *Text) Append(s string) {
	t.Insert(len(t.runes), s)
}

func (t *Text) check(i, max int) {
	if i < 0 || i > max {
		panic(fmt.Sprintf("shared: text index %d out of range [0..%d]", i, max))
	}
}
