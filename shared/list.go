package shared

import "fmt"

// List is an integer-indexed container supporting insertion and removal at
// any position. Element containers keep their identity when elements are
// inserted or removed around them.
type List struct {
	container
	items []any
}

// NewList returns an empty, unattached list container.
func NewList() *List {
	l := &List{}
	l.self = l
	return l
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// Get returns the element at index i. Panics when i is out of range, like
// a slice access.
func (l *List) Get(i int) any {
	l.check(i, len(l.items)-1)
	return l.items[i]
}

// Slice returns a copy of the element slice. Containers are shared, not
// cloned.
func (l *List) Slice() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Insert places v at index i, shifting later elements right. i may equal
// Len to append.
func (l *List) Insert(i int, v any) {
	l.check(i, len(l.items))
	attach(l.self, v)
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.record(Event{Kind: EventListSplice, Target: l.self, Index: i, Inserted: 1})
}

// Push appends v.
func (l *List) Push(v any) {
	l.Insert(len(l.items), v)
}

// Delete removes n elements starting at index i, detaching any containers
// among them.
func (l *List) Delete(i, n int) {
	if n == 0 {
		return
	}
	l.check(i, len(l.items)-1)
	l.check(i+n, len(l.items))
	for _, v := range l.items[i : i+n] {
		detach(v)
	}
	l.items = append(l.items[:i], l.items[i+n:]...)
	l.record(Event{Kind: EventListSplice, Target: l.self, Index: i, Removed: n})
}

// Clear removes every element.
func (l *List) Clear() {
	n := len(l.items)
	if n == 0 {
		return
	}
	for _, v := range l.items {
		detach(v)
	}
	l.items = nil
	l.record(Event{Kind: EventListSplice, Target: l.self, Removed: n})
}

// IndexOf returns the index of the first element for which match returns
// true, or -1.
func (l *List) IndexOf(match func(v any) bool) int {
	for i, v := range l.items {
		if match(v) {
			return i
		}
	}
	return -1
}

func (l *List) check(i, max int) {
	if i < 0 || i > max {
		panic(fmt.Sprintf("shared: list index %d out of range [0..%d]", i, max))
	}
}
