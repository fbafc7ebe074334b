package shared

import "sort"

// EventKind identifies the mutation family an Event describes.
type EventKind int

const (
	// EventMapUpdate reports keys set or deleted on a map container.
	EventMapUpdate EventKind = iota

	// EventListSplice reports elements inserted or removed on a list
	// container.
	EventListSplice

	// EventTextEdit reports an insert or delete on a text container.
	EventTextEdit
)

func (k EventKind) String() string {
	switch k {
	case EventMapUpdate:
		return "map-update"
	case EventListSplice:
		return "list-splice"
	case EventTextEdit:
		return "text-edit"
	}
	return "unknown"
}

// Event describes one committed mutation of one container.
type Event struct {
	Kind   EventKind
	Target Container

	// Keys lists the map keys touched (EventMapUpdate).
	Keys []string

	// Index is the position of a splice or text edit.
	Index int

	// Inserted is the number of elements or runes added.
	Inserted int

	// Removed is the number of elements or runes removed.
	Removed int
}

// Container is the sealed interface over the three shared container kinds.
// Only Map, List and Text implement it.
type Container interface {
	base() *container

	// Observe registers a shallow observer: one callback per committed
	// batch containing structural changes to this exact container. The
	// returned function unregisters it; calling it more than once, or
	// after the container is detached, is safe.
	Observe(fn func([]Event)) (unobserve func())

	// ObserveDeep registers a deep observer: one callback per committed
	// batch containing any change in this container's subtree.
	ObserveDeep(fn func([]Event)) (unobserve func())
}

// container carries the state common to all container kinds: the parent
// link used for event bubbling and detach, and the observer registries.
type container struct {
	// self is the concrete container, for use as an event target.
	self Container

	// doc is non-nil only on root containers; everything else reaches the
	// Doc by walking parents.
	doc *Doc

	parent Container

	nextObs int
	shallow map[int]func([]Event)
	deep    map[int]func([]Event)
}

func (c *container) base() *container { return c }

// Observe implements Container.
func (c *container) Observe(fn func([]Event)) func() {
	if c.shallow == nil {
		c.shallow = make(map[int]func([]Event))
	}
	id := c.nextObs
	c.nextObs++
	c.shallow[id] = fn
	return func() { delete(c.shallow, id) }
}

// ObserveDeep implements Container.
func (c *container) ObserveDeep(fn func([]Event)) func() {
	if c.deep == nil {
		c.deep = make(map[int]func([]Event))
	}
	id := c.nextObs
	c.nextObs++
	c.deep[id] = fn
	return func() { delete(c.deep, id) }
}

// shallowObservers returns shallow callbacks in registration order.
func (c *container) shallowObservers() []func([]Event) {
	return orderedObservers(c.shallow)
}

// deepObservers returns deep callbacks in registration order.
func (c *container) deepObservers() []func([]Event) {
	return orderedObservers(c.deep)
}

func orderedObservers(m map[int]func([]Event)) []func([]Event) {
	if len(m) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func([]Event), len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

// docRef walks to the root and returns the owning Doc, or nil when the
// container (or an ancestor) has been detached.
func (c *container) docRef() *Doc {
	cur := c
	for cur.parent != nil {
		cur = cur.parent.base()
	}
	return cur.doc
}

// record emits ev to the owning document. Detached containers stay
// mutable but silent.
func (c *container) record(ev Event) {
	if d := c.docRef(); d != nil {
		d.record(ev)
	}
}

// Detached reports whether the container is not currently reachable from a
// document root.
func (c *container) Detached() bool {
	return c.docRef() == nil
}

// attach claims v for the slot owned by parent. Each container lives in
// exactly one slot; attaching an already-attached container panics.
func attach(parent Container, v any) {
	child, ok := v.(Container)
	if !ok {
		return
	}
	b := child.base()
	if b.parent != nil || b.doc != nil {
		panic("shared: container is already attached to a document")
	}
	b.parent = parent
}

// detach releases a slot's old occupant, if it is a container.
func detach(v any) {
	if child, ok := v.(Container); ok {
		child.base().parent = nil
	}
}
