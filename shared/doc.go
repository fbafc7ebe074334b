// Package shared implements the in-process host engine for loupe
// documents: a tree of mutable containers (map, list, text) with
// transaction-scoped change notification.
//
// ARCHITECTURE:
//
// Single-Writer Container Tree:
// A Doc owns a registry of named root maps. Every non-root container is
// referenced by exactly one slot of its parent (a map key or list index);
// storing a container into a second slot is a programmer error and panics.
// Removing a container from its slot detaches its whole subtree: the
// containers stay readable but stop producing events.
//
// All mutation from one process is assumed to happen on one logical thread
// of control. The engine takes no locks; callers needing cross-goroutine
// mutation must serialize externally.
//
// Event Delivery:
// 1. Mutations record events against the owning Doc.
// 2. Doc.Transact groups mutations; events are held until the outermost
//    transaction commits.
// 3. At commit, each observer is invoked exactly once with the batch of
//    events relevant to it - shallow observers see structural changes to
//    their exact container, deep observers see every change in their
//    subtree.
// 4. Mutations outside a transaction commit and notify immediately.
//
// Delivery is deterministic: events keep commit order, containers are
// notified in order of first change, observers in registration order.
//
// There is no rollback. A failed Transact callback leaves the mutations it
// already performed in place; the error only propagates to the caller.
package shared

// Doc is the top-level shared document: a registry of named root maps plus
// the transaction and notification machinery.
type Doc struct {
	roots map[string]*Map

	txDepth    int
	pending    []Event
	delivering bool
}

// NewDoc returns an empty document.
func NewDoc() *Doc {
	return &Doc{roots: make(map[string]*Map)}
}

// GetMap returns the root map registered under name, creating it empty on
// first use.
func (d *Doc) GetMap(name string) *Map {
	if m, ok := d.roots[name]; ok {
		return m
	}
	m := NewMap()
	m.container.doc = d
	d.roots[name] = m
	return m
}

// RootNames returns the names of all registered root containers.
func (d *Doc) RootNames() []string {
	names := make([]string, 0, len(d.roots))
	for name := range d.roots {
		names = append(names, name)
	}
	return names
}

// Transact runs fn as one batch: every event recorded inside it is
// delivered in a single combined notification per observer when the
// outermost Transact returns. Nested calls join the outer batch.
//
// The callback's error is returned as-is. Mutations performed before the
// error stay applied; Transact batches notifications, it does not roll
// back state.
func (d *Doc) Transact(fn func() error) error {
	d.txDepth++
	err := fn()
	d.txDepth--
	if d.txDepth == 0 {
		d.flush()
	}
	return err
}

// record queues an event, delivering immediately when no transaction is
// open.
func (d *Doc) record(ev Event) {
	d.pending = append(d.pending, ev)
	if d.txDepth == 0 && !d.delivering {
		d.flush()
	}
}

// flush delivers all pending events. Observer callbacks that mutate the
// document queue a follow-up batch, delivered before flush returns.
func (d *Doc) flush() {
	d.delivering = true
	defer func() { d.delivering = false }()
	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		deliver(batch)
	}
}

// deliver fans one committed batch out to observers. For every event, the
// target's shallow observers and the target-and-ancestors' deep observers
// are owed a notification; each observer is invoked once with its slice of
// relevant events.
func deliver(batch []Event) {
	type pending struct {
		target Container
		events []Event
		deep   []Event
	}
	var order []Container
	byTarget := make(map[Container]*pending)

	note := func(c Container) *pending {
		p, ok := byTarget[c]
		if !ok {
			p = &pending{target: c}
			byTarget[c] = p
			order = append(order, c)
		}
		return p
	}

	for _, ev := range batch {
		p := note(ev.Target)
		p.events = append(p.events, ev)
		for c := ev.Target; c != nil; c = c.base().parent {
			note(c).deep = append(note(c).deep, ev)
		}
	}

	for _, c := range order {
		p := byTarget[c]
		b := c.base()
		if len(p.events) > 0 {
			for _, ob := range b.shallowObservers() {
				ob(p.events)
			}
		}
		if len(p.deep) > 0 {
			for _, ob := range b.deepObservers() {
				ob(p.deep)
			}
		}
	}
}
