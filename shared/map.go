package shared

import "sort"

// Map is a string-keyed container. Values are primitives or nested
// containers; each key holds exactly one value.
type Map struct {
	container
	entries map[string]any
}

// NewMap returns an empty, unattached map container.
func NewMap() *Map {
	m := &Map{entries: make(map[string]any)}
	m.self = m
	return m
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.entries) }

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Get returns the value stored at key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns all keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForEach calls fn for every entry in sorted key order.
func (m *Map) ForEach(fn func(key string, v any)) {
	for _, k := range m.Keys() {
		fn(k, m.entries[k])
	}
}

// Set stores v at key. A container value is claimed for this slot
// (panicking if it already lives elsewhere); a container previously stored
// at key is detached.
func (m *Map) Set(key string, v any) {
	if old, ok := m.entries[key]; ok {
		// Identity comparison is restricted to containers: inline values
		// may hold uncomparable composites (any-typed positions).
		if c, isContainer := old.(Container); isContainer && any(c) == v {
			return
		}
		detach(old)
	}
	attach(m.self, v)
	m.entries[key] = v
	m.record(Event{Kind: EventMapUpdate, Target: m.self, Keys: []string{key}})
}

// Delete removes key, detaching a stored container. Deleting an absent key
// is a no-op.
func (m *Map) Delete(key string) {
	old, ok := m.entries[key]
	if !ok {
		return
	}
	detach(old)
	delete(m.entries, key)
	m.record(Event{Kind: EventMapUpdate, Target: m.self, Keys: []string{key}})
}

// Clear removes every entry, detaching stored containers.
func (m *Map) Clear() {
	if len(m.entries) == 0 {
		return
	}
	keys := m.Keys()
	for _, k := range keys {
		detach(m.entries[k])
		delete(m.entries, k)
	}
	m.record(Event{Kind: EventMapUpdate, Target: m.self, Keys: keys})
}
