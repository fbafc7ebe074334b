// Package loupe projects a declared structural schema onto a tree of
// shared containers and exposes the tree through typed, validated,
// reactive lenses.
//
// ARCHITECTURE:
//
// Three subsystems cooperate:
//
// Tree Builder:
// New (or Bind) walks the root struct schema once and eagerly creates the
// container for every structural field, recursing into nested structs, so
// a fresh document is fully navigable before any write. Keyed-map and
// list containers start empty; their entries materialize lazily. Binding
// to an already-populated document is idempotent - only missing slots are
// created.
//
// Lens Hierarchy:
// One lens kind per container class (StructLens, MapLens, ListLens,
// TextLens, NodeListLens, ValueLens for primitives), each a cheap value
// handle of (schema node, container binding, document). Creating a lens
// never subscribes to anything. Reads come in two flavors: Get trusts the
// stored data, SafeGet validates it against the schema. Writes validate
// first: Set returns a structured error, MustSet panics for
// programmer-error call sites.
//
// Reactive Bridge:
// Subscribe turns container notifications into cached pull-based values
// (package reactive). Deep views recompute on any subtree change; the
// node-list identity view observes shallowly, so a field edit inside an
// existing element never recomputes it. A subscribed element view freezes
// at its last value once the element is removed - consumers learn about
// removal from the identity view, not from the element itself.
//
// CRITICAL PATTERNS:
//
// Focus is navigation with a write-like side effect: focusing a struct
// field or map key whose container does not exist yet creates it
// (auto-vivification). Read-only lenses never vivify.
//
// All calls are synchronous and must come from one logical thread of
// control; the shared engine serializes nothing on this layer's behalf.
package loupe
