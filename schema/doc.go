// Package schema defines the structural schema model that loupe projects
// onto shared containers, plus the two operations every other layer is
// built on: classification and decoding.
//
// ARCHITECTURE:
//
// Sealed Node Tree:
// A schema is an immutable tree of Node values. Node is a sealed interface -
// only the variants in this package implement it. The embedding application
// builds the tree once (directly, or via the cueschema compiler) and this
// package only ever reads it.
//
// Classification:
// Classify maps a Node to exactly one of six container classes
// (primitive, struct, map, list, text, node-list). The class decides which
// shared container the tree builder materializes and which lens kind binds
// to the position. Classification unwraps Refine/Lazy/Transform wrappers
// first, is computed once per node, and is cached on the node itself, so
// the (potentially recursive) shape analysis never runs twice.
//
// Discriminated unions of two or more structural variants are rejected by
// Classify: there is no well-defined merge for "the shape of this value
// changed" under concurrent edits, so the schema is refused up front rather
// than silently picking a container kind. Unions of primitive or literal
// variants are fine and classify as primitive.
//
// Decoding:
// Decode validates an untrusted value against a Node and returns the
// normalized form (numbers widened to float64, transforms applied).
// Failures accumulate as Issues with dotted paths, collected into a single
// *DecodeError rather than stopping at the first problem.
package schema
