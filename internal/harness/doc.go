// Package harness provides scenario-driven conformance testing for lens
// documents.
//
// The harness compiles an inline CUE schema, binds a document with a fixed
// identity generator, executes a sequence of mutation steps, and records
// every change batch delivered by the document. The final canonical
// snapshot and the recorded batches together form a deterministic trace
// suitable for golden comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: |
//	  title: string
//	  cards: [...{text: string, done: bool}] @loupe(nodes)
//	ids: [card-a, card-b]
//	steps:
//	  - op: set
//	    value: { title: "Board" }
//	  - op: append
//	    path: [cards]
//	    value: { text: "write docs", done: false }
//	    id_var: first
//	  - op: set
//	    path: [cards, $first, text]
//	    value: "write more docs"
//	  - op: remove
//	    path: [cards]
//	    id: $first
//
// # Steps
//
// The following step operations are supported:
//
//   - set: replace the value at path (struct, map, list, node list, or
//     primitive position)
//   - delete: remove a key from a keyed-map position
//   - append, prepend: add a node at the end/start of a node list,
//     optionally capturing its identity under id_var
//   - insert-at, insert-after: positional and identity-relative node
//     insertion
//   - remove, remove-at: identity- and index-addressed node removal
//   - text-insert, text-delete, text-append: collaborative-text edits
//
// Path segments and the id field may reference captured identities as
// $var. Node identities come from the scenario's fixed ids list, so runs
// are reproducible and goldens stable.
//
// # Golden Files
//
// RunWithGolden compares the trace against testdata/golden/{name}.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
