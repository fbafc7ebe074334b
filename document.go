package loupe

import (
	"github.com/loupelabs/loupe/reactive"
	"github.com/loupelabs/loupe/schema"
	"github.com/loupelabs/loupe/shared"
)

// RootContainer is the fixed name of the one root map every loupe
// document lives under in its shared document's registry.
const RootContainer = "loupe"

// Document is the composition root: it owns the shared document, runs the
// tree builder once at creation or bind time, and exposes the root as a
// struct lens.
type Document struct {
	shared     *shared.Doc
	root       *shared.Map
	rootNode   schema.Node
	rootSchema *schema.Object
	gen        IDGenerator

	// nodeViews keys the per-element reactive families by list container,
	// so every NodeView call for the same element shares one cached value.
	nodeViews map[*shared.List]*reactive.Family[NodeID, any]
}

// Option configures a Document.
type Option func(*Document)

// WithIDGenerator overrides the node-identity generator. Tests use
// NewFixedIDGenerator for deterministic identities.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Document) { d.gen = g }
}

// New creates a fresh shared document for root and eagerly materializes
// its structural containers. root must classify as struct.
func New(root schema.Node, opts ...Option) (*Document, error) {
	return Bind(shared.NewDoc(), root, opts...)
}

// Bind projects root onto an existing shared document. The build is
// idempotent: structural slots already present are left untouched, only
// missing ones are created. The whole build commits as a single batch.
//
// A discriminated-union rejection anywhere in the schema aborts the bind;
// because batching is notification-only (the shared engine does not roll
// back), containers built for earlier siblings remain.
func Bind(sd *shared.Doc, root schema.Node, opts ...Option) (*Document, error) {
	class, err := schema.Classify(root)
	if err != nil {
		return nil, unsupportedSchemaError("", err)
	}
	if class != schema.ClassStruct {
		return nil, misuseError("", "document root must be a struct schema, got %s", class)
	}
	d := &Document{
		shared:     sd,
		root:       sd.GetMap(RootContainer),
		rootNode:   root,
		rootSchema: schema.Underlying(root).(*schema.Object),
		gen:        UUIDv7Generator{},
		nodeViews:  make(map[*shared.List]*reactive.Family[NodeID, any]),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := sd.Transact(func() error {
		return buildStruct(d.root, d.rootSchema, "")
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// Root returns a struct lens over the document root.
func (d *Document) Root() StructLens {
	return StructLens{doc: d, node: d.rootNode, obj: d.rootSchema, m: d.root}
}

// Shared returns the underlying shared document, for snapshotting and
// host-engine concerns.
func (d *Document) Shared() *shared.Doc { return d.shared }

// Transact groups the writes issued inside fn into one batch: reactive
// subscribers observe them as a single combined change. Writes outside a
// Transact each commit and notify independently.
func (d *Document) Transact(fn func() error) error {
	return d.shared.Transact(fn)
}
