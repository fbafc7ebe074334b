package loupe

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NodeID is the stable, generated identity of one ordered-node-list
// element. It is assigned once at creation and never reassigned; it is the
// only address that survives insertion and removal elsewhere in the list.
type NodeID string

// IDGenerator produces node identities.
type IDGenerator interface {
	NewID() NodeID
}

// UUIDv7Generator generates time-sortable UUIDv7 node identities.
//
// UUIDv7 embeds a timestamp in the most significant bits, so identities
// sort by creation time, which keeps them monotonic within one process.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID creates a new UUIDv7 identity.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() NodeID {
	return NodeID(uuid.Must(uuid.NewV7()).String())
}

// FixedIDGenerator returns predetermined identities for testing.
//
// This enables deterministic node-list tests and golden snapshot
// comparison: tests provide a known sequence and assert exact output.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator returning ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// NewID returns the next predetermined identity.
//
// Panics when all identities have been consumed - exhaustion means the
// test's expectations and its operations have drifted apart.
func (g *FixedIDGenerator) NewID() NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedIDGenerator: all %d ids exhausted", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return NodeID(id)
}
