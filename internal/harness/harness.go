package harness

import (
	"fmt"
	"strings"

	"github.com/loupelabs/loupe"
	"github.com/loupelabs/loupe/cueschema"
	"github.com/loupelabs/loupe/shared"
)

// BatchEvent is the serializable record of one change event inside a
// delivered batch. Target containers are identified by kind only; the
// batch sequence plus the final snapshot pin down the behavior.
type BatchEvent struct {
	Kind     string   `json:"kind"`
	Keys     []string `json:"keys,omitempty"`
	Index    int      `json:"index,omitempty"`
	Inserted int      `json:"inserted,omitempty"`
	Removed  int      `json:"removed,omitempty"`
}

// Batch is one combined change delivery observed deep on the document
// root: everything a single commit touched, in change order.
type Batch struct {
	Seq    int          `json:"seq"`
	Events []BatchEvent `json:"events"`
}

// Result holds the outcome of executing a scenario.
type Result struct {
	// Snapshot is the canonical JSON of the final document state.
	Snapshot []byte

	// Batches records every change delivery, in commit order.
	Batches []Batch

	// IDs maps id_var names to the identities captured during the run.
	IDs map[string]loupe.NodeID
}

// Run executes a scenario against a fresh document and records its trace.
func Run(scenario *Scenario) (*Result, error) {
	node, err := cueschema.CompileString(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	gen := loupe.NewFixedIDGenerator(scenario.IDs...)
	doc, err := loupe.New(node, loupe.WithIDGenerator(gen))
	if err != nil {
		return nil, fmt.Errorf("bind document: %w", err)
	}

	result := &Result{IDs: make(map[string]loupe.NodeID)}
	root := doc.Root()

	// Record every commit's combined delivery for the whole tree.
	stop := root.Container().ObserveDeep(func(events []shared.Event) {
		batch := Batch{Seq: len(result.Batches)}
		for _, ev := range events {
			batch.Events = append(batch.Events, BatchEvent{
				Kind:     ev.Kind.String(),
				Keys:     ev.Keys,
				Index:    ev.Index,
				Inserted: ev.Inserted,
				Removed:  ev.Removed,
			})
		}
		result.Batches = append(result.Batches, batch)
	})
	defer stop()

	for i, step := range scenario.Steps {
		if err := runStep(doc, step, result.IDs); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	snapshot, err := shared.Snapshot(doc.Shared())
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	result.Snapshot = snapshot
	return result, nil
}

func runStep(doc *loupe.Document, step Step, ids map[string]loupe.NodeID) error {
	segs, err := resolveSegs(step.Path, ids)
	if err != nil {
		return err
	}
	lens, err := loupe.FocusPath(doc.Root(), segs...)
	if err != nil {
		return err
	}

	switch step.Op {
	case OpSet:
		return setLens(lens, normalizeYAML(step.Value))

	case OpDelete:
		m, ok := lens.(loupe.MapLens)
		if !ok {
			return fmt.Errorf("delete targets a keyed-map position, got %T", lens)
		}
		return m.Delete(step.Key)

	case OpAppend, OpPrepend, OpInsertAt, OpInsertAfter:
		nl, ok := lens.(loupe.NodeListLens)
		if !ok {
			return fmt.Errorf("%s targets a node-list position, got %T", step.Op, lens)
		}
		value := normalizeYAML(step.Value)
		var id loupe.NodeID
		switch step.Op {
		case OpAppend:
			id, err = nl.Append(value)
		case OpPrepend:
			id, err = nl.Prepend(value)
		case OpInsertAt:
			id, err = nl.InsertAt(step.Index, value)
		case OpInsertAfter:
			var after loupe.NodeID
			after, err = resolveID(step.ID, ids)
			if err != nil {
				return err
			}
			id, err = nl.InsertAfter(after, value)
		}
		if err != nil {
			return err
		}
		if step.IDVar != "" {
			ids[step.IDVar] = id
		}
		return nil

	case OpRemove:
		nl, ok := lens.(loupe.NodeListLens)
		if !ok {
			return fmt.Errorf("remove targets a node-list position, got %T", lens)
		}
		id, err := resolveID(step.ID, ids)
		if err != nil {
			return err
		}
		return nl.Remove(id)

	case OpRemoveAt:
		nl, ok := lens.(loupe.NodeListLens)
		if !ok {
			return fmt.Errorf("remove-at targets a node-list position, got %T", lens)
		}
		return nl.RemoveAt(step.Index)

	case OpTextInsert, OpTextDelete, OpTextAppend:
		t, ok := lens.(loupe.TextLens)
		if !ok {
			return fmt.Errorf("%s targets a text position, got %T", step.Op, lens)
		}
		switch step.Op {
		case OpTextInsert:
			return t.Insert(step.Index, step.Text)
		case OpTextDelete:
			return t.Delete(step.Index, step.Count)
		default:
			return t.Append(step.Text)
		}
	}

	return fmt.Errorf("unknown op %q", step.Op)
}

// setLens routes a whole-value write to the lens kind at the path.
func setLens(l loupe.Lens, value any) error {
	switch t := l.(type) {
	case loupe.StructLens:
		return t.Set(value)
	case loupe.MapLens:
		return t.Set(value)
	case loupe.ListLens:
		return t.Set(value)
	case loupe.NodeListLens:
		return t.Set(value)
	case loupe.ValueLens:
		return t.Set(value)
	default:
		return fmt.Errorf("position %s cannot be set by replacement", l.Path())
	}
}

// resolveSegs replaces $var path segments with captured identities.
func resolveSegs(segs []string, ids map[string]loupe.NodeID) ([]string, error) {
	out := make([]string, len(segs))
	for i, s := range segs {
		if strings.HasPrefix(s, "$") {
			id, ok := ids[s[1:]]
			if !ok {
				return nil, fmt.Errorf("unknown identity variable %q", s)
			}
			out[i] = string(id)
			continue
		}
		out[i] = s
	}
	return out, nil
}

// resolveID resolves a step's id field, which may be a $var reference or
// a literal identity.
func resolveID(s string, ids map[string]loupe.NodeID) (loupe.NodeID, error) {
	if strings.HasPrefix(s, "$") {
		id, ok := ids[s[1:]]
		if !ok {
			return "", fmt.Errorf("unknown identity variable %q", s)
		}
		return id, nil
	}
	if s == "" {
		return "", fmt.Errorf("missing id")
	}
	return loupe.NodeID(s), nil
}

// normalizeYAML widens yaml.v3 numeric output to the float64 shape the
// decoder expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}
