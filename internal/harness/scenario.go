package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one deterministic lens-document exercise: a schema, a
// sequence of mutation steps, and the fixed node identities the steps may
// consume.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the inline CUE source for the document root. It must
	// compile to a struct position.
	Schema string `yaml:"schema"`

	// IDs is the fixed identity sequence handed to node-list insertions,
	// in consumption order. Exhausting it fails the run.
	IDs []string `yaml:"ids,omitempty"`

	// Steps is the mutation sequence to execute.
	Steps []Step `yaml:"steps"`
}

// Step is one mutation applied to the document.
type Step struct {
	// Op selects the operation; see the package documentation for the
	// supported set.
	Op string `yaml:"op"`

	// Path addresses the target position as focus segments from the root.
	// Segments starting with $ are replaced by captured identities.
	Path []string `yaml:"path,omitempty"`

	// Value is the payload for set and node insertion ops.
	Value any `yaml:"value,omitempty"`

	// Key is the map key for delete.
	Key string `yaml:"key,omitempty"`

	// ID addresses a node for remove and insert-after; $var references a
	// captured identity.
	ID string `yaml:"id,omitempty"`

	// IDVar captures the identity returned by a node insertion.
	IDVar string `yaml:"id_var,omitempty"`

	// Index is the position for insert-at, remove-at, text-insert, and
	// text-delete.
	Index int `yaml:"index,omitempty"`

	// Count is the rune count for text-delete.
	Count int `yaml:"count,omitempty"`

	// Text is the payload for text-insert and text-append.
	Text string `yaml:"text,omitempty"`
}

// Step operation constants.
const (
	OpSet         = "set"
	OpDelete      = "delete"
	OpAppend      = "append"
	OpPrepend     = "prepend"
	OpInsertAt    = "insert-at"
	OpInsertAfter = "insert-after"
	OpRemove      = "remove"
	OpRemoveAt    = "remove-at"
	OpTextInsert  = "text-insert"
	OpTextDelete  = "text-delete"
	OpTextAppend  = "text-append"
)

var validOps = map[string]bool{
	OpSet:         true,
	OpDelete:      true,
	OpAppend:      true,
	OpPrepend:     true,
	OpInsertAt:    true,
	OpInsertAfter: true,
	OpRemove:      true,
	OpRemoveAt:    true,
	OpTextInsert:  true,
	OpTextDelete:  true,
	OpTextAppend:  true,
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario in dir, sorted by filename.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks structural requirements before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if s.Schema == "" {
		return fmt.Errorf("scenario has no schema")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	for i, st := range s.Steps {
		if !validOps[st.Op] {
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return nil
}
