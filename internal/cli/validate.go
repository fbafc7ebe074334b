package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loupelabs/loupe/cueschema"
	"github.com/loupelabs/loupe/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Issues []schema.Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema.cue> <value-file>",
		Short: "Validate a YAML or JSON value against a CUE schema",
		Long: `Validate a value file against a compiled CUE schema.

The value file may be YAML or JSON (decided by extension). All validation
issues are reported, each with the path of the offending position.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, schemaPath, valuePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	node, err := cueschema.CompileFile(schemaPath)
	if err != nil {
		if outErr := formatter.Error("E_SCHEMA", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "schema compilation failed")
	}
	formatter.VerboseLog("Compiled schema from %s", schemaPath)

	value, err := loadValueFile(valuePath)
	if err != nil {
		if outErr := formatter.Error("E_INPUT", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, "cannot read value file")
	}

	if _, err := schema.Decode(node, value); err != nil {
		var decodeErr *schema.DecodeError
		if errors.As(err, &decodeErr) {
			if outErr := outputValidateResult(formatter, decodeErr.Issues); outErr != nil {
				return outErr
			}
			return NewExitError(ExitFailure, "validation failed")
		}
		return WrapExitError(ExitCommandError, "validation error", err)
	}

	return outputValidateResult(formatter, nil)
}

func outputValidateResult(f *OutputFormatter, issues []schema.Issue) error {
	result := ValidationResult{Valid: len(issues) == 0, Issues: issues}
	if f.Format == "json" {
		return f.Success(result)
	}
	if result.Valid {
		fmt.Fprintln(f.Writer, "valid")
		return nil
	}
	fmt.Fprintf(f.Writer, "invalid (%d issue(s)):\n", len(issues))
	for _, is := range issues {
		path := is.Path
		if path == "" {
			path = "$"
		}
		fmt.Fprintf(f.Writer, "  %s: %s (%s)\n", path, is.Message, is.Code)
	}
	return nil
}

// loadValueFile reads a YAML or JSON value file into plain Go values.
// YAML is the default; .json files go through encoding/json so numbers
// arrive as float64 in both paths.
func loadValueFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return value, nil
	}
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalizeYAML(value), nil
}

// normalizeYAML converts yaml.v3 output (map[string]any with int values)
// into the shapes the decoder expects: numbers widen to float64.
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
