package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/cueschema"
	"github.com/loupelabs/loupe/schema"
)

// SchemaNode is the JSON-friendly description of one schema position.
type SchemaNode struct {
	Class  string                 `json:"class"`
	Prim   string                 `json:"primitive,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Fields map[string]*SchemaNode `json:"fields,omitempty"`
	Rest   *SchemaNode            `json:"rest,omitempty"`
	Elem   *SchemaNode            `json:"elem,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <file.cue>",
		Short: "Compile a CUE schema and print its classification",
		Long: `Compile a CUE schema file and print how each position classifies:
struct, map, list, node-list, text, or primitive. Unsupported positions
(e.g. unions of structural variants) are reported in place.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	node, err := cueschema.CompileFile(path)
	if err != nil {
		if outErr := formatter.Error("E_SCHEMA", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "schema compilation failed")
	}

	desc := describeNode(node)
	if opts.Format == "json" {
		return formatter.Success(desc)
	}
	var sb strings.Builder
	renderSchemaText(&sb, "$", desc, 0)
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}

// describeNode walks a schema tree into its serializable description.
func describeNode(n schema.Node) *SchemaNode {
	out := &SchemaNode{}
	class, err := schema.Classify(n)
	if err != nil {
		out.Class = "unsupported"
		out.Error = err.Error()
		return out
	}
	out.Class = class.String()

	switch u := schema.Underlying(n).(type) {
	case *schema.Primitive:
		out.Prim = u.Type.String()
	case *schema.Object:
		if len(u.Fields) > 0 {
			out.Fields = make(map[string]*SchemaNode, len(u.Fields))
			for _, f := range u.Fields {
				out.Fields[f.Name] = describeNode(f.Schema)
			}
		}
		if u.Rest != nil {
			out.Rest = describeNode(u.Rest)
		}
	case *schema.List:
		out.Elem = describeNode(u.Elem)
	case *schema.NodeList:
		out.Elem = describeNode(u.Elem)
	}
	return out
}

func renderSchemaText(sb *strings.Builder, name string, n *SchemaNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Class
	if n.Prim != "" && n.Prim != "any" {
		label += " (" + n.Prim + ")"
	}
	if n.Error != "" {
		label += ": " + n.Error
	}
	fmt.Fprintf(sb, "%s%s: %s\n", indent, name, label)

	names := make([]string, 0, len(n.Fields))
	for fn := range n.Fields {
		names = append(names, fn)
	}
	sort.Strings(names)
	for _, fn := range names {
		renderSchemaText(sb, fn, n.Fields[fn], depth+1)
	}
	if n.Rest != nil {
		renderSchemaText(sb, "[string]", n.Rest, depth+1)
	}
	if n.Elem != nil {
		renderSchemaText(sb, "[elem]", n.Elem, depth+1)
	}
}
