package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe"
	"github.com/loupelabs/loupe/cueschema"
	"github.com/loupelabs/loupe/docstore"
	"github.com/loupelabs/loupe/shared"
)

// DocOptions holds the flags shared by commands operating on a stored
// document.
type DocOptions struct {
	DB     string // SQLite database path
	Name   string // document name within the database
	Schema string // CUE schema file
}

func addDocFlags(cmd *cobra.Command, opts *DocOptions) {
	cmd.Flags().StringVar(&opts.DB, "db", "loupe.db", "SQLite database path")
	cmd.Flags().StringVar(&opts.Name, "name", "default", "document name")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema file (required)")
	_ = cmd.MarkFlagRequired("schema")
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{}

	cmd := &cobra.Command{
		Use:   "get [path...]",
		Short: "Read a value from a stored document",
		Long: `Read the value at a path in a stored document, projected through the
schema. With no path arguments the whole document root is read. Path
segments name struct fields, map keys, and node-list positions (an index
or a node identity).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, opts, args, cmd)
		},
	}

	addDocFlags(cmd, opts)
	return cmd
}

func runGet(rootOpts *RootOptions, opts *DocOptions, segs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	doc, _, cleanup, err := openDocument(cmd, rootOpts, opts)
	if err != nil {
		return reportDocError(formatter, err)
	}
	defer cleanup()

	lens, err := loupe.FocusPath(doc.Root(), segs...)
	if err != nil {
		if outErr := formatter.Error("E_PATH", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, "path not found")
	}

	value, err := lens.SafeGet()
	if err != nil {
		if outErr := formatter.Error("E_VALUE", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "stored value invalid")
	}
	if t, ok := lens.(loupe.TextLens); ok {
		value = t.String()
	}

	if rootOpts.Format == "json" {
		return formatter.Success(value)
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encode value", err)
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}

// openDocument opens the store, compiles the schema, and binds a lens
// document over the stored snapshot. A missing snapshot binds an empty
// document. The returned cleanup closes the store.
func openDocument(cmd *cobra.Command, rootOpts *RootOptions, opts *DocOptions) (*loupe.Document, *docstore.Store, func(), error) {
	node, err := cueschema.CompileFile(opts.Schema)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitFailure, "schema compilation failed", err)
	}

	store, err := docstore.Open(opts.DB)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}

	sd := shared.NewDoc()
	if err := store.Load(cmd.Context(), opts.Name, sd); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		store.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "load document", err)
	}

	doc, err := loupe.Bind(sd, node)
	if err != nil {
		store.Close()
		return nil, nil, nil, WrapExitError(ExitFailure, "bind document", err)
	}
	return doc, store, func() { store.Close() }, nil
}

func reportDocError(f *OutputFormatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if outErr := f.Error("E_DOC", exitErr.Error(), nil); outErr != nil {
			return outErr
		}
		return exitErr
	}
	return err
}
