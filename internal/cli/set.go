package cli

import (
	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{}
	var valueFile string

	cmd := &cobra.Command{
		Use:   "set [path...]",
		Short: "Write a validated value into a stored document",
		Long: `Validate the value file against the schema at the given path, write it
into the stored document, and persist the updated snapshot. Text
positions cannot be set by replacement and are rejected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(rootOpts, opts, valueFile, args, cmd)
		},
	}

	addDocFlags(cmd, opts)
	cmd.Flags().StringVar(&valueFile, "value", "", "YAML or JSON value file (required)")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func runSet(rootOpts *RootOptions, opts *DocOptions, valueFile string, segs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	value, err := loadValueFile(valueFile)
	if err != nil {
		if outErr := formatter.Error("E_INPUT", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, "cannot read value file")
	}

	doc, store, cleanup, err := openDocument(cmd, rootOpts, opts)
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

	if err := doc.Transact(func() error { return setLens(lens, value) }); err != nil {
		if outErr := formatter.Error("E_VALUE", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "value rejected")
	}

	if err := store.Save(cmd.Context(), opts.Name, doc.Shared()); err != nil {
		return WrapExitError(ExitCommandError, "save document", err)
	}
	formatter.VerboseLog("Saved document %q to %s", opts.Name, opts.DB)
	return formatter.Success("ok")
}

// setLens dispatches a whole-value write to the lens kind at the path.
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
		return NewExitError(ExitFailure, "position cannot be set by replacement")
	}
}
