package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "loupe", cmd.Use)
	assert.Contains(t, cmd.Long, "schema-projected")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"schema", "validate", "get", "set"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "schema", "nope.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestDocCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	getCmd, _, err := cmd.Find([]string{"get"})
	require.NoError(t, err)

	dbFlag := getCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "loupe.db", dbFlag.DefValue)

	nameFlag := getCmd.Flags().Lookup("name")
	require.NotNil(t, nameFlag)
	assert.Equal(t, "default", nameFlag.DefValue)

	// --schema is required, so default is empty
	schemaFlag := getCmd.Flags().Lookup("schema")
	require.NotNil(t, schemaFlag)
	assert.Equal(t, "", schemaFlag.DefValue)

	setCmd, _, err := cmd.Find([]string{"set"})
	require.NoError(t, err)
	valueFlag := setCmd.Flags().Lookup("value")
	require.NotNil(t, valueFlag)
	assert.Equal(t, "", valueFlag.DefValue)
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapExitError(ExitCommandError, "load document", base)

	assert.Equal(t, "load document: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "invalid")))
}
