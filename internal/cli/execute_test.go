package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeWithFang(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := Execute(context.Background(), root)
	return stdout.String(), stderr.String(), err
}

func TestExecute_ReportedErrorPrintedOnce(t *testing.T) {
	out, errOut, err := executeWithFang(t, "--format", "json", "classify", "testdata/nope.csv", "--item", "a=1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, cliErr := decodeResponse[any](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeNotFound, cliErr.Code)
	assert.NotContains(t, errOut, "not found", "error already in the JSON envelope")
}

func TestExecute_UnreportedErrorPrinted(t *testing.T) {
	_, errOut, err := executeWithFang(t, "classify", rulesFile, "--item", "a=1", "--item", "b=1", "--export", "csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "single --item")
}

func TestErrorHandler(t *testing.T) {
	reported := NewExitError(ExitFailure, "no relevant rules")
	reported.Reported = true

	var buf bytes.Buffer
	ErrorHandler(&buf, fang.Styles{}, reported)
	assert.Empty(t, buf.String())

	ErrorHandler(&buf, fang.Styles{}, NewExitError(ExitCommandError, "scenarios directory not found: x"))
	assert.Contains(t, buf.String(), "scenarios directory not found")
}
