package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addUnit = `package: demo
name: Add
functions:
  - name: add
    params: ["a: Int", "b: Int"]
    returns: Int
    body: {op: ["+", a, b]}
`

func writeUnit(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	return dir
}

func execute(c *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	dir := writeUnit(t, "add.yaml", addUnit)
	out, err := execute(CheckCmd, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 units ok")
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := writeUnit(t, "broken.yaml", "package: demo\nfunctions:\n  - {name: f, returns: Int, body: missing}\n")
	out, err := execute(CheckCmd, dir)
	require.Error(t, err)
	assert.Contains(t, out, "broken.yaml:3:")
	assert.Contains(t, out, "'missing' is not defined")
}

func TestCheckRejectsUnknownTiePolicy(t *testing.T) {
	dir := writeUnit(t, "add.yaml", addUnit)
	_, err := execute(CheckCmd, "--tie", "coin-flip", dir)
	assert.ErrorContains(t, err, "unknown tie policy")
	_, err = execute(CheckCmd, "--tie", "ambiguous", dir)
	assert.NoError(t, err)
}

func TestBuildAndHeaders(t *testing.T) {
	dir := writeUnit(t, "add.yaml", addUnit)
	outDir := filepath.Join(t.TempDir(), "out")
	db := filepath.Join(t.TempDir(), "headers.db")

	out, err := execute(BuildCmd, "--out", outDir, "--headers", db, "--save-headers", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "stored header demo.Add")

	program, err := os.ReadFile(filepath.Join(outDir, "add.program.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(program), "name: demo.AddKt")

	out, err = execute(HeadersCmd, "list", "--headers", db)
	require.NoError(t, err)
	assert.Contains(t, out, "demo.Add")

	out, err = execute(HeadersCmd, "show", "demo.Add", "--headers", db)
	require.NoError(t, err)
	assert.Contains(t, out, "name: AddKt")
	assert.Contains(t, out, "name: add")
}
