package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "steps", "goto", "version", "force", "create", "list"}, names)
}

func TestCreateAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--path", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations found")

	out, err = run(t, "--path", dir, "create", "Add supplier notes", "notes column")
	require.NoError(t, err)
	assert.Contains(t, out, "created 000001")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out, err = run(t, "--path", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000001 add_supplier_notes")
	assert.NotContains(t, out, "(no down)")
}

func TestList_FlagsMissingDown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_seed.up.sql"), []byte("SELECT 1;"), 0o644))

	out, err := run(t, "--path", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000003 seed (no down)")
}

func TestArgumentValidation(t *testing.T) {
	tests := [][]string{
		{"steps"},
		{"steps", "1", "2"},
		{"force"},
		{"up", "extra"},
		{"create"},
	}
	for _, args := range tests {
		_, err := run(t, args...)
		assert.Error(t, err, args)
	}
}
