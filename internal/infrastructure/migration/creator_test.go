package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Add expense index":     "add_expense_index",
		"  add--firm__settings": "add_firm_settings",
		"Ümlaut & stuff!":       "mlaut_stuff",
		"***":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create procurement", "orders and expenses")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	body, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "create_procurement (up)")
	assert.Contains(t, string(body), "-- orders and expenses")

	second, err := CreateMigration(dir, "Add supplier index", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_add_supplier_index.up.sql"), second.UpPath)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_add_index.up.sql",
		"000001_create_procurement.up.sql",
		"000001_create_procurement.down.sql",
		"README.md",
		"abc_not_a_migration.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, AvailableMigration{Version: 1, Name: "create_procurement", HasDown: true}, got[0])
	assert.Equal(t, AvailableMigration{Version: 2, Name: "add_index", HasDown: false}, got[1])

	missing, err := ListMigrations(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	got, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i, m := range got {
		assert.Equal(t, uint64(i+1), m.Version, "gap before %s", m.Name)
		assert.True(t, m.HasDown, "%s has no down migration", m.Name)
	}
}
