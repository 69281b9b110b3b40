package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"ADD_USERS_TABLE", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"Add Users 123", "add_users_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	up, down, err := Create(dir, "create users")
	require.NoError(t, err)
	assert.Equal(t, "000001_create_users.up.sql", filepath.Base(up))
	assert.Equal(t, "000001_create_users.down.sql", filepath.Base(down))

	content, err := os.ReadFile(up)
	require.NoError(t, err)
	assert.Contains(t, string(content), "create users")

	// Versions are sequential.
	up, _, err = Create(dir, "add analyses")
	require.NoError(t, err)
	assert.Equal(t, "000002_add_analyses.up.sql", filepath.Base(up))
}

func TestCreate_ContinuesFromExistingVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000007_old.up.sql", "000007_old.down.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- old\n"), 0o644))
	}

	up, _, err := Create(dir, "new table")
	require.NoError(t, err)
	assert.Equal(t, "000008_new_table.up.sql", filepath.Base(up))
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	_, _, err := Create(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestCreate_MakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, _, err := Create(dir, "init")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"000002_add_users.up.sql",
		"000002_add_users.down.sql",
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"README.md",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test\n"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "broken.up.sql"), 0o755))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_add_users"}, names)
}

func TestList_MissingDirectory(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
