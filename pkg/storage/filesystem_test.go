package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("backup-20250310T120000Z-abcd1234.json", []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, "backup-20250310T120000Z-abcd1234.json", name)

	data, err := store.Read(name)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = store.Read("backup-missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocalStorageLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("a.json", []byte("{}"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestLocalStorageRejectsNestedNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../etc/passwd", "/etc/passwd", "..", "2025/backup.json", `a\b.json`, tempPrefix + "x"} {
		_, err := store.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, name)
		_, err = store.Read(name)
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}
}

func TestLocalStorageCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	_, err = store.Save("old.json", []byte("{}"))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0o750))

	removed, err := store.CleanupOlderThan(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.json"}, removed)
	assert.DirExists(t, filepath.Join(dir, "keep"))

	_, err = store.Save("fresh.json", []byte("{}"))
	require.NoError(t, err)
	removed, err = store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
