package hashcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Empty(t, c)
	assert.NotNil(t, c)
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Empty(t, Load(path))
}

func TestLoadNullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	c := Load(path)
	require.NotNil(t, c)
	c["a"] = "b"
}

func TestSaveRoundTripAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "proj.hashes.json")
	c := Cache{"a.py": "00ff", "pkg/b.py": "abcd"}
	require.NoError(t, c.Save(path))

	assert.Equal(t, c, Load(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, Cache{"old.py": "1"}.Save(path))
	require.NoError(t, Cache{"new.py": "2"}.Save(path))
	assert.Equal(t, Cache{"new.py": "2"}, Load(path))
}

func TestHashIsStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("hello"), 0o644))

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 32)

	require.NoError(t, os.WriteFile(b, []byte("hello!"), 0o644))
	hb2, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb2)
}

func TestHashFilesReportsPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(ok, []byte("x"), 0o644))

	got, err := HashFiles(context.Background(), []string{ok, filepath.Join(dir, "gone.txt")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NoError(t, got[0].Err)
	assert.NotEmpty(t, got[0].Hash)
	assert.Error(t, got[1].Err)
}

func TestHashFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HashFiles(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}
