package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command in-process with a private database and
// hash cache.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newRepo(t *testing.T) (repo, db string) {
	t.Helper()
	t.Setenv("CODEGRAPH_HASH_CACHE", filepath.Join(t.TempDir(), "hashes.json"))
	repo = filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte(`package main

func main() {
	run()
}

func run() {}
`), 0o600))
	return repo, filepath.Join(t.TempDir(), "graph", "codegraph.db")
}

func TestIndexCommand(t *testing.T) {
	repo, db := newRepo(t)

	out, err := execute(t, db, "index", repo)
	require.NoError(t, err)
	assert.Contains(t, out, "as app")
	assert.Contains(t, out, "1 ingested")

	out, err = execute(t, db, "index", repo)
	require.NoError(t, err)
	assert.Contains(t, out, "1 skipped")

	out, err = execute(t, db, "index", "--force", repo)
	require.NoError(t, err)
	assert.Contains(t, out, "1 ingested")
}

func TestIndexCommandRejectsMissingDir(t *testing.T) {
	_, db := newRepo(t)
	_, err := execute(t, db, "index", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "directory not found")
}

func TestSymbolsAndCallsCommands(t *testing.T) {
	repo, db := newRepo(t)
	_, err := execute(t, db, "index", repo)
	require.NoError(t, err)

	out, err := execute(t, db, "symbols", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "app.main.run")
	assert.Contains(t, out, "main.go:7")

	_, err = execute(t, db, "symbols", "run", "--label", "Class")
	assert.Error(t, err)

	out, err = execute(t, db, "calls", "app.main.run")
	require.NoError(t, err)
	assert.Contains(t, out, "<- app.main.main")

	_, err = execute(t, db, "calls", "app.main.missing")
	assert.ErrorContains(t, err, "symbol not found")
}

func TestResolveTargetDir(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")
}

func TestASTCommand(t *testing.T) {
	repo, db := newRepo(t)

	out, err := execute(t, db, "ast", "--named", filepath.Join(repo, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, out, "source_file [1:0]")
	assert.Contains(t, out, "function_declaration [3:0]")

	_, err = execute(t, db, "ast", filepath.Join(repo, "README"))
	assert.ErrorContains(t, err, "unknown language")
}
