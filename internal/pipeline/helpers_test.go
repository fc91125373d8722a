package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
	"github.com/DeusData/codegraph/internal/store"
)

func parseSource(t *testing.T, l lang.Language, source string) (*tree_sitter.Tree, []byte) {
	t.Helper()
	src := []byte(source)
	tree, err := parser.Parse(l, src)
	if err != nil {
		t.Fatalf("parse %s: %v", l, err)
	}
	return tree, src
}

func findFirstNodeByKind(root *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var found *tree_sitter.Node
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if want[n.Kind()] {
			found = n
			return false
		}
		return true
	})
	return found
}

func writeLangTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func docFile(l lang.Language, src []byte) *handler.File {
	return handler.NewFile(lang.ForLanguage(l), src, "main", "", "test")
}

// testRepo is a temp-dir repository indexed into an in-memory store.
type testRepo struct {
	t     *testing.T
	dir   string
	cache string
	store *store.Store
}

func newTestRepo(t *testing.T, files map[string]string) *testRepo {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "proj")
	for rel, content := range files {
		writeLangTestFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return &testRepo{t: t, dir: dir, cache: filepath.Join(t.TempDir(), "hashes.json"), store: s}
}

func (r *testRepo) write(rel, content string) {
	writeLangTestFile(r.t, filepath.Join(r.dir, filepath.FromSlash(rel)), content)
}

func (r *testRepo) remove(rel string) {
	if err := os.Remove(filepath.Join(r.dir, filepath.FromSlash(rel))); err != nil {
		r.t.Fatal(err)
	}
}

func (r *testRepo) run(force bool, opts ...Option) *RunStats {
	r.t.Helper()
	opts = append([]Option{WithCacheFile(r.cache)}, opts...)
	stats, err := New(context.Background(), r.store, r.dir, opts...).Run(force)
	if err != nil {
		r.t.Fatalf("Run: %v", err)
	}
	return stats
}

// edges returns "source -> target" strings for every edge of a type.
func (r *testRepo) edges(rel string) map[string]bool {
	r.t.Helper()
	rows, err := r.store.FindEdgesByType("proj", rel)
	if err != nil {
		r.t.Fatal(err)
	}
	out := make(map[string]bool, len(rows))
	for _, e := range rows {
		out[e.SourceQN+" -> "+e.TargetQN] = true
	}
	return out
}

func (r *testRepo) hasNode(qn string) bool {
	r.t.Helper()
	_, err := r.store.FindNodeByQN("proj", qn)
	return err == nil
}
