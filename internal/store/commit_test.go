package store

import (
	"context"
	"testing"

	"github.com/DeusData/codegraph/internal/graph"
)

func fileBatch(path, module string, funcs ...string) *graph.Batch {
	b := graph.NewBatch(path, "python")
	b.EnsureNode(graph.Module, map[string]any{graph.KeyQualifiedName: module, "name": graph.SimpleName(module), "language": "python"})
	for i, f := range funcs {
		qn := module + "." + f
		b.EnsureNode(graph.Function, map[string]any{
			graph.KeyQualifiedName: qn, "name": f,
			"start_line": i + 1, "end_line": i + 2, "language": "python",
		})
		b.EnsureRelationship(graph.QN(graph.Module, module), graph.Defines, graph.QN(graph.Function, qn), nil)
	}
	return b
}

func TestCommitReplacesFileFacts(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	first := &graph.Changes{Project: "test", RootPath: "/tmp/test", Batches: []*graph.Batch{
		fileBatch("a.py", "test.a", "f", "g"),
		fileBatch("b.py", "test.b", "h"),
	}}
	if err := s.Commit(ctx, first); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n, _ := s.CountNodes("test"); n != 5 {
		t.Fatalf("expected 5 nodes, got %d", n)
	}

	// a.py now defines only f.
	second := &graph.Changes{Project: "test", RootPath: "/tmp/test", Batches: []*graph.Batch{
		fileBatch("a.py", "test.a", "f"),
	}}
	if err := s.Commit(ctx, second); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := s.FindNodeByQN("test", "test.a.g"); err == nil {
		t.Error("expected test.a.g to be gone")
	}
	if _, err := s.FindNodeByQN("test", "test.b.h"); err != nil {
		t.Errorf("unchanged file lost its node: %v", err)
	}
	defs, _ := s.FindEdgesBySource("test", "test.a", string(graph.Defines))
	if len(defs) != 1 {
		t.Errorf("expected 1 DEFINES edge from test.a, got %d", len(defs))
	}

	f, err := s.FindNodeByQN("test", "test.a.f")
	if err != nil {
		t.Fatalf("FindNodeByQN: %v", err)
	}
	if f.FilePath != "a.py" || f.StartLine != 1 || f.EndLine != 2 {
		t.Errorf("unexpected row: %+v", f)
	}
	if _, ok := f.Properties[graph.KeyQualifiedName]; ok {
		t.Error("qualified_name should not be duplicated in properties")
	}
}

func TestCommitRemovedFile(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	b := fileBatch("a.py", "test.a", "f")
	b.EnsureRelationship(graph.QN(graph.Function, "test.a.f"), graph.Calls, graph.QN(graph.Function, "test.b.h"), nil)
	if err := s.Commit(ctx, &graph.Changes{Project: "test", Batches: []*graph.Batch{b, fileBatch("b.py", "test.b", "h")}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Commit(ctx, &graph.Changes{Project: "test", Removed: []string{"a.py"}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	nodes, _ := s.FindNodesByFile("test", "a.py")
	if len(nodes) != 0 {
		t.Errorf("expected a.py nodes removed, got %d", len(nodes))
	}
	in, _ := s.FindEdgesByTarget("test", "test.b.h", string(graph.Calls))
	if len(in) != 0 {
		t.Errorf("expected call from removed file to be gone, got %d", len(in))
	}
	paths, err := s.FilePaths("test")
	if err != nil {
		t.Fatalf("FilePaths: %v", err)
	}
	if len(paths) != 1 || paths[0] != "b.py" {
		t.Errorf("unexpected file paths: %v", paths)
	}
}

func TestCommitDerivedReplacement(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	override := func(from, to string) graph.Relationship {
		return graph.Relationship{From: graph.QN(graph.Method, from), Type: graph.Overrides, To: graph.QN(graph.Method, to)}
	}
	c := &graph.Changes{Project: "test", Derived: map[graph.RelType][]graph.Relationship{
		graph.Overrides: {override("test.a.B.run", "test.a.A.run"), override("test.a.B.run", "test.a.A.run")},
	}}
	if err := s.Commit(ctx, c); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	c = &graph.Changes{Project: "test", Derived: map[graph.RelType][]graph.Relationship{
		graph.Overrides: {override("test.a.C.run", "test.a.A.run")},
	}}
	if err := s.Commit(ctx, c); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	edges, err := s.FindEdgesByType("test", string(graph.Overrides))
	if err != nil {
		t.Fatalf("FindEdgesByType: %v", err)
	}
	if len(edges) != 1 || edges[0].SourceQN != "test.a.C.run" || edges[0].FilePath != "" {
		t.Errorf("unexpected derived edges: %+v", edges)
	}
}

func TestCommitPrunesUnreferencedExternals(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	sentinel := graph.BuiltinQN("python", "print")
	b := fileBatch("a.py", "test.a", "f")
	b.EnsureNode(graph.External, map[string]any{graph.KeyQualifiedName: sentinel, "name": "print"})
	b.EnsureRelationship(graph.QN(graph.Function, "test.a.f"), graph.Calls, graph.QN(graph.External, sentinel), nil)
	if err := s.Commit(ctx, &graph.Changes{Project: "test", Batches: []*graph.Batch{b}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	ext, err := s.FindNodeByQN("test", sentinel)
	if err != nil {
		t.Fatalf("expected sentinel node: %v", err)
	}
	if ext.FilePath != "" {
		t.Errorf("sentinel should be unowned, got %q", ext.FilePath)
	}

	if err := s.Commit(ctx, &graph.Changes{Project: "test", Batches: []*graph.Batch{fileBatch("a.py", "test.a", "f")}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := s.FindNodeByQN("test", sentinel); err == nil {
		t.Error("expected unreferenced sentinel to be pruned")
	}
}

func TestCommitCancelledLeavesStoreUntouched(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Commit(ctx, &graph.Changes{Project: "test", Batches: []*graph.Batch{fileBatch("a.py", "test.a", "f")}})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if n, _ := s.CountNodes("test"); n != 0 {
		t.Errorf("expected no nodes after failed commit, got %d", n)
	}
}

func TestCommitEmptyChangesIsNoop(t *testing.T) {
	s := openTest(t)
	if err := s.Commit(context.Background(), &graph.Changes{Project: "test", RootPath: "/tmp/test"}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := s.GetProject("test"); err == nil {
		t.Error("empty changes should not register the project")
	}
}

func TestSymbolsSeedRegistry(t *testing.T) {
	s := openTest(t)

	b := fileBatch("a.go", "test.a", "Run")
	b.EnsureNode(graph.Method, map[string]any{
		graph.KeyQualifiedName: "test.a.Server.Start", "name": "Start",
		"language": "go", "owner": "test.a.Server", "receiver": "Server",
	})
	sentinel := graph.BuiltinQN("go", "len")
	b.EnsureNode(graph.External, map[string]any{graph.KeyQualifiedName: sentinel, "name": "len"})
	b.EnsureRelationship(graph.QN(graph.Function, "test.a.Run"), graph.Calls, graph.QN(graph.External, sentinel), nil)
	if err := s.Commit(context.Background(), &graph.Changes{Project: "test", Batches: []*graph.Batch{b}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	syms, err := s.Symbols("test")
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if len(syms) != 3 {
		t.Fatalf("expected 3 symbols (externals excluded), got %d", len(syms))
	}
	var start bool
	for _, sym := range syms {
		if sym.QualifiedName == "test.a.Server.Start" {
			start = true
			if sym.Kind != graph.Method || sym.Owner != "test.a.Server" || sym.Receiver != "Server" || sym.File != "a.go" {
				t.Errorf("unexpected method symbol: %+v", sym)
			}
		}
	}
	if !start {
		t.Error("method symbol missing")
	}
}
