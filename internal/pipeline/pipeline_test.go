package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/store"
)

var goProject = map[string]string{
	"main.go": `package main

func main() {
	result := Add(1, 2)
	_ = result
}

func Add(a, b int) int {
	return a + b
}
`,
	"service/service.go": `package service

func ProcessOrder(id string) error {
	return nil
}

func SubmitOrder(order interface{}) error {
	ProcessOrder("test")
	return nil
}
`,
}

func TestPipelineRun(t *testing.T) {
	r := newTestRepo(t, goProject)
	stats := r.run(false)

	if stats.Discovered != 2 || stats.Ingested != 2 {
		t.Fatalf("discovered=%d ingested=%d, want 2/2", stats.Discovered, stats.Ingested)
	}
	for _, qn := range []string{
		"proj.main",
		"proj.main.main",
		"proj.main.Add",
		"proj.service.service",
		"proj.service.service.ProcessOrder",
		"proj.service.service.SubmitOrder",
	} {
		if !r.hasNode(qn) {
			t.Errorf("missing node %s", qn)
		}
	}

	calls := r.edges("CALLS")
	for _, want := range []string{
		"proj.main.main -> proj.main.Add",
		"proj.service.service.SubmitOrder -> proj.service.service.ProcessOrder",
	} {
		if !calls[want] {
			t.Errorf("missing CALLS %s; have %v", want, calls)
		}
	}

	defines := r.edges("DEFINES")
	if !defines["proj.main -> proj.main.Add"] {
		t.Errorf("missing DEFINES proj.main -> proj.main.Add; have %v", defines)
	}
	exports := r.edges("EXPORTS")
	if !exports["proj.service.service -> proj.service.service.ProcessOrder"] {
		t.Errorf("exported Go function should be EXPORTS; have %v", exports)
	}
	if exports["proj.main -> proj.main.main"] {
		t.Error("lowercase Go function must not be exported")
	}
}

func TestPipelinePythonProject(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"main.py": `
def greet(name):
    return f"Hello, {name}"

def process():
    result = greet("world")
    print(result)
    return result
`,
		"utils.py": `
def fetch_data(url):
    pass

class DataProcessor:
    def transform(self, data):
        return self.clean(data)

    def clean(self, data):
        return data
`,
	})
	r.run(false)

	funcs, _ := r.store.FindNodesByLabel("proj", "Function")
	if len(funcs) != 3 {
		t.Errorf("expected 3 functions, got %d", len(funcs))
	}
	methods, _ := r.store.FindNodesByLabel("proj", "Method")
	if len(methods) != 2 {
		t.Errorf("expected 2 methods, got %d", len(methods))
	}

	dm := r.edges("DEFINES_METHOD")
	if !dm["proj.utils.DataProcessor -> proj.utils.DataProcessor.transform"] {
		t.Errorf("missing DEFINES_METHOD; have %v", dm)
	}

	calls := r.edges("CALLS")
	for _, want := range []string{
		"proj.main.process -> proj.main.greet",
		"proj.main.process -> builtin.python.print",
		"proj.utils.DataProcessor.transform -> proj.utils.DataProcessor.clean",
	} {
		if !calls[want] {
			t.Errorf("missing CALLS %s; have %v", want, calls)
		}
	}
	if !r.hasNode("builtin.python.print") {
		t.Error("unresolved call should create an External sentinel")
	}
}

// TestGoCrossPackageCallViaImport verifies that a Go function that imports
// package svc and calls svc.ProcessOrder() gets a CALLS edge resolved.
func TestGoCrossPackageCallViaImport(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"svc/handler.go": `package svc

func ProcessOrder(id string) error {
	return nil
}
`,
		"main.go": `package main

import "example.com/proj/svc"

func run() {
	svc.ProcessOrder("123")
}
`,
	})
	r.run(false)

	calls := r.edges("CALLS")
	if !calls["proj.main.run -> proj.svc.handler.ProcessOrder"] {
		t.Errorf("expected CALLS via import; have %v", calls)
	}
	imports := r.edges("IMPORTS")
	if !imports["proj.main -> proj.svc"] {
		t.Errorf("expected IMPORTS proj.main -> proj.svc; have %v", imports)
	}
}

// TestPythonCrossModuleCallViaImport verifies that "from utils import
// fetch_data" followed by fetch_data() resolves into utils.
func TestPythonCrossModuleCallViaImport(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"utils.py": `
def fetch_data(url):
    return url
`,
		"main.py": `
from utils import fetch_data
import os.path as osp

def run():
    fetch_data("x")
    osp.join("a", "b")
`,
	})
	r.run(false)

	calls := r.edges("CALLS")
	if !calls["proj.main.run -> proj.utils.fetch_data"] {
		t.Errorf("expected CALLS via from-import; have %v", calls)
	}
	imports := r.edges("IMPORTS")
	if !imports["proj.main -> proj.utils"] {
		t.Errorf("expected IMPORTS proj.main -> proj.utils; have %v", imports)
	}
	if !imports["proj.main -> os.path"] {
		t.Errorf("external import should keep its dotted target; have %v", imports)
	}
}

func TestJavaScriptRelativeImport(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"lib/util.js": `
export function helper() {
  return 1;
}
`,
		"app.js": `
import { helper } from './lib/util';

function main() {
  helper();
}
`,
	})
	r.run(false)

	if calls := r.edges("CALLS"); !calls["proj.app.main -> proj.lib.util.helper"] {
		t.Errorf("expected CALLS into lib/util; have %v", calls)
	}
	if imports := r.edges("IMPORTS"); !imports["proj.app -> proj.lib.util"] {
		t.Errorf("expected IMPORTS proj.app -> proj.lib.util; have %v", imports)
	}
}

func TestGoTypeClassification(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"types.go": `package types

type Server struct {
	addr string
}

type Handler interface {
	Serve()
}

type ID string

type (
	Point struct{ X, Y int }
	Shape interface{ Area() float64 }
)
`,
	})
	r.run(false)

	want := map[string]string{
		"proj.types.Server":  "Class",
		"proj.types.Handler": "Interface",
		"proj.types.ID":      "Type",
		"proj.types.Point":   "Class",
		"proj.types.Shape":   "Interface",
	}
	for qn, label := range want {
		n, err := r.store.FindNodeByQN("proj", qn)
		if err != nil {
			t.Errorf("missing %s: %v", qn, err)
			continue
		}
		if n.Label != label {
			t.Errorf("%s: label %s, want %s", qn, n.Label, label)
		}
	}
}

func TestGoReceiverMethodsAcrossFiles(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"server/types.go": `package server

type Server struct{}
`,
		"server/run.go": `package server

func (s *Server) Start() {
	s.listen()
}

func (s *Server) listen() {}
`,
	})
	r.run(false)

	dm := r.edges("DEFINES_METHOD")
	for _, want := range []string{
		"proj.server.types.Server -> proj.server.run.Server.Start",
		"proj.server.types.Server -> proj.server.run.Server.listen",
	} {
		if !dm[want] {
			t.Errorf("missing DEFINES_METHOD %s; have %v", want, dm)
		}
	}
	if calls := r.edges("CALLS"); !calls["proj.server.run.Server.Start -> proj.server.run.Server.listen"] {
		t.Errorf("receiver call should resolve to the sibling method; have %v", calls)
	}
}

func TestGoImplements(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"shapes.go": `package shapes

type Shape interface {
	Area() float64
	Perimeter() float64
}

type Square struct{ s float64 }

func (q Square) Area() float64      { return q.s * q.s }
func (q Square) Perimeter() float64 { return 4 * q.s }

type Line struct{}

func (l Line) Area() float64 { return 0 }
`,
	})
	r.run(false)

	impl := r.edges("IMPLEMENTS")
	if !impl["proj.shapes.Square -> proj.shapes.Shape"] {
		t.Errorf("Square should implement Shape; have %v", impl)
	}
	if impl["proj.shapes.Line -> proj.shapes.Shape"] {
		t.Error("Line is missing Perimeter and must not implement Shape")
	}
}

func TestOverridesNearestAncestor(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"shapes.py": `
class Base:
    def run(self):
        pass

class Mid(Base):
    def run(self):
        pass

class Leaf(Mid):
    def run(self):
        super().run()
`,
	})
	r.run(false)

	inh := r.edges("INHERITS")
	for _, want := range []string{
		"proj.shapes.Mid -> proj.shapes.Base",
		"proj.shapes.Leaf -> proj.shapes.Mid",
	} {
		if !inh[want] {
			t.Errorf("missing INHERITS %s; have %v", want, inh)
		}
	}

	ov := r.edges("OVERRIDES")
	if !ov["proj.shapes.Leaf.run -> proj.shapes.Mid.run"] {
		t.Errorf("Leaf.run should override Mid.run; have %v", ov)
	}
	if ov["proj.shapes.Leaf.run -> proj.shapes.Base.run"] {
		t.Error("only the nearest ancestor is overridden")
	}
	if !ov["proj.shapes.Mid.run -> proj.shapes.Base.run"] {
		t.Errorf("Mid.run should override Base.run; have %v", ov)
	}
	if calls := r.edges("CALLS"); !calls["proj.shapes.Leaf.run -> proj.shapes.Mid.run"] {
		t.Errorf("super().run() should resolve to Mid.run; have %v", calls)
	}
}

func TestCyclicInheritanceTerminates(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"cycle.py": `
class A(B):
    def f(self):
        self.g()

class B(A):
    def g(self):
        pass
`,
	})
	r.run(false)

	inh := r.edges("INHERITS")
	if !inh["proj.cycle.A -> proj.cycle.B"] || !inh["proj.cycle.B -> proj.cycle.A"] {
		t.Errorf("both INHERITS edges should be kept; have %v", inh)
	}
	if calls := r.edges("CALLS"); !calls["proj.cycle.A.f -> proj.cycle.B.g"] {
		t.Errorf("inherited member lookup should find B.g; have %v", calls)
	}
}

func TestIncrementalCache(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"a.py": "def alpha():\n    return beta()\n",
		"b.py": "def beta():\n    return 1\n",
		"c.py": "def gamma():\n    return 2\n",
	})

	first := r.run(false)
	if first.Ingested != 3 {
		t.Fatalf("first run ingested %d, want 3", first.Ingested)
	}

	second := r.run(false)
	if second.Ingested != 0 || second.Skipped != 3 {
		t.Fatalf("second run ingested=%d skipped=%d, want 0/3", second.Ingested, second.Skipped)
	}

	r.write("b.py", "def beta():\n    return 1\n\ndef delta():\n    return 3\n")
	third := r.run(false)
	if third.Ingested != 1 || third.Skipped != 2 {
		t.Fatalf("third run ingested=%d skipped=%d, want 1/2", third.Ingested, third.Skipped)
	}
	if !r.hasNode("proj.b.delta") {
		t.Error("new function in changed file not indexed")
	}
	if calls := r.edges("CALLS"); !calls["proj.a.alpha -> proj.b.beta"] {
		t.Errorf("unchanged caller lost its edge; have %v", calls)
	}

	r.remove("c.py")
	fourth := r.run(false)
	if fourth.Removed != 1 || fourth.Ingested != 0 {
		t.Fatalf("fourth run removed=%d ingested=%d, want 1/0", fourth.Removed, fourth.Ingested)
	}
	if r.hasNode("proj.c.gamma") || r.hasNode("proj.c") {
		t.Error("symbols of a deleted file should be gone")
	}

	forced := r.run(true)
	if forced.Ingested != 2 || forced.Skipped != 0 {
		t.Fatalf("forced run ingested=%d skipped=%d, want 2/0", forced.Ingested, forced.Skipped)
	}
}

func TestChangedFileDropsStaleSymbols(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"m.py": "def old():\n    pass\n",
	})
	r.run(false)
	r.write("m.py", "def renamed():\n    pass\n")
	r.run(false)

	if r.hasNode("proj.m.old") {
		t.Error("renamed function left a stale node")
	}
	if !r.hasNode("proj.m.renamed") {
		t.Error("renamed function missing")
	}
}

func TestMissingFactsForcesReingest(t *testing.T) {
	r := newTestRepo(t, goProject)
	r.run(false)

	// A fresh store with the old cache must not skip anything.
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	r.store = s
	stats := r.run(false)
	if stats.Ingested != 2 {
		t.Fatalf("ingested %d, want 2", stats.Ingested)
	}
}

func TestDeterministicFacts(t *testing.T) {
	files := map[string]string{
		"a.py": `
from b import Helper

class Service(Helper):
    def run(self):
        self.assist()
        Helper.build()
`,
		"b.py": `
class Helper:
    def assist(self):
        pass

    @staticmethod
    def build():
        pass
`,
	}
	snapshot := func(r *testRepo) []string {
		var out []string
		for _, rel := range []string{"DEFINES", "DEFINES_METHOD", "INHERITS", "IMPORTS", "CALLS", "OVERRIDES"} {
			for e := range r.edges(rel) {
				out = append(out, rel+" "+e)
			}
		}
		nodes, _ := r.store.Symbols("proj")
		for _, n := range nodes {
			out = append(out, string(n.Kind)+" "+n.QualifiedName)
		}
		sort.Strings(out)
		return out
	}

	r1 := newTestRepo(t, files)
	r1.run(false)
	first := snapshot(r1)
	r1.run(true)
	again := snapshot(r1)

	r2 := newTestRepo(t, files)
	r2.run(false)
	other := snapshot(r2)

	if len(first) == 0 {
		t.Fatal("no facts")
	}
	for _, got := range [][]string{again, other} {
		if len(got) != len(first) {
			t.Fatalf("fact count %d, want %d", len(got), len(first))
		}
		for i := range first {
			if got[i] != first[i] {
				t.Errorf("fact %d: %q != %q", i, got[i], first[i])
			}
		}
	}
}

func TestLanguageFilterKeepsOtherFacts(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
		"tool.py": "def tool():\n    pass\n",
	})
	r.run(false)

	stats, err := New(context.Background(), r.store, r.dir,
		WithCacheFile(r.cache), WithLanguages(lang.Go)).Run(true)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Discovered != 1 || stats.Removed != 0 {
		t.Fatalf("discovered=%d removed=%d, want 1/0", stats.Discovered, stats.Removed)
	}
	if !r.hasNode("proj.tool.tool") {
		t.Error("filtered-out language must not be treated as deleted")
	}
}

func TestBOMStripping(t *testing.T) {
	r := newTestRepo(t, nil)
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("package main\n\nfunc BOMFunc() {}\n")...)
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "bom.go"), src, 0o600); err != nil {
		t.Fatal(err)
	}
	r.run(false)

	if !r.hasNode("proj.bom.BOMFunc") {
		t.Error("BOMFunc not found, BOM stripping may have failed")
	}
}

// TestPipelineRunCancellation verifies that a pre-cancelled context makes Run() return context.Canceled.
func TestPipelineRunCancellation(t *testing.T) {
	r := newTestRepo(t, goProject)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, r.store, r.dir, WithCacheFile(r.cache)).Run(false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(r.cache); !os.IsNotExist(statErr) {
		t.Error("cancelled run must not write the hash cache")
	}
}

func TestProjectNameFromPath(t *testing.T) {
	tests := []struct{ path, want string }{
		{"/home/user/repo", "repo"},
		{"/Users/martin/projects/my.app", "my_app"},
		{"/tmp/with space", "with_space"},
		{"/", "root"},
	}
	for _, tt := range tests {
		got := ProjectNameFromPath(tt.path)
		if got != tt.want {
			t.Errorf("ProjectNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWithProjectOverridesName(t *testing.T) {
	p := New(context.Background(), nil, "/tmp/x", WithProject("custom"))
	if p.ProjectName != "custom" {
		t.Errorf("ProjectName = %q, want custom", p.ProjectName)
	}
	p = New(context.Background(), nil, "/tmp/x", WithProject(""))
	if p.ProjectName != "x" {
		t.Errorf("ProjectName = %q, want x", p.ProjectName)
	}
}
