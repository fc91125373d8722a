package fqn

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// resolveAll parses source and resolves every function-kind node.
func resolveAll(t *testing.T, l lang.Language, path, source string) map[string]bool {
	t.Helper()
	p := lang.ForLanguage(l)
	src := []byte(source)
	tree, err := parser.Parse(l, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	out := map[string]bool{}
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if p.IsFunction(n.Kind()) || p.IsClass(n.Kind()) {
			if qn, ok := Resolve(n, p, src, "/repo/"+path, "/repo", "proj"); ok {
				out[qn] = true
			}
		}
		return true
	})
	return out
}

func expectQNs(t *testing.T, got map[string]bool, want ...string) {
	t.Helper()
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing %s in %v", w, got)
		}
	}
}

func TestResolvePython(t *testing.T) {
	got := resolveAll(t, lang.Python, "pkg/service.py", `
class Outer:
    class Inner:
        def deep(self):
            pass

    def method(self):
        def helper():
            pass

def top():
    pass
`)
	expectQNs(t, got,
		"proj.pkg.service.Outer",
		"proj.pkg.service.Outer.Inner",
		"proj.pkg.service.Outer.Inner.deep",
		"proj.pkg.service.Outer.method",
		"proj.pkg.service.Outer.method.helper",
		"proj.pkg.service.top",
	)
}

func TestResolvePackageIndexCollapses(t *testing.T) {
	index := resolveAll(t, lang.Python, "pkg/__init__.py", "def f():\n    pass\n")
	sibling := resolveAll(t, lang.Python, "pkg/x.py", "def g():\n    pass\n")
	expectQNs(t, index, "proj.pkg.f")
	expectQNs(t, sibling, "proj.pkg.x.g")

	js := resolveAll(t, lang.JavaScript, "src/lib/index.js", "function boot() {}\n")
	expectQNs(t, js, "proj.src.lib.boot")
}

func TestResolveRustImplInsideMod(t *testing.T) {
	got := resolveAll(t, lang.Rust, "src/net/mod.rs", `
mod tcp {
    pub struct Conn;
    impl<T> Conn<T> {
        pub fn open(&self) {}
    }
}
fn free() {}
`)
	expectQNs(t, got,
		"proj.src.net.tcp.Conn",
		"proj.src.net.tcp.Conn.open",
		"proj.src.net.free",
	)
}

func TestResolveCppNamespace(t *testing.T) {
	got := resolveAll(t, lang.CPP, "src/shapes.cpp", `
namespace geo {
class Circle {
public:
    double area() { return 0; }
};
int helper(int x) { return x; }
}
`)
	expectQNs(t, got,
		"proj.src.shapes.geo.Circle",
		"proj.src.shapes.geo.Circle.area",
		"proj.src.shapes.geo.helper",
	)
}

func TestResolveAnonymousFails(t *testing.T) {
	got := resolveAll(t, lang.JavaScript, "app.js", "const handler = () => 1;\n")
	if len(got) != 0 {
		t.Errorf("arrow function should not resolve without a handler, got %v", got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	src := "class A:\n    def m(self):\n        pass\n"
	first := resolveAll(t, lang.Python, "a.py", src)
	for i := 0; i < 3; i++ {
		again := resolveAll(t, lang.Python, "a.py", src)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %v, want %v", i, again, first)
		}
		for qn := range first {
			if !again[qn] {
				t.Fatalf("run %d: missing %s", i, qn)
			}
		}
	}
}

func TestModuleAndFolderQN(t *testing.T) {
	p := lang.ForLanguage(lang.Python)
	if got := ModuleQN(p, "proj", "/repo/a/b.py", "/repo"); got != "proj.a.b" {
		t.Errorf("ModuleQN = %s", got)
	}
	if got := ModuleQN(p, "proj", "/repo/__init__.py", "/repo"); got != "proj" {
		t.Errorf("root index ModuleQN = %s", got)
	}
	if got := FolderQN("proj", "a/b"); got != "proj.a.b" {
		t.Errorf("FolderQN = %s", got)
	}
	if got := FolderQN("proj", "."); got != "proj" {
		t.Errorf("FolderQN(.) = %s", got)
	}
	if got := Join("proj.a", "", "B", "m"); got != "proj.a.B.m" {
		t.Errorf("Join = %s", got)
	}
	if got := PathToDotted("./lib/util.js"); got != "lib.util" {
		t.Errorf("PathToDotted = %s", got)
	}
}
