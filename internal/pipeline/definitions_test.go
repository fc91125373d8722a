package pipeline

import (
	"strings"
	"testing"
)

func TestNestedNamesUnderAnonymousCallables(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"app.js": `const a = () => {
  function helper() {}
};
const b = () => {
  function helper() {}
};
const c = () => {
  class Widget {}
};
const d = () => {
  class Widget {}
};
`,
		"callbacks.js": `run(function () {
  function helper() {}
});
run(function () {
  function helper() {}
});
`,
		"mod.lua": `a = function()
  local function helper() end
end
b = function()
  local function helper() end
end
`,
		"tasks.py": `def a():
    def helper():
        pass

def b():
    def helper():
        pass
`,
	})
	r.run(false)

	for _, qn := range []string{
		"proj.app.a.helper",
		"proj.app.b.helper",
		"proj.app.c.Widget",
		"proj.app.d.Widget",
		"proj.callbacks.anonymous_0_4.helper",
		"proj.callbacks.anonymous_3_4.helper",
		"proj.mod.a.helper",
		"proj.mod.b.helper",
		"proj.tasks.a.helper",
		"proj.tasks.b.helper",
	} {
		if !r.hasNode(qn) {
			t.Errorf("missing %s", qn)
		}
	}
	if r.hasNode("proj.app.helper") || r.hasNode("proj.mod.helper") {
		t.Error("nested helpers must not collapse onto the module")
	}

	defs := r.edges("DEFINES")
	for _, want := range []string{
		"proj.app.a -> proj.app.a.helper",
		"proj.app.b -> proj.app.b.helper",
		"proj.mod.a -> proj.mod.a.helper",
	} {
		if !defs[want] {
			t.Errorf("missing DEFINES %s; have %v", want, defs)
		}
	}
}

func TestQualifiedNamesUnique(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"web/app.js": `const load = () => {
  function parse() {}
};
const save = () => {
  function parse() {}
};
class Store {
  parse() {}
}
`,
		"svc/jobs.py": `def parse():
    pass

class Job:
    def parse(self):
        pass
`,
		"lib/util.lua": `function parse() end
M = {}
M.parse = function()
  local function parse() end
end
`,
		"src/Parser.java": `class Parser {
  void parse() {}
  void parse(int n) {}
}
`,
	})
	r.run(false)

	nodes, err := r.store.AllNodes("proj")
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]string)
	parses := 0
	for _, n := range nodes {
		if prev, ok := seen[n.QualifiedName]; ok {
			t.Errorf("%s defined by %s and %s", n.QualifiedName, prev, n.FilePath)
		}
		seen[n.QualifiedName] = n.FilePath
		if n.Name == "parse" || n.Name == "M.parse" {
			parses++
		}
	}
	// Every parse definition in the fixture survives as its own node.
	if parses != 10 {
		t.Errorf("got %d parse definitions, want 10: %v", parses, seen)
	}
}

func TestEmptyAndCommentOnlyFiles(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"empty.py":   "",
		"notes.py":   "# nothing to see\n",
		"blank.js":   "// nothing here\n/* still nothing */\n",
		"spaces.lua": "\n\n  \n-- a comment\n",
	})
	stats := r.run(false)
	if stats.Ingested != 4 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 4 ingested and none failed", stats)
	}
	for _, qn := range []string{"proj.empty", "proj.notes", "proj.blank", "proj.spaces"} {
		if !r.hasNode(qn) {
			t.Errorf("missing module %s", qn)
		}
	}
	if n, _ := r.store.CountNodes("proj"); n != 4 {
		t.Errorf("expected only the 4 module nodes, got %d", n)
	}
	if defs := r.edges("DEFINES"); len(defs) != 0 {
		t.Errorf("expected no DEFINES, got %v", defs)
	}

	if again := r.run(false); again.Skipped != 4 || again.Ingested != 0 {
		t.Errorf("second run = %+v, want every file skipped", again)
	}
}

func TestNestedDeclarationsAreNotExported(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"app.js": `export function outer() {
  function inner() {}
}
export const Widget = class {
  render() {}
};
`,
	})
	r.run(false)

	exports := r.edges("EXPORTS")
	if !exports["proj.app -> proj.app.outer"] || !exports["proj.app -> proj.app.Widget"] {
		t.Errorf("module-level exports missing; have %v", exports)
	}
	if exports["proj.app -> proj.app.outer.inner"] {
		t.Error("a function nested in another must not be exported")
	}

	render, err := r.store.FindNodeByQN("proj", "proj.app.Widget.render")
	if err != nil {
		t.Fatalf("missing class expression method: %v", err)
	}
	if render.Label != "Method" {
		t.Errorf("render label %s, want Method", render.Label)
	}
	if methods := r.edges("DEFINES_METHOD"); !methods["proj.app.Widget -> proj.app.Widget.render"] {
		t.Errorf("expected DEFINES_METHOD for render; have %v", methods)
	}
}

func TestUnresolvedBaseKeepsSimpleName(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"x.cpp": "class D : public a::b::c::T<int> {};\n",
	})
	r.run(false)

	inh := r.edges("INHERITS")
	if !inh["proj.x.D -> proj.x.T"] {
		t.Errorf("expected INHERITS proj.x.D -> proj.x.T; have %v", inh)
	}
	if inh["proj.x.D -> proj.x.a.b.c.T"] {
		t.Error("namespace qualifiers of an unresolved base must be dropped")
	}
}

func TestFailedFileKeepsItsFacts(t *testing.T) {
	leaf := "from base import Base\n\nclass Leaf(Base):\n    def run(self):\n        pass\n"
	r := newTestRepo(t, map[string]string{
		"base.py": "class Base:\n    def run(self):\n        pass\n",
		"leaf.py": leaf,
	})
	r.run(false)
	const override = "proj.leaf.Leaf.run -> proj.base.Base.run"
	if !r.edges("OVERRIDES")[override] {
		t.Fatalf("expected OVERRIDES %s; have %v", override, r.edges("OVERRIDES"))
	}

	// leaf.py grows past the size limit while base.py changes, so the
	// derived edges are recomputed without leaf.py being ingested.
	r.write("leaf.py", leaf+"#"+strings.Repeat("-", 200)+"\n")
	r.write("base.py", "class Base:\n    def run(self):\n        return 1\n")
	stats := r.run(false, WithMaxFileSize(150))
	if stats.Failed != 1 || stats.Ingested != 1 {
		t.Fatalf("stats = %+v, want 1 failed and 1 ingested", stats)
	}

	if !r.hasNode("proj.leaf.Leaf.run") {
		t.Error("failed file lost its nodes")
	}
	if !r.edges("INHERITS")["proj.leaf.Leaf -> proj.base.Base"] {
		t.Error("failed file lost its INHERITS edge")
	}
	if !r.edges("OVERRIDES")[override] {
		t.Errorf("derived edges of a failed file must survive; have %v", r.edges("OVERRIDES"))
	}
	if !r.edges("DEFINES_METHOD")["proj.leaf.Leaf -> proj.leaf.Leaf.run"] {
		t.Error("failed file lost its DEFINES_METHOD edge")
	}

	// Without the limit the file is retried.
	if again := r.run(false); again.Ingested != 1 || again.Failed != 0 {
		t.Errorf("retry = %+v, want leaf.py ingested", again)
	}
}

func TestJavaOverridesPairBySignature(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"Shapes.java": `class Base {
  void run() {}
  void run(int n) {}
}
class Leaf extends Base {
  void run(int n) {}
}
`,
	})
	r.run(false)

	ov := r.edges("OVERRIDES")
	if !ov["proj.Shapes.Leaf.run(int) -> proj.Shapes.Base.run(int)"] {
		t.Errorf("run(int) should override run(int); have %v", ov)
	}
	if ov["proj.Shapes.Leaf.run(int) -> proj.Shapes.Base.run"] {
		t.Error("an overload with another signature is not overridden")
	}
}
