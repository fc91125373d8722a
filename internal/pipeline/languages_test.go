package pipeline

import "testing"

func TestScriptingAndFunctionalLanguages(t *testing.T) {
	r := newTestRepo(t, map[string]string{
		"tools/build.sh": `setup() {
  echo ready
}

deploy() {
  setup
}
`,
		"lib/math.ex": `defmodule MyApp.Math do
  def add(a, b), do: a + b

  defp double(x) do
    add(x, x)
  end
end
`,
		"src/shapes.ml": `let area r = r *. r

let describe r =
  let helper x = area x in
  helper r

let () = print_endline "shapes"
`,
		"R/stats.R": `square <- function(x) x * x
total <- function(v) {
  sum(square(v))
}
`,
		"src/Lib.hs": `module Lib where

double :: Int -> Int
double x = x * 2

quad :: Int -> Int
quad x = double (double x)
`,
		"src/point.zig": `const Point = struct {
    x: i32,

    pub fn init(x: i32) Point {
        return Point{ .x = x };
    }
};
`,
	})
	stats := r.run(false)
	if stats.Failed != 0 {
		t.Fatalf("stats = %+v, want no failures", stats)
	}

	for _, qn := range []string{
		"proj.tools.build.setup",
		"proj.tools.build.deploy",
		"proj.lib.math.MyApp.Math.add",
		"proj.lib.math.MyApp.Math.double",
		"proj.src.shapes.area",
		"proj.src.shapes.describe",
		"proj.src.shapes.describe.helper",
		"proj.R.stats.square",
		"proj.R.stats.total",
		"proj.src.Lib.double",
		"proj.src.Lib.quad",
		"proj.src.point.Point",
	} {
		if !r.hasNode(qn) {
			t.Errorf("missing %s", qn)
		}
	}
	// Value bindings without parameters and non-def macro calls are not
	// functions.
	if r.hasNode("proj.src.shapes.anonymous_6_0") {
		t.Error("let () binding ingested as a function")
	}

	init, err := r.store.FindNodeByQN("proj", "proj.src.point.Point.init")
	if err != nil {
		t.Fatalf("missing struct method: %v", err)
	}
	if init.Label != "Method" {
		t.Errorf("Point.init label %s, want Method", init.Label)
	}

	calls := r.edges("CALLS")
	for _, want := range []string{
		"proj.tools.build.deploy -> proj.tools.build.setup",
		"proj.lib.math.MyApp.Math.double -> proj.lib.math.MyApp.Math.add",
		"proj.src.shapes.describe.helper -> proj.src.shapes.area",
		"proj.R.stats.total -> proj.R.stats.square",
		"proj.src.Lib.quad -> proj.src.Lib.double",
	} {
		if !calls[want] {
			t.Errorf("missing CALLS %s", want)
		}
	}
	for edge := range calls {
		if edge == "proj.lib.math.MyApp.Math.add -> proj.lib.math.MyApp.Math.add" {
			t.Error("a def head was treated as a call")
		}
	}

	exports := r.edges("EXPORTS")
	if !exports["proj.lib.math -> proj.lib.math.MyApp.Math.add"] {
		t.Errorf("def must be exported; have %v", exports)
	}
	if exports["proj.lib.math -> proj.lib.math.MyApp.Math.double"] {
		t.Error("defp must not be exported")
	}
}
