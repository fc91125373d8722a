package pipeline

import (
	"testing"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/symbols"
)

func newDerivePipeline(syms ...symbols.Symbol) *Pipeline {
	p := &Pipeline{
		ProjectName: "test-proj",
		registry:    symbols.NewRegistry(),
		hierarchy:   symbols.NewHierarchy(),
	}
	for _, s := range syms {
		p.registry.Register(s)
	}
	return p
}

func relSet(rels []graph.Relationship) map[string]bool {
	out := make(map[string]bool, len(rels))
	for _, r := range rels {
		out[r.From.Value+" -> "+r.To.Value] = true
	}
	return out
}

func TestPassImplementsMatchesMethodSets(t *testing.T) {
	p := newDerivePipeline(
		symbols.Symbol{QualifiedName: "pkg.reader.Reader", Name: "Reader", Kind: graph.Interface, Language: "go", File: "pkg/reader.go"},
		symbols.Symbol{QualifiedName: "pkg.reader.Reader.Read", Name: "Read", Kind: graph.Method, Language: "go", File: "pkg/reader.go", Owner: "pkg.reader.Reader"},
		symbols.Symbol{QualifiedName: "pkg.reader.Reader.Close", Name: "Close", Kind: graph.Method, Language: "go", File: "pkg/reader.go", Owner: "pkg.reader.Reader"},

		symbols.Symbol{QualifiedName: "pkg.file.FileReader", Name: "FileReader", Kind: graph.Class, Language: "go", File: "pkg/file.go"},
		symbols.Symbol{QualifiedName: "pkg.file.FileReader.Read", Name: "Read", Kind: graph.Method, Language: "go", File: "pkg/file.go", Receiver: "FileReader"},
		symbols.Symbol{QualifiedName: "pkg.file.FileReader.Close", Name: "Close", Kind: graph.Method, Language: "go", File: "pkg/file.go", Receiver: "FileReader"},

		symbols.Symbol{QualifiedName: "pkg.half.HalfReader", Name: "HalfReader", Kind: graph.Class, Language: "go", File: "pkg/half.go"},
		symbols.Symbol{QualifiedName: "pkg.half.HalfReader.Read", Name: "Read", Kind: graph.Method, Language: "go", File: "pkg/half.go", Receiver: "HalfReader"},
	)

	derived := p.derive()

	impl := relSet(derived[graph.Implements])
	if !impl["pkg.file.FileReader -> pkg.reader.Reader"] {
		t.Errorf("FileReader should implement Reader; have %v", impl)
	}
	if impl["pkg.half.HalfReader -> pkg.reader.Reader"] {
		t.Error("HalfReader lacks Close and must not implement Reader")
	}

	dm := relSet(derived[graph.DefinesMethod])
	if !dm["pkg.file.FileReader -> pkg.file.FileReader.Close"] {
		t.Errorf("receiver method not attached; have %v", dm)
	}
	if s, _ := p.registry.Lookup("pkg.half.HalfReader.Read"); s.Owner != "pkg.half.HalfReader" {
		t.Errorf("owner = %q after attach", s.Owner)
	}
}

func TestPassImplementsIgnoresOtherLanguages(t *testing.T) {
	p := newDerivePipeline(
		symbols.Symbol{QualifiedName: "m.I", Name: "I", Kind: graph.Interface, Language: "java", File: "m/I.java"},
		symbols.Symbol{QualifiedName: "m.I.run", Name: "run", Kind: graph.Method, Language: "java", File: "m/I.java", Owner: "m.I"},
		symbols.Symbol{QualifiedName: "m.C", Name: "C", Kind: graph.Class, Language: "java", File: "m/C.java"},
		symbols.Symbol{QualifiedName: "m.C.run", Name: "run", Kind: graph.Method, Language: "java", File: "m/C.java", Owner: "m.C"},
	)
	if got := p.derive()[graph.Implements]; len(got) != 0 {
		t.Errorf("structural implements is Go only; got %v", relSet(got))
	}
}

func TestPassOverridesDiamondPrefersFirstBase(t *testing.T) {
	p := newDerivePipeline(
		symbols.Symbol{QualifiedName: "m.A.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.A"},
		symbols.Symbol{QualifiedName: "m.B.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.B"},
		symbols.Symbol{QualifiedName: "m.C.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.C"},
		symbols.Symbol{QualifiedName: "m.D.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.D"},
	)
	// D(B, C), B(A), C(A)
	p.hierarchy.Add("m.D", "m.B", "m.py")
	p.hierarchy.Add("m.D", "m.C", "m.py")
	p.hierarchy.Add("m.B", "m.A", "m.py")
	p.hierarchy.Add("m.C", "m.A", "m.py")

	ov := relSet(p.derive()[graph.Overrides])
	if !ov["m.D.f -> m.B.f"] {
		t.Errorf("D.f should override B.f; have %v", ov)
	}
	if ov["m.D.f -> m.C.f"] || ov["m.D.f -> m.A.f"] {
		t.Errorf("only one override per method; have %v", ov)
	}
	if !ov["m.B.f -> m.A.f"] || !ov["m.C.f -> m.A.f"] {
		t.Errorf("B.f and C.f should override A.f; have %v", ov)
	}
}

func TestPassOverridesCycle(t *testing.T) {
	p := newDerivePipeline(
		symbols.Symbol{QualifiedName: "m.A.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.A"},
		symbols.Symbol{QualifiedName: "m.B.f", Name: "f", Kind: graph.Method, File: "m.py", Owner: "m.B"},
	)
	p.hierarchy.Add("m.A", "m.B", "m.py")
	p.hierarchy.Add("m.B", "m.A", "m.py")

	ov := relSet(p.derive()[graph.Overrides])
	if len(ov) != 2 || !ov["m.A.f -> m.B.f"] || !ov["m.B.f -> m.A.f"] {
		t.Errorf("unexpected overrides %v", ov)
	}
}

func TestDeriveAlwaysCarriesEveryType(t *testing.T) {
	derived := newDerivePipeline().derive()
	for _, rt := range []graph.RelType{graph.DefinesMethod, graph.Overrides, graph.Implements} {
		if _, ok := derived[rt]; !ok {
			t.Errorf("derived set missing %s", rt)
		}
	}
}

func TestSatisfies(t *testing.T) {
	set := map[string]string{"Read": "x.Read", "Close": "x.Close"}
	if !satisfies([]string{"Read"}, set) {
		t.Error("subset should satisfy")
	}
	if satisfies([]string{"Read", "Write"}, set) {
		t.Error("missing Write should not satisfy")
	}
}
