package pipeline

import (
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/parser"
	"github.com/DeusData/codegraph/internal/symbols"
)

// definition is an ingested symbol keyed by its CST node.
type definition struct {
	qn    string
	label graph.Label
}

// pendingBase is a declared supertype resolved once all changed files
// have registered their symbols.
type pendingBase struct {
	classQN    string
	classLabel graph.Label
	ref        handler.BaseRef
}

// ingestDefinitions walks the tree once. Class-kind nodes bring their
// methods with them; function-kind nodes inside a class are left to the
// class unless they sit in an object literal returned from a method.
func (p *Pipeline) ingestDefinitions(pf *parsedFile) {
	prof := pf.file.Profile
	parser.Walk(pf.tree.RootNode(), func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		switch {
		case prof.IsClass(kind):
			p.ingestClass(pf, n)
		case prof.IsFunction(kind):
			if !insideClass(pf, n) || pf.h.InsideObjectLiteralMethod(n) {
				p.ingestFunction(pf, n)
			}
		}
		return true
	})
}

func insideClass(pf *parsedFile, n *tree_sitter.Node) bool {
	if pf.h.IsClassMethod(n) {
		return true
	}
	prof := pf.file.Profile
	return parser.FindAncestor(n,
		func(a *tree_sitter.Node) bool { return prof.IsClass(a.Kind()) },
		func(a *tree_sitter.Node) bool { return prof.IsModule(a.Kind()) },
	) != nil
}

func (p *Pipeline) ingestFunction(pf *parsedFile, n *tree_sitter.Node) {
	f, h := pf.file, pf.h
	name, ok := h.FunctionName(n, f)
	if !ok {
		return
	}

	label := graph.Function
	var qn, receiver string
	if owner, isMethod := h.OutOfLineOwner(n, f); isMethod {
		qn = h.MethodQN(owner, name, n, f)
		label = graph.Method
		receiver = graph.SimpleName(owner)
	} else if qn, ok = h.FunctionQN(n, f, name); !ok {
		return
	}

	exported := isExported(h, n, f, name)
	props := p.definitionProps(pf, n, qn, name, exported)
	if receiver != "" {
		props["receiver"] = receiver
	}
	noteDuplicate(pf, qn)
	pf.batch.EnsureNode(label, props)
	p.registry.Register(symbols.Symbol{
		QualifiedName: qn,
		Name:          name,
		Kind:          label,
		Language:      string(pf.info.Language),
		File:          pf.info.RelPath,
		Receiver:      receiver,
	})
	pf.defs[n.Id()] = definition{qn: qn, label: label}

	parent := p.lexicalParent(pf, n)
	pf.batch.EnsureRelationship(graph.QN(parent.label, parent.qn), graph.Defines, graph.QN(label, qn), nil)
	if exported {
		pf.batch.EnsureRelationship(graph.QN(graph.Module, f.ModuleQN), graph.Exports, graph.QN(label, qn), nil)
	}
}

// isExported ignores export markers on declarations nested in a function
// body; only module-level declarations are exported.
func isExported(h handler.Handler, n *tree_sitter.Node, f *handler.File, name string) bool {
	return h.IsExported(n, f, name) && !h.IsExportInsideFunction(n)
}

// noteDuplicate logs a definition whose QN the file already produced. The
// later definition replaces the earlier one.
func noteDuplicate(pf *parsedFile, qn string) {
	if pf.batch.HasNode(qn) {
		slog.Debug("pipeline.duplicate_qn", "path", pf.info.RelPath, "qn", qn)
	}
}

// lexicalParent returns the nearest enclosing ingested function, or the module.
func (p *Pipeline) lexicalParent(pf *parsedFile, n *tree_sitter.Node) definition {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if d, ok := pf.defs[cur.Id()]; ok && d.label.IsCallable() {
			return d
		}
	}
	return definition{qn: pf.file.ModuleQN, label: graph.Module}
}

// enclosing returns the nearest enclosing ingested definition of any
// kind, or the module. Calls are attributed to it.
func (p *Pipeline) enclosing(pf *parsedFile, n *tree_sitter.Node) definition {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if d, ok := pf.defs[cur.Id()]; ok {
			return d
		}
	}
	return definition{qn: pf.file.ModuleQN, label: graph.Module}
}

func (p *Pipeline) definitionProps(pf *parsedFile, n *tree_sitter.Node, qn, name string, exported bool) map[string]any {
	start, end := parser.LineRange(n)
	props := map[string]any{
		graph.KeyQualifiedName: qn,
		"name":                 name,
		"start_line":           start,
		"end_line":             end,
		"path":                 pf.info.RelPath,
		"language":             string(pf.info.Language),
		"is_exported":          exported,
	}
	if doc := extractDocstring(n, pf.file); doc != "" {
		props["docstring"] = doc
	}
	if decs := pf.h.Decorators(n, pf.file); len(decs) > 0 {
		props["decorators"] = decs
	}
	return props
}

func (p *Pipeline) ingestClass(pf *parsedFile, n *tree_sitter.Node) {
	f, h := pf.file, pf.h
	if h.IsImplBlock(n) {
		p.ingestImpl(pf, n)
		return
	}
	name, ok := h.ClassName(n, f)
	if !ok {
		return
	}
	qn := h.ClassQN(n, f, name)
	kind := h.ClassKind(n, f)
	exported := isExported(h, n, f, name)

	noteDuplicate(pf, qn)
	pf.batch.EnsureNode(kind, p.definitionProps(pf, n, qn, name, exported))
	p.registry.Register(symbols.Symbol{
		QualifiedName: qn,
		Name:          name,
		Kind:          kind,
		Language:      string(pf.info.Language),
		File:          pf.info.RelPath,
	})
	pf.defs[n.Id()] = definition{qn: qn, label: kind}

	module := graph.QN(graph.Module, f.ModuleQN)
	pf.batch.EnsureRelationship(module, graph.Defines, graph.QN(kind, qn), nil)
	if exported {
		pf.batch.EnsureRelationship(module, graph.Exports, graph.QN(kind, qn), nil)
	}

	for _, m := range p.classMethods(pf, n) {
		p.ingestMethod(pf, m, qn, kind)
	}
	for _, ref := range h.BaseClasses(n, f) {
		pf.bases = append(pf.bases, pendingBase{classQN: qn, classLabel: kind, ref: ref})
	}
}

// ingestImpl attaches the methods of a Rust impl block to its target type.
// A trait impl also records Target IMPLEMENTS Trait.
func (p *Pipeline) ingestImpl(pf *parsedFile, n *tree_sitter.Node) {
	f, h := pf.file, pf.h
	target, ok := h.ImplTarget(n, f)
	if !ok {
		return
	}
	targetQN, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project)
	if !ok {
		targetQN = fqn.Join(f.ModuleQN, target)
	}
	label := p.labelOf(targetQN, graph.Class)

	for _, m := range p.classMethods(pf, n) {
		p.ingestMethod(pf, m, targetQN, label)
	}
	if trait, ok := h.ImplTrait(n, f); ok {
		pf.bases = append(pf.bases, pendingBase{
			classQN:    targetQN,
			classLabel: label,
			ref:        handler.BaseRef{Name: trait, Implements: true},
		})
	}
}

// classMethods returns the function-kind descendants of a class that are
// not nested in another class or function. Go interface method elements
// count as methods.
func (p *Pipeline) classMethods(pf *parsedFile, class *tree_sitter.Node) []*tree_sitter.Node {
	prof := pf.file.Profile
	var out []*tree_sitter.Node
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch {
			case prof.IsFunction(c.Kind()), c.Kind() == "method_elem":
				out = append(out, c)
			case prof.IsClass(c.Kind()):
			default:
				visit(c)
			}
		}
	}
	visit(class)
	return out
}

func (p *Pipeline) ingestMethod(pf *parsedFile, m *tree_sitter.Node, classQN string, classLabel graph.Label) {
	f, h := pf.file, pf.h
	var name string
	if m.Kind() == "method_elem" {
		name = f.Text(m.ChildByFieldName("name"))
	} else {
		var ok bool
		if name, ok = h.FunctionName(m, f); !ok {
			return
		}
	}
	if name == "" {
		return
	}
	qn := h.MethodQN(classQN, name, m, f)
	props := p.definitionProps(pf, m, qn, name, h.IsExported(m, f, name))
	props["owner"] = classQN

	noteDuplicate(pf, qn)
	pf.batch.EnsureNode(graph.Method, props)
	p.registry.Register(symbols.Symbol{
		QualifiedName: qn,
		Name:          name,
		Kind:          graph.Method,
		Language:      string(pf.info.Language),
		File:          pf.info.RelPath,
		Owner:         classQN,
	})
	pf.defs[m.Id()] = definition{qn: qn, label: graph.Method}
	pf.batch.EnsureRelationship(graph.QN(classLabel, classQN), graph.DefinesMethod, graph.QN(graph.Method, qn), nil)
}
