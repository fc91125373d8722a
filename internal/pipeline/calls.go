package pipeline

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
	"github.com/DeusData/codegraph/internal/symbols"
)

// receiverNames are the callee heads that refer to the enclosing class.
var receiverNames = map[string]bool{
	"self":   true,
	"this":   true,
	"cls":    true,
	"Self":   true,
	"static": true,
}

// resolveCalls emits a CALLS fact for every call site in the file.
func (p *Pipeline) resolveCalls(pf *parsedFile) {
	prof := pf.file.Profile
	parser.Walk(pf.tree.RootNode(), func(n *tree_sitter.Node) bool {
		if !prof.IsCall(n.Kind()) || definitionSite(pf, n) {
			return true
		}
		if fn := n.ChildByFieldName("function"); fn != nil && prof.IsCall(fn.Kind()) {
			// Curried application "f a b": the innermost node names f.
			return true
		}
		caller := p.enclosing(pf, n)
		from := graph.QN(caller.label, caller.qn)

		if fn := inlineCallee(pf, n); fn != nil {
			if d, ok := pf.defs[fn.Id()]; ok {
				pf.batch.EnsureRelationship(from, graph.Calls, graph.QN(d.label, d.qn), nil)
				return true
			}
		}

		callee := normalizeCallee(calleeText(n, pf.file))
		if callee == "" {
			return true
		}
		target, label := p.resolveCall(pf, caller, callee)
		if label == graph.External {
			pf.batch.EnsureNode(graph.External, map[string]any{
				graph.KeyQualifiedName: target,
				"name":                 callee,
				"language":             string(pf.info.Language),
			})
		}
		pf.batch.EnsureRelationship(from, graph.Calls, graph.QN(label, target), nil)
		return true
	})
}

// resolveCall picks the target of a call in priority order: the enclosing
// class for self/this/super receivers, the caller's lexical scopes, the
// import mapping, the same module, the simple-name index, and finally the
// builtin sentinel.
func (p *Pipeline) resolveCall(pf *parsedFile, caller definition, callee string) (string, graph.Label) {
	mod := pf.file.ModuleQN
	found := func(qn string) (string, graph.Label) {
		return qn, p.labelOf(qn, graph.Function)
	}

	head, rest, dotted := strings.Cut(callee, ".")
	if class := p.enclosingClass(caller); class != "" {
		switch {
		case dotted && receiverNames[head]:
			if qn, ok := p.memberOf(class, rest, true); ok {
				return found(qn)
			}
		case head == "super" && dotted:
			if qn, ok := p.inheritedMember(class, rest); ok {
				return found(qn)
			}
		case callee == "super":
			if parents := p.hierarchy.Parents(class); len(parents) > 0 {
				if qn, ok := p.memberOf(parents[0], "constructor", false); ok {
					return found(qn)
				}
				return parents[0], p.labelOf(parents[0], graph.Class)
			}
		}
	}

	for scope := caller.qn; len(scope) > len(mod) && strings.HasPrefix(scope, mod+"."); scope = graph.Parent(scope) {
		if qn := scope + "." + callee; p.registry.Has(qn) {
			return found(qn)
		}
	}

	if qn, ok := p.resolveViaImports(mod, callee); ok {
		return found(qn)
	}

	if qn := mod + "." + callee; p.registry.Has(qn) {
		return found(qn)
	}

	notModule := func(s *symbols.Symbol) bool { return s.Kind != graph.Module }
	if qn, ok := p.bySimpleName(callee, mod, notModule); ok {
		return found(qn)
	}

	return graph.BuiltinQN(string(pf.info.Language), callee), graph.External
}

// enclosingClass returns the class a caller belongs to, if any.
func (p *Pipeline) enclosingClass(caller definition) string {
	if caller.label.IsClassLike() {
		return caller.qn
	}
	s, ok := p.registry.Lookup(caller.qn)
	if !ok || s.Kind != graph.Method {
		return ""
	}
	if s.Owner != "" {
		return s.Owner
	}
	if owner, ok := p.receiverClass(s); ok {
		return owner
	}
	return ""
}

// memberOf finds a member of class by simple name. Overloaded Java
// methods carry their signature in the QN, so owners are matched too.
func (p *Pipeline) memberOf(class, name string, inherited bool) (string, bool) {
	if qn := class + "." + name; p.registry.Has(qn) {
		return qn, true
	}
	for _, qn := range p.registry.ByName(name) {
		if s, ok := p.registry.Lookup(qn); ok && s.Owner == class {
			return qn, true
		}
	}
	if inherited {
		return p.inheritedMember(class, name)
	}
	return "", false
}

// inheritedMember searches the ancestors of class breadth-first.
func (p *Pipeline) inheritedMember(class, name string) (string, bool) {
	var hit string
	p.hierarchy.Ancestors(class, func(anc string, _ int) bool {
		if qn, ok := p.memberOf(anc, name, false); ok {
			hit = qn
			return false
		}
		return true
	})
	return hit, hit != ""
}

// inlineCallee returns the function literal a call invokes directly, as in
// (function() {})() or (() => {})().
func inlineCallee(pf *parsedFile, call *tree_sitter.Node) *tree_sitter.Node {
	fn := call.ChildByFieldName("function")
	for fn != nil && fn.Kind() == "parenthesized_expression" {
		fn = fn.NamedChild(0)
	}
	if fn != nil && pf.file.Profile.IsFunction(fn.Kind()) {
		return fn
	}
	return nil
}

// calleeText extracts the callee expression of a call node across the
// supported grammars.
func calleeText(n *tree_sitter.Node, f *handler.File) string {
	if fn := n.ChildByFieldName("function"); fn != nil {
		return f.Text(fn)
	}
	if name := n.ChildByFieldName("name"); name != nil {
		for _, field := range []string{"object", "scope", "receiver"} {
			if obj := n.ChildByFieldName(field); obj != nil {
				return f.Text(obj) + "." + f.Text(name)
			}
		}
		return f.Text(name)
	}
	if method := n.ChildByFieldName("method"); method != nil {
		for _, field := range []string{"receiver", "invocant"} {
			if recv := n.ChildByFieldName(field); recv != nil {
				return f.Text(recv) + "." + f.Text(method)
			}
		}
		return f.Text(method)
	}
	for _, field := range []string{"macro", "constructor", "type", "target", "expr"} {
		if c := n.ChildByFieldName(field); c != nil {
			return f.Text(c)
		}
	}
	if first := n.NamedChild(0); first != nil {
		switch first.Kind() {
		case "identifier", "simple_identifier", "navigation_expression",
			"scoped_identifier", "qualified_name", "name":
			return f.Text(first)
		}
	}
	return ""
}

// definitionSite reports whether a call node is a definition in disguise:
// an Elixir def or defmodule, or the head naming one.
func definitionSite(pf *parsedFile, n *tree_sitter.Node) bool {
	if pf.info.Language != lang.Elixir {
		return false
	}
	src := pf.file.Source
	if lang.ElixirHead(n, src) != nil {
		return true
	}
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Kind() == "call" {
			head := lang.ElixirHead(cur, src)
			return head != nil && head.Id() == n.Id()
		}
	}
	return false
}

var (
	calleeSeparators = strings.NewReplacer("->", ".", "?.", ".", "::", ".", `\`, ".", "$", "", "@", "")
	calleeShape      = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*(\.[\p{L}_][\p{L}\p{N}_]*)*$`)
	calleeTail       = regexp.MustCompile(`[\p{L}_][\p{L}\p{N}_]*(\.[\p{L}_][\p{L}\p{N}_]*)*$`)
)

// normalizeCallee strips argument lists, generic arguments and index
// expressions and turns every member separator into a dot.
func normalizeCallee(raw string) string {
	s := calleeSeparators.Replace(raw)
	s = stripGroups(s)
	s = strings.ReplaceAll(s, ":", ".")
	s = strings.TrimSuffix(strings.TrimSpace(s), "!")
	s = strings.Join(strings.Fields(s), "")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = strings.Trim(s, ".")
	if !calleeShape.MatchString(s) {
		s = calleeTail.FindString(s)
	}
	return s
}

// stripGroups removes bracketed spans, nested or not.
func stripGroups(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '<', '[':
			depth++
			continue
		case ')', '>', ']':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
