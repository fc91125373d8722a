package pipeline

import (
	"strings"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/symbols"
)

// resolveImported maps an import target to a registered symbol. Targets
// written without the project prefix (Java packages, src/ layouts) are
// matched by unique dotted suffix. Bare names never match by suffix.
func (p *Pipeline) resolveImported(target string) (string, bool) {
	target = normalizeTarget(target)
	if target == "" {
		return "", false
	}
	if p.registry.Has(target) {
		return target, true
	}
	if prefixed := p.ProjectName + "." + target; p.registry.Has(prefixed) {
		return prefixed, true
	}
	if !strings.Contains(target, ".") {
		return "", false
	}
	if matches := p.registry.EndingWith(target); len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// resolveUnder finds a symbol called name (possibly dotted) somewhere below
// namespace. Go and C-family imports name packages and headers, not the
// file modules their symbols are registered under.
func (p *Pipeline) resolveUnder(namespace, name, moduleQN string) (string, bool) {
	namespace = normalizeTarget(namespace)
	if qn, ok := p.resolveImported(namespace + "." + name); ok {
		return qn, true
	}
	prefix := namespace + "."
	suffix := "." + name
	var cands []string
	for _, qn := range p.registry.ByName(graph.SimpleName(name)) {
		if (strings.HasPrefix(qn, prefix) || strings.HasPrefix(qn, p.ProjectName+"."+prefix)) && strings.HasSuffix(qn, suffix) {
			cands = append(cands, qn)
		}
	}
	return pickOne(cands, moduleQN)
}

// resolveViaImports tries the module's import mapping: a direct alias,
// the alias prefix of a dotted name, then wildcard namespaces.
func (p *Pipeline) resolveViaImports(moduleQN, name string) (string, bool) {
	if target, ok := p.imports.Lookup(moduleQN, name); ok {
		if qn, ok := p.resolveImported(target); ok {
			return qn, true
		}
	}
	if head, rest, dotted := strings.Cut(name, "."); dotted {
		if target, ok := p.imports.Lookup(moduleQN, head); ok {
			if qn, ok := p.resolveUnder(target, rest, moduleQN); ok {
				return qn, true
			}
		}
	}
	for _, ns := range p.imports.Wildcards(moduleQN) {
		if qn, ok := p.resolveUnder(ns, name, moduleQN); ok {
			return qn, true
		}
	}
	return "", false
}

// pickOne returns the only candidate, or the one strictly closest to
// moduleQN by shared prefix.
func pickOne(cands []string, moduleQN string) (string, bool) {
	switch len(cands) {
	case 0:
		return "", false
	case 1:
		return cands[0], true
	}
	return symbols.Closest(cands, moduleQN)
}

// bySimpleName resolves a possibly dotted name through the simple-name
// index. Candidates that end with the full dotted name are preferred.
func (p *Pipeline) bySimpleName(name, moduleQN string, keep func(*symbols.Symbol) bool) (string, bool) {
	var cands, qualified []string
	suffix := "." + name
	for _, qn := range p.registry.ByName(graph.SimpleName(name)) {
		s, _ := p.registry.Lookup(qn)
		if s == nil || !keep(s) {
			continue
		}
		cands = append(cands, qn)
		if strings.Contains(name, ".") && strings.HasSuffix(qn, suffix) {
			qualified = append(qualified, qn)
		}
	}
	if len(qualified) > 0 {
		return pickOne(qualified, moduleQN)
	}
	return pickOne(cands, moduleQN)
}

// resolveTypeRef resolves a base-class reference: imports, then the same
// module, then a unique class-like simple name. An unknown name is reduced
// to its simple name and qualified against the module, so a::b::T in
// module m points at m.T.
func (p *Pipeline) resolveTypeRef(h handler.Handler, moduleQN, name string) string {
	if qn, ok := p.resolveViaImports(moduleQN, name); ok {
		return qn
	}
	local := fqn.Join(moduleQN, name)
	if p.registry.Has(local) {
		return local
	}
	classLike := func(s *symbols.Symbol) bool { return s.Kind.IsClassLike() }
	if qn, ok := p.bySimpleName(name, moduleQN, classLike); ok {
		return qn
	}
	if simple, ok := h.BaseClassName(name); ok {
		return fqn.Join(moduleQN, simple)
	}
	return local
}

// resolveBases emits INHERITS or IMPLEMENTS for each pending supertype and
// records it in the inheritance table.
func (p *Pipeline) resolveBases(pf *parsedFile) {
	for _, b := range pf.bases {
		if b.ref.Name == "" {
			continue
		}
		parent := p.resolveTypeRef(pf.h, pf.file.ModuleQN, b.ref.Name)
		if parent == b.classQN {
			continue
		}
		rel, fallback := graph.Inherits, graph.Class
		if b.ref.Implements || (b.classLabel == graph.Interface && interfaceExtendsIsImplements(pf.info.Language)) {
			rel, fallback = graph.Implements, graph.Interface
		}
		pf.batch.EnsureRelationship(
			graph.QN(b.classLabel, b.classQN), rel,
			graph.QN(p.labelOf(parent, fallback), parent), nil)
		p.hierarchy.Add(b.classQN, parent, pf.info.RelPath)
	}
}

// interfaceExtendsIsImplements reports languages where an interface's
// supertypes are recorded as IMPLEMENTS.
func interfaceExtendsIsImplements(l lang.Language) bool {
	switch l {
	case lang.Go, lang.TypeScript, lang.TSX:
		return true
	}
	return false
}
