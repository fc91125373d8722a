package pipeline

import (
	"log/slog"
	"path"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/symbols"
)

// derive recomputes the project-wide relations after every changed file
// has been ingested. Each type is always present so stale edges of that
// type are cleared even when none remain.
func (p *Pipeline) derive() map[graph.RelType][]graph.Relationship {
	methods := p.attachReceivers()
	members := p.membersByOwner()
	out := map[graph.RelType][]graph.Relationship{
		graph.DefinesMethod: methods,
		graph.Overrides:     p.passOverrides(members),
		graph.Implements:    p.passImplements(members),
	}
	for rt, rels := range out {
		graph.SortRelationships(rels)
		slog.Debug("pipeline.derived", "type", rt, "count", len(rels))
	}
	return out
}

// attachReceivers links methods declared outside their type's body (Go
// receivers, C++ "A::f" definitions) to the type, which may live in any
// file of the project.
func (p *Pipeline) attachReceivers() []graph.Relationship {
	var rels []graph.Relationship
	for _, s := range p.registry.All() {
		if s.Kind != graph.Method || s.Receiver == "" {
			continue
		}
		owner, ok := p.receiverClass(s)
		if !ok {
			continue
		}
		updated := *s
		updated.Owner = owner
		p.registry.Register(updated)
		rels = append(rels, graph.Relationship{
			From: graph.QN(p.labelOf(owner, graph.Class), owner),
			Type: graph.DefinesMethod,
			To:   graph.QN(graph.Method, s.QualifiedName),
		})
	}
	return rels
}

// receiverClass resolves a method's receiver type name to a class of the
// same language, preferring the method's own file, then its directory,
// then the closest QN.
func (p *Pipeline) receiverClass(m *symbols.Symbol) (string, bool) {
	var cands, sameFile, sameDir []string
	for _, qn := range p.registry.ByName(m.Receiver) {
		c, ok := p.registry.Lookup(qn)
		if !ok || !c.Kind.IsClassLike() || c.Language != m.Language {
			continue
		}
		cands = append(cands, qn)
		if c.File == m.File {
			sameFile = append(sameFile, qn)
		}
		if path.Dir(c.File) == path.Dir(m.File) {
			sameDir = append(sameDir, qn)
		}
	}
	for _, group := range [][]string{sameFile, sameDir} {
		if len(group) > 0 {
			return pickOne(group, m.QualifiedName)
		}
	}
	return pickOne(cands, m.QualifiedName)
}

// membersByOwner indexes methods by owning class and member name. The
// member name keeps Java signatures so only matching overloads pair up.
func (p *Pipeline) membersByOwner() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, s := range p.registry.All() {
		if s.Kind != graph.Method || s.Owner == "" {
			continue
		}
		if out[s.Owner] == nil {
			out[s.Owner] = make(map[string]string)
		}
		out[s.Owner][memberName(s)] = s.QualifiedName
	}
	return out
}

func memberName(s *symbols.Symbol) string {
	if prefix := s.Owner + "."; len(s.QualifiedName) > len(prefix) && s.QualifiedName[:len(prefix)] == prefix {
		return s.QualifiedName[len(prefix):]
	}
	return s.Name
}

// passOverrides links each method to the nearest ancestor method with the
// same member name. Ancestors are visited breadth-first in base-list
// order, so among equally near ancestors the first declared wins.
func (p *Pipeline) passOverrides(members map[string]map[string]string) []graph.Relationship {
	var rels []graph.Relationship
	for _, s := range p.registry.All() {
		if s.Kind != graph.Method || s.Owner == "" {
			continue
		}
		name := memberName(s)
		p.hierarchy.Ancestors(s.Owner, func(anc string, _ int) bool {
			target, ok := members[anc][name]
			if !ok || target == s.QualifiedName {
				return true
			}
			rels = append(rels, graph.Relationship{
				From: graph.QN(graph.Method, s.QualifiedName),
				Type: graph.Overrides,
				To:   graph.QN(graph.Method, target),
			})
			return false
		})
	}
	return rels
}

// passImplements detects Go interface satisfaction: a struct implements an
// interface if its method names cover all of the interface's methods.
func (p *Pipeline) passImplements(members map[string]map[string]string) []graph.Relationship {
	type ifaceInfo struct {
		qn      string
		methods []string
	}
	var ifaces []ifaceInfo
	var structs []*symbols.Symbol
	for _, s := range p.registry.All() {
		if s.Language != string(lang.Go) {
			continue
		}
		switch s.Kind {
		case graph.Interface:
			var names []string
			for name := range members[s.QualifiedName] {
				names = append(names, name)
			}
			if len(names) > 0 {
				ifaces = append(ifaces, ifaceInfo{qn: s.QualifiedName, methods: names})
			}
		case graph.Class:
			if len(members[s.QualifiedName]) > 0 {
				structs = append(structs, s)
			}
		}
	}

	var rels []graph.Relationship
	for _, iface := range ifaces {
		for _, st := range structs {
			if satisfies(iface.methods, members[st.QualifiedName]) {
				rels = append(rels, graph.Relationship{
					From: graph.QN(graph.Class, st.QualifiedName),
					Type: graph.Implements,
					To:   graph.QN(graph.Interface, iface.qn),
				})
			}
		}
	}
	slog.Debug("pipeline.implements", "interfaces", len(ifaces), "structs", len(structs), "links", len(rels))
	return rels
}

// satisfies checks if a set of method names includes all interface methods.
func satisfies(ifaceMethods []string, methodSet map[string]string) bool {
	for _, m := range ifaceMethods {
		if _, ok := methodSet[m]; !ok {
			return false
		}
	}
	return true
}
