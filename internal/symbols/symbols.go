// Package symbols holds the run-scoped tables ingestion builds up: the
// symbol registry with its simple-name index, the per-module import
// mapping, and the inheritance table.
//
// None of these types are safe for concurrent use; the pipeline mutates
// them from a single goroutine.
package symbols

import (
	"sort"
	"strings"

	"github.com/DeusData/codegraph/internal/graph"
)

// Symbol is one registered definition.
type Symbol struct {
	QualifiedName string
	Name          string
	Kind          graph.Label
	Language      string
	// File is the repo-relative path of the owning file.
	File string
	// Owner is the qualified name of the enclosing class for methods.
	Owner string
	// Receiver is the unresolved owner type name of a method declared
	// outside its type's body (Go receivers, C++ "A::f" definitions).
	Receiver string
}

// Registry maps qualified names to symbols and simple names to the
// qualified names sharing them.
type Registry struct {
	byQN   map[string]*Symbol
	byName map[string]map[string]bool
	byFile map[string]map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byQN:   make(map[string]*Symbol),
		byName: make(map[string]map[string]bool),
		byFile: make(map[string]map[string]bool),
	}
}

// indexName is the simple name a symbol is indexed under. Java method
// signatures like "run(int)" are indexed as "run".
func indexName(s *Symbol) string {
	name := s.Name
	if name == "" {
		name = graph.SimpleName(s.QualifiedName)
	}
	if i := strings.IndexByte(name, '('); i > 0 {
		name = name[:i]
	}
	return graph.SimpleName(name)
}

// Register adds or replaces a symbol.
func (r *Registry) Register(s Symbol) {
	if old, ok := r.byQN[s.QualifiedName]; ok {
		r.unindex(old)
	}
	sym := s
	r.byQN[s.QualifiedName] = &sym

	name := indexName(&sym)
	if r.byName[name] == nil {
		r.byName[name] = make(map[string]bool)
	}
	r.byName[name][sym.QualifiedName] = true

	if r.byFile[sym.File] == nil {
		r.byFile[sym.File] = make(map[string]bool)
	}
	r.byFile[sym.File][sym.QualifiedName] = true
}

func (r *Registry) unindex(s *Symbol) {
	name := indexName(s)
	delete(r.byName[name], s.QualifiedName)
	if len(r.byName[name]) == 0 {
		delete(r.byName, name)
	}
	delete(r.byFile[s.File], s.QualifiedName)
	if len(r.byFile[s.File]) == 0 {
		delete(r.byFile, s.File)
	}
}

// Lookup returns the symbol registered under qn.
func (r *Registry) Lookup(qn string) (*Symbol, bool) {
	s, ok := r.byQN[qn]
	return s, ok
}

// Has reports whether qn is registered.
func (r *Registry) Has(qn string) bool {
	_, ok := r.byQN[qn]
	return ok
}

// ByName returns the sorted qualified names registered under a simple name.
func (r *Registry) ByName(name string) []string {
	return sortedKeys(r.byName[name])
}

// EndingWith returns the sorted qualified names ending in "."+suffix.
func (r *Registry) EndingWith(suffix string) []string {
	target := "." + suffix
	var out []string
	for _, qn := range r.ByName(graph.SimpleName(suffix)) {
		if strings.HasSuffix(qn, target) {
			out = append(out, qn)
		}
	}
	return out
}

// InFile returns the sorted qualified names owned by a file.
func (r *Registry) InFile(path string) []string {
	return sortedKeys(r.byFile[path])
}

// RemoveFile drops every symbol owned by path and returns how many were removed.
func (r *Registry) RemoveFile(path string) int {
	qns := sortedKeys(r.byFile[path])
	for _, qn := range qns {
		if s, ok := r.byQN[qn]; ok {
			r.unindex(s)
			delete(r.byQN, qn)
		}
	}
	return len(qns)
}

// All returns every symbol ordered by qualified name.
func (r *Registry) All() []*Symbol {
	out := make([]*Symbol, 0, len(r.byQN))
	for _, s := range r.byQN {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

// Len returns the number of registered symbols.
func (r *Registry) Len() int { return len(r.byQN) }

// Closest picks the candidate sharing the longest dotted prefix with
// moduleQN. It reports false when the best score is tied, since a tie
// carries no information about which target was meant.
func Closest(candidates []string, moduleQN string) (string, bool) {
	best, bestLen, tied := "", -1, false
	for _, c := range candidates {
		n := commonPrefixLen(c, moduleQN)
		switch {
		case n > bestLen:
			best, bestLen, tied = c, n, false
		case n == bestLen:
			tied = true
		}
	}
	return best, best != "" && !tied
}

// commonPrefixLen returns the length of the common dot-segment prefix.
func commonPrefixLen(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	count := 0
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		if aParts[i] != bParts[i] {
			break
		}
		count++
	}
	return count
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
