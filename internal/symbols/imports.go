package symbols

import (
	"sort"
	"strings"
)

// WildcardPrefix marks a wildcard entry in an import mapping. The entry's
// key is "*" followed by the imported namespace, and its value is the
// namespace itself.
const WildcardPrefix = "*"

// Imports maps a module's qualified name to its alias -> target table.
type Imports struct {
	byModule map[string]map[string]string
}

// NewImports creates an empty mapping.
func NewImports() *Imports {
	return &Imports{byModule: make(map[string]map[string]string)}
}

// Add records that alias denotes target inside moduleQN. Later entries for
// the same alias win, matching how the languages shadow imports.
func (m *Imports) Add(moduleQN, alias, target string) {
	if alias == "" || target == "" {
		return
	}
	t := m.byModule[moduleQN]
	if t == nil {
		t = make(map[string]string)
		m.byModule[moduleQN] = t
	}
	t[alias] = target
}

// AddWildcard records a wildcard import of namespace into moduleQN.
func (m *Imports) AddWildcard(moduleQN, namespace string) {
	m.Add(moduleQN, WildcardPrefix+namespace, namespace)
}

// Lookup returns the target of alias in moduleQN.
func (m *Imports) Lookup(moduleQN, alias string) (string, bool) {
	t, ok := m.byModule[moduleQN][alias]
	return t, ok
}

// Wildcards returns the sorted wildcard namespaces imported by moduleQN.
func (m *Imports) Wildcards(moduleQN string) []string {
	var out []string
	for k, v := range m.byModule[moduleQN] {
		if strings.HasPrefix(k, WildcardPrefix) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Entries returns a copy of moduleQN's table.
func (m *Imports) Entries(moduleQN string) map[string]string {
	t := m.byModule[moduleQN]
	out := make(map[string]string, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Reset drops moduleQN's table before the module is re-ingested.
func (m *Imports) Reset(moduleQN string) {
	delete(m.byModule, moduleQN)
}
