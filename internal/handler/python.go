package handler

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

type python struct{ base }

// IsExported follows the leading-underscore convention for module-level
// definitions. Nested functions are never exported.
func (python) IsExported(n *tree_sitter.Node, f *File, name string) bool {
	if strings.HasPrefix(name, "_") {
		return false
	}
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		if f.Profile.IsFunction(cur.Kind()) {
			return false
		}
	}
	return true
}
