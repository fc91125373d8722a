package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

type php struct{ base }

// IsExported reports top-level declarations and methods without a
// private or protected modifier.
func (php) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	if n.Kind() != "method_declaration" {
		return true
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() != "visibility_modifier" {
			continue
		}
		return f.Text(child) == "public"
	}
	return true
}
