package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

type csharp struct{ base }

// IsExported reports public members. C# keeps modifiers as direct
// children rather than in a wrapper node.
func (csharp) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == "modifier" && f.Text(child) == "public" {
			return true
		}
	}
	return false
}
