package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/graph"
)

type kotlin struct{ base }

// IsExported treats declarations as public unless a visibility modifier
// narrows them.
func (kotlin) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	mods := lastChildOfKind(n, "modifiers")
	if mods == nil {
		return true
	}
	for i := uint(0); i < mods.NamedChildCount(); i++ {
		child := mods.NamedChild(i)
		if child == nil || child.Kind() != "visibility_modifier" {
			continue
		}
		switch f.Text(child) {
		case "private", "internal", "protected":
			return false
		}
	}
	return true
}

func (kotlin) ClassKind(n *tree_sitter.Node, _ *File) graph.Label {
	if n.Kind() != "class_declaration" {
		return graph.Class
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "interface":
			return graph.Interface
		case "modifiers":
			if hasKeyword(child, "enum") {
				return graph.Enum
			}
		}
	}
	return graph.Class
}

// hasKeyword reports whether a modifier under mods is the given keyword.
func hasKeyword(mods *tree_sitter.Node, word string) bool {
	for i := uint(0); i < mods.NamedChildCount(); i++ {
		child := mods.NamedChild(i)
		if child == nil {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			if c := child.Child(j); c != nil && c.Kind() == word {
				return true
			}
		}
	}
	return false
}
