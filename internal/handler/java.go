package handler

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
)

type java struct{ base }

// MethodQN appends the parameter types so overloads stay distinct:
// Service.run(int, String).
func (java) MethodQN(classQN, name string, n *tree_sitter.Node, f *File) string {
	params := javaParamTypes(n, f)
	if len(params) == 0 {
		return fqn.Join(classQN, name)
	}
	return fqn.Join(classQN, name+"("+strings.Join(params, ", ")+")")
}

func javaParamTypes(n *tree_sitter.Node, f *File) []string {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "formal_parameter":
			if t := p.ChildByFieldName("type"); t != nil {
				out = append(out, f.Text(t))
			}
		case "spread_parameter":
			for j := uint(0); j < p.NamedChildCount(); j++ {
				c := p.NamedChild(j)
				if c != nil && c.Kind() != "modifiers" && c.Kind() != "variable_declarator" {
					out = append(out, f.Text(c)+"...")
					break
				}
			}
		}
	}
	return out
}

func (java) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	return hasModifier(n, f, "public")
}

// hasModifier scans a modifiers child for a keyword.
func hasModifier(n *tree_sitter.Node, f *File, keyword string) bool {
	mods := n.ChildByFieldName("modifiers")
	if mods == nil {
		mods = lastChildOfKind(n, "modifiers")
	}
	if mods == nil {
		return false
	}
	for i := uint(0); i < mods.ChildCount(); i++ {
		if child := mods.Child(i); child != nil && f.Text(child) == keyword {
			return true
		}
	}
	return false
}
