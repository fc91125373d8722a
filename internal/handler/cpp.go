package handler

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/lang"
)

// cpp serves C++ and, with c set, C.
type cpp struct {
	base
	c bool
}

func (h cpp) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	if name, ok := f.Profile.Name(n, f.Source); ok {
		return name, true
	}
	if n.Kind() == "lambda_expression" {
		return LambdaName(n), true
	}
	return "", false
}

func (h cpp) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return h.NestedFunctionQN(n, f, name)
}

// NestedFunctionQN qualifies by enclosing namespaces.
func (cpp) NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	return nestedQN(f.ModuleQN, namespaces(n, f), name), true
}

func namespaces(n *tree_sitter.Node, f *File) []string {
	var parts []string
	for cur := n.Parent(); cur != nil && cur.Kind() != "translation_unit"; cur = cur.Parent() {
		if cur.Kind() != "namespace_definition" {
			continue
		}
		if s, ok := f.Profile.Name(cur, f.Source); ok {
			parts = append(parts, s)
		}
	}
	return parts
}

// OutOfLineOwner handles definitions such as "void geo::Circle::area()"
// written outside the class body.
func (h cpp) OutOfLineOwner(n *tree_sitter.Node, f *File) (string, bool) {
	if h.c || n.Kind() != "function_definition" {
		return "", false
	}
	_, qualifier, ok := lang.CDeclaratorName(n, f.Source)
	if !ok || qualifier == "" {
		return "", false
	}
	owner := strings.ReplaceAll(qualifier, "::", ".")
	return nestedQN(f.ModuleQN, namespaces(n, f), owner), true
}

// IsExported looks for a C++20 export keyword in front of the declaration.
// C functions are exported unless declared static.
func (h cpp) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	if h.c {
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child != nil && child.Kind() == "storage_class_specifier" && f.Text(child) == "static" {
				return false
			}
		}
		return n.Kind() == "function_definition"
	}
	for cur := n; cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		parent := cur.Parent()
		for i := uint(0); i < parent.ChildCount(); i++ {
			child := parent.Child(i)
			if child == nil || sameNode(child, cur) {
				break
			}
			switch child.Kind() {
			case "export", "export_keyword", "identifier", "primitive_type":
				if f.Text(child) == "export" {
					return true
				}
			}
		}
		switch cur.Kind() {
		case "declaration", "function_definition", "template_declaration", "class_specifier", "translation_unit":
			return false
		}
	}
	return false
}
