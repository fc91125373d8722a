package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
)

// jsts serves JavaScript, TypeScript and TSX.
type jsts struct{ base }

func (h jsts) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	if name, ok := f.Profile.Name(n, f.Source); ok {
		return name, true
	}
	if name, ok := declaratorName(n, f); ok {
		return name, true
	}
	return AnonymousName(n), true
}

// declaratorName names an arrow function after the variable it is bound
// to. The climb stops at the next enclosing function so inner callbacks do
// not borrow an outer binding.
func declaratorName(n *tree_sitter.Node, f *File) (string, bool) {
	if n.Kind() != "arrow_function" && n.Kind() != "function_expression" && n.Kind() != "class" {
		return "", false
	}
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Kind() == "variable_declarator" {
			if id := cur.ChildByFieldName("name"); id != nil && id.Kind() == "identifier" {
				return f.Text(id), true
			}
			return "", false
		}
		if cur.Kind() == "field_definition" || cur.Kind() == "public_field_definition" {
			prop := cur.ChildByFieldName("property")
			if prop == nil {
				prop = cur.ChildByFieldName("name")
			}
			if prop != nil {
				return f.Text(prop), true
			}
			return "", false
		}
		if f.Profile.IsFunction(cur.Kind()) || f.Profile.IsModule(cur.Kind()) || cur.Kind() == "class_body" {
			return "", false
		}
	}
	return "", false
}

// FunctionQN names every enclosing callable once one of them is anonymous,
// so helpers nested in different arrow functions stay apart.
func (h jsts) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if _, named := f.Profile.Name(n, f.Source); named && underUnnamedFunction(n, f) {
		return chainQN(n, f, name, h), true
	}
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return h.NestedFunctionQN(n, f, name)
}

// NestedFunctionQN lets a class boundary through when the function lives in
// an object literal returned from a class method.
func (h jsts) NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	var parts []string
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		switch {
		case f.Profile.IsFunction(cur.Kind()):
			if s, ok := h.FunctionName(cur, f); ok {
				parts = append(parts, s)
			}
		case f.Profile.IsClass(cur.Kind()):
			if !h.InsideObjectLiteralMethod(n) {
				return "", false
			}
			if s, ok := h.ClassName(cur, f); ok {
				parts = append(parts, s)
			}
		}
	}
	return nestedQN(f.ModuleQN, parts, name), true
}

// ClassName also names class expressions bound to a variable.
func (h jsts) ClassName(n *tree_sitter.Node, f *File) (string, bool) {
	if name, ok := f.Profile.Name(n, f.Source); ok {
		return name, true
	}
	return declaratorName(n, f)
}

func (h jsts) ClassQN(n *tree_sitter.Node, f *File, name string) string {
	if underUnnamedFunction(n, f) {
		return chainQN(n, f, name, h)
	}
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn
	}
	return scopedQN(n, f, name)
}

// IsExported reports declarations wrapped in an export statement, directly
// or through a variable declaration.
func (jsts) IsExported(n *tree_sitter.Node, _ *File, _ string) bool {
	cur := n.Parent()
	for depth := 0; cur != nil && depth < 3; depth++ {
		switch cur.Kind() {
		case "export_statement":
			return true
		case "variable_declarator", "lexical_declaration", "variable_declaration":
			cur = cur.Parent()
		default:
			return false
		}
	}
	return false
}

func (jsts) IsClassMethod(n *tree_sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "class_body":
			return true
		case "program", "module":
			return false
		}
	}
	return false
}

func (jsts) IsExportInsideFunction(n *tree_sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "function_declaration", "function_expression", "arrow_function", "method_definition":
			return true
		case "program", "module":
			return false
		}
	}
	return false
}

func (jsts) InsideObjectLiteralMethod(n *tree_sitter.Node) bool {
	foundObject := false
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "object":
			foundObject = true
		case "method_definition":
			if foundObject {
				return true
			}
		case "class_body":
			return false
		}
	}
	return false
}
