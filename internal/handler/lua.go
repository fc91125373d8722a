package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
)

type lua struct{ base }

// FunctionName names an anonymous function_definition after the target it
// is assigned to, matched by position: in "a, M.b = f, function() end" the
// function is named "M.b".
func (lua) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	if name, ok := f.Profile.Name(n, f.Source); ok {
		return name, true
	}
	if n.Kind() == "function_definition" {
		if name, ok := luaAssignedName(n, f); ok {
			return name, true
		}
	}
	return AnonymousName(n), true
}

// FunctionQN qualifies a function under every enclosing function, naming
// anonymous ones after their assignment target.
func (h lua) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if underUnnamedFunction(n, f) {
		return chainQN(n, f, name, h), true
	}
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return h.NestedFunctionQN(n, f, name)
}

func (h lua) NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	return chainQN(n, f, name, h), true
}

func luaAssignedName(n *tree_sitter.Node, f *File) (string, bool) {
	assign := n.Parent()
	for assign != nil && assign.Kind() != "assignment_statement" {
		if f.Profile.IsFunction(assign.Kind()) {
			return "", false
		}
		assign = assign.Parent()
	}
	if assign == nil {
		return "", false
	}
	values := lastChildOfKind(assign, "expression_list")
	targets := lastChildOfKind(assign, "variable_list")
	if values == nil || targets == nil {
		return "", false
	}

	idx := -1
	pos := 0
	for i := uint(0); i < values.NamedChildCount(); i++ {
		v := values.NamedChild(i)
		if v == nil || v.Kind() == "comment" {
			continue
		}
		if contains(v, n) {
			idx = pos
			break
		}
		pos++
	}
	if idx < 0 {
		return "", false
	}

	pos = 0
	for i := uint(0); i < targets.NamedChildCount(); i++ {
		t := targets.NamedChild(i)
		if t == nil || t.Kind() == "comment" {
			continue
		}
		if pos == idx {
			switch t.Kind() {
			case "identifier", "dot_index_expression":
				return f.Text(t), true
			}
			return "", false
		}
		pos++
	}
	return "", false
}

// IsExported treats every non-local function as visible outside the chunk.
func (lua) IsExported(n *tree_sitter.Node, _ *File, _ string) bool {
	if n.Kind() != "function_declaration" {
		return false
	}
	first := n.Child(0)
	return first == nil || first.Kind() != "local"
}

func contains(outer, inner *tree_sitter.Node) bool {
	return inner.StartByte() >= outer.StartByte() && inner.EndByte() <= outer.EndByte()
}
