package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/lang"
)

type rust struct{ base }

// FunctionQN names a closure in the chain of an fn item declared inside it.
func (h rust) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if _, named := f.Profile.Name(n, f.Source); named && underUnnamedFunction(n, f) {
		return chainQN(n, f, name, h), true
	}
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return h.NestedFunctionQN(n, f, name)
}

// NestedFunctionQN qualifies by the enclosing mod path only.
func (rust) NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	var parts []string
	for cur := n.Parent(); cur != nil && cur.Kind() != "source_file"; cur = cur.Parent() {
		if cur.Kind() != "mod_item" {
			continue
		}
		if id := cur.ChildByFieldName("name"); id != nil {
			parts = append(parts, f.Text(id))
		}
	}
	return nestedQN(f.ModuleQN, parts, name), true
}

func (rust) IsExported(n *tree_sitter.Node, _ *File, _ string) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil && child.Kind() == "visibility_modifier" {
			return true
		}
	}
	return false
}

func (rust) IsImplBlock(n *tree_sitter.Node) bool { return n.Kind() == "impl_item" }

func (rust) ImplTarget(n *tree_sitter.Node, f *File) (string, bool) {
	return lang.RustImplTarget(n, f.Source)
}

func (rust) ImplTrait(n *tree_sitter.Node, f *File) (string, bool) {
	return lang.RustImplTrait(n, f.Source)
}
