package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/lang"
)

// named is for grammars whose function node kinds also match forms that
// are not callables: an OCaml value binding without parameters, or an
// Elixir call to anything but a def macro. Only matches the profile can
// name are functions, and no positional names are made up.
type named struct{ base }

func (named) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	return f.Profile.Name(n, f.Source)
}

func (h named) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return h.NestedFunctionQN(n, f, name)
}

type elixir struct{ named }

func (elixir) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	if !lang.IsElixirFunction(n, f.Source) {
		return "", false
	}
	return f.Profile.Name(n, f.Source)
}

// IsExported treats everything but defp, defmacrop and defguardp as public.
func (elixir) IsExported(n *tree_sitter.Node, f *File, _ string) bool {
	switch lang.ElixirMacro(n, f.Source) {
	case "def", "defmacro", "defguard", "defdelegate":
		return true
	}
	return false
}
