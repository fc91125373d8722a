package handler

import (
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/graph"
)

type golang struct{ base }

// OutOfLineOwner returns the receiver type of a method declaration,
// qualified by the declaring file's module.
func (golang) OutOfLineOwner(n *tree_sitter.Node, f *File) (string, bool) {
	if n.Kind() != "method_declaration" {
		return "", false
	}
	recv := ReceiverType(n, f.Source)
	if recv == "" {
		return "", false
	}
	return fqn.Join(f.ModuleQN, recv), true
}

// ReceiverType extracts "Server" from "func (s *Server[T]) ...".
func ReceiverType(n *tree_sitter.Node, source []byte) string {
	params := n.ChildByFieldName("receiver")
	if params == nil {
		return ""
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil || p.Kind() != "parameter_declaration" {
			continue
		}
		t := p.ChildByFieldName("type")
		for depth := 0; t != nil && depth < 4; depth++ {
			switch t.Kind() {
			case "type_identifier":
				return t.Utf8Text(source)
			case "pointer_type":
				t = t.NamedChild(0)
			case "generic_type":
				t = t.ChildByFieldName("type")
			default:
				return ""
			}
		}
	}
	return ""
}

func (golang) ClassKind(n *tree_sitter.Node, _ *File) graph.Label {
	if n.Kind() == "type_alias" {
		return graph.Type
	}
	t := n.ChildByFieldName("type")
	if t == nil {
		return graph.Type
	}
	switch t.Kind() {
	case "interface_type":
		return graph.Interface
	case "struct_type":
		return graph.Class
	}
	return graph.Type
}

func (golang) IsExported(_ *tree_sitter.Node, _ *File, name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
