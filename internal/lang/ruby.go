package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rubyName flattens "A::B" constants into dotted segments.
func rubyName(node *tree_sitter.Node, source []byte) (string, bool) {
	name, ok := FieldName(node, source)
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(name, "::", "."), true
}

func init() {
	Register(&Profile{
		Language:          Ruby,
		FileExtensions:    []string{".rb", ".rake"},
		ScopeNodeTypes:    []string{"class", "module", "method", "singleton_method"},
		FunctionNodeTypes: []string{"method", "singleton_method"},
		ClassNodeTypes:    []string{"class", "module"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"call"},
		ImportNodeTypes:   []string{"call"},
		DocLinePrefix:     "#",
		NameFunc:          rubyName,
	})
}
