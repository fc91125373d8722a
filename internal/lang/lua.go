package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// luaName reads "function a.b:c()" style names as "a.b.c".
func luaName(node *tree_sitter.Node, source []byte) (string, bool) {
	if node.Kind() == "function_definition" {
		return "", false
	}
	n := node.ChildByFieldName("name")
	if n == nil {
		return "", false
	}
	return nonEmpty(strings.ReplaceAll(n.Utf8Text(source), ":", "."))
}

func init() {
	Register(&Profile{
		Language:          Lua,
		FileExtensions:    []string{".lua"},
		ScopeNodeTypes:    []string{"function_declaration"},
		FunctionNodeTypes: []string{"function_declaration", "function_definition"},
		ModuleNodeTypes:   []string{"chunk"},
		CallNodeTypes:     []string{"function_call"},
		ImportNodeTypes:   []string{"variable_declaration", "assignment_statement"},
		IndexNames:        []string{"init"},
		DocLinePrefix:     "--",
		NameFunc:          luaName,
	})
}
