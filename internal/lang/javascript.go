package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var jsFunctionTypes = []string{
	"function_declaration",
	"generator_function_declaration",
	"function_expression",
	"generator_function",
	"arrow_function",
	"method_definition",
}

var jsScopeTypes = []string{
	"class_declaration",
	"class",
	"function_declaration",
	"generator_function_declaration",
	"function_expression",
	"generator_function",
	"method_definition",
}

var jsImportTypes = []string{"import_statement", "lexical_declaration", "variable_declaration", "export_statement"}

// jsName only trusts the grammar's name field; arrow functions and other
// anonymous callables get their names from the handler fallback.
func jsName(node *tree_sitter.Node, source []byte) (string, bool) {
	n := node.ChildByFieldName("name")
	if n == nil {
		return "", false
	}
	return nonEmpty(n.Utf8Text(source))
}

func init() {
	Register(&Profile{
		Language:          JavaScript,
		FileExtensions:    []string{".js", ".jsx", ".mjs", ".cjs"},
		ScopeNodeTypes:    jsScopeTypes,
		FunctionNodeTypes: jsFunctionTypes,
		ClassNodeTypes:    []string{"class_declaration", "class"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		ImportNodeTypes:   jsImportTypes,
		IndexNames:        []string{"index"},
		DocLinePrefix:     "//",
		NameFunc:          jsName,
	})
}
