package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// objcName reads C declarators for plain functions and the first selector
// part for methods.
func objcName(node *tree_sitter.Node, source []byte) (string, bool) {
	if node.Kind() == "function_definition" {
		return cName(node, source)
	}
	return FieldName(node, source)
}

func init() {
	Register(&Profile{
		Language:          ObjectiveC,
		FileExtensions:    []string{".m"},
		ScopeNodeTypes:    []string{"class_interface", "class_implementation", "protocol_declaration"},
		FunctionNodeTypes: []string{"function_definition", "method_definition"},
		ClassNodeTypes:    []string{"class_interface", "class_implementation", "protocol_declaration"},
		ModuleNodeTypes:   []string{"translation_unit"},
		CallNodeTypes:     []string{"call_expression", "message_expression"},
		ImportNodeTypes:   []string{"preproc_include"},
		DocLinePrefix:     "//",
		NameFunc:          objcName,
	})
}
