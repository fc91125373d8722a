package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// zigName names a container after the constant it is bound to, as in
// "const Point = struct { ... };".
func zigName(node *tree_sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "struct_declaration", "enum_declaration", "union_declaration":
		parent := node.Parent()
		if parent == nil || parent.Kind() != "variable_declaration" {
			return "", false
		}
		return FieldName(parent, source)
	}
	return FieldName(node, source)
}

func init() {
	Register(&Profile{
		Language:          Zig,
		FileExtensions:    []string{".zig"},
		ScopeNodeTypes:    []string{"struct_declaration", "enum_declaration", "union_declaration", "function_declaration"},
		FunctionNodeTypes: []string{"function_declaration"},
		ClassNodeTypes:    []string{"struct_declaration", "enum_declaration", "union_declaration"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call_expression"},
		DocLinePrefix:     "//",
		NameFunc:          zigName,
	})
}
