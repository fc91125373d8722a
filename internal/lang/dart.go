package lang

func init() {
	Register(&Profile{
		Language:       Dart,
		FileExtensions: []string{".dart"},
		ScopeNodeTypes: []string{"class_definition", "mixin_declaration", "enum_declaration"},
		// A method_signature wraps a function_signature, so only the inner
		// node is a function.
		FunctionNodeTypes: []string{"function_signature"},
		ClassNodeTypes:    []string{"class_definition", "mixin_declaration", "enum_declaration"},
		ModuleNodeTypes:   []string{"program"},
		DocLinePrefix:     "//",
	})
}
