package lang

func init() {
	Register(&Profile{
		Language:       Kotlin,
		FileExtensions: []string{".kt", ".kts"},
		ScopeNodeTypes: []string{
			"class_declaration",
			"object_declaration",
			"companion_object",
			"function_declaration",
		},
		FunctionNodeTypes: []string{"function_declaration", "secondary_constructor"},
		ClassNodeTypes:    []string{"class_declaration", "object_declaration", "companion_object"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import", "import_header"},
		DocLinePrefix:     "//",
	})
}
