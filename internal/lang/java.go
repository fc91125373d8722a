package lang

func init() {
	Register(&Profile{
		Language:       Java,
		FileExtensions: []string{".java"},
		ScopeNodeTypes: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"annotation_type_declaration",
			"record_declaration",
			"method_declaration",
			"constructor_declaration",
		},
		FunctionNodeTypes: []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"annotation_type_declaration",
			"record_declaration",
		},
		ModuleNodeTypes: []string{"program"},
		CallNodeTypes:   []string{"method_invocation", "object_creation_expression"},
		ImportNodeTypes: []string{"import_declaration"},
		DocLinePrefix:   "//",
	})
}
