package lang

func init() {
	Register(&Profile{
		Language:       Scala,
		FileExtensions: []string{".scala", ".sc"},
		ScopeNodeTypes: []string{
			"class_definition",
			"object_definition",
			"trait_definition",
			"enum_definition",
			"function_definition",
		},
		FunctionNodeTypes: []string{"function_definition", "function_declaration"},
		ClassNodeTypes: []string{
			"class_definition",
			"object_definition",
			"trait_definition",
			"enum_definition",
		},
		ModuleNodeTypes: []string{"compilation_unit"},
		CallNodeTypes:   []string{"call_expression"},
		ImportNodeTypes: []string{"import_declaration"},
		DocLinePrefix:   "//",
	})
}
