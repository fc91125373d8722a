package lang

func init() {
	Register(&Profile{
		Language:       CPP,
		FileExtensions: []string{".cpp", ".h", ".hpp", ".cc", ".cxx", ".hxx", ".hh", ".ixx", ".cppm", ".ccm"},
		ScopeNodeTypes: []string{
			"namespace_definition",
			"class_specifier",
			"struct_specifier",
			"union_specifier",
		},
		FunctionNodeTypes: []string{"function_definition", "lambda_expression"},
		ClassNodeTypes: []string{
			"class_specifier",
			"struct_specifier",
			"union_specifier",
			"enum_specifier",
		},
		ModuleNodeTypes: []string{"translation_unit"},
		CallNodeTypes:   []string{"call_expression", "new_expression"},
		ImportNodeTypes: []string{"preproc_include"},
		DocLinePrefix:   "//",
		NameFunc:        cName,
	})
}
