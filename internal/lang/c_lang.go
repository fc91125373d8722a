package lang

func init() {
	Register(&Profile{
		Language:          C,
		FileExtensions:    []string{".c"},
		ScopeNodeTypes:    []string{"struct_specifier", "union_specifier"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"struct_specifier", "enum_specifier", "union_specifier"},
		ModuleNodeTypes:   []string{"translation_unit"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"preproc_include"},
		DocLinePrefix:     "//",
		NameFunc:          cName,
	})
}
