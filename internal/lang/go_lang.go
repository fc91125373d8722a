package lang

func init() {
	Register(&Profile{
		Language:          Go,
		FileExtensions:    []string{".go"},
		ScopeNodeTypes:    []string{"function_declaration"},
		FunctionNodeTypes: []string{"function_declaration", "method_declaration"},
		ClassNodeTypes:    []string{"type_spec", "type_alias"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import_declaration"},
		DocLinePrefix:     "//",
	})
}
