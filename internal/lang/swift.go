package lang

func init() {
	Register(&Profile{
		Language:       Swift,
		FileExtensions: []string{".swift"},
		// class_declaration also covers struct, enum and extension.
		ScopeNodeTypes:    []string{"class_declaration", "protocol_declaration", "function_declaration"},
		FunctionNodeTypes: []string{"function_declaration", "protocol_function_declaration"},
		ClassNodeTypes:    []string{"class_declaration", "protocol_declaration"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import_declaration"},
		DocLinePrefix:     "//",
	})
}
