package lang

func init() {
	Register(&Profile{
		Language:          Groovy,
		FileExtensions:    []string{".groovy", ".gradle"},
		ScopeNodeTypes:    []string{"class_definition", "function_definition"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"function_call", "juxt_function_call"},
		ImportNodeTypes:   []string{"groovy_import"},
		DocLinePrefix:     "//",
	})
}
