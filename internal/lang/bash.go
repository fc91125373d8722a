package lang

func init() {
	Register(&Profile{
		Language:          Bash,
		FileExtensions:    []string{".sh", ".bash"},
		ScopeNodeTypes:    []string{"function_definition"},
		FunctionNodeTypes: []string{"function_definition"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"command"},
		DocLinePrefix:     "#",
	})
}
