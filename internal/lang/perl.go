package lang

func init() {
	Register(&Profile{
		Language:          Perl,
		FileExtensions:    []string{".pl", ".pm"},
		ScopeNodeTypes:    []string{"subroutine_declaration_statement"},
		FunctionNodeTypes: []string{"subroutine_declaration_statement"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"function_call_expression", "ambiguous_function_call_expression", "method_call_expression"},
		DocLinePrefix:     "#",
	})
}
