package lang

func init() {
	Register(&Profile{
		Language:       Erlang,
		FileExtensions: []string{".erl"},
		// Each clause of a multi-clause function is its own node; they
		// share one qualified name.
		FunctionNodeTypes: []string{"function_clause"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call"},
		DocLinePrefix:     "%",
	})
}
