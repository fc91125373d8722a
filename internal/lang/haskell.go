package lang

func init() {
	Register(&Profile{
		Language:       Haskell,
		FileExtensions: []string{".hs"},
		// "where" and "let" helpers nest under the function declaring them.
		ScopeNodeTypes:    []string{"function"},
		FunctionNodeTypes: []string{"function"},
		ClassNodeTypes:    []string{"class", "data_type", "newtype"},
		ModuleNodeTypes:   []string{"haskell"},
		CallNodeTypes:     []string{"apply"},
		DocLinePrefix:     "--",
	})
}
