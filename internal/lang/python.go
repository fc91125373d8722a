package lang

func init() {
	Register(&Profile{
		Language:          Python,
		FileExtensions:    []string{".py", ".pyi"},
		ScopeNodeTypes:    []string{"class_definition", "function_definition"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		ModuleNodeTypes:   []string{"module"},
		CallNodeTypes:     []string{"call"},
		ImportNodeTypes:   []string{"import_statement", "import_from_statement"},
		IndexNames:        []string{"__init__"},
		DocLinePrefix:     "#",
	})
}
