package lang

func tsProfile(l Language, exts []string) *Profile {
	return &Profile{
		Language:       l,
		FileExtensions: exts,
		ScopeNodeTypes: append(append([]string{}, jsScopeTypes...),
			"abstract_class_declaration", "interface_declaration", "internal_module", "module"),
		FunctionNodeTypes: append(append([]string{}, jsFunctionTypes...),
			"function_signature", "method_signature", "abstract_method_signature"),
		ClassNodeTypes: []string{
			"class_declaration",
			"class",
			"abstract_class_declaration",
			"interface_declaration",
			"enum_declaration",
			"type_alias_declaration",
		},
		ModuleNodeTypes: []string{"program"},
		CallNodeTypes:   []string{"call_expression", "new_expression"},
		ImportNodeTypes: jsImportTypes,
		IndexNames:      []string{"index"},
		DocLinePrefix:   "//",
		NameFunc:        jsName,
	}
}

func init() {
	Register(tsProfile(TypeScript, []string{".ts", ".mts", ".cts"}))
	Register(tsProfile(TSX, []string{".tsx"}))
}
