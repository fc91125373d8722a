package lang

var csharpClassTypes = []string{
	"class_declaration",
	"struct_declaration",
	"interface_declaration",
	"enum_declaration",
	"record_declaration",
}

func init() {
	Register(&Profile{
		Language:       CSharp,
		FileExtensions: []string{".cs"},
		ScopeNodeTypes: append([]string{"namespace_declaration", "method_declaration", "constructor_declaration"},
			csharpClassTypes...),
		FunctionNodeTypes: []string{"method_declaration", "constructor_declaration", "local_function_statement"},
		ClassNodeTypes:    csharpClassTypes,
		ModuleNodeTypes:   []string{"compilation_unit"},
		CallNodeTypes:     []string{"invocation_expression", "object_creation_expression"},
		ImportNodeTypes:   []string{"using_directive"},
		DocLinePrefix:     "///",
	})
}
