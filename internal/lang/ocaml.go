package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// ocamlName reads the name from the first binding of a definition. A value
// binding only names a function when it takes parameters, so "let x = 1"
// and "let () = main ()" have no name.
func ocamlName(node *tree_sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "value_definition":
		b := childOfKind(node, "let_binding")
		if b == nil || childOfKind(b, "parameter") == nil {
			return "", false
		}
		p := b.ChildByFieldName("pattern")
		if p == nil || p.Kind() != "value_name" {
			return "", false
		}
		return nonEmpty(p.Utf8Text(source))
	case "type_definition":
		return bindingName(node, "type_binding", source)
	case "module_definition":
		return bindingName(node, "module_binding", source)
	case "class_definition":
		return bindingName(node, "class_binding", source)
	}
	return FieldName(node, source)
}

func bindingName(node *tree_sitter.Node, kind string, source []byte) (string, bool) {
	b := childOfKind(node, kind)
	if b == nil {
		return "", false
	}
	return FieldName(b, source)
}

func init() {
	Register(&Profile{
		Language:          OCaml,
		FileExtensions:    []string{".ml"},
		ScopeNodeTypes:    []string{"module_definition", "class_definition", "value_definition"},
		FunctionNodeTypes: []string{"value_definition"},
		ClassNodeTypes:    []string{"type_definition", "class_definition", "module_definition"},
		ModuleNodeTypes:   []string{"compilation_unit"},
		CallNodeTypes:     []string{"application_expression"},
		NameFunc:          ocamlName,
	})
}
