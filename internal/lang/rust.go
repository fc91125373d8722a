package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// RustTypeName reduces a Rust type node to its own name: generic_type
// unwraps to its base type and scoped paths keep the right-most segment.
func RustTypeName(n *tree_sitter.Node, source []byte) (string, bool) {
	for depth := 0; n != nil && depth < 8; depth++ {
		switch n.Kind() {
		case "type_identifier", "identifier":
			return nonEmpty(n.Utf8Text(source))
		case "generic_type":
			n = n.ChildByFieldName("type")
		case "scoped_type_identifier", "scoped_identifier":
			n = n.ChildByFieldName("name")
		case "reference_type", "pointer_type":
			n = n.ChildByFieldName("type")
		default:
			return "", false
		}
	}
	return "", false
}

// RustImplTarget returns the type an impl block implements methods for.
func RustImplTarget(impl *tree_sitter.Node, source []byte) (string, bool) {
	if impl == nil || impl.Kind() != "impl_item" {
		return "", false
	}
	return RustTypeName(impl.ChildByFieldName("type"), source)
}

// RustImplTrait returns the trait of an "impl Trait for Type" block.
func RustImplTrait(impl *tree_sitter.Node, source []byte) (string, bool) {
	if impl == nil || impl.Kind() != "impl_item" {
		return "", false
	}
	return RustTypeName(impl.ChildByFieldName("trait"), source)
}

func rustName(node *tree_sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "impl_item":
		return RustImplTarget(node, source)
	case "closure_expression":
		return "", false
	}
	return FieldName(node, source)
}

func init() {
	Register(&Profile{
		Language:          Rust,
		FileExtensions:    []string{".rs"},
		ScopeNodeTypes:    []string{"mod_item", "impl_item", "trait_item", "function_item"},
		FunctionNodeTypes: []string{"function_item", "function_signature_item", "closure_expression"},
		ClassNodeTypes: []string{
			"struct_item",
			"enum_item",
			"union_item",
			"trait_item",
			"impl_item",
			"type_item",
		},
		ModuleNodeTypes: []string{"source_file"},
		CallNodeTypes:   []string{"call_expression", "macro_invocation"},
		ImportNodeTypes: []string{"use_declaration"},
		IndexNames:      []string{"mod"},
		DocLinePrefix:   "///",
		NameFunc:        rustName,
	})
}
