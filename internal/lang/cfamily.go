package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var operatorNames = map[string]string{
	"+": "operator_plus", "-": "operator_minus", "*": "operator_multiply", "/": "operator_divide",
	"=": "operator_assign", "==": "operator_equal", "!=": "operator_not_equal",
	"<": "operator_less", ">": "operator_greater", "<=": "operator_less_equal", ">=": "operator_greater_equal",
	"[]": "operator_subscript", "()": "operator_call", "++": "operator_increment", "--": "operator_decrement",
	"%": "operator_modulo", "&&": "operator_logical_and", "||": "operator_logical_or",
	"&": "operator_bitwise_and", "|": "operator_bitwise_or", "^": "operator_bitwise_xor",
	"<<": "operator_left_shift", ">>": "operator_right_shift",
	"+=": "operator_plus_assign", "-=": "operator_minus_assign", "*=": "operator_multiply_assign",
	"/=": "operator_divide_assign", "%=": "operator_modulo_assign", "&=": "operator_and_assign",
	"|=": "operator_or_assign", "^=": "operator_xor_assign", "<<=": "operator_left_shift_assign",
	">>=": "operator_right_shift_assign", "!": "operator_not", "~": "operator_bitwise_not",
}

// OperatorName turns "operator+=" (or just "+=") into "operator_plus_assign".
func OperatorName(text string) string {
	sym := strings.TrimSpace(text)
	sym = strings.TrimSpace(strings.TrimPrefix(sym, "operator"))
	if name, ok := operatorNames[sym]; ok {
		return name
	}
	return "operator_" + strings.ReplaceAll(sym, " ", "_")
}

// CDeclaratorName walks a C/C++ declarator chain down to the declared name.
// For out-of-line definitions such as "void a::B::f()" it also returns the
// scope qualifier "a::B".
func CDeclaratorName(node *tree_sitter.Node, source []byte) (name, qualifier string, ok bool) {
	decl := node.ChildByFieldName("declarator")
	for depth := 0; decl != nil && depth < 16; depth++ {
		switch decl.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return decl.Utf8Text(source), qualifier, true
		case "destructor_name":
			return "~" + strings.TrimPrefix(decl.Utf8Text(source), "~"), qualifier, true
		case "operator_name":
			return OperatorName(decl.Utf8Text(source)), qualifier, true
		case "operator_cast":
			return "operator_cast", qualifier, true
		case "template_function":
			if n := decl.ChildByFieldName("name"); n != nil {
				return n.Utf8Text(source), qualifier, true
			}
			return "", "", false
		case "qualified_identifier":
			if scope := decl.ChildByFieldName("scope"); scope != nil {
				if qualifier != "" {
					qualifier += "::"
				}
				qualifier += stripTemplateArgs(scope.Utf8Text(source))
			}
			decl = decl.ChildByFieldName("name")
		default:
			next := decl.ChildByFieldName("declarator")
			if next == nil {
				next = lastNamedChild(decl)
			}
			decl = next
		}
	}
	return "", "", false
}

func lastNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	count := n.NamedChildCount()
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}

func stripTemplateArgs(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// cName is the NameFunc shared by C and C++.
func cName(node *tree_sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "function_definition", "declaration", "field_declaration":
		name, _, ok := CDeclaratorName(node, source)
		return name, ok
	case "template_declaration":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child != nil && child.Kind() != "template_parameter_list" {
				return cName(child, source)
			}
		}
		return "", false
	case "namespace_definition":
		n := node.ChildByFieldName("name")
		if n == nil {
			return "", false
		}
		return nonEmpty(strings.ReplaceAll(n.Utf8Text(source), "::", "."))
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		n := node.ChildByFieldName("name")
		if n == nil {
			return "", false
		}
		if n.Kind() == "template_type" {
			if inner := n.ChildByFieldName("name"); inner != nil {
				n = inner
			}
		}
		text := n.Utf8Text(source)
		if i := strings.LastIndex(text, "::"); i >= 0 {
			text = text[i+2:]
		}
		return nonEmpty(text)
	case "lambda_expression":
		return "", false
	}
	return FieldName(node, source)
}
