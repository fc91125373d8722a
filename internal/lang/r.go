package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// rName names a function after the variable it is assigned to with "<-",
// "<<-" or "=".
func rName(node *tree_sitter.Node, source []byte) (string, bool) {
	if node.Kind() != "function_definition" {
		return FieldName(node, source)
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "binary_operator" {
		return "", false
	}
	lhs, rhs, op := parent.ChildByFieldName("lhs"), parent.ChildByFieldName("rhs"), parent.ChildByFieldName("operator")
	if lhs == nil || rhs == nil || op == nil || rhs.StartByte() != node.StartByte() {
		return "", false
	}
	switch op.Utf8Text(source) {
	case "<-", "<<-", "=":
	default:
		return "", false
	}
	if lhs.Kind() != "identifier" {
		return "", false
	}
	return nonEmpty(lhs.Utf8Text(source))
}

func init() {
	Register(&Profile{
		Language:          R,
		FileExtensions:    []string{".r"},
		ScopeNodeTypes:    []string{"function_definition"},
		FunctionNodeTypes: []string{"function_definition"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"call"},
		DocLinePrefix:     "#",
		NameFunc:          rName,
	})
}
