package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Every Elixir form is a call; definitions are calls to these macros.
var (
	elixirFunctionMacros = toSet([]string{"def", "defp", "defmacro", "defmacrop", "defguard", "defguardp", "defdelegate"})
	elixirModuleMacros   = toSet([]string{"defmodule", "defprotocol", "defimpl"})
)

// ElixirMacro returns the bare identifier a call invokes ("def", "alias",
// "if"), or "" for remote and anonymous calls.
func ElixirMacro(node *tree_sitter.Node, source []byte) string {
	if node == nil || node.Kind() != "call" {
		return ""
	}
	target := node.ChildByFieldName("target")
	if target == nil || target.Kind() != "identifier" {
		return ""
	}
	return target.Utf8Text(source)
}

// IsElixirFunction reports whether a call defines a function or macro.
func IsElixirFunction(node *tree_sitter.Node, source []byte) bool {
	return elixirFunctionMacros[ElixirMacro(node, source)]
}

// ElixirHead returns the first argument of a definition call: the module
// alias of a defmodule, or the call or identifier that names a def. A
// guard ("def f(x) when x > 0") is unwrapped to its left side.
func ElixirHead(node *tree_sitter.Node, source []byte) *tree_sitter.Node {
	macro := ElixirMacro(node, source)
	if !elixirFunctionMacros[macro] && !elixirModuleMacros[macro] {
		return nil
	}
	args := childOfKind(node, "arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	head := args.NamedChild(0)
	if head != nil && head.Kind() == "binary_operator" && elixirFunctionMacros[macro] {
		head = head.ChildByFieldName("left")
	}
	return head
}

func elixirName(node *tree_sitter.Node, source []byte) (string, bool) {
	head := ElixirHead(node, source)
	if head == nil {
		return "", false
	}
	switch head.Kind() {
	case "alias", "identifier":
		return nonEmpty(head.Utf8Text(source))
	case "call":
		if t := head.ChildByFieldName("target"); t != nil {
			return nonEmpty(t.Utf8Text(source))
		}
	}
	return "", false
}

func childOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if c := node.NamedChild(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func init() {
	Register(&Profile{
		Language:       Elixir,
		FileExtensions: []string{".ex", ".exs"},
		// Only def-family and defmodule calls have a name, so other calls
		// never contribute a scope segment.
		ScopeNodeTypes:    []string{"call"},
		FunctionNodeTypes: []string{"call"},
		ModuleNodeTypes:   []string{"source"},
		CallNodeTypes:     []string{"call"},
		DocLinePrefix:     "#",
		NameFunc:          elixirName,
	})
}
