package handler

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
)

type decoratorExtractorFn func(n *tree_sitter.Node, f *File) []string

var decoratorExtractors = map[lang.Language]decoratorExtractorFn{
	lang.Python:     pythonDecorators,
	lang.JavaScript: tsDecorators,
	lang.TypeScript: tsDecorators,
	lang.TSX:        tsDecorators,
	lang.Java:       modifierAnnotations,
	lang.Kotlin:     modifierAnnotations,
	lang.CSharp:     csharpAttributes,
	lang.PHP:        phpAttributes,
	lang.Rust:       rustAttributes,
}

// pythonDecorators reads the decorator children of a decorated_definition
// wrapping n.
func pythonDecorators(n *tree_sitter.Node, f *File) []string {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child != nil && child.Kind() == "decorator" {
			out = append(out, f.Text(child))
		}
	}
	return out
}

// tsDecorators reads decorator children, then the decorators that precede
// a method inside a class body.
func tsDecorators(n *tree_sitter.Node, f *File) []string {
	var out []string
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == "decorator" {
			out = append(out, f.Text(child))
		}
	}
	if len(out) > 0 {
		return out
	}
	parent := n.Parent()
	if parent == nil || parent.Kind() != "class_body" {
		return nil
	}
	return precedingSiblings(parent, n, f, "decorator")
}

// modifierAnnotations covers Java and Kotlin, which both keep annotations
// inside a modifiers node.
func modifierAnnotations(n *tree_sitter.Node, f *File) []string {
	mods := n.ChildByFieldName("modifiers")
	if mods == nil {
		mods = lastChildOfKind(n, "modifiers")
	}
	if mods == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < mods.ChildCount(); i++ {
		child := mods.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "marker_annotation", "annotation":
			out = append(out, f.Text(child))
		}
	}
	return out
}

func csharpAttributes(n *tree_sitter.Node, f *File) []string {
	var out []string
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.Kind() != "attribute_list" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			if attr := child.NamedChild(j); attr != nil && attr.Kind() == "attribute" {
				out = append(out, f.Text(attr))
			}
		}
	}
	return out
}

// phpAttributes walks attribute_list -> attribute_group -> attribute.
func phpAttributes(n *tree_sitter.Node, f *File) []string {
	var out []string
	var collect func(node *tree_sitter.Node)
	collect = func(node *tree_sitter.Node) {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "attribute":
				out = append(out, f.Text(child))
			case "attribute_group":
				collect(child)
			}
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "attribute_list", "attribute_group":
			collect(child)
		}
	}
	return out
}

// rustAttributes returns the outer #[...] attributes preceding n, in
// source order, followed by the inner #![...] attributes of n or its body.
func rustAttributes(n *tree_sitter.Node, f *File) []string {
	var out []string
	if parent := n.Parent(); parent != nil {
		out = precedingSiblings(parent, n, f, "attribute_item")
	}
	for _, holder := range []*tree_sitter.Node{n, n.ChildByFieldName("body")} {
		if holder == nil {
			continue
		}
		for i := uint(0); i < holder.ChildCount(); i++ {
			if child := holder.Child(i); child != nil && child.Kind() == "inner_attribute_item" {
				out = append(out, f.Text(child))
			}
		}
	}
	return out
}

// precedingSiblings returns the run of kind siblings directly before n, in
// source order. Comments inside the run are skipped.
func precedingSiblings(parent, n *tree_sitter.Node, f *File, kind string) []string {
	idx := -1
	for i := uint(0); i < parent.ChildCount(); i++ {
		if sameNode(parent.Child(i), n) {
			idx = int(i)
			break
		}
	}
	var rev []string
	for j := idx - 1; j >= 0; j-- {
		prev := parent.Child(uint(j))
		if prev == nil {
			break
		}
		if prev.Kind() == "line_comment" || prev.Kind() == "block_comment" || prev.Kind() == "comment" {
			continue
		}
		if prev.Kind() != kind {
			break
		}
		rev = append(rev, f.Text(prev))
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}
