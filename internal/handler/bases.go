package handler

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
)

type baseExtractorFn func(n *tree_sitter.Node, f *File) []BaseRef

var baseExtractors = map[lang.Language]baseExtractorFn{
	lang.Python:     pythonBases,
	lang.Java:       javaBases,
	lang.JavaScript: tsBases,
	lang.TypeScript: tsBases,
	lang.TSX:        tsBases,
	lang.CPP:        cppBases,
	lang.Scala:      scalaBases,
	lang.CSharp:     csharpBases,
	lang.PHP:        phpBases,
	lang.Kotlin:     kotlinBases,
	lang.Ruby:       rubyBases,
	lang.Go:         goBases,
}

var baseKeywords = []string{"extends ", "implements ", "virtual ", "public ", "protected ", "private "}

// cleanBaseRef strips generic arguments, constructor calls and keywords
// from a base reference and normalises namespace separators to dots.
func cleanBaseRef(s string) string {
	s = strings.TrimSpace(s)
	for trimmed := true; trimmed; {
		trimmed = false
		for _, kw := range baseKeywords {
			if strings.HasPrefix(s, kw) {
				s = strings.TrimSpace(s[len(kw):])
				trimmed = true
			}
		}
	}
	s = strings.TrimLeft(s, "*&:\\ ")
	if i := strings.IndexAny(s, "<[( "); i > 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "::", ".")
	s = strings.ReplaceAll(s, "\\", ".")
	return strings.Trim(strings.TrimSpace(s), ".")
}

// baseClassName reduces a reference to its right-most segment.
func baseClassName(ref string) (string, bool) {
	s := cleanBaseRef(ref)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s, s != ""
}

func appendRef(refs []BaseRef, text string, implements bool) []BaseRef {
	if name := cleanBaseRef(text); name != "" {
		refs = append(refs, BaseRef{Name: name, Implements: implements})
	}
	return refs
}

func pythonBases(n *tree_sitter.Node, f *File) []BaseRef {
	supers := n.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var refs []BaseRef
	for i := uint(0); i < supers.NamedChildCount(); i++ {
		child := supers.NamedChild(i)
		if child == nil || child.Kind() == "keyword_argument" || child.Kind() == "comment" {
			continue
		}
		refs = appendRef(refs, f.Text(child), false)
	}
	return refs
}

func javaBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	if super := n.ChildByFieldName("superclass"); super != nil {
		for i := uint(0); i < super.NamedChildCount(); i++ {
			refs = appendRef(refs, f.Text(super.NamedChild(i)), false)
		}
	}
	if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
		refs = append(refs, typeListRefs(ifaces, f, true)...)
	}
	// interface Foo extends Bar, Baz
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == "extends_interfaces" {
			refs = append(refs, typeListRefs(child, f, false)...)
		}
	}
	return refs
}

// typeListRefs collects the entries of a super_interfaces style clause,
// which wraps its types in a type_list.
func typeListRefs(clause *tree_sitter.Node, f *File, implements bool) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "type_list" {
			for j := uint(0); j < child.NamedChildCount(); j++ {
				refs = appendRef(refs, f.Text(child.NamedChild(j)), implements)
			}
			continue
		}
		refs = appendRef(refs, f.Text(child), implements)
	}
	return refs
}

func tsBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "class_heritage":
			refs = append(refs, heritageRefs(child, f)...)
		case "extends_type_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				refs = appendRef(refs, f.Text(child.NamedChild(j)), false)
			}
		}
	}
	return refs
}

func heritageRefs(heritage *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < heritage.ChildCount(); i++ {
		child := heritage.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "extends_clause":
			if v := child.ChildByFieldName("value"); v != nil {
				refs = appendRef(refs, f.Text(v), false)
				continue
			}
			for j := uint(0); j < child.NamedChildCount(); j++ {
				refs = appendRef(refs, f.Text(child.NamedChild(j)), false)
			}
		case "implements_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				refs = appendRef(refs, f.Text(child.NamedChild(j)), true)
			}
		case "identifier", "member_expression", "call_expression":
			// JavaScript has no extends_clause wrapper.
			refs = appendRef(refs, f.Text(child), false)
		}
	}
	return refs
}

func cppBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.Kind() != "base_class_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			b := child.NamedChild(j)
			if b == nil {
				continue
			}
			switch b.Kind() {
			case "type_identifier", "qualified_identifier", "template_type":
				refs = appendRef(refs, f.Text(b), false)
			}
		}
	}
	return refs
}

func scalaBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	ext := n.ChildByFieldName("extend")
	if ext == nil {
		ext = lastChildOfKind(n, "extends_clause")
	}
	if ext == nil {
		return nil
	}
	for j := uint(0); j < ext.NamedChildCount(); j++ {
		t := ext.NamedChild(j)
		if t == nil || t.Kind() == "arguments" {
			continue
		}
		refs = appendRef(refs, f.Text(t), false)
	}
	return refs
}

func csharpBases(n *tree_sitter.Node, f *File) []BaseRef {
	list := n.ChildByFieldName("bases")
	if list == nil {
		list = lastChildOfKind(n, "base_list")
	}
	if list == nil {
		return nil
	}
	var refs []BaseRef
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil || child.Kind() == "argument_list" {
			continue
		}
		refs = appendRef(refs, f.Text(child), false)
	}
	return refs
}

func phpBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		implements := child.Kind() == "class_interface_clause"
		if child.Kind() != "base_clause" && !implements {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			name := child.NamedChild(j)
			if name != nil && (name.Kind() == "name" || name.Kind() == "qualified_name") {
				refs = appendRef(refs, f.Text(name), implements)
			}
		}
	}
	return refs
}

// kotlinBases treats a supertype with a constructor call as the superclass
// and bare supertypes as interfaces.
func kotlinBases(n *tree_sitter.Node, f *File) []BaseRef {
	var refs []BaseRef
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "delegation_specifier_list", "delegation_specifiers":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				refs = appendKotlinSpecifier(refs, child.NamedChild(j), f)
			}
		case "delegation_specifier":
			refs = appendKotlinSpecifier(refs, child, f)
		}
	}
	return refs
}

func appendKotlinSpecifier(refs []BaseRef, spec *tree_sitter.Node, f *File) []BaseRef {
	if spec == nil {
		return refs
	}
	text := f.Text(spec)
	return appendRef(refs, text, !strings.Contains(text, "("))
}

func rubyBases(n *tree_sitter.Node, f *File) []BaseRef {
	super := n.ChildByFieldName("superclass")
	if super == nil {
		return nil
	}
	for i := uint(0); i < super.NamedChildCount(); i++ {
		child := super.NamedChild(i)
		if child != nil && (child.Kind() == "constant" || child.Kind() == "scope_resolution") {
			return appendRef(nil, f.Text(child), false)
		}
	}
	return nil
}

// goBases reports embedded types: anonymous struct fields and interfaces
// embedded in interfaces.
func goBases(n *tree_sitter.Node, f *File) []BaseRef {
	if n.Kind() != "type_spec" {
		return nil
	}
	t := n.ChildByFieldName("type")
	if t == nil {
		return nil
	}
	var refs []BaseRef
	switch t.Kind() {
	case "struct_type":
		fields := lastChildOfKind(t, "field_declaration_list")
		if fields == nil {
			return nil
		}
		for i := uint(0); i < fields.NamedChildCount(); i++ {
			fd := fields.NamedChild(i)
			if fd == nil || fd.Kind() != "field_declaration" || fd.ChildByFieldName("name") != nil {
				continue
			}
			refs = appendRef(refs, f.Text(fd.ChildByFieldName("type")), false)
		}
	case "interface_type":
		for i := uint(0); i < t.NamedChildCount(); i++ {
			el := t.NamedChild(i)
			if el != nil && el.Kind() == "type_elem" {
				refs = appendRef(refs, f.Text(el), false)
			}
		}
	}
	return refs
}

func lastChildOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	var found *tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && child.Kind() == kind {
			found = child
		}
	}
	return found
}
