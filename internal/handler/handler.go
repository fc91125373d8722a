// Package handler holds the per-language naming rules that sit on top of a
// language profile: synthetic names for anonymous callables, qualified names
// for constructs the generic resolver cannot name, visibility, base classes
// and decorators.
//
// The set of variants is closed. For returns the variant for a language and
// falls back to the default handler for languages without special rules.
package handler

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
)

// File is the per-file context every handler call receives.
type File struct {
	Profile  *lang.Profile
	Source   []byte
	Path     string
	Root     string
	Project  string
	ModuleQN string
}

// NewFile builds the context for a file and computes its module QN.
func NewFile(p *lang.Profile, source []byte, path, root, project string) *File {
	return &File{
		Profile:  p,
		Source:   source,
		Path:     path,
		Root:     root,
		Project:  project,
		ModuleQN: fqn.ModuleQN(p, project, path, root),
	}
}

// Text returns the source text of n.
func (f *File) Text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.Source[n.StartByte():n.EndByte()])
}

// BaseRef is one declared supertype of a class.
type BaseRef struct {
	// Name is the reference as written, with generic arguments and
	// constructor calls stripped and namespace separators turned into dots.
	Name string
	// Implements marks references from an implements-style clause.
	Implements bool
}

// Handler answers the naming questions ingestion asks about a node.
type Handler interface {
	// FunctionName returns the name of a function-kind node, generating a
	// positional name for anonymous callables where the language has them.
	FunctionName(n *tree_sitter.Node, f *File) (string, bool)
	// FunctionQN qualifies a function-kind node. It prefers fqn.Resolve.
	FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool)
	// NestedFunctionQN builds a QN from enclosing function names. It fails
	// when a class boundary is crossed.
	NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool)
	// MethodQN qualifies a method of classQN.
	MethodQN(classQN, name string, n *tree_sitter.Node, f *File) string

	ClassName(n *tree_sitter.Node, f *File) (string, bool)
	ClassQN(n *tree_sitter.Node, f *File, name string) string
	ClassKind(n *tree_sitter.Node, f *File) graph.Label

	IsExported(n *tree_sitter.Node, f *File, name string) bool

	IsImplBlock(n *tree_sitter.Node) bool
	ImplTarget(n *tree_sitter.Node, f *File) (string, bool)
	ImplTrait(n *tree_sitter.Node, f *File) (string, bool)

	// OutOfLineOwner returns the QN of the type owning a method that is
	// declared outside the type's body.
	OutOfLineOwner(n *tree_sitter.Node, f *File) (string, bool)

	// BaseClassName reduces a base reference to its simple name.
	BaseClassName(ref string) (string, bool)
	BaseClasses(n *tree_sitter.Node, f *File) []BaseRef
	Decorators(n *tree_sitter.Node, f *File) []string

	IsClassMethod(n *tree_sitter.Node) bool
	IsExportInsideFunction(n *tree_sitter.Node) bool
	InsideObjectLiteralMethod(n *tree_sitter.Node) bool
}

var handlers = map[lang.Language]Handler{
	lang.Python:     python{},
	lang.JavaScript: jsts{},
	lang.TypeScript: jsts{},
	lang.TSX:        jsts{},
	lang.Lua:        lua{},
	lang.Rust:       rust{},
	lang.CPP:        cpp{},
	lang.C:          cpp{c: true},
	lang.Java:       java{},
	lang.Go:         golang{},
	lang.CSharp:     csharp{},
	lang.Kotlin:     kotlin{},
	lang.PHP:        php{},
	lang.Elixir:     elixir{},
	lang.OCaml:      named{},
}

// For returns the handler for l.
func For(l lang.Language) Handler {
	if h, ok := handlers[l]; ok {
		return h
	}
	return base{}
}

// base carries the default rules. Variants embed it and override what
// their language does differently.
type base struct{}

func (base) FunctionName(n *tree_sitter.Node, f *File) (string, bool) {
	if name, ok := f.Profile.Name(n, f.Source); ok {
		return name, true
	}
	return AnonymousName(n), true
}

func (b base) FunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	if _, named := f.Profile.Name(n, f.Source); named && underUnnamedFunction(n, f) {
		return chainQN(n, f, name, b), true
	}
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn, true
	}
	return b.NestedFunctionQN(n, f, name)
}

func (base) NestedFunctionQN(n *tree_sitter.Node, f *File, name string) (string, bool) {
	var parts []string
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		switch {
		case f.Profile.IsFunction(cur.Kind()):
			if s, ok := f.Profile.Name(cur, f.Source); ok {
				parts = append(parts, s)
			}
		case f.Profile.IsClass(cur.Kind()):
			return "", false
		}
	}
	return nestedQN(f.ModuleQN, parts, name), true
}

func (base) MethodQN(classQN, name string, _ *tree_sitter.Node, _ *File) string {
	return fqn.Join(classQN, name)
}

func (base) ClassName(n *tree_sitter.Node, f *File) (string, bool) {
	return f.Profile.Name(n, f.Source)
}

func (base) ClassQN(n *tree_sitter.Node, f *File, name string) string {
	if qn, ok := fqn.Resolve(n, f.Profile, f.Source, f.Path, f.Root, f.Project); ok {
		return qn
	}
	return scopedQN(n, f, name)
}

func (base) ClassKind(n *tree_sitter.Node, _ *File) graph.Label {
	return kindLabel(n.Kind())
}

func (base) IsExported(*tree_sitter.Node, *File, string) bool { return false }

func (base) IsImplBlock(*tree_sitter.Node) bool { return false }

func (base) ImplTarget(*tree_sitter.Node, *File) (string, bool) { return "", false }

func (base) ImplTrait(*tree_sitter.Node, *File) (string, bool) { return "", false }

func (base) OutOfLineOwner(*tree_sitter.Node, *File) (string, bool) { return "", false }

func (base) BaseClassName(ref string) (string, bool) {
	return baseClassName(ref)
}

func (base) BaseClasses(n *tree_sitter.Node, f *File) []BaseRef {
	if fn, ok := baseExtractors[f.Profile.Language]; ok {
		return fn(n, f)
	}
	return nil
}

func (base) Decorators(n *tree_sitter.Node, f *File) []string {
	if fn, ok := decoratorExtractors[f.Profile.Language]; ok {
		return fn(n, f)
	}
	return nil
}

func (base) IsClassMethod(*tree_sitter.Node) bool { return false }

func (base) IsExportInsideFunction(*tree_sitter.Node) bool { return false }

func (base) InsideObjectLiteralMethod(*tree_sitter.Node) bool { return false }

// kindLabel maps class-kind node types onto graph labels.
func kindLabel(kind string) graph.Label {
	switch kind {
	case "interface_declaration", "trait_item", "trait_declaration", "trait_definition", "protocol_declaration":
		return graph.Interface
	case "enum_declaration", "enum_item", "enum_specifier", "enum_definition":
		return graph.Enum
	case "type_alias_declaration", "type_alias", "type_item", "alias_declaration",
		"type_definition", "data_type", "newtype":
		return graph.Type
	case "union_specifier", "union_item", "union_declaration":
		return graph.Union
	}
	return graph.Class
}

// AnonymousName is the positional name of an unnamed callable. Immediately
// invoked functions get an iife_ prefix so call sites can find them again.
func AnonymousName(n *tree_sitter.Node) string {
	p := n.StartPosition()
	parent := n.Parent()
	if parent != nil && parent.Kind() == "parenthesized_expression" {
		if gp := parent.Parent(); gp != nil && gp.Kind() == "call_expression" && sameNode(gp.ChildByFieldName("function"), parent) {
			prefix := "iife_func_"
			if n.Kind() == "arrow_function" {
				prefix = "iife_arrow_"
			}
			return fmt.Sprintf("%s%d_%d", prefix, p.Row, p.Column)
		}
	}
	if parent != nil && parent.Kind() == "call_expression" && sameNode(parent.ChildByFieldName("function"), n) {
		return fmt.Sprintf("iife_direct_%d_%d", p.Row, p.Column)
	}
	return fmt.Sprintf("anonymous_%d_%d", p.Row, p.Column)
}

// LambdaName is the positional name of a C++ lambda.
func LambdaName(n *tree_sitter.Node) string {
	p := n.StartPosition()
	return fmt.Sprintf("lambda_%d_%d", p.Row, p.Column)
}

func sameNode(a, b *tree_sitter.Node) bool {
	return a != nil && b != nil && a.Id() == b.Id()
}

func nestedQN(moduleQN string, reversed []string, name string) string {
	parts := make([]string, 0, len(reversed)+1)
	for i := len(reversed) - 1; i >= 0; i-- {
		parts = append(parts, reversed[i])
	}
	parts = append(parts, name)
	return fqn.Join(moduleQN, parts...)
}

// underUnnamedFunction reports whether a function-kind ancestor of n has
// no name of its own. fqn.Resolve drops such ancestors.
func underUnnamedFunction(n *tree_sitter.Node, f *File) bool {
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		if !f.Profile.IsFunction(cur.Kind()) {
			continue
		}
		if _, ok := f.Profile.Name(cur, f.Source); !ok {
			return true
		}
	}
	return false
}

// chainQN joins the names of scope-kind and function-kind ancestors under
// the module QN. Function ancestors the profile cannot name get the name
// their handler gives them.
func chainQN(n *tree_sitter.Node, f *File, name string, h Handler) string {
	var parts []string
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		fn := f.Profile.IsFunction(cur.Kind())
		if !fn && !f.Profile.IsScope(cur.Kind()) {
			continue
		}
		if s, ok := f.Profile.Name(cur, f.Source); ok {
			parts = append(parts, s)
		} else if fn {
			if s, ok := h.FunctionName(cur, f); ok {
				parts = append(parts, s)
			}
		}
	}
	return nestedQN(f.ModuleQN, parts, name)
}

// scopedQN joins the names of scope-kind ancestors under the module QN.
func scopedQN(n *tree_sitter.Node, f *File, name string) string {
	var parts []string
	for cur := n.Parent(); cur != nil && !f.Profile.IsModule(cur.Kind()); cur = cur.Parent() {
		if !f.Profile.IsScope(cur.Kind()) {
			continue
		}
		if s, ok := f.Profile.Name(cur, f.Source); ok {
			parts = append(parts, s)
		}
	}
	return nestedQN(f.ModuleQN, parts, name)
}
