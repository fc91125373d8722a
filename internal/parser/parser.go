package parser

import (
	"fmt"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_bash "github.com/tree-sitter/tree-sitter-bash/bindings/go"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_elixir "github.com/tree-sitter/tree-sitter-elixir/bindings/go"
	tree_sitter_erlang "github.com/tree-sitter/tree-sitter-erlang/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_haskell "github.com/tree-sitter/tree-sitter-haskell/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_ocaml "github.com/tree-sitter/tree-sitter-ocaml/bindings/go"
	tree_sitter_perl "github.com/tree-sitter/tree-sitter-perl/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	tree_sitter_lua "github.com/tree-sitter-grammars/tree-sitter-lua/bindings/go"
	tree_sitter_objc "github.com/tree-sitter-grammars/tree-sitter-objc/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"

	tree_sitter_dart "github.com/UserNobody14/tree-sitter-dart/bindings/go"
	tree_sitter_swift "github.com/alex-pinkus/tree-sitter-swift/bindings/go"
	tree_sitter_groovy "github.com/murtaza64/tree-sitter-groovy/bindings/go"
	tree_sitter_r "github.com/r-lib/tree-sitter-r/bindings/go"

	"github.com/DeusData/codegraph/internal/lang"
)

// grammars holds the constructor of every bundled tree-sitter grammar.
var grammars = map[lang.Language]func() unsafe.Pointer{
	lang.Python:     tree_sitter_python.Language,
	lang.JavaScript: tree_sitter_javascript.Language,
	lang.TypeScript: tree_sitter_typescript.LanguageTypescript,
	lang.TSX:        tree_sitter_typescript.LanguageTSX,
	lang.Go:         tree_sitter_go.Language,
	lang.Rust:       tree_sitter_rust.Language,
	lang.Java:       tree_sitter_java.Language,
	lang.CPP:        tree_sitter_cpp.Language,
	lang.C:          tree_sitter_c.Language,
	lang.CSharp:     tree_sitter_c_sharp.Language,
	lang.PHP:        tree_sitter_php.LanguagePHPOnly,
	lang.Lua:        tree_sitter_lua.Language,
	lang.Scala:      tree_sitter_scala.Language,
	lang.Kotlin:     tree_sitter_kotlin.Language,
	lang.Ruby:       tree_sitter_ruby.Language,
	lang.Swift:      tree_sitter_swift.Language,
	lang.Dart:       tree_sitter_dart.Language,
	lang.Zig:        tree_sitter_zig.Language,
	lang.Bash:       tree_sitter_bash.Language,
	lang.Groovy:     tree_sitter_groovy.Language,
	lang.Elixir:     tree_sitter_elixir.Language,
	lang.Erlang:     tree_sitter_erlang.Language,
	lang.Haskell:    tree_sitter_haskell.Language,
	lang.OCaml:      tree_sitter_ocaml.LanguageOCaml,
	lang.Perl:       tree_sitter_perl.Language,
	lang.R:          tree_sitter_r.Language,
	lang.ObjectiveC: tree_sitter_objc.Language,
}

// grammar is a loaded language with a pool of parsers bound to it.
type grammar struct {
	language *tree_sitter.Language
	parsers  sync.Pool
}

var (
	loadOnce sync.Once
	loaded   map[lang.Language]*grammar
)

func load(l lang.Language) (*grammar, error) {
	loadOnce.Do(func() {
		loaded = make(map[lang.Language]*grammar, len(grammars))
		for id, ctor := range grammars {
			g := &grammar{language: tree_sitter.NewLanguage(ctor())}
			g.parsers.New = func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(g.language); err != nil {
					panic(fmt.Sprintf("parser: set language %s: %v", id, err))
				}
				return p
			}
			loaded[id] = g
		}
	})
	g, ok := loaded[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
	return g, nil
}

// Supported reports whether a grammar is bundled for l.
func Supported(l lang.Language) bool {
	_, ok := grammars[l]
	return ok
}

// Parse parses source with the grammar for l. The caller closes the tree.
func Parse(l lang.Language, source []byte) (*tree_sitter.Tree, error) {
	g, err := load(l)
	if err != nil {
		return nil, err
	}
	p := g.parsers.Get().(*tree_sitter.Parser)
	defer g.parsers.Put(p)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %s", l)
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// FindAncestor returns the nearest ancestor matching pred, or nil. The walk
// stops without a match when stop returns true for an ancestor.
func FindAncestor(node *tree_sitter.Node, pred, stop func(*tree_sitter.Node) bool) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
		if stop != nil && stop(cur) {
			return nil
		}
	}
	return nil
}

// FindChildByKind returns the first direct child of the given kind.
func FindChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// LineRange returns the 1-based start and end lines of a node.
func LineRange(node *tree_sitter.Node) (start, end int) {
	return int(node.StartPosition().Row) + 1, int(node.EndPosition().Row) + 1
}

// Position returns the 0-based row and column a node starts at.
func Position(node *tree_sitter.Node) (row, col int) {
	p := node.StartPosition()
	return int(p.Row), int(p.Column)
}
