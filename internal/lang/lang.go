package lang

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Language represents a supported programming language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	CPP        Language = "cpp"
	C          Language = "c"
	CSharp     Language = "c-sharp"
	PHP        Language = "php"
	Lua        Language = "lua"
	Scala      Language = "scala"
	Kotlin     Language = "kotlin"
	Ruby       Language = "ruby"
	Swift      Language = "swift"
	Dart       Language = "dart"
	Zig        Language = "zig"
	Bash       Language = "bash"
	Groovy     Language = "groovy"
	Elixir     Language = "elixir"
	Erlang     Language = "erlang"
	Haskell    Language = "haskell"
	OCaml      Language = "ocaml"
	Perl       Language = "perl"
	R          Language = "r"
	ObjectiveC Language = "objc"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{
		Python, JavaScript, TypeScript, TSX, Go, Rust, Java, CPP, C, CSharp, PHP, Lua, Scala, Kotlin, Ruby,
		Swift, Dart, Zig, Bash, Groovy, Elixir, Erlang, Haskell, OCaml, Perl, R, ObjectiveC,
	}
}

// NameFunc extracts the own name of a definition or scope node.
type NameFunc func(node *tree_sitter.Node, source []byte) (string, bool)

// ModulePathFunc derives the dotted module path components of a file.
type ModulePathFunc func(path, root string) []string

// Profile is the declarative description of one language: which CST node
// kinds carry scopes, functions, classes and modules, how a node's own name
// is read, and how a file path maps to a module path.
//
// Profiles are built once in init and never mutated afterwards.
type Profile struct {
	Language          Language
	FileExtensions    []string
	ScopeNodeTypes    []string
	FunctionNodeTypes []string
	ClassNodeTypes    []string
	ModuleNodeTypes   []string
	CallNodeTypes     []string
	ImportNodeTypes   []string
	// IndexNames are file stems that stand for their directory
	// (__init__, index, mod).
	IndexNames []string
	// DocLinePrefix is the line comment marker scanned for doc comments.
	DocLinePrefix string

	NameFunc       NameFunc
	ModulePathFunc ModulePathFunc

	scopes    map[string]bool
	functions map[string]bool
	classes   map[string]bool
	modules   map[string]bool
	calls     map[string]bool
	imports   map[string]bool
}

// IsScope reports whether kind contributes a name segment to qualified names.
func (p *Profile) IsScope(kind string) bool { return p.scopes[kind] }

// IsFunction reports whether kind is a function-like definition.
func (p *Profile) IsFunction(kind string) bool { return p.functions[kind] }

// IsClass reports whether kind is a class-like definition.
func (p *Profile) IsClass(kind string) bool { return p.classes[kind] }

// IsModule reports whether kind is a module boundary.
func (p *Profile) IsModule(kind string) bool { return p.modules[kind] }

// IsCall reports whether kind is a call expression.
func (p *Profile) IsCall(kind string) bool { return p.calls[kind] }

// IsImport reports whether kind is an import-like statement.
func (p *Profile) IsImport(kind string) bool { return p.imports[kind] }

// Name extracts the node's own name using the profile's extractor.
func (p *Profile) Name(node *tree_sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	if p.NameFunc != nil {
		return p.NameFunc(node, source)
	}
	return FieldName(node, source)
}

// ModulePath returns the module path components for a file under root.
func (p *Profile) ModulePath(path, root string) []string {
	return p.ModulePathFunc(path, root)
}

// registry maps file extensions to profiles.
var (
	registry   = map[string]*Profile{}
	byLanguage = map[Language]*Profile{}
)

// Register adds a Profile to the global registry. Registering the same
// language or extension twice is a programming error and panics.
func Register(p *Profile) {
	if _, dup := byLanguage[p.Language]; dup {
		panic(fmt.Sprintf("lang: duplicate profile for %s", p.Language))
	}
	p.scopes = toSet(p.ScopeNodeTypes)
	p.functions = toSet(p.FunctionNodeTypes)
	p.classes = toSet(p.ClassNodeTypes)
	p.modules = toSet(p.ModuleNodeTypes)
	p.calls = toSet(p.CallNodeTypes)
	p.imports = toSet(p.ImportNodeTypes)
	if p.ModulePathFunc == nil {
		p.ModulePathFunc = FileModulePath(p.IndexNames)
	}

	for _, ext := range p.FileExtensions {
		if other, dup := registry[ext]; dup {
			panic(fmt.Sprintf("lang: extension %s claimed by %s and %s", ext, other.Language, p.Language))
		}
		registry[ext] = p
	}
	byLanguage[p.Language] = p
}

// ForExtension returns the Profile for a file extension (e.g. ".go").
func ForExtension(ext string) *Profile {
	return registry[strings.ToLower(ext)]
}

// ForLanguage returns the Profile for a language.
func ForLanguage(l Language) *Profile {
	return byLanguage[l]
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	p := ForExtension(ext)
	if p == nil {
		return "", false
	}
	return p.Language, true
}

// FieldName reads the "name" field of a node, falling back to the first
// identifier-like named child. Grammars disagree on whether the name is a
// field, so both are tried.
func FieldName(node *tree_sitter.Node, source []byte) (string, bool) {
	if n := node.ChildByFieldName("name"); n != nil {
		return nonEmpty(n.Utf8Text(source))
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "simple_identifier", "type_identifier", "constant":
			return nonEmpty(child.Utf8Text(source))
		}
	}
	return "", false
}

// FileModulePath returns a ModulePathFunc that maps "a/b/c.ext" to
// [a b c], collapsing any of the given index stems into the directory.
func FileModulePath(indexNames []string) ModulePathFunc {
	index := toSet(indexNames)
	return func(path, root string) []string {
		rel := path
		if filepath.IsAbs(path) && root != "" {
			if r, err := filepath.Rel(root, path); err == nil {
				rel = r
			}
		}
		rel = filepath.ToSlash(rel)
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		if rel == "" || rel == "." {
			return nil
		}
		parts := strings.Split(rel, "/")
		if index[parts[len(parts)-1]] {
			parts = parts[:len(parts)-1]
		}
		out := parts[:0]
		for _, part := range parts {
			if part != "" && part != "." {
				out = append(out, part)
			}
		}
		return out
	}
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
