package pipeline

import (
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/fqn"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
	"github.com/DeusData/codegraph/internal/symbols"
)

// importRef is one alias→target entry a file declares. Wildcard entries
// have an empty alias.
type importRef struct {
	alias    string
	target   string
	wildcard bool
}

// importCollector accumulates the entries of one file.
type importCollector struct {
	p    *Pipeline
	pf   *parsedFile
	refs []importRef
}

func (c *importCollector) add(alias, target string) {
	alias, target = strings.TrimSpace(alias), strings.TrimSpace(target)
	if alias == "" || target == "" {
		return
	}
	c.refs = append(c.refs, importRef{alias: alias, target: target})
}

func (c *importCollector) addWildcard(namespace string) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return
	}
	c.refs = append(c.refs, importRef{target: namespace, wildcard: true})
}

func (c *importCollector) skip(n *tree_sitter.Node, reason string) {
	row, _ := parser.Position(n)
	slog.Debug("imports.skip", "path", c.pf.info.RelPath, "line", row+1, "reason", reason)
}

func (c *importCollector) text(n *tree_sitter.Node) string {
	return c.pf.file.Text(n)
}

// parseImports fills the module's import mapping from the file's import
// statements.
func (p *Pipeline) parseImports(pf *parsedFile) {
	c := &importCollector{p: p, pf: pf}
	root := pf.tree.RootNode()
	prof := pf.file.Profile

	switch pf.info.Language {
	case lang.Lua:
		parser.Walk(root, func(n *tree_sitter.Node) bool {
			if n.Kind() == "function_call" {
				c.lua(n)
			}
			return true
		})
	case lang.Ruby:
		parser.Walk(root, func(n *tree_sitter.Node) bool {
			if n.Kind() == "call" {
				c.ruby(n)
			}
			return true
		})
	case lang.Elixir:
		parser.Walk(root, func(n *tree_sitter.Node) bool {
			if n.Kind() == "call" {
				c.elixir(n)
			}
			return true
		})
	case lang.R:
		parser.Walk(root, func(n *tree_sitter.Node) bool {
			if n.Kind() == "call" {
				c.rLibrary(n)
			}
			return true
		})
	default:
		parser.Walk(root, func(n *tree_sitter.Node) bool {
			if !prof.IsImport(n.Kind()) {
				return true
			}
			c.statement(n)
			return false
		})
	}

	mod := pf.file.ModuleQN
	for _, ref := range c.refs {
		if ref.wildcard {
			p.imports.AddWildcard(mod, ref.target)
		} else {
			p.imports.Add(mod, ref.alias, ref.target)
		}
	}
}

func (c *importCollector) statement(n *tree_sitter.Node) {
	switch c.pf.info.Language {
	case lang.Python:
		c.python(n)
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		c.javascript(n)
	case lang.Go:
		c.golang(n)
	case lang.Rust:
		if arg := n.ChildByFieldName("argument"); arg != nil {
			c.rustUse(arg, "")
		}
	case lang.C, lang.CPP, lang.ObjectiveC:
		c.include(n)
	case lang.Java:
		c.dotted(n, "import", "static")
	case lang.Kotlin:
		c.dotted(n, "import")
	case lang.Swift:
		c.dotted(n, "import", "typealias", "struct", "class", "enum", "protocol", "func", "var", "let")
	case lang.Groovy:
		c.dotted(n, "import", "static")
	case lang.Scala:
		c.scala(n)
	case lang.CSharp:
		c.csharp(n)
	case lang.PHP:
		c.php(n)
	}
}

// === Python ===

func (c *importCollector) python(n *tree_sitter.Node) {
	switch n.Kind() {
	case "import_statement":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			switch child.Kind() {
			case "dotted_name":
				name := c.text(child)
				first, _, _ := strings.Cut(name, ".")
				c.add(first, c.pythonModule(name))
			case "aliased_import":
				name := c.text(child.ChildByFieldName("name"))
				c.add(c.text(child.ChildByFieldName("alias")), c.pythonModule(name))
			}
		}
	case "import_from_statement":
		modNode := n.ChildByFieldName("module_name")
		if modNode == nil {
			c.skip(n, "missing module")
			return
		}
		var base string
		if modNode.Kind() == "relative_import" {
			base = c.pythonRelative(modNode)
		} else {
			base = c.pythonModule(c.text(modNode))
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil || child.Id() == modNode.Id() {
				continue
			}
			switch child.Kind() {
			case "wildcard_import":
				c.addWildcard(base)
			case "dotted_name":
				name := c.text(child)
				c.add(graph.SimpleName(name), base+"."+name)
			case "aliased_import":
				name := c.text(child.ChildByFieldName("name"))
				c.add(c.text(child.ChildByFieldName("alias")), base+"."+name)
			}
		}
	}
}

// pythonModule prefixes a dotted module with the project name when its
// top-level package lives in the repository.
func (c *importCollector) pythonModule(name string) string {
	first, _, _ := strings.Cut(name, ".")
	if c.p.stats.exists(first) || c.p.stats.exists(first+".py") {
		return c.pf.file.Project + "." + name
	}
	return name
}

// pythonRelative resolves "from ..m import x" against the importing
// file's package.
func (c *importCollector) pythonRelative(n *tree_sitter.Node) string {
	dots, name := 0, ""
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "import_prefix":
			dots = len(strings.TrimSpace(c.text(child)))
		case "dotted_name":
			name = c.text(child)
		}
	}
	dir := path.Dir(c.pf.info.RelPath)
	for i := 1; i < dots; i++ {
		dir = path.Dir(dir)
	}
	return fqn.Join(fqn.FolderQN(c.pf.file.Project, dir), strings.Split(name, ".")...)
}

// === JavaScript / TypeScript ===

func (c *importCollector) javascript(n *tree_sitter.Node) {
	switch n.Kind() {
	case "import_statement":
		src := c.jsSource(n.ChildByFieldName("source"))
		if src == "" {
			c.skip(n, "missing source")
			return
		}
		clause := parser.FindChildByKind(n, "import_clause")
		if clause == nil {
			return // side-effect import
		}
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			child := clause.NamedChild(i)
			switch child.Kind() {
			case "identifier":
				c.add(c.text(child), src+".default")
			case "namespace_import":
				if id := parser.FindChildByKind(child, "identifier"); id != nil {
					c.add(c.text(id), src)
				}
			case "named_imports":
				c.jsSpecifiers(child, "import_specifier", src)
			}
		}
	case "export_statement":
		srcNode := n.ChildByFieldName("source")
		if srcNode == nil {
			return
		}
		src := c.jsSource(srcNode)
		if clause := parser.FindChildByKind(n, "export_clause"); clause != nil {
			c.jsSpecifiers(clause, "export_specifier", src)
			return
		}
		if ns := parser.FindChildByKind(n, "namespace_export"); ns != nil {
			if id := ns.NamedChild(0); id != nil {
				c.add(c.text(id), src)
			}
			return
		}
		c.addWildcard(src)
	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			decl := n.NamedChild(i)
			if decl.Kind() == "variable_declarator" {
				c.jsRequire(decl)
			}
		}
	}
}

func (c *importCollector) jsSpecifiers(list *tree_sitter.Node, kind, src string) {
	for i := uint(0); i < list.NamedChildCount(); i++ {
		spec := list.NamedChild(i)
		if spec.Kind() != kind {
			continue
		}
		name := c.text(spec.ChildByFieldName("name"))
		alias := name
		if a := spec.ChildByFieldName("alias"); a != nil {
			alias = c.text(a)
		}
		c.add(alias, src+"."+name)
	}
}

// jsRequire handles "const x = require('./p')" and destructured requires.
func (c *importCollector) jsRequire(decl *tree_sitter.Node) {
	value := decl.ChildByFieldName("value")
	if value == nil || value.Kind() != "call_expression" {
		return
	}
	if fn := value.ChildByFieldName("function"); fn == nil || c.text(fn) != "require" {
		return
	}
	args := value.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	src := c.jsSource(args.NamedChild(0))
	if src == "" {
		return
	}
	name := decl.ChildByFieldName("name")
	if name == nil {
		return
	}
	switch name.Kind() {
	case "identifier":
		c.add(c.text(name), src)
	case "object_pattern":
		for i := uint(0); i < name.NamedChildCount(); i++ {
			prop := name.NamedChild(i)
			switch prop.Kind() {
			case "shorthand_property_identifier_pattern":
				c.add(c.text(prop), src+"."+c.text(prop))
			case "pair_pattern":
				c.add(c.text(prop.ChildByFieldName("value")), src+"."+c.text(prop.ChildByFieldName("key")))
			}
		}
	}
}

// jsSource turns an import source string into a target. Relative paths are
// resolved against the importing file and become project module QNs.
func (c *importCollector) jsSource(n *tree_sitter.Node) string {
	if n == nil || n.Kind() != "string" {
		return ""
	}
	src := stripQuotes(c.text(n))
	if src == "" {
		return ""
	}
	if !strings.HasPrefix(src, ".") {
		return strings.ReplaceAll(src, "/", ".")
	}
	rel := path.Join(path.Dir(c.pf.info.RelPath), src)
	dotted := fqn.PathToDotted(rel)
	dotted = strings.TrimSuffix(dotted, ".index")
	if dotted == "index" {
		dotted = ""
	}
	return fqn.Join(c.pf.file.Project, dotted)
}

// === Go ===

func (c *importCollector) golang(n *tree_sitter.Node) {
	parser.Walk(n, func(spec *tree_sitter.Node) bool {
		if spec.Kind() != "import_spec" {
			return true
		}
		importPath := stripQuotes(c.text(spec.ChildByFieldName("path")))
		if importPath == "" {
			c.skip(spec, "empty path")
			return false
		}
		target := resolveGoImportPath(importPath, c.pf.file.Project)
		alias := lastPathSegment(importPath)
		if name := spec.ChildByFieldName("name"); name != nil {
			switch name.Kind() {
			case "dot":
				c.addWildcard(target)
				return false
			case "blank_identifier":
				return false
			}
			alias = c.text(name)
		}
		c.add(alias, target)
		return false
	})
}

// resolveGoImportPath maps an import path to a QN. Paths that contain the
// project name are project-internal and keep the part from there on.
func resolveGoImportPath(importPath, projectName string) string {
	parts := strings.Split(importPath, "/")
	for i, part := range parts {
		if part == projectName {
			return strings.Join(parts[i:], ".")
		}
	}
	return strings.Join(parts, ".")
}

// === Rust ===

// rustUse walks a use tree. Targets keep their "::" separators.
func (c *importCollector) rustUse(n *tree_sitter.Node, prefix string) {
	join := func(a, b string) string {
		if a == "" {
			return b
		}
		return a + "::" + b
	}
	switch n.Kind() {
	case "identifier", "scoped_identifier", "crate", "super":
		full := join(prefix, c.text(n))
		c.add(lastRustSegment(full), full)
	case "self":
		if prefix != "" {
			c.add(lastRustSegment(prefix), prefix)
		}
	case "use_as_clause":
		full := join(prefix, c.text(n.ChildByFieldName("path")))
		c.add(c.text(n.ChildByFieldName("alias")), full)
	case "use_wildcard":
		base := strings.TrimSuffix(strings.TrimSpace(c.text(n)), "*")
		base = strings.TrimSuffix(base, "::")
		c.addWildcard(join(prefix, base))
	case "scoped_use_list":
		base := prefix
		if p := n.ChildByFieldName("path"); p != nil {
			base = join(prefix, c.text(p))
		}
		if list := n.ChildByFieldName("list"); list != nil {
			c.rustUse(list, base)
		}
	case "use_list":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c.rustUse(n.NamedChild(i), prefix)
		}
	default:
		c.skip(n, "unsupported use tree "+n.Kind())
	}
}

func lastRustSegment(p string) string {
	if i := strings.LastIndex(p, "::"); i >= 0 {
		return p[i+2:]
	}
	return p
}

// === C / C++ ===

func (c *importCollector) include(n *tree_sitter.Node) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		c.skip(n, "missing path")
		return
	}
	raw := c.text(pathNode)
	if pathNode.Kind() == "system_lib_string" {
		inc := strings.Trim(raw, "<>")
		name := strings.TrimSuffix(path.Base(inc), path.Ext(inc))
		target := inc
		if !strings.HasPrefix(inc, "std") {
			target = "std." + inc
		}
		c.add(name, strings.ReplaceAll(target, "/", "."))
		return
	}
	inc := stripQuotes(raw)
	if inc == "" {
		return
	}
	target := fqn.Join(c.pf.file.Project, fqn.PathToDotted(inc))
	c.add(strings.TrimSuffix(path.Base(inc), path.Ext(inc)), target)
	c.addWildcard(target)
}

// === Lua ===

// lua handles require("a.b") and pcall(require, "a.b"). The alias is the
// variable the result is assigned to, falling back to the last segment.
func (c *importCollector) lua(call *tree_sitter.Node) {
	name := c.text(call.ChildByFieldName("name"))
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	var modPath string
	pcall := false
	switch name {
	case "require":
		if args.NamedChildCount() > 0 {
			modPath = stripQuotes(c.text(args.NamedChild(0)))
		}
	case "pcall":
		if args.NamedChildCount() < 2 || c.text(args.NamedChild(0)) != "require" {
			return
		}
		modPath = stripQuotes(c.text(args.NamedChild(1)))
		pcall = true
	default:
		return
	}
	if modPath == "" {
		c.skip(call, "empty require")
		return
	}

	alias := luaAssignedName(call, c.pf.file.Source, pcall)
	if alias == "" {
		alias = lastDotSegment(strings.ReplaceAll(modPath, "/", "."))
	}
	c.add(alias, c.luaModule(modPath))
}

func (c *importCollector) luaModule(modPath string) string {
	if strings.HasPrefix(modPath, "./") || strings.HasPrefix(modPath, "../") {
		rel := path.Join(path.Dir(c.pf.info.RelPath), modPath)
		return fqn.Join(c.pf.file.Project, strings.Split(rel, "/")...)
	}
	dotted := strings.ReplaceAll(modPath, "/", ".")
	file := strings.ReplaceAll(dotted, ".", "/")
	if c.p.stats.exists(file+".lua") || c.p.stats.exists(file+"/init.lua") {
		return c.pf.file.Project + "." + dotted
	}
	return dotted
}

// luaAssignedName finds the variable a call's value is assigned to. For
// pcall the module is the second assigned value.
func luaAssignedName(call *tree_sitter.Node, source []byte, pcall bool) string {
	values := call.Parent()
	if values == nil || values.Kind() != "expression_list" {
		return ""
	}
	assign := values.Parent()
	if assign == nil || assign.Kind() != "assignment_statement" {
		return ""
	}
	targets := parser.FindChildByKind(assign, "variable_list")
	if targets == nil {
		return ""
	}
	idx := 0
	for i := uint(0); i < values.NamedChildCount(); i++ {
		if values.NamedChild(i).Id() == call.Id() {
			idx = int(i)
			break
		}
	}
	if pcall {
		idx++
	}
	if uint(idx) >= targets.NamedChildCount() {
		return ""
	}
	return parser.NodeText(targets.NamedChild(uint(idx)), source)
}

// === Ruby ===

func (c *importCollector) ruby(call *tree_sitter.Node) {
	method := c.text(call.ChildByFieldName("method"))
	if method != "require" && method != "require_relative" {
		return
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	if arg.Kind() != "string" {
		c.skip(call, "dynamic require")
		return
	}
	req := stripQuotes(c.text(arg))
	if req == "" {
		return
	}
	alias := path.Base(req)
	target := strings.ReplaceAll(req, "/", ".")
	if method == "require_relative" {
		rel := path.Join(path.Dir(c.pf.info.RelPath), req)
		target = fqn.Join(c.pf.file.Project, fqn.PathToDotted(rel))
	}
	c.add(strings.TrimSuffix(alias, ".rb"), target)
}

// === Elixir ===

// elixir maps "alias A.B" and "alias A.B, as: C" to the module, and turns
// "import A.B" into a wildcard.
func (c *importCollector) elixir(call *tree_sitter.Node) {
	macro := lang.ElixirMacro(call, c.pf.file.Source)
	if macro != "alias" && macro != "import" {
		return
	}
	args := childOfKind(call, "arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	mod := args.NamedChild(0)
	if mod.Kind() != "alias" {
		c.skip(call, "dynamic "+macro)
		return
	}
	target := c.text(mod)
	if macro == "import" {
		c.addWildcard(target)
		return
	}
	alias := lastDotSegment(target)
	if kw := childOfKind(args, "keywords"); kw != nil {
		for i := uint(0); i < kw.NamedChildCount(); i++ {
			pair := kw.NamedChild(i)
			key, value := pair.ChildByFieldName("key"), pair.ChildByFieldName("value")
			if key != nil && value != nil && strings.TrimSpace(c.text(key)) == "as:" {
				alias = c.text(value)
			}
		}
	}
	c.add(alias, target)
}

// === R ===

// rLibrary turns library(pkg) and require(pkg) into a wildcard on pkg.
func (c *importCollector) rLibrary(call *tree_sitter.Node) {
	fn := c.text(call.ChildByFieldName("function"))
	if fn != "library" && fn != "require" {
		return
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	if v := arg.ChildByFieldName("value"); v != nil {
		arg = v
	}
	c.addWildcard(stripQuotes(c.text(arg)))
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// === text-form imports (Java, Kotlin, Swift, Groovy, Scala, C#, PHP) ===

// dotted handles "import [static] a.b.C [as D];" and "import a.b.*;".
func (c *importCollector) dotted(n *tree_sitter.Node, keywords ...string) {
	body := importBody(c.text(n), keywords...)
	if body == "" {
		c.skip(n, "empty import")
		return
	}
	target, alias, hasAlias := strings.Cut(body, " as ")
	target = strings.Join(strings.Fields(target), "")
	if strings.HasSuffix(target, ".*") {
		c.addWildcard(strings.TrimSuffix(target, ".*"))
		return
	}
	if !hasAlias {
		alias = lastDotSegment(target)
	}
	c.add(alias, target)
}

func (c *importCollector) scala(n *tree_sitter.Node) {
	body := importBody(c.text(n), "import")
	for _, clause := range splitTopLevel(body) {
		c.scalaClause(clause)
	}
}

func (c *importCollector) scalaClause(clause string) {
	clause = strings.TrimSpace(clause)
	if open := strings.IndexByte(clause, '{'); open >= 0 {
		prefix := strings.TrimSuffix(strings.TrimSpace(clause[:open]), ".")
		inner := strings.TrimSuffix(strings.TrimSpace(clause[open+1:]), "}")
		for _, sel := range strings.Split(inner, ",") {
			sel = strings.TrimSpace(sel)
			name, alias, renamed := cutAny(sel, "=>", " as ")
			name, alias = strings.TrimSpace(name), strings.TrimSpace(alias)
			switch {
			case name == "_" || name == "*":
				c.addWildcard(prefix)
			case alias == "_":
				// hidden member
			case renamed:
				c.add(alias, prefix+"."+name)
			default:
				c.add(name, prefix+"."+name)
			}
		}
		return
	}
	target, alias, renamed := strings.Cut(clause, " as ")
	target = strings.TrimSpace(target)
	if strings.HasSuffix(target, "._") || strings.HasSuffix(target, ".*") {
		c.addWildcard(target[:len(target)-2])
		return
	}
	if !renamed {
		alias = lastDotSegment(target)
	}
	c.add(alias, target)
}

func (c *importCollector) csharp(n *tree_sitter.Node) {
	body := importBody(c.text(n), "global", "using", "static")
	if body == "" {
		c.skip(n, "empty using")
		return
	}
	if alias, target, ok := strings.Cut(body, "="); ok {
		c.add(alias, strings.Join(strings.Fields(target), ""))
		return
	}
	c.addWildcard(body)
}

func (c *importCollector) php(n *tree_sitter.Node) {
	body := importBody(c.text(n), "use", "function", "const")
	body = strings.ReplaceAll(body, `\`, ".")
	body = strings.TrimPrefix(body, ".")
	if open := strings.IndexByte(body, '{'); open >= 0 {
		prefix := strings.TrimSuffix(strings.TrimSpace(body[:open]), ".")
		inner := strings.TrimSuffix(strings.TrimSpace(body[open+1:]), "}")
		for _, item := range strings.Split(inner, ",") {
			c.phpClause(prefix, item)
		}
		return
	}
	for _, item := range strings.Split(body, ",") {
		c.phpClause("", item)
	}
}

func (c *importCollector) phpClause(prefix, item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	target, alias, renamed := cutAny(item, " as ", " AS ")
	target = strings.TrimPrefix(strings.TrimSpace(target), ".")
	if prefix != "" {
		target = prefix + "." + target
	}
	if !renamed {
		alias = lastDotSegment(target)
	}
	c.add(alias, target)
}

// importBody strips leading keywords and the trailing semicolon.
func importBody(text string, keywords ...string) string {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	for changed := true; changed; {
		changed = false
		for _, kw := range keywords {
			if rest, ok := strings.CutPrefix(text, kw); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n') {
				text = strings.TrimSpace(rest)
				changed = true
			}
		}
	}
	return text
}

// splitTopLevel splits on commas outside braces.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func cutAny(s string, seps ...string) (before, after string, found bool) {
	for _, sep := range seps {
		if b, a, ok := strings.Cut(s, sep); ok {
			return b, a, true
		}
	}
	return s, "", false
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func lastPathSegment(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func lastDotSegment(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// emitImports records a Module IMPORTS Module fact for every mapping entry,
// pointing at the module part of the target. Shadowed aliases are gone from
// the mapping by then and emit nothing.
func (p *Pipeline) emitImports(pf *parsedFile) {
	from := graph.QN(graph.Module, pf.file.ModuleQN)
	entries := p.imports.Entries(pf.file.ModuleQN)
	for _, alias := range slices.Sorted(maps.Keys(entries)) {
		target := p.moduleOf(normalizeTarget(entries[alias]))
		if target == "" || target == pf.file.ModuleQN {
			continue
		}
		props := map[string]any{}
		if strings.HasPrefix(alias, symbols.WildcardPrefix) {
			props["wildcard"] = true
		} else {
			props["alias"] = alias
		}
		pf.batch.EnsureRelationship(from, graph.Imports, graph.QN(graph.Module, target), props)
	}
}

// moduleOf returns the module a target lives in: the longest prefix of
// the resolved target that is a registered module. Targets outside the
// project are returned unchanged.
func (p *Pipeline) moduleOf(target string) string {
	if resolved, ok := p.resolveImported(target); ok {
		target = resolved
	}
	for cur := target; cur != ""; cur = graph.Parent(cur) {
		if s, ok := p.registry.Lookup(cur); ok && s.Kind == graph.Module {
			return cur
		}
	}
	return target
}

// normalizeTarget converts language-specific separators in an import
// target to dots.
func normalizeTarget(target string) string {
	target = strings.ReplaceAll(target, "::", ".")
	target = strings.ReplaceAll(target, `\`, ".")
	for _, root := range []string{"crate.", "self.", "super."} {
		target = strings.TrimPrefix(target, root)
	}
	return target
}
