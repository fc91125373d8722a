package pipeline

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// blockComment is a pair of multi-line comment delimiters.
type blockComment struct{ open, close string }

var (
	cBlock     = blockComment{"/*", "*/"}
	luaBlock   = blockComment{"--[[", "]]"}
	ocamlBlock = blockComment{"(**", "*)"}
)

// docWrappers carry decorators, attributes or an export keyword in front of
// the definition; the doc comment sits above them.
var docWrappers = map[string]bool{
	"decorated_definition": true,
	"export_statement":     true,
	"template_declaration": true,
}

// extractDocstring returns the documentation attached to a definition, or
// "". Python prefers the string literal opening the body; everything else
// reads the comment that ends on the line directly above the definition.
func extractDocstring(node *tree_sitter.Node, f *handler.File) string {
	if f.Profile.Language == lang.Python {
		if doc := bodyDocstring(node, f.Source); doc != "" {
			return doc
		}
	}
	lines := strings.Split(string(f.Source), "\n")
	return commentAbove(lines, docAnchorRow(node), f.Profile)
}

func docAnchorRow(node *tree_sitter.Node) int {
	anchor := node
	for parent := anchor.Parent(); parent != nil && docWrappers[parent.Kind()]; parent = parent.Parent() {
		anchor = parent
	}
	return int(anchor.StartPosition().Row)
}

func bodyDocstring(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	stmt := body.NamedChild(0)
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return ""
	}
	lit := stmt.NamedChild(0)
	if lit == nil || lit.Kind() != "string" {
		return ""
	}
	text := parser.NodeText(lit, source)
	for _, q := range []string{`"""`, `'''`} {
		if len(text) >= 2*len(q) && strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			text = text[len(q) : len(text)-len(q)]
			break
		}
	}
	return dedent(text)
}

// dedent strips the common indentation of every line after the first.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	common := -1
	for _, line := range lines[1:] {
		body := strings.TrimLeft(line, " \t")
		if body == "" {
			continue
		}
		if n := len(line) - len(body); common < 0 || n < common {
			common = n
		}
	}
	for i := 1; i < len(lines) && common > 0; i++ {
		if len(lines[i]) >= common {
			lines[i] = lines[i][common:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// commentAbove reads the comment ending on the line before row (0-based).
// A blank line in between detaches the comment.
func commentAbove(lines []string, row int, p *lang.Profile) string {
	last := row - 1
	if last < 0 || last >= len(lines) {
		return ""
	}
	text := strings.TrimSpace(lines[last])
	switch {
	case text == "":
		return ""
	case p.Language == lang.OCaml && strings.HasSuffix(text, ocamlBlock.close):
		return blockAbove(lines, last, ocamlBlock)
	case strings.HasSuffix(text, cBlock.close):
		return blockAbove(lines, last, cBlock)
	case p.Language == lang.Lua && strings.HasSuffix(text, luaBlock.close):
		return blockAbove(lines, last, luaBlock)
	case p.DocLinePrefix != "" && strings.HasPrefix(text, p.DocLinePrefix):
		return lineCommentsAbove(lines, last, p.DocLinePrefix)
	}
	return ""
}

// blockAbove walks up from the closing line to the opening delimiter and
// returns the body without delimiters or leading asterisks.
func blockAbove(lines []string, last int, bc blockComment) string {
	first := last
	for first >= 0 && !strings.Contains(lines[first], bc.open) {
		first--
	}
	if first < 0 {
		return ""
	}
	text := strings.TrimSpace(strings.Join(lines[first:last+1], "\n"))
	if i := strings.Index(text, bc.open); i >= 0 {
		text = text[i+len(bc.open):]
	}
	if i := strings.LastIndex(text, bc.close); i >= 0 {
		text = text[:i]
	}
	if bc == cBlock {
		text = strings.TrimPrefix(text, "*") // "/**"
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if bc == cBlock {
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// lineCommentsAbove collects the run of prefixed line comments ending at
// last. Markers that repeat the prefix's final rune ("///", "---") are
// stripped whole.
func lineCommentsAbove(lines []string, last int, prefix string) string {
	marker := prefix[len(prefix)-1:]
	first := last
	for first > 0 && strings.HasPrefix(strings.TrimSpace(lines[first-1]), prefix) {
		first--
	}
	out := make([]string, 0, last-first+1)
	for _, line := range lines[first : last+1] {
		body := strings.TrimPrefix(strings.TrimSpace(line), prefix)
		body = strings.TrimLeft(body, marker)
		out = append(out, strings.TrimPrefix(body, " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
