package fqn

import (
	"path"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
)

// Resolve returns the canonical qualified name for a definition node.
// Format: <project>.<module path>.<enclosing scopes>.<name>
// Examples:
//   - myproject.pkg.service.OrderService.process
//   - myproject.src.net.Connection.open (Rust impl method in src/net/mod.rs)
//
// It reports false when the node has no name of its own; callers fall back
// to a language handler for anonymous constructs.
func Resolve(node *tree_sitter.Node, p *lang.Profile, source []byte, path, root, project string) (string, bool) {
	name, ok := p.Name(node, source)
	if !ok {
		return "", false
	}
	parts := []string{name}
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if !p.IsScope(cur.Kind()) {
			continue
		}
		if scope, ok := p.Name(cur, source); ok {
			parts = append(parts, scope)
		}
	}
	reverse(parts)

	all := append([]string{project}, p.ModulePath(path, root)...)
	all = append(all, parts...)
	return strings.Join(all, "."), true
}

// ModuleQN returns the qualified name of the module a file defines.
func ModuleQN(p *lang.Profile, project, path, root string) string {
	return strings.Join(append([]string{project}, p.ModulePath(path, root)...), ".")
}

// Join appends dotted segments to a qualified name, skipping empty ones.
func Join(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	if base != "" {
		parts = append(parts, base)
	}
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// FolderQN returns the qualified name for a folder.
func FolderQN(project, relDir string) string {
	relDir = filepath.ToSlash(filepath.Clean(relDir))
	if relDir == "." || relDir == "" {
		return project
	}
	parts := strings.Split(relDir, "/")
	all := append([]string{project}, parts...)
	return strings.Join(all, ".")
}

// PathToDotted turns a slash path into dotted segments, dropping the
// extension of the last element.
func PathToDotted(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimSuffix(p, path.Ext(p))
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return strings.ReplaceAll(p, "/", ".")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
