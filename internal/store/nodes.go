package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/symbols"
)

const nodeColumns = `id, project, label, name, qualified_name, file_path, start_line, end_line, properties`

// definitionLabels are the node labels a file defines. External sentinels
// are not among them.
var definitionLabels = []graph.Label{
	graph.Module, graph.Function, graph.Method, graph.Class,
	graph.Interface, graph.Enum, graph.Type, graph.Union,
}

// UpsertNode inserts a node or updates the one with the same qualified name.
func (s *Store) UpsertNode(n *Node) error {
	return nodeUpsert.exec(s.q, []*Node{n})
}

// UpsertNodeBatch upserts nodes in as few statements as possible.
func (s *Store) UpsertNodeBatch(nodes []*Node) error {
	return nodeUpsert.exec(s.q, nodes)
}

// FindNodeByQN returns the node with a qualified name or ErrNotFound.
func (s *Store) FindNodeByQN(project, qualifiedName string) (*Node, error) {
	row := s.q.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE project=? AND qualified_name=?", project, qualifiedName)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// FindNodesByName returns every node with a simple name.
func (s *Store) FindNodesByName(project, name string) ([]*Node, error) {
	return s.queryNodes("by name", "project=? AND name=? ORDER BY qualified_name", project, name)
}

// FindNodesByLabel returns every node with a label.
func (s *Store) FindNodesByLabel(project, label string) ([]*Node, error) {
	return s.queryNodes("by label", "project=? AND label=? ORDER BY qualified_name", project, label)
}

// FindNodesByFile returns the nodes a file owns in source order.
func (s *Store) FindNodesByFile(project, filePath string) ([]*Node, error) {
	return s.queryNodes("by file", "project=? AND file_path=? ORDER BY start_line, qualified_name", project, filePath)
}

// AllNodes returns every node of a project.
func (s *Store) AllNodes(project string) ([]*Node, error) {
	return s.queryNodes("all", "project=? ORDER BY qualified_name", project)
}

// CountNodes returns the number of nodes in a project.
func (s *Store) CountNodes(project string) (int, error) {
	var n int
	err := s.q.QueryRow("SELECT COUNT(*) FROM nodes WHERE project=?", project).Scan(&n)
	return n, err
}

// DeleteNodesByFile deletes the nodes a file owns.
func (s *Store) DeleteNodesByFile(project, filePath string) error {
	_, err := s.q.Exec("DELETE FROM nodes WHERE project=? AND file_path=?", project, filePath)
	return err
}

// FilePaths returns the sorted files that own at least one node.
func (s *Store) FilePaths(project string) ([]string, error) {
	rows, err := s.q.Query("SELECT DISTINCT file_path FROM nodes WHERE project=? AND file_path != '' ORDER BY file_path", project)
	if err != nil {
		return nil, fmt.Errorf("file paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Symbols returns every file-owned definition of a project as registry
// entries, so a run can resolve against files it does not re-ingest.
func (s *Store) Symbols(project string) ([]symbols.Symbol, error) {
	args := []any{project}
	for _, l := range definitionLabels {
		args = append(args, string(l))
	}
	in := strings.TrimSuffix(strings.Repeat("?,", len(definitionLabels)), ",")
	nodes, err := s.queryNodes("symbols",
		"project=? AND file_path != '' AND label IN ("+in+") ORDER BY qualified_name", args...)
	if err != nil {
		return nil, err
	}
	out := make([]symbols.Symbol, len(nodes))
	for i, n := range nodes {
		out[i] = symbols.Symbol{
			QualifiedName: n.QualifiedName,
			Name:          n.Name,
			Kind:          graph.Label(n.Label),
			Language:      stringProp(n.Properties, "language"),
			File:          n.FilePath,
			Owner:         stringProp(n.Properties, "owner"),
			Receiver:      stringProp(n.Properties, "receiver"),
		}
	}
	return out, nil
}

func (s *Store) queryNodes(what, where string, args ...any) ([]*Node, error) {
	rows, err := s.q.Query("SELECT "+nodeColumns+" FROM nodes WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("find nodes %s: %w", what, err)
	}
	defer rows.Close()
	var out []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// scanner is a *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	n := &Node{}
	var props string
	if err := row.Scan(&n.ID, &n.Project, &n.Label, &n.Name, &n.QualifiedName, &n.FilePath, &n.StartLine, &n.EndLine, &props); err != nil {
		return nil, err
	}
	n.Properties = unmarshalProps(props)
	return n, nil
}
