package store

import "fmt"

const edgeColumns = `id, project, source_label, source_qn, type, target_label, target_qn, file_path, properties`

// InsertEdge inserts an edge. A repeated (source, type, target) triple
// takes over the new owner and properties.
func (s *Store) InsertEdge(e *Edge) error {
	return edgeUpsert.exec(s.q, []*Edge{e})
}

// InsertEdgeBatch inserts edges in as few statements as possible.
func (s *Store) InsertEdgeBatch(edges []*Edge) error {
	return edgeUpsert.exec(s.q, edges)
}

// FindEdgesBySource returns the edges leaving a node. An empty edgeType
// matches every type.
func (s *Store) FindEdgesBySource(project, sourceQN, edgeType string) ([]*Edge, error) {
	return s.queryEdges("by source",
		"project=? AND source_qn=? AND (?='' OR type=?) ORDER BY type, target_qn",
		project, sourceQN, edgeType, edgeType)
}

// FindEdgesByTarget returns the edges entering a node. An empty edgeType
// matches every type.
func (s *Store) FindEdgesByTarget(project, targetQN, edgeType string) ([]*Edge, error) {
	return s.queryEdges("by target",
		"project=? AND target_qn=? AND (?='' OR type=?) ORDER BY type, source_qn",
		project, targetQN, edgeType, edgeType)
}

// FindEdgesByType returns every edge of a type.
func (s *Store) FindEdgesByType(project, edgeType string) ([]*Edge, error) {
	return s.queryEdges("by type", "project=? AND type=? ORDER BY source_qn, target_qn", project, edgeType)
}

// CountEdges returns the number of edges in a project.
func (s *Store) CountEdges(project string) (int, error) {
	var n int
	err := s.q.QueryRow("SELECT COUNT(*) FROM edges WHERE project=?", project).Scan(&n)
	return n, err
}

// DeleteEdgesByFile deletes the edges a file owns.
func (s *Store) DeleteEdgesByFile(project, filePath string) error {
	_, err := s.q.Exec("DELETE FROM edges WHERE project=? AND file_path=?", project, filePath)
	return err
}

// DeleteDerivedEdges deletes the unowned edges of a type.
func (s *Store) DeleteDerivedEdges(project, edgeType string) error {
	_, err := s.q.Exec("DELETE FROM edges WHERE project=? AND type=? AND file_path=''", project, edgeType)
	return err
}

func (s *Store) queryEdges(what, where string, args ...any) ([]*Edge, error) {
	rows, err := s.q.Query("SELECT "+edgeColumns+" FROM edges WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("find edges %s: %w", what, err)
	}
	defer rows.Close()
	var out []*Edge
	for rows.Next() {
		e := &Edge{}
		var props string
		if err := rows.Scan(&e.ID, &e.Project, &e.SourceLabel, &e.SourceQN, &e.Type, &e.TargetLabel, &e.TargetQN, &e.FilePath, &props); err != nil {
			return nil, err
		}
		e.Properties = unmarshalProps(props)
		out = append(out, e)
	}
	return out, rows.Err()
}
