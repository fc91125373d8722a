package store

import "fmt"

// SchemaInfo describes what a project's graph contains.
type SchemaInfo struct {
	NodeLabels        []Count `json:"node_labels"`
	RelationshipTypes []Count `json:"relationship_types"`
	// RelationshipPatterns are "(:Source)-[:TYPE]->(:Target)" triples with
	// their frequency, most common first.
	RelationshipPatterns []string `json:"relationship_patterns"`
	// Languages counts source files per language.
	Languages []Count `json:"languages"`
	// UnresolvedCalls counts CALLS edges that ended at a builtin sentinel.
	UnresolvedCalls int `json:"unresolved_calls"`
	// Samples holds a few qualified names per definition label.
	Samples map[string][]string `json:"samples"`
}

// Count is a grouping key with its row count.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const (
	maxPatterns   = 25
	samplesPerKey = 5
)

var sampleLabels = []string{"Class", "Interface", "Function", "Method"}

// GetSchema summarises the labels, edge types and languages of a project.
func (s *Store) GetSchema(project string) (*SchemaInfo, error) {
	info := &SchemaInfo{Samples: make(map[string][]string)}
	var err error

	if info.NodeLabels, err = s.countBy("node labels",
		"SELECT label, COUNT(*) AS n FROM nodes WHERE project=? GROUP BY label ORDER BY n DESC, label", project); err != nil {
		return nil, err
	}
	if info.RelationshipTypes, err = s.countBy("edge types",
		"SELECT type, COUNT(*) AS n FROM edges WHERE project=? GROUP BY type ORDER BY n DESC, type", project); err != nil {
		return nil, err
	}
	if info.Languages, err = s.countBy("languages",
		`SELECT json_extract(properties, '$.language') AS lang, COUNT(*) AS n FROM nodes
		WHERE project=? AND label='Module' AND json_extract(properties, '$.language') IS NOT NULL
		GROUP BY lang ORDER BY n DESC, lang`, project); err != nil {
		return nil, err
	}
	patterns, err := s.countBy("patterns",
		`SELECT '(:' || source_label || ')-[:' || type || ']->(:' || target_label || ')' AS pattern, COUNT(*) AS n
		FROM edges WHERE project=? GROUP BY pattern ORDER BY n DESC, pattern LIMIT ?`, project, maxPatterns)
	if err != nil {
		return nil, err
	}
	for _, p := range patterns {
		info.RelationshipPatterns = append(info.RelationshipPatterns, fmt.Sprintf("%s  [%dx]", p.Name, p.Count))
	}

	if err := s.q.QueryRow(
		"SELECT COUNT(*) FROM edges WHERE project=? AND type='CALLS' AND target_label='External'", project,
	).Scan(&info.UnresolvedCalls); err != nil {
		return nil, fmt.Errorf("schema unresolved calls: %w", err)
	}

	for _, label := range sampleLabels {
		qns, err := s.sampleQNs(project, label)
		if err != nil {
			return nil, err
		}
		if len(qns) > 0 {
			info.Samples[label] = qns
		}
	}
	return info, nil
}

// countBy runs a two-column (key, count) query.
func (s *Store) countBy(what, query string, args ...any) ([]Count, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", what, err)
	}
	defer rows.Close()
	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) sampleQNs(project, label string) ([]string, error) {
	rows, err := s.q.Query(
		"SELECT qualified_name FROM nodes WHERE project=? AND label=? ORDER BY qualified_name LIMIT ?",
		project, label, samplesPerKey)
	if err != nil {
		return nil, fmt.Errorf("schema samples %s: %w", label, err)
	}
	defer rows.Close()
	var qns []string
	for rows.Next() {
		var qn string
		if err := rows.Scan(&qn); err != nil {
			return nil, err
		}
		qns = append(qns, qn)
	}
	return qns, rows.Err()
}
