package store

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchParams filters the nodes of one project. Empty fields match
// everything.
type SearchParams struct {
	Project     string
	Label       string
	Language    string
	NamePattern string // regex over name or qualified name
	FilePattern string // glob over file_path; * and ** both match across directories
	Limit       int
	Offset      int
}

// SearchResult is a node with the number of edges that end and start at it.
type SearchResult struct {
	Node      *Node
	InDegree  int
	OutDegree int
}

// SearchOutput is one page of results. Total counts every match.
type SearchOutput struct {
	Results []*SearchResult
	Total   int
}

const defaultSearchLimit = 100

const searchSelect = `SELECT n.id, n.project, n.label, n.name, n.qualified_name, n.file_path,
	n.start_line, n.end_line, n.properties,
	(SELECT COUNT(*) FROM edges e WHERE e.project = n.project AND e.target_qn = n.qualified_name),
	(SELECT COUNT(*) FROM edges e WHERE e.project = n.project AND e.source_qn = n.qualified_name)
	FROM nodes n`

// Search returns the nodes matching params ordered by qualified name.
// The regex runs in Go after the SQL filters narrow the rows.
func (s *Store) Search(params SearchParams) (*SearchOutput, error) {
	var re *regexp.Regexp
	if params.NamePattern != "" {
		var err error
		if re, err = regexp.Compile(params.NamePattern); err != nil {
			return nil, fmt.Errorf("invalid name pattern: %w", err)
		}
	}
	if params.Limit <= 0 {
		params.Limit = defaultSearchLimit
	}

	where := []string{"n.project = ?"}
	args := []any{params.Project}
	if params.Label != "" {
		where = append(where, "n.label = ?")
		args = append(args, params.Label)
	}
	if params.Language != "" {
		where = append(where, "json_extract(n.properties, '$.language') = ?")
		args = append(args, params.Language)
	}
	if params.FilePattern != "" {
		where = append(where, `n.file_path LIKE ? ESCAPE '\'`)
		args = append(args, globToLike(params.FilePattern))
	}

	rows, err := s.q.Query(searchSelect+" WHERE "+strings.Join(where, " AND ")+" ORDER BY n.qualified_name", args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	out := &SearchOutput{}
	for rows.Next() {
		var n Node
		var props string
		r := &SearchResult{Node: &n}
		if err := rows.Scan(&n.ID, &n.Project, &n.Label, &n.Name, &n.QualifiedName, &n.FilePath,
			&n.StartLine, &n.EndLine, &props, &r.InDegree, &r.OutDegree); err != nil {
			return nil, err
		}
		if re != nil && !re.MatchString(n.Name) && !re.MatchString(n.QualifiedName) {
			continue
		}
		out.Total++
		if out.Total <= params.Offset || len(out.Results) >= params.Limit {
			continue
		}
		n.Properties = unmarshalProps(props)
		out.Results = append(out.Results, r)
	}
	return out, rows.Err()
}

// globToLike turns a glob into a LIKE pattern, escaping LIKE's own
// wildcards first.
func globToLike(glob string) string {
	var sb strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '%', '_', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '*':
			sb.WriteByte('%')
			for i+1 < len(glob) && glob[i+1] == '*' {
				i++
			}
		case '?':
			sb.WriteByte('_')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
