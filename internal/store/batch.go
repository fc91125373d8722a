package store

import (
	"fmt"
	"strings"
)

// maxBindVars is SQLite's default SQLITE_MAX_VARIABLE_NUMBER.
const maxBindVars = 999

// upsert describes a multi-row INSERT ... ON CONFLICT statement.
type upsert[T any] struct {
	what     string // for error messages
	table    string
	cols     []string // inserted columns, in values order
	conflict string   // ON CONFLICT clause
	values   func(T) []any
}

// rowsPerChunk is how many rows fit into one statement.
func (u upsert[T]) rowsPerChunk() int {
	return maxBindVars / len(u.cols)
}

// exec writes rows in as few statements as the bind limit allows.
func (u upsert[T]) exec(q querier, rows []T) error {
	per := u.rowsPerChunk()
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(u.cols)), ",") + ")"
	for len(rows) > 0 {
		n := min(per, len(rows))
		chunk := rows[:n]
		rows = rows[n:]

		var sb strings.Builder
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", u.table, strings.Join(u.cols, ", "))
		args := make([]any, 0, n*len(u.cols))
		for i, r := range chunk {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(tuple)
			args = append(args, u.values(r)...)
		}
		sb.WriteByte(' ')
		sb.WriteString(u.conflict)
		if _, err := q.Exec(sb.String(), args...); err != nil {
			return fmt.Errorf("%s: %w", u.what, err)
		}
	}
	return nil
}

var nodeUpsert = upsert[*Node]{
	what:  "upsert nodes",
	table: "nodes",
	cols:  []string{"project", "label", "name", "qualified_name", "file_path", "start_line", "end_line", "properties"},
	conflict: `ON CONFLICT(project, qualified_name) DO UPDATE SET
		label=excluded.label, name=excluded.name, file_path=excluded.file_path,
		start_line=excluded.start_line, end_line=excluded.end_line, properties=excluded.properties`,
	values: func(n *Node) []any {
		return []any{n.Project, n.Label, n.Name, n.QualifiedName, n.FilePath, n.StartLine, n.EndLine, marshalProps(n.Properties)}
	},
}

// A repeated (source, type, target) triple takes over the new owner,
// labels and properties.
var edgeUpsert = upsert[*Edge]{
	what:  "insert edges",
	table: "edges",
	cols:  []string{"project", "source_label", "source_qn", "type", "target_label", "target_qn", "file_path", "properties"},
	conflict: `ON CONFLICT(project, source_qn, type, target_qn) DO UPDATE SET
		source_label=excluded.source_label, target_label=excluded.target_label,
		file_path=excluded.file_path, properties=excluded.properties`,
	values: func(e *Edge) []any {
		return []any{e.Project, e.SourceLabel, e.SourceQN, e.Type, e.TargetLabel, e.TargetQN, e.FilePath, marshalProps(e.Properties)}
	},
}
