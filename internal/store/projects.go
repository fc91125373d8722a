package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Project is one indexed repository. IndexedAt is the time of the last
// commit, in RFC 3339.
type Project struct {
	Name      string `json:"name"`
	RootPath  string `json:"root_path"`
	IndexedAt string `json:"indexed_at"`
}

// ProjectSummary is a project with the size of its graph.
type ProjectSummary struct {
	Project
	Files int `json:"files"`
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

const projectCols = "name, root_path, indexed_at"

const summarySelect = `SELECT p.name, p.root_path, p.indexed_at,
	(SELECT COUNT(DISTINCT file_path) FROM nodes WHERE project = p.name AND file_path != ''),
	(SELECT COUNT(*) FROM nodes WHERE project = p.name),
	(SELECT COUNT(*) FROM edges WHERE project = p.name)
	FROM projects p`

// UpsertProject records a project and stamps it with the current time.
func (s *Store) UpsertProject(name, rootPath string) error {
	_, err := s.q.Exec(`
		INSERT INTO projects (name, root_path, indexed_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET root_path=excluded.root_path, indexed_at=excluded.indexed_at`,
		name, rootPath, Now())
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", name, err)
	}
	return nil
}

// GetProject returns the named project or ErrNotFound.
func (s *Store) GetProject(name string) (*Project, error) {
	var p Project
	err := s.q.QueryRow("SELECT "+projectCols+" FROM projects WHERE name=?", name).
		Scan(&p.Name, &p.RootPath, &p.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	return &p, nil
}

// ListProjects returns every project ordered by name.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.q.Query("SELECT " + projectCols + " FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var out []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.Name, &p.RootPath, &p.IndexedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProjectSummaries returns every project with file, node and edge counts.
func (s *Store) ProjectSummaries() ([]*ProjectSummary, error) {
	rows, err := s.q.Query(summarySelect + " ORDER BY p.name")
	if err != nil {
		return nil, fmt.Errorf("project summaries: %w", err)
	}
	defer rows.Close()
	var out []*ProjectSummary
	for rows.Next() {
		ps, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// ProjectSummary returns the counts for one project or ErrNotFound.
func (s *Store) ProjectSummary(name string) (*ProjectSummary, error) {
	ps, err := scanSummary(s.q.QueryRow(summarySelect+" WHERE p.name=?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ps, err
}

func scanSummary(row scanner) (*ProjectSummary, error) {
	ps := &ProjectSummary{}
	if err := row.Scan(&ps.Name, &ps.RootPath, &ps.IndexedAt, &ps.Files, &ps.Nodes, &ps.Edges); err != nil {
		return nil, err
	}
	return ps, nil
}

// DeleteProject removes a project; its nodes and edges go with it.
func (s *Store) DeleteProject(name string) error {
	if _, err := s.q.Exec("DELETE FROM projects WHERE name=?", name); err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	return nil
}
