// Package store keeps the code graph in SQLite. Nodes are keyed by
// qualified name and edges reference their endpoints symbolically, so an
// edge may point at a node that a later commit will create. Every edge
// written for a file records that file as its owner; derived edges have no
// owner and are replaced as a whole.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection for graph storage.
type Store struct {
	db     *sql.DB
	q      querier // active querier: db or tx
	dbPath string
}

// Node represents a graph node stored in SQLite.
type Node struct {
	ID            int64
	Project       string
	Label         string
	Name          string
	QualifiedName string
	FilePath      string
	StartLine     int
	EndLine       int
	Properties    map[string]any
}

// Edge represents a graph edge stored in SQLite. FilePath is the file
// that owns the edge, or "" for derived edges.
type Edge struct {
	ID          int64
	Project     string
	SourceLabel string
	SourceQN    string
	Type        string
	TargetLabel string
	TargetQN    string
	FilePath    string
	Properties  map[string]any
}

// schemaVersion is stored in PRAGMA user_version. A database written with
// another version is rebuilt on open; the next index run repopulates it.
const schemaVersion = 2

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		indexed_at TEXT NOT NULL,
		root_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		label TEXT NOT NULL,
		name TEXT NOT NULL,
		qualified_name TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		start_line INTEGER DEFAULT 0,
		end_line INTEGER DEFAULT 0,
		properties TEXT DEFAULT '{}',
		UNIQUE(project, qualified_name)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(project, label);
	CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(project, name);
	CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(project, file_path);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		source_label TEXT NOT NULL,
		source_qn TEXT NOT NULL,
		type TEXT NOT NULL,
		target_label TEXT NOT NULL,
		target_qn TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		properties TEXT DEFAULT '{}',
		UNIQUE(project, source_qn, type, target_qn)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source_type ON edges(project, source_qn, type);
	CREATE INDEX IF NOT EXISTS idx_edges_target_type ON edges(project, target_qn, type);
	CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(project, type);
	CREATE INDEX IF NOT EXISTS idx_edges_file ON edges(project, file_path);
`

const dropSQL = `
	DROP TABLE IF EXISTS edges;
	DROP TABLE IF EXISTS nodes;
	DROP TABLE IF EXISTS projects;
`

// DefaultPath returns the database location under the user cache dir.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cache dir: %w", err)
	}
	return filepath.Join(dir, "codegraph", "graph.db"), nil
}

// Open opens the database at DefaultPath.
func Open() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens or creates the database at dbPath and its directory.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	return open("file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dbPath)
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*Store, error) {
	s, err := open("file::memory:?_foreign_keys=on", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is its own database.
	s.db.SetMaxOpenConns(1)
	return s, nil
}

func open(dsn, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s := &Store{db: db, q: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version != 0 && version != schemaVersion {
		slog.Info("store.schema.rebuild", "path", s.dbPath, "from", version, "to", schemaVersion)
		if _, err := s.db.Exec(dropSQL); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return err
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// withTx runs fn against a Store bound to one transaction and commits
// when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Store{db: s.db, q: tx, dbPath: s.dbPath}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path, or ":memory:".
func (s *Store) Path() string {
	return s.dbPath
}

func marshalProps(props map[string]any) string {
	if props == nil {
		return "{}"
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalProps never returns nil; unreadable JSON yields no properties.
func unmarshalProps(data string) map[string]any {
	m := map[string]any{}
	if data != "" {
		_ = json.Unmarshal([]byte(data), &m)
	}
	return m
}

// Now returns the current UTC time in RFC 3339.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
