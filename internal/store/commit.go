package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/DeusData/codegraph/internal/graph"
)

var _ graph.Sink = (*Store)(nil)

// Node properties that live in their own columns.
var columnProps = map[string]bool{
	graph.KeyQualifiedName: true,
	"name":                 true,
	"start_line":           true,
	"end_line":             true,
}

// Commit applies one run's changes in a single transaction. Files in
// Removed lose every node and edge they owned. Each batch replaces its
// file's facts. For each derived type, the unowned edges of that type are
// replaced. External nodes no edge points at are dropped last. Empty
// changes are a no-op.
func (s *Store) Commit(ctx context.Context, c *graph.Changes) error {
	if c.Empty() {
		return nil
	}
	t := time.Now()
	if err := s.withTx(ctx, func(tx *Store) error { return tx.apply(ctx, c) }); err != nil {
		return err
	}
	nodes, rels := c.Counts()
	slog.Info("store.commit",
		"project", c.Project,
		"removed", len(c.Removed),
		"files", len(c.Batches),
		"nodes", nodes,
		"edges", rels,
		"elapsed", time.Since(t),
	)
	return nil
}

func (s *Store) apply(ctx context.Context, c *graph.Changes) error {
	if err := s.UpsertProject(c.Project, c.RootPath); err != nil {
		return err
	}

	for _, path := range c.Removed {
		if err := s.dropFile(c.Project, path); err != nil {
			return err
		}
	}

	for _, b := range c.Batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.dropFile(c.Project, b.Path); err != nil {
			return err
		}
		if err := s.UpsertNodeBatch(batchNodes(c.Project, b)); err != nil {
			return fmt.Errorf("%s: %w", b.Path, err)
		}
		if err := s.InsertEdgeBatch(toEdges(c.Project, b.Path, b.Rels)); err != nil {
			return fmt.Errorf("%s: %w", b.Path, err)
		}
	}

	types := make([]string, 0, len(c.Derived))
	for rt := range c.Derived {
		types = append(types, string(rt))
	}
	sort.Strings(types)
	for _, rt := range types {
		if err := s.DeleteDerivedEdges(c.Project, rt); err != nil {
			return fmt.Errorf("replace %s: %w", rt, err)
		}
		if err := s.InsertEdgeBatch(toEdges(c.Project, "", c.Derived[graph.RelType(rt)])); err != nil {
			return fmt.Errorf("replace %s: %w", rt, err)
		}
	}

	return s.pruneExternal(c.Project)
}

func (s *Store) dropFile(project, path string) error {
	if err := s.DeleteEdgesByFile(project, path); err != nil {
		return fmt.Errorf("drop edges of %s: %w", path, err)
	}
	if err := s.DeleteNodesByFile(project, path); err != nil {
		return fmt.Errorf("drop nodes of %s: %w", path, err)
	}
	return nil
}

func (s *Store) pruneExternal(project string) error {
	_, err := s.q.Exec(`
		DELETE FROM nodes WHERE project=? AND label=? AND qualified_name NOT IN (
			SELECT target_qn FROM edges WHERE project=?
		)`, project, string(graph.External), project)
	if err != nil {
		return fmt.Errorf("prune external: %w", err)
	}
	return nil
}

// batchNodes converts a batch's nodes to rows owned by the batch's file.
// External sentinels are shared across files and stay unowned.
func batchNodes(project string, b *graph.Batch) []*Node {
	out := make([]*Node, 0, len(b.Nodes))
	for _, n := range b.Nodes {
		row := &Node{
			Project:       project,
			Label:         string(n.Label),
			Name:          n.StringProp("name"),
			QualifiedName: n.QualifiedName(),
			FilePath:      b.Path,
			StartLine:     intProp(n.Props["start_line"]),
			EndLine:       intProp(n.Props["end_line"]),
			Properties:    make(map[string]any, len(n.Props)),
		}
		if n.Label == graph.External {
			row.FilePath = ""
		}
		if row.Name == "" {
			row.Name = graph.SimpleName(row.QualifiedName)
		}
		for k, v := range n.Props {
			if !columnProps[k] {
				row.Properties[k] = v
			}
		}
		out = append(out, row)
	}
	return out
}

// toEdges converts relationships to edge rows. A multi-row upsert cannot
// touch the same row twice, so repeated triples are dropped here.
func toEdges(project, owner string, rels []graph.Relationship) []*Edge {
	out := make([]*Edge, 0, len(rels))
	seen := make(map[[3]string]bool, len(rels))
	for _, r := range rels {
		k := [3]string{r.From.Value, string(r.Type), r.To.Value}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, &Edge{
			Project:     project,
			SourceLabel: string(r.From.Label),
			SourceQN:    r.From.Value,
			Type:        string(r.Type),
			TargetLabel: string(r.To.Label),
			TargetQN:    r.To.Value,
			FilePath:    owner,
			Properties:  r.Props,
		})
	}
	return out
}

func intProp(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case float64:
		return int(x)
	}
	return 0
}
