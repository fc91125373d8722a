package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type edgeEntry struct {
	Type        string         `json:"type"`
	Direction   string         `json:"direction"`
	SourceLabel string         `json:"source_label"`
	Source      string         `json:"source"`
	TargetLabel string         `json:"target_label"`
	Target      string         `json:"target"`
	FilePath    string         `json:"file_path,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

type relationshipsArgs struct {
	QualifiedName string `json:"qualified_name"`
	Type          string `json:"type"`
	Direction     string `json:"direction"`
	Project       string `json:"project"`
}

func (s *Server) handleGetRelationships(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decodeArgs[relationshipsArgs](req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	qn, edgeType := args.QualifiedName, args.Type
	if qn == "" {
		return errResult("qualified_name is required"), nil
	}
	direction := args.Direction
	switch direction {
	case "":
		direction = "both"
	case "outbound", "inbound", "both":
	default:
		return errResult(fmt.Sprintf("invalid direction %q", direction)), nil
	}

	node, err := s.findNodeByQN(args.Project, qn)
	if err != nil {
		return errResult(err.Error()), nil
	}

	edges := make([]edgeEntry, 0)
	if direction != "inbound" {
		out, err := s.store.FindEdgesBySource(node.Project, qn, edgeType)
		if err != nil {
			return errResult(err.Error()), nil
		}
		for _, e := range out {
			edges = append(edges, edgeEntry{
				Type: e.Type, Direction: "outbound",
				SourceLabel: e.SourceLabel, Source: e.SourceQN,
				TargetLabel: e.TargetLabel, Target: e.TargetQN,
				FilePath: e.FilePath, Properties: e.Properties,
			})
		}
	}
	if direction != "outbound" {
		in, err := s.store.FindEdgesByTarget(node.Project, qn, edgeType)
		if err != nil {
			return errResult(err.Error()), nil
		}
		for _, e := range in {
			edges = append(edges, edgeEntry{
				Type: e.Type, Direction: "inbound",
				SourceLabel: e.SourceLabel, Source: e.SourceQN,
				TargetLabel: e.TargetLabel, Target: e.TargetQN,
				FilePath: e.FilePath, Properties: e.Properties,
			})
		}
	}

	return jsonResult(map[string]any{
		"node":  newSymbolEntry(node.Project, node),
		"edges": edges,
	}), nil
}
