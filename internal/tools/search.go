package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codegraph/internal/store"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

type symbolEntry struct {
	Project       string `json:"project"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Label         string `json:"label"`
	FilePath      string `json:"file_path,omitempty"`
	StartLine     int    `json:"start_line,omitempty"`
	EndLine       int    `json:"end_line,omitempty"`
	InDegree      int    `json:"in_degree,omitempty"`
	OutDegree     int    `json:"out_degree,omitempty"`
}

func newSymbolEntry(project string, n *store.Node) symbolEntry {
	return symbolEntry{
		Project:       project,
		Name:          n.Name,
		QualifiedName: n.QualifiedName,
		Label:         n.Label,
		FilePath:      n.FilePath,
		StartLine:     n.StartLine,
		EndLine:       n.EndLine,
	}
}

type searchArgs struct {
	Name     string `json:"name"`
	Pattern  string `json:"pattern"`
	Label    string `json:"label"`
	Language string `json:"language"`
	Project  string `json:"project"`
	Limit    *int   `json:"limit"`
}

func (s *Server) handleSearchSymbols(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decodeArgs[searchArgs](req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	name, pattern, label := args.Name, args.Pattern, args.Label
	if name == "" && pattern == "" && label == "" {
		return errResult("one of name, pattern or label is required"), nil
	}
	limit := defaultSearchLimit
	if args.Limit != nil {
		limit = *args.Limit
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	projects, err := s.projectNames(args.Project)
	if err != nil {
		return errResult(err.Error()), nil
	}

	results := make([]symbolEntry, 0)
	total := 0
	for _, project := range projects {
		if name != "" {
			nodes, err := s.store.FindNodesByName(project, name)
			if err != nil {
				return errResult(fmt.Sprintf("search: %v", err)), nil
			}
			for _, n := range nodes {
				if label != "" && n.Label != label {
					continue
				}
				if args.Language != "" && n.Properties["language"] != args.Language {
					continue
				}
				total++
				if len(results) < limit {
					results = append(results, newSymbolEntry(project, n))
				}
			}
			continue
		}

		out, err := s.store.Search(store.SearchParams{
			Project:     project,
			Label:       label,
			Language:    args.Language,
			NamePattern: pattern,
			Limit:       limit,
		})
		if err != nil {
			return errResult(fmt.Sprintf("search: %v", err)), nil
		}
		total += out.Total
		for _, r := range out.Results {
			if len(results) >= limit {
				break
			}
			e := newSymbolEntry(project, r.Node)
			e.InDegree, e.OutDegree = r.InDegree, r.OutDegree
			results = append(results, e)
		}
	}

	return jsonResult(map[string]any{
		"total":    total,
		"has_more": total > len(results),
		"results":  results,
	}), nil
}
