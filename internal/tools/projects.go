package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codegraph/internal/store"
)

func (s *Server) handleListProjects(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.store.ProjectSummaries()
	if err != nil {
		return errResult(err.Error()), nil
	}
	if summaries == nil {
		summaries = []*store.ProjectSummary{}
	}
	return jsonResult(summaries), nil
}

func (s *Server) handleGetGraphSchema(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decodeArgs[struct {
		Project string `json:"project"`
	}](req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	names, err := s.projectNames(args.Project)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if len(names) == 0 {
		return errResult("no indexed projects; run index_repository first"), nil
	}

	project := names[0]
	schema, err := s.store.GetSchema(project)
	if err != nil {
		return errResult(fmt.Sprintf("schema for %s: %v", project, err)), nil
	}
	return jsonResult(struct {
		Project string            `json:"project"`
		Schema  *store.SchemaInfo `json:"schema"`
	}{project, schema}), nil
}
