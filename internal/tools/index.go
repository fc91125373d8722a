package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codegraph/internal/pipeline"
	"github.com/DeusData/codegraph/internal/store"
)

// indexResult reports one incremental run and the graph it left behind.
type indexResult struct {
	*store.ProjectSummary
	Discovered int   `json:"discovered"`
	Skipped    int   `json:"skipped"`
	Ingested   int   `json:"ingested"`
	Removed    int   `json:"removed"`
	Failed     int   `json:"failed"`
	ElapsedMS  int64 `json:"elapsed_ms"`
}

type indexArgs struct {
	RepoPath string `json:"repo_path"`
	Force    bool   `json:"force"`
}

func (s *Server) handleIndexRepository(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decodeArgs[indexArgs](req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if args.RepoPath == "" {
		return errResult("repo_path is required"), nil
	}
	abs, err := filepath.Abs(args.RepoPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return errResult("not a directory: " + abs), nil
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	p := pipeline.New(ctx, s.store, abs, s.opts...)
	stats, err := p.Run(args.Force)
	if err != nil {
		return errResult(fmt.Sprintf("indexing %s: %v", abs, err)), nil
	}
	summary, err := s.store.ProjectSummary(p.ProjectName)
	if errors.Is(err, store.ErrNotFound) {
		// Nothing to index and nothing indexed before: no commit happened.
		summary, err = &store.ProjectSummary{Project: store.Project{Name: p.ProjectName, RootPath: abs}}, nil
	}
	if err != nil {
		return errResult(fmt.Sprintf("summary for %s: %v", p.ProjectName, err)), nil
	}
	return jsonResult(indexResult{
		ProjectSummary: summary,
		Discovered:     stats.Discovered,
		Skipped:        stats.Skipped,
		Ingested:       stats.Ingested,
		Removed:        stats.Removed,
		Failed:         stats.Failed,
		ElapsedMS:      stats.Elapsed.Milliseconds(),
	}), nil
}
