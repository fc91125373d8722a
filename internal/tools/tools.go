// Package tools exposes the code graph as MCP tools.
package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codegraph/internal/pipeline"
	"github.com/DeusData/codegraph/internal/store"
)

// Version is reported to MCP clients.
var Version = "dev"

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp   *mcp.Server
	store *store.Store
	// opts are applied to every index run, after the tool's own.
	opts []pipeline.Option

	// indexMu serialises index runs with each other and with the watcher.
	indexMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(s *store.Store, opts ...pipeline.Option) *Server {
	srv := &Server{
		store: s,
		opts:  opts,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "codegraph",
				Version: Version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// IndexLock returns the mutex index runs hold. Callers that index outside
// the tools, such as a watcher, take it too.
func (s *Server) IndexLock() sync.Locker {
	return &s.indexMu
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "index_repository",
		Description: "Index a repository into the code graph. Extracts modules, functions, classes and methods, resolves imports, calls, inheritance and overrides. Unchanged files are skipped via content hashing unless force is set.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Path to the repository to index"
				},
				"force": {
					"type": "boolean",
					"description": "Re-ingest every file even if its content hash is unchanged"
				}
			},
			"required": ["repo_path"]
		}`),
	}, s.handleIndexRepository)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "search_symbols",
		Description: "Find symbols by simple name (e.g. 'ProcessOrder') or by regex over name and qualified name. Returns qualified names, labels, file paths and line ranges.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"description": "Exact simple name of the symbol"
				},
				"pattern": {
					"type": "string",
					"description": "Regex matched against name and qualified name, used when name is empty"
				},
				"label": {
					"type": "string",
					"description": "Restrict to one label: Module, Function, Method, Class, Interface, Enum, Type, Union, External"
				},
				"language": {
					"type": "string",
					"description": "Restrict to one language, e.g. go, python, typescript"
				},
				"project": {
					"type": "string",
					"description": "Project to search. Empty searches every project."
				},
				"limit": {
					"type": "integer",
					"description": "Max results (default 50, max 200)"
				}
			}
		}`),
	}, s.handleSearchSymbols)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_relationships",
		Description: "List the edges of a symbol by qualified name: CALLS, DEFINES, DEFINES_METHOD, INHERITS, IMPLEMENTS, OVERRIDES, IMPORTS, EXPORTS.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"qualified_name": {
					"type": "string",
					"description": "Fully qualified name (e.g. 'myproject.pkg.service.OrderService.process')"
				},
				"type": {
					"type": "string",
					"description": "Edge type filter; empty returns every type"
				},
				"direction": {
					"type": "string",
					"description": "'outbound', 'inbound' or 'both' (default both)",
					"enum": ["outbound", "inbound", "both"]
				},
				"project": {
					"type": "string",
					"description": "Project of the symbol. Empty searches every project."
				}
			},
			"required": ["qualified_name"]
		}`),
	}, s.handleGetRelationships)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_projects",
		Description: "List all indexed projects with their root path, last index time, and file, node and edge counts.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, s.handleListProjects)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_graph_schema",
		Description: "Return node label counts, edge type counts, relationship patterns and sample names for a project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {
					"type": "string",
					"description": "Project name; defaults to the only or first project"
				}
			}
		}`),
	}, s.handleGetGraphSchema)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// decodeArgs decodes a tool's JSON arguments into T. Missing arguments
// decode to T's zero value.
func decodeArgs[T any](req *mcp.CallToolRequest) (T, error) {
	var args T
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// projectNames returns the named project, or every project when empty.
func (s *Server) projectNames(project string) ([]string, error) {
	if project != "" {
		if _, err := s.store.GetProject(project); err != nil {
			return nil, fmt.Errorf("project %s: %w", project, err)
		}
		return []string{project}, nil
	}
	projects, err := s.store.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names, nil
}

// findNodeByQN searches the given project, or all of them, for a node.
func (s *Server) findNodeByQN(project, qn string) (*store.Node, error) {
	names, err := s.projectNames(project)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if node, err := s.store.FindNodeByQN(name, qn); err == nil {
			return node, nil
		}
	}
	return nil, fmt.Errorf("node not found: %s", qn)
}
