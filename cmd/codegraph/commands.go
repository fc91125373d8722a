package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/codegraph/internal/discover"
	"github.com/DeusData/codegraph/internal/pipeline"
	"github.com/DeusData/codegraph/internal/store"
	"github.com/DeusData/codegraph/internal/tools"
	"github.com/DeusData/codegraph/internal/watcher"
)

func newIndexCmd(f *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a repository incrementally",
		Long:  "Hashes every source file, re-ingests the ones that changed, removes the ones that were deleted and commits the result in one transaction.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := resolveTargetDir(args)
			if err != nil {
				return err
			}
			e, err := f.setup(cmd, repo)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(ctx, e.store, repo, e.cfg.PipelineOptions()...)
			stats, err := p.Run(force)
			if err != nil {
				return fmt.Errorf("indexing: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Indexed %s as %s in %s: %d files, %d skipped, %d ingested, %d removed, %d failed\n",
				repo, p.ProjectName, stats.Elapsed.Round(time.Millisecond),
				stats.Discovered, stats.Skipped, stats.Ingested, stats.Removed, stats.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-ingest every file even if unchanged")
	return cmd
}

func newWatchCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Index a repository and re-index it whenever files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := resolveTargetDir(args)
			if err != nil {
				return err
			}
			e, err := f.setup(cmd, repo)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			index := func(ctx context.Context, _, root string) error {
				_, err := pipeline.New(ctx, e.store, root, e.cfg.PipelineOptions()...).Run(false)
				return err
			}
			p := pipeline.New(ctx, e.store, repo, e.cfg.PipelineOptions()...)
			if _, err := p.Run(false); err != nil {
				return fmt.Errorf("initial index: %w", err)
			}

			langs, _ := e.cfg.ParsedLanguages()
			w := watcher.New(e.store, index,
				watcher.WithProjects(p.ProjectName),
				watcher.WithBaseInterval(e.cfg.Watch.Interval),
				watcher.WithDiscoverOptions(&discover.Options{Patterns: e.cfg.Ignore, Languages: langs}),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s as %s (Ctrl-C to stop)\n", repo, p.ProjectName)
			w.Run(ctx)
			return nil
		},
	}
}

func newSymbolsCmd(f *rootFlags) *cobra.Command {
	var project, label string
	cmd := &cobra.Command{
		Use:   "symbols <name>",
		Short: "Look up symbols by simple name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.setup(cmd, ".")
			if err != nil {
				return err
			}
			defer e.Close()

			projects, err := projectNames(e.store, project)
			if err != nil {
				return err
			}
			found := 0
			for _, name := range projects {
				nodes, err := e.store.FindNodesByName(name, args[0])
				if err != nil {
					return err
				}
				for _, n := range nodes {
					if label != "" && n.Label != label {
						continue
					}
					found++
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\t%s:%d\n", n.Label, n.QualifiedName, n.FilePath, n.StartLine)
				}
			}
			if found == 0 {
				return fmt.Errorf("no symbol named %q", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "restrict to one project")
	cmd.Flags().StringVar(&label, "label", "", "restrict to one label (Function, Method, Class, ...)")
	return cmd
}

func newCallsCmd(f *rootFlags) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "calls <qualified-name>",
		Short: "Show what a function calls and what calls it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.setup(cmd, ".")
			if err != nil {
				return err
			}
			defer e.Close()

			qn := args[0]
			projects, err := projectNames(e.store, project)
			if err != nil {
				return err
			}
			for _, name := range projects {
				if _, err := e.store.FindNodeByQN(name, qn); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						continue
					}
					return err
				}
				out, err := e.store.FindEdgesBySource(name, qn, "CALLS")
				if err != nil {
					return err
				}
				in, err := e.store.FindEdgesByTarget(name, qn, "CALLS")
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s (%s)\n", qn, name)
				fmt.Fprintf(w, "calls:\n")
				for _, edge := range out {
					fmt.Fprintf(w, "  -> %s\n", edge.TargetQN)
				}
				fmt.Fprintf(w, "called by:\n")
				for _, edge := range in {
					fmt.Fprintf(w, "  <- %s\n", edge.SourceQN)
				}
				return nil
			}
			return fmt.Errorf("symbol not found: %s", qn)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "restrict to one project")
	return cmd
}

func newMCPCmd(f *rootFlags) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the graph tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := f.setup(cmd, ".")
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := tools.NewServer(e.store, e.cfg.PipelineOptions()...)
			var wg sync.WaitGroup
			if watch {
				lock := srv.IndexLock()
				index := func(ctx context.Context, _, root string) error {
					lock.Lock()
					defer lock.Unlock()
					_, err := pipeline.New(ctx, e.store, root, e.cfg.PipelineOptions()...).Run(false)
					return err
				}
				w := watcher.New(e.store, index, watcher.WithBaseInterval(e.cfg.Watch.Interval))
				wg.Add(1)
				go func() {
					defer wg.Done()
					w.Run(ctx)
				}()
			}

			err = srv.MCPServer().Run(ctx, &mcp.StdioTransport{})
			stop()
			wg.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-index indexed projects in the background when their files change")
	return cmd
}

// projectNames returns the named project, or every indexed project.
func projectNames(s *store.Store, project string) ([]string, error) {
	if project != "" {
		return []string{project}, nil
	}
	projects, err := s.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names, nil
}
