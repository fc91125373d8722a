package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeusData/codegraph/internal/config"
	"github.com/DeusData/codegraph/internal/store"
	"github.com/DeusData/codegraph/internal/tools"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// rootFlags are the persistent flags every command shares.
type rootFlags struct {
	config    string
	db        string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "codegraph",
		Short:         "Incremental code-symbol knowledge graph",
		Long:          "codegraph parses source files with tree-sitter, resolves imports, calls and inheritance across files, and keeps the graph in SQLite. Unchanged files are skipped via content hashing.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "config file (default: <repo>/"+config.FileName+")")
	root.PersistentFlags().StringVar(&f.db, "db", "", "database path (default: user cache dir)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "text|json")

	root.AddCommand(
		newIndexCmd(f),
		newWatchCmd(f),
		newSymbolsCmd(f),
		newCallsCmd(f),
		newMCPCmd(f),
		newASTCmd(),
	)
	return root
}

// env is what a command runs with once config, logging and the store are
// set up.
type env struct {
	cfg   *config.Config
	store *store.Store
}

func (e *env) Close() error { return e.store.Close() }

// setup loads the config for repo, applies flag overrides, installs the
// logger and opens the store.
func (f *rootFlags) setup(cmd *cobra.Command, repo string) (*env, error) {
	cfg, err := config.Load(f.config, repo)
	if err != nil {
		return nil, err
	}
	if f.db != "" {
		cfg.DBPath = f.db
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg))
	tools.Version = version

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.OpenPath(cfg.DBPath)
	} else {
		st, err = store.Open()
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{cfg: cfg, store: st}, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
