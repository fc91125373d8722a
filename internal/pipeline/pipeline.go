package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/discover"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/handler"
	"github.com/DeusData/codegraph/internal/hashcache"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
	"github.com/DeusData/codegraph/internal/store"
	"github.com/DeusData/codegraph/internal/symbols"
)

// Graph is the sink a pipeline commits to, plus the queries it needs to
// seed a run with what earlier runs stored.
type Graph interface {
	graph.Sink
	Symbols(project string) ([]symbols.Symbol, error)
	FilePaths(project string) ([]string, error)
	FindEdgesByType(project, edgeType string) ([]*store.Edge, error)
}

var _ Graph = (*store.Store)(nil)

// Pipeline indexes one repository into a graph sink. A Pipeline is not
// safe for concurrent use; create one per run.
type Pipeline struct {
	ctx         context.Context
	Store       Graph
	RepoPath    string
	ProjectName string

	cacheFile     string
	ignore        []string
	languages     []lang.Language
	statCacheSize int
	maxFileSize   int64

	registry  *symbols.Registry
	imports   *symbols.Imports
	hierarchy *symbols.Hierarchy
	stats     *statCache
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProject overrides the project name derived from the repo path.
func WithProject(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.ProjectName = name
		}
	}
}

// WithCacheFile sets where the content hash cache is kept.
func WithCacheFile(path string) Option {
	return func(p *Pipeline) { p.cacheFile = path }
}

// WithIgnore adds gitignore-style patterns on top of .gitignore and .cgrignore.
func WithIgnore(patterns ...string) Option {
	return func(p *Pipeline) { p.ignore = append(p.ignore, patterns...) }
}

// WithLanguages restricts indexing to the given languages.
func WithLanguages(langs ...lang.Language) Option {
	return func(p *Pipeline) { p.languages = append(p.languages, langs...) }
}

// WithStatCacheSize sets how many filesystem probes the import resolver remembers.
func WithStatCacheSize(n int) Option {
	return func(p *Pipeline) { p.statCacheSize = n }
}

// WithMaxFileSize makes files larger than n bytes fail ingestion. Zero
// means no limit.
func WithMaxFileSize(n int64) Option {
	return func(p *Pipeline) { p.maxFileSize = n }
}

// New creates a Pipeline for the repository at repoPath.
func New(ctx context.Context, s Graph, repoPath string, opts ...Option) *Pipeline {
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	p := &Pipeline{
		ctx:           ctx,
		Store:         s,
		RepoPath:      repoPath,
		ProjectName:   ProjectNameFromPath(repoPath),
		statCacheSize: defaultStatCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProjectNameFromPath derives a project name from the repository directory.
// The name becomes the first segment of every qualified name, so dots and
// separators are replaced.
func ProjectNameFromPath(absPath string) string {
	name := filepath.Base(filepath.Clean(absPath))
	name = strings.NewReplacer(".", "_", "/", "-", "\\", "-", " ", "_").Replace(name)
	name = strings.Trim(name, "-_")
	if name == "" {
		return "root"
	}
	return name
}

// checkCancel returns ctx.Err() if the pipeline's context has been cancelled.
func (p *Pipeline) checkCancel() error {
	return p.ctx.Err()
}

// RunStats summarises one run.
type RunStats struct {
	Discovered    int
	Skipped       int
	Ingested      int
	Removed       int
	Failed        int
	Nodes         int
	Relationships int
	Elapsed       time.Duration
}

// parsedFile is a changed file held between the definition and the
// resolution phase.
type parsedFile struct {
	info  discover.FileInfo
	hash  string
	tree  *tree_sitter.Tree
	file  *handler.File
	h     handler.Handler
	batch *graph.Batch
	// defs maps CST node ids of ingested definitions to their QN and label.
	defs map[uintptr]definition
	// bases are supertype references waiting for the full registry.
	bases []pendingBase
}

// Run indexes the repository. Files whose content hash matches the cache
// are skipped unless force is set. Changes are committed to the sink in
// one transaction and the hash cache is rewritten afterwards.
func (p *Pipeline) Run(force bool) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{}
	slog.Info("pipeline.start", "project", p.ProjectName, "path", p.RepoPath, "force", force)

	if err := p.checkCancel(); err != nil {
		return nil, err
	}

	files, err := discover.Discover(p.ctx, p.RepoPath, &discover.Options{
		Patterns:  p.ignore,
		Languages: p.languages,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	stats.Discovered = len(files)
	slog.Info("pipeline.discovered", "files", len(files))

	cachePath := p.cacheFile
	if cachePath == "" {
		if cachePath, err = hashcache.DefaultPath(p.ProjectName); err != nil {
			return nil, fmt.Errorf("hash cache path: %w", err)
		}
	}
	cache := hashcache.Load(cachePath)

	indexed, err := p.Store.FilePaths(p.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("list indexed files: %w", err)
	}

	changed, hashes, err := p.classifyFiles(files, cache, indexed, force)
	if err != nil {
		return nil, err
	}
	stats.Skipped = len(files) - len(changed)

	removed := p.removedFiles(files, cache, indexed)
	stats.Removed = len(removed)

	if len(changed) == 0 && len(removed) == 0 {
		stats.Elapsed = time.Since(start)
		slog.Info("pipeline.noop", "project", p.ProjectName, "files", len(files))
		return stats, nil
	}

	if err := p.seed(removed); err != nil {
		return nil, err
	}

	parsed := make([]*parsedFile, 0, len(changed))
	defer func() {
		for _, pf := range parsed {
			if pf.tree != nil {
				pf.tree.Close()
			}
		}
	}()
	for _, fi := range changed {
		if err := p.checkCancel(); err != nil {
			return nil, err
		}
		pf, err := p.ingestFile(fi)
		if err != nil {
			// The file keeps its stored facts, and its seeded symbols stay
			// registered for resolution and derivation.
			slog.Warn("pipeline.file.err", "path", fi.RelPath, "err", err,
				"kept_symbols", len(p.registry.InFile(fi.RelPath)))
			stats.Failed++
			continue
		}
		pf.hash = hashes[fi.RelPath]
		parsed = append(parsed, pf)
	}

	// Bases first, so member lookups in any file see the whole hierarchy.
	for _, pf := range parsed {
		p.resolveBases(pf)
	}
	for _, pf := range parsed {
		if err := p.checkCancel(); err != nil {
			return nil, err
		}
		p.emitImports(pf)
		p.resolveCalls(pf)
		pf.tree.Close()
		pf.tree = nil
	}

	changes := &graph.Changes{
		Project:  p.ProjectName,
		RootPath: p.RepoPath,
		Removed:  removed,
		Derived:  p.derive(),
	}
	for _, pf := range parsed {
		changes.Batches = append(changes.Batches, pf.batch)
	}
	stats.Ingested = len(parsed)
	stats.Nodes, stats.Relationships = changes.Counts()

	if err := p.Store.Commit(p.ctx, changes); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	next := make(hashcache.Cache, len(files))
	for _, fi := range files {
		if h, ok := cache[fi.RelPath]; ok {
			next[fi.RelPath] = h
		}
	}
	for _, fi := range changed {
		delete(next, fi.RelPath)
	}
	for _, pf := range parsed {
		if pf.hash != "" {
			next[pf.info.RelPath] = pf.hash
		}
	}
	if err := next.Save(cachePath); err != nil {
		slog.Warn("hashcache.save.err", "path", cachePath, "err", err)
	}

	stats.Elapsed = time.Since(start)
	slog.Info("pipeline.done",
		"project", p.ProjectName,
		"discovered", stats.Discovered,
		"skipped", stats.Skipped,
		"ingested", stats.Ingested,
		"removed", stats.Removed,
		"failed", stats.Failed,
		"nodes", stats.Nodes,
		"edges", stats.Relationships,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

// classifyFiles hashes every discovered file and returns those that need
// ingestion along with their digests. A hash failure counts as changed, and
// so does a cached file the sink holds nothing for.
func (p *Pipeline) classifyFiles(files []discover.FileInfo, cache hashcache.Cache, indexed []string, force bool) ([]discover.FileInfo, map[string]string, error) {
	inSink := make(map[string]bool, len(indexed))
	for _, path := range indexed {
		inSink[path] = true
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	digests, err := hashcache.HashFiles(p.ctx, paths)
	if err != nil {
		return nil, nil, err
	}

	hashes := make(map[string]string, len(files))
	var changed []discover.FileInfo
	for i, f := range files {
		d := digests[i]
		if d.Err != nil {
			slog.Warn("pipeline.hash.err", "path", f.RelPath, "err", d.Err)
			changed = append(changed, f)
			continue
		}
		hashes[f.RelPath] = d.Hash
		if !force && cache[f.RelPath] == d.Hash && inSink[f.RelPath] {
			slog.Debug("pipeline.skip", "path", f.RelPath)
			continue
		}
		changed = append(changed, f)
	}
	return changed, hashes, nil
}

// removedFiles returns the files the cache or the sink knows about that
// are no longer on disk.
func (p *Pipeline) removedFiles(files []discover.FileInfo, cache hashcache.Cache, indexed []string) []string {
	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f.RelPath] = true
	}
	known := append([]string(nil), indexed...)
	for path := range cache {
		known = append(known, path)
	}

	seen := make(map[string]bool)
	var removed []string
	for _, path := range known {
		if current[path] || seen[path] {
			continue
		}
		seen[path] = true
		if p.languageFiltered(path) {
			continue
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	for _, path := range removed {
		slog.Info("pipeline.removed", "path", path)
	}
	return removed
}

// languageFiltered reports whether a known file was left out by the
// language filter rather than deleted.
func (p *Pipeline) languageFiltered(path string) bool {
	if len(p.languages) == 0 {
		return false
	}
	l, ok := lang.LanguageForExtension(filepath.Ext(path))
	if !ok {
		return false
	}
	for _, want := range p.languages {
		if want == l {
			return false
		}
	}
	return true
}

// seed loads the stored symbols and inheritance of every file that was not
// removed, so changed files resolve against the whole project. A changed
// file's entries are replaced when it is ingested and survive when its
// ingestion fails.
func (p *Pipeline) seed(removed []string) error {
	p.registry = symbols.NewRegistry()
	p.imports = symbols.NewImports()
	p.hierarchy = symbols.NewHierarchy()
	p.stats = newStatCache(p.RepoPath, p.statCacheSize)

	stale := make(map[string]bool, len(removed))
	for _, path := range removed {
		stale[path] = true
	}

	syms, err := p.Store.Symbols(p.ProjectName)
	if err != nil {
		return fmt.Errorf("seed symbols: %w", err)
	}
	for _, s := range syms {
		if !stale[s.File] {
			p.registry.Register(s)
		}
	}

	for _, rt := range []graph.RelType{graph.Inherits, graph.Implements} {
		edges, err := p.Store.FindEdgesByType(p.ProjectName, string(rt))
		if err != nil {
			return fmt.Errorf("seed %s: %w", rt, err)
		}
		for _, e := range edges {
			if e.FilePath == "" || stale[e.FilePath] {
				continue
			}
			p.hierarchy.Add(e.SourceQN, e.TargetQN, e.FilePath)
		}
	}
	slog.Debug("pipeline.seeded", "symbols", p.registry.Len(), "stale", len(stale))
	return nil
}

// ingestFile parses a changed file and collects its module, imports and
// definitions. Calls and base classes are resolved later, once every
// changed file has registered its symbols.
func (p *Pipeline) ingestFile(fi discover.FileInfo) (*parsedFile, error) {
	profile := lang.ForLanguage(fi.Language)
	if profile == nil {
		return nil, fmt.Errorf("no profile for %s", fi.Language)
	}
	if p.maxFileSize > 0 {
		if st, err := os.Stat(fi.Path); err == nil && st.Size() > p.maxFileSize {
			return nil, fmt.Errorf("file too large (%d bytes, max %d)", st.Size(), p.maxFileSize)
		}
	}
	source, err := os.ReadFile(fi.Path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	source = stripBOM(source)

	tree, err := parser.Parse(fi.Language, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	pf := &parsedFile{
		info:  fi,
		tree:  tree,
		file:  handler.NewFile(profile, source, fi.RelPath, p.RepoPath, p.ProjectName),
		h:     handler.For(fi.Language),
		batch: graph.NewBatch(fi.RelPath, string(fi.Language)),
		defs:  make(map[uintptr]definition),
	}

	p.registry.RemoveFile(fi.RelPath)
	p.hierarchy.RemoveFile(fi.RelPath)
	p.imports.Reset(pf.file.ModuleQN)

	p.ingestModule(pf)
	p.parseImports(pf)
	p.ingestDefinitions(pf)
	return pf, nil
}

func (p *Pipeline) ingestModule(pf *parsedFile) {
	f := pf.file
	root := pf.tree.RootNode()
	_, end := parser.LineRange(root)
	props := map[string]any{
		graph.KeyQualifiedName: f.ModuleQN,
		"name":                 moduleName(pf.info.RelPath),
		"path":                 pf.info.RelPath,
		"language":             string(pf.info.Language),
		"start_line":           1,
		"end_line":             end,
	}
	pf.batch.EnsureNode(graph.Module, props)
	p.registry.Register(symbols.Symbol{
		QualifiedName: f.ModuleQN,
		Name:          graph.SimpleName(f.ModuleQN),
		Kind:          graph.Module,
		Language:      string(pf.info.Language),
		File:          pf.info.RelPath,
	})
}

func moduleName(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// labelOf returns the registered kind of qn, or fallback when unknown.
func (p *Pipeline) labelOf(qn string, fallback graph.Label) graph.Label {
	if s, ok := p.registry.Lookup(qn); ok {
		return s.Kind
	}
	return fallback
}

func stripBOM(source []byte) []byte {
	if len(source) >= 3 && source[0] == 0xEF && source[1] == 0xBB && source[2] == 0xBF {
		return source[3:]
	}
	return source
}
