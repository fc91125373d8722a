// Package watcher polls indexed repositories and re-runs incremental
// indexing when their source files change.
//
// Polling compares mtime and size only. Whether a file's content really
// changed is decided by the indexer's hash cache, so a touched but
// unchanged file costs one cheap run that skips everything.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DeusData/codegraph/internal/discover"
	"github.com/DeusData/codegraph/internal/store"
)

const (
	defaultBaseInterval = 1 * time.Second
	maxInterval         = 60 * time.Second
	filesPerStep        = 500
)

// ProjectLister lists the projects to watch. *store.Store implements it.
type ProjectLister interface {
	ListProjects() ([]*store.Project, error)
}

// IndexFunc re-indexes one project.
type IndexFunc func(ctx context.Context, projectName, rootPath string) error

type stamp struct {
	modTime time.Time
	size    int64
}

// snapshot maps repo-relative paths to their stamp.
type snapshot map[string]stamp

// changes counts the differences between two snapshots.
type changes struct{ added, modified, removed int }

func (c changes) none() bool { return c.added+c.modified+c.removed == 0 }

func (s snapshot) diff(next snapshot) changes {
	var c changes
	for path, old := range s {
		cur, ok := next[path]
		switch {
		case !ok:
			c.removed++
		case !cur.modTime.Equal(old.modTime) || cur.size != old.size:
			c.modified++
		}
	}
	for path := range next {
		if _, ok := s[path]; !ok {
			c.added++
		}
	}
	return c
}

// watched is the polling state of one project.
type watched struct {
	snap     snapshot
	interval time.Duration
	due      time.Time
}

// Watcher polls projects for file changes and triggers re-indexing.
type Watcher struct {
	lister   ProjectLister
	index    IndexFunc
	base     time.Duration
	only     map[string]bool
	discover *discover.Options
	projects map[string]*watched
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithBaseInterval sets the tick and the minimum per-project interval.
func WithBaseInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.base = d
		}
	}
}

// WithProjects restricts polling to the named projects.
func WithProjects(names ...string) Option {
	return func(w *Watcher) {
		for _, n := range names {
			w.only[n] = true
		}
	}
}

// WithDiscoverOptions applies the indexer's ignore rules and language
// filter, so files the indexer would skip never trigger a run.
func WithDiscoverOptions(opts *discover.Options) Option {
	return func(w *Watcher) { w.discover = opts }
}

// New creates a Watcher that calls index when a project's files change.
func New(l ProjectLister, index IndexFunc, opts ...Option) *Watcher {
	w := &Watcher{
		lister:   l,
		index:    index,
		base:     defaultBaseInterval,
		only:     make(map[string]bool),
		projects: make(map[string]*watched),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. It ticks at the base interval and
// polls each project only once its own interval has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.base)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.tick(ctx, now)
		}
	}
}

func (w *Watcher) tick(ctx context.Context, now time.Time) {
	projects, err := w.lister.ListProjects()
	if err != nil {
		slog.Warn("watcher.list_projects", "err", err)
		return
	}
	for _, p := range projects {
		if ctx.Err() != nil {
			return
		}
		if len(w.only) > 0 && !w.only[p.Name] {
			continue
		}
		state, ok := w.projects[p.Name]
		if !ok {
			state = &watched{}
			w.projects[p.Name] = state
		} else if now.Before(state.due) {
			continue
		}
		w.poll(ctx, p, state)
	}
}

// poll records a baseline on the first visit. Later visits re-index when
// the snapshot differs; a failed run keeps the old snapshot so the next
// visit retries.
func (w *Watcher) poll(ctx context.Context, p *store.Project, state *watched) {
	if _, err := os.Stat(p.RootPath); err != nil {
		slog.Warn("watcher.root_gone", "project", p.Name, "path", p.RootPath)
		state.due = time.Now().Add(maxInterval)
		return
	}
	snap, err := captureSnapshot(ctx, p.RootPath, w.discover)
	if err != nil {
		slog.Warn("watcher.snapshot", "project", p.Name, "err", err)
		state.due = time.Now().Add(max(state.interval, w.base))
		return
	}
	state.interval = w.pollInterval(len(snap))
	defer func() { state.due = time.Now().Add(state.interval) }()

	if state.snap == nil {
		slog.Debug("watcher.baseline", "project", p.Name, "files", len(snap))
		state.snap = snap
		return
	}
	c := state.snap.diff(snap)
	if c.none() {
		return
	}
	slog.Info("watcher.changed", "project", p.Name,
		"added", c.added, "modified", c.modified, "removed", c.removed)
	if err := w.index(ctx, p.Name, p.RootPath); err != nil {
		slog.Warn("watcher.index", "project", p.Name, "err", err)
		return
	}
	state.snap = snap
}

// captureSnapshot stamps every file discover would hand to the indexer.
func captureSnapshot(ctx context.Context, root string, opts *discover.Options) (snapshot, error) {
	files, err := discover.Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	snap := make(snapshot, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		snap[f.RelPath] = stamp{modTime: info.ModTime(), size: info.Size()}
	}
	return snap, nil
}

// pollInterval grows by one base interval per 500 files, up to a minute.
func (w *Watcher) pollInterval(files int) time.Duration {
	return min(w.base+time.Duration(files/filesPerStep)*w.base, maxInterval)
}
