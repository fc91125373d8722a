// Package discover finds the source files of a repository.
//
// A directory's .gitignore applies to everything below it, in addition to
// the rules of its ancestors. The root also reads .cgrignore (or
// Options.IgnoreFile) and Options.Patterns.
package discover

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/DeusData/codegraph/internal/lang"
)

// skipDirs are directory names never descended into: VCS metadata,
// dependency trees, virtualenvs, caches and build output.
var skipDirs = map[string]bool{
	".cache": true, ".eclipse": true, ".eggs": true, ".env": true,
	".git": true, ".gradle": true, ".hg": true, ".idea": true,
	".mypy_cache": true, ".nox": true, ".npm": true, ".nyc_output": true,
	".pnpm-store": true, ".pytest_cache": true, ".ruff_cache": true,
	".svn": true, ".tox": true, ".venv": true, ".vs": true, ".vscode": true,
	".yarn": true, "__pycache__": true, "bower_components": true,
	"build": true, "coverage": true, "dist": true, "env": true,
	"htmlcov": true, "node_modules": true, "obj": true, "out": true,
	"Pods": true, "site-packages": true, "target": true, "vendor": true,
	"venv": true,
}

// skipSuffixes mark generated or binary files that may carry a source
// extension.
var skipSuffixes = []string{"~", ".tmp", ".min.js", ".bundle.js", ".pyc", ".class"}

const (
	gitignoreName  = ".gitignore"
	ignoreFileName = ".cgrignore"
)

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to repo root, slash separated
	Language lang.Language // detected language
}

// Options configures file discovery.
type Options struct {
	IgnoreFile string          // path to an ignore file; defaults to <repo>/.cgrignore
	Patterns   []string        // extra gitignore-style patterns, relative to the root
	Languages  []lang.Language // restrict to these languages when non-empty
}

// walker carries the state of one Discover call.
type walker struct {
	ctx     context.Context
	root    string
	allowed map[lang.Language]bool
	// rules maps a slash-separated directory ("" for the root) to the
	// ignore rules declared in it.
	rules map[string]*ignore.GitIgnore
	files []FileInfo
}

// Discover walks a repository and returns its source files sorted by
// relative path. Symlinks are not followed.
func Discover(ctx context.Context, repoPath string, opts *Options) ([]FileInfo, error) {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	w := &walker{ctx: ctx, root: root, rules: make(map[string]*ignore.GitIgnore)}
	if len(opts.Languages) > 0 {
		w.allowed = make(map[lang.Language]bool, len(opts.Languages))
		for _, l := range opts.Languages {
			w.allowed[l] = true
		}
	}
	if err := w.loadRootRules(opts); err != nil {
		return nil, err
	}
	if err := filepath.WalkDir(root, w.visit); err != nil {
		return nil, err
	}
	slices.SortFunc(w.files, func(a, b FileInfo) int { return strings.Compare(a.RelPath, b.RelPath) })
	return w.files, nil
}

func (w *walker) loadRootRules(opts *Options) error {
	lines, err := readPatterns(filepath.Join(w.root, gitignoreName))
	if err != nil {
		return err
	}
	extraFile := opts.IgnoreFile
	if extraFile == "" {
		extraFile = filepath.Join(w.root, ignoreFileName)
	}
	extra, err := readPatterns(extraFile)
	if err != nil {
		return err
	}
	lines = append(lines, extra...)
	lines = append(lines, opts.Patterns...)
	if len(lines) > 0 {
		w.rules[""] = ignore.CompileIgnoreLines(lines...)
	}
	return nil
}

func (w *walker) visit(p string, d os.DirEntry, walkErr error) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if walkErr != nil {
		// Unreadable entries are skipped, not fatal.
		if d != nil && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if p == w.root {
		return nil
	}
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)

	if d.IsDir() {
		if skipDirs[d.Name()] || w.ignored(rel, true) {
			return filepath.SkipDir
		}
		return w.loadDirRules(p, rel)
	}
	if !d.Type().IsRegular() || hasSkippedSuffix(d.Name()) || w.ignored(rel, false) {
		return nil
	}
	l, ok := lang.LanguageForExtension(filepath.Ext(d.Name()))
	if !ok || (w.allowed != nil && !w.allowed[l]) {
		return nil
	}
	w.files = append(w.files, FileInfo{Path: p, RelPath: rel, Language: l})
	return nil
}

func (w *walker) loadDirRules(dir, rel string) error {
	lines, err := readPatterns(filepath.Join(dir, gitignoreName))
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		w.rules[rel] = ignore.CompileIgnoreLines(lines...)
	}
	return nil
}

// ignored checks rel against the rules of every ancestor directory, each
// matched relative to the directory that declared it.
func (w *walker) ignored(rel string, isDir bool) bool {
	suffix := ""
	if isDir {
		suffix = "/"
	}
	for dir := path.Dir(rel); ; dir = path.Dir(dir) {
		base := dir
		if base == "." {
			base = ""
		}
		if m := w.rules[base]; m != nil {
			sub := rel
			if base != "" {
				sub = strings.TrimPrefix(rel, base+"/")
			}
			if m.MatchesPath(sub + suffix) {
				return true
			}
		}
		if base == "" {
			return false
		}
	}
}

func hasSkippedSuffix(name string) bool {
	for _, s := range skipSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// readPatterns returns the non-empty, non-comment lines of an ignore file.
// A missing file has no patterns.
func readPatterns(file string) ([]string, error) {
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
