package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/DeusData/codegraph/internal/lang"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func discoverRel(t *testing.T, dir string, opts *Options) []string {
	t.Helper()
	files, err := Discover(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func expectFiles(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestDiscoverFileInfo(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go": "package main\n",
		"app.py":  "def main(): pass\n",
	})

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	py, gofile := files[0], files[1]
	if py.RelPath != "app.py" || py.Language != lang.Python || py.Path != filepath.Join(dir, "app.py") {
		t.Errorf("unexpected python entry %+v", py)
	}
	if gofile.RelPath != "main.go" || gofile.Language != lang.Go {
		t.Errorf("unexpected go entry %+v", gofile)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"main.go": "package main\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Discover(ctx, dir, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiscoverIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore":             "generated/\n*_pb2.py\n",
		".cgrignore":             "# local\nscratch.py\n",
		"app.py":                 "",
		"scratch.py":             "",
		"api_pb2.py":             "",
		"generated/model.py":     "",
		"node_modules/lib/x.js":  "",
		"pkg/util.py":            "",
		"pkg/notes.txt":          "",
		"web/bundle.min.js":      "",
		"docs/legacy/old_api.py": "",
	})

	got := discoverRel(t, dir, &Options{Patterns: []string{"docs/legacy"}})
	expectFiles(t, got, "app.py", "pkg/util.py")
}

func TestDiscoverNestedGitignore(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.py":             "",
		"svc/.gitignore":      "local.py\ngen/\n",
		"svc/api.py":          "",
		"svc/local.py":        "",
		"svc/gen/stub.py":     "",
		"svc/inner/local.py":  "",
		"other/local.py":      "",
		"other/gen/client.py": "",
	})

	// svc's rules reach into svc/inner but not into other/.
	got := discoverRel(t, dir, nil)
	expectFiles(t, got, "keep.py", "other/gen/client.py", "other/local.py", "svc/api.py")
}

func TestDiscoverExplicitIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":         "",
		"b.py":         "",
		".cgrignore":   "a.py\n",
		"other.ignore": "b.py\n",
	})
	got := discoverRel(t, dir, &Options{IgnoreFile: filepath.Join(dir, "other.ignore")})
	expectFiles(t, got, "a.py")
}

func TestDiscoverLanguageFilter(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":     "package main\n",
		"app.py":      "",
		"web/app.ts":  "",
		"web/app.tsx": "",
	})
	files, err := Discover(context.Background(), dir, &Options{Languages: []lang.Language{lang.TypeScript, lang.TSX}})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Language != lang.TypeScript || files[1].Language != lang.TSX {
		t.Errorf("languages = %s, %s", files[0].Language, files[1].Language)
	}
}

func TestDiscoverSortedSlashPaths(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"z.py":       "",
		"a/b/c.py":   "",
		"a/index.js": "",
	})
	expectFiles(t, discoverRel(t, dir, nil), "a/b/c.py", "a/index.js", "z.py")
}

func TestDiscoverSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real.py": ""})
	if err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	expectFiles(t, discoverRel(t, dir, nil), "real.py")
}
