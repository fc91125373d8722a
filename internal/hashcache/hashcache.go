// Package hashcache persists the content digest of every ingested file so
// unchanged files can be skipped on the next run.
package hashcache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// Cache maps a repo-relative slash path to the hex xxh3-128 digest of the
// file's content.
type Cache map[string]string

// DefaultPath returns <user cache dir>/codegraph/<project>.hashes.json.
func DefaultPath(project string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cache dir: %w", err)
	}
	return filepath.Join(dir, "codegraph", project+".hashes.json"), nil
}

// Load reads the cache at path. A missing file yields an empty cache. So
// does a corrupt one, which is logged and then overwritten by the next Save.
func Load(path string) Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("hashcache.read.err", "path", path, "err", err)
		}
		return Cache{}
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		slog.Warn("hashcache.corrupt", "path", path, "err", err)
		return Cache{}
	}
	if c == nil {
		c = Cache{}
	}
	return c
}

// Save writes the cache atomically: the JSON goes to a temp file in the
// same directory which is then renamed over path.
func (c Cache) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".hashes-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Hash returns the hex xxh3-128 digest of a file's content.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

// Digest is the outcome of hashing one file.
type Digest struct {
	Hash string
	Err  error
}

// HashFiles hashes paths in parallel. The result is aligned with paths;
// per-file failures are reported in Digest.Err rather than aborting the
// batch. The returned error is non-nil only when ctx is cancelled.
func HashFiles(ctx context.Context, paths []string) ([]Digest, error) {
	results := make([]Digest, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := Hash(p)
			results[i] = Digest{Hash: h, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
