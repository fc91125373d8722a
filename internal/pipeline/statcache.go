package pipeline

import (
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultStatCacheSize = 4096

// statCache remembers whether repo-relative paths exist. Import
// resolution probes the same top-level packages over and over.
type statCache struct {
	root  string
	cache *lru.Cache[string, bool]
}

func newStatCache(root string, size int) *statCache {
	if size <= 0 {
		size = defaultStatCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		cache, _ = lru.New[string, bool](defaultStatCacheSize)
	}
	return &statCache{root: root, cache: cache}
}

func (s *statCache) exists(rel string) bool {
	if rel == "" {
		return false
	}
	if ok, hit := s.cache.Get(rel); hit {
		return ok
	}
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(rel)))
	ok := err == nil
	s.cache.Add(rel, ok)
	return ok
}
