// Package config loads codegraph settings. Precedence, lowest first:
// built-in defaults, .codegraph.yaml, .env, CODEGRAPH_* environment
// variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/pipeline"
)

// FileName is the per-repository config file.
const FileName = ".codegraph.yaml"

const envPrefix = "CODEGRAPH_"

// Config holds user-overridable settings.
type Config struct {
	// Project overrides the name derived from the repository directory.
	Project string `yaml:"project"`
	// DBPath is the SQLite database. Empty means the user cache dir.
	DBPath string `yaml:"db_path"`
	// HashCache is the hash cache file. Empty means one file per project
	// under the user cache dir.
	HashCache string `yaml:"hash_cache"`
	// Ignore patterns are added to .gitignore and .cgrignore.
	Ignore []string `yaml:"ignore"`
	// Languages restricts indexing. Empty means every supported language.
	Languages     []string `yaml:"languages"`
	StatCacheSize int      `yaml:"stat_cache_size"`
	// MaxFileSize skips files above this many bytes. Zero means no limit.
	MaxFileSize int64 `yaml:"max_file_size"`

	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Watch: WatchConfig{Interval: time.Second},
	}
}

// Load builds the configuration for a repository. An explicit path must
// exist; otherwise <repo>/.codegraph.yaml is read when present. A .env
// file in the repository or the working directory feeds the environment
// without overriding variables already set.
func Load(path, repo string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit && repo != "" {
		path = filepath.Join(repo, FileName)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	envFiles := []string{".env"}
	if repo != "" {
		envFiles = append([]string{filepath.Join(repo, ".env")}, envFiles...)
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				slog.Warn("config.env.err", "path", f, "err", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.ParsedLanguages(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = splitList(v)
		}
	}

	str("PROJECT", &c.Project)
	str("DB", &c.DBPath)
	str("HASH_CACHE", &c.HashCache)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	list("IGNORE", &c.Ignore)
	list("LANGUAGES", &c.Languages)

	if v := strings.TrimSpace(os.Getenv(envPrefix + "STAT_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSTAT_CACHE_SIZE: %w", envPrefix, err)
		}
		c.StatCacheSize = n
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix + "MAX_FILE_SIZE")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_FILE_SIZE: %w", envPrefix, err)
		}
		c.MaxFileSize = n
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix + "WATCH_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWATCH_INTERVAL: %w", envPrefix, err)
		}
		c.Watch.Interval = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParsedLanguages validates the language filter.
func (c *Config) ParsedLanguages() ([]lang.Language, error) {
	out := make([]lang.Language, 0, len(c.Languages))
	for _, name := range c.Languages {
		l := lang.Language(strings.ToLower(strings.TrimSpace(name)))
		if lang.ForLanguage(l) == nil {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		out = append(out, l)
	}
	return out, nil
}

// SlogLevel maps Log.Level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// PipelineOptions translates the settings into pipeline options.
func (c *Config) PipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithProject(c.Project),
		pipeline.WithIgnore(c.Ignore...),
	}
	if c.HashCache != "" {
		opts = append(opts, pipeline.WithCacheFile(c.HashCache))
	}
	if langs, err := c.ParsedLanguages(); err == nil && len(langs) > 0 {
		opts = append(opts, pipeline.WithLanguages(langs...))
	}
	if c.StatCacheSize > 0 {
		opts = append(opts, pipeline.WithStatCacheSize(c.StatCacheSize))
	}
	if c.MaxFileSize > 0 {
		opts = append(opts, pipeline.WithMaxFileSize(c.MaxFileSize))
	}
	return opts
}
