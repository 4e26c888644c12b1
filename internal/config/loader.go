package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file. A missing file yields the
// defaults, so the tool works before 'feedrank config init' is run.
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	cfg := Default()

	// Read file
	data, err := os.ReadFile(expandedPath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through with defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Storage.Dir, err = expandPath(c.Storage.Dir)
	if err != nil {
		return err
	}

	c.Storage.Database, err = expandPath(c.Storage.Database)
	if err != nil {
		return err
	}

	c.Storage.Corpus, err = expandPath(c.Storage.Corpus)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Storage validation
	if c.Storage.Dir == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}
	if c.Storage.Database == "" {
		errs = append(errs, errors.New("storage.database is required"))
	}
	if c.Storage.Corpus == "" {
		errs = append(errs, errors.New("storage.corpus is required"))
	}
	if c.Storage.Database != "" && c.Storage.DatabasePath() == c.Storage.CorpusPath() {
		errs = append(errs, errors.New("storage.database and storage.corpus must differ"))
	}

	// Fetch validation
	if c.Fetch.TimeoutSeconds < 1 || c.Fetch.TimeoutSeconds > 600 {
		errs = append(errs, errors.New("fetch.timeout_seconds must be between 1 and 600"))
	}

	// Ranking validation
	if c.Ranking.Cost <= 0 {
		errs = append(errs, fmt.Errorf("ranking.cost must be positive, got %v", c.Ranking.Cost))
	}
	if c.Ranking.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("ranking.epsilon must be positive, got %v", c.Ranking.Epsilon))
	}
	if c.Ranking.MaxIterations < 1 {
		errs = append(errs, errors.New("ranking.max_iterations must be at least 1"))
	}
	if c.Ranking.DefaultLimit < 1 {
		errs = append(errs, errors.New("ranking.default_limit must be at least 1"))
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be 'console' or 'json', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EnsureDirectories creates the storage directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.Dir,
		filepath.Dir(c.Storage.DatabasePath()),
		filepath.Dir(c.Storage.CorpusPath()),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
