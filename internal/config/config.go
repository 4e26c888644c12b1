package config

import (
	"path/filepath"
	"time"

	"github.com/vijay-prabhu/feedrank/internal/classifier"
)

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Fetch   FetchConfig   `toml:"fetch"`
	Ranking RankingConfig `toml:"ranking"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig locates the feed database and training corpus
type StorageConfig struct {
	Dir      string `toml:"dir"`
	Database string `toml:"database"` // relative to Dir unless absolute
	Corpus   string `toml:"corpus"`   // relative to Dir unless absolute
}

// DatabasePath returns the full path of the feed database
func (s StorageConfig) DatabasePath() string {
	return resolve(s.Dir, s.Database)
}

// CorpusPath returns the full path of the training corpus
func (s StorageConfig) CorpusPath() string {
	return resolve(s.Dir, s.Corpus)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// FetchConfig contains feed download settings
type FetchConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Timeout returns the HTTP timeout as a duration
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RankingConfig contains classifier and ranking settings
type RankingConfig struct {
	Cost          float64 `toml:"cost"`
	Epsilon       float64 `toml:"epsilon"`
	MaxIterations int     `toml:"max_iterations"`
	Seed          uint64  `toml:"seed"`
	DefaultLimit  int     `toml:"default_limit"` // items shown by --best when no value is given
}

// Params converts the ranking settings into solver parameters
func (r RankingConfig) Params() classifier.Params {
	return classifier.Params{
		Cost:          r.Cost,
		Epsilon:       r.Epsilon,
		MaxIterations: r.MaxIterations,
		Seed:          r.Seed,
	}
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	params := classifier.DefaultParams()
	return &Config{
		Storage: StorageConfig{
			Dir:      "~/.rssreader",
			Database: "main.db",
			Corpus:   "training.data",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			UserAgent:      "feedrank/0.1 (+https://github.com/vijay-prabhu/feedrank)",
		},
		Ranking: RankingConfig{
			Cost:          params.Cost,
			Epsilon:       params.Epsilon,
			MaxIterations: params.MaxIterations,
			Seed:          params.Seed,
			DefaultLimit:  10,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
