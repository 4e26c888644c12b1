package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Database != "main.db" {
		t.Errorf("expected Database=main.db, got %s", cfg.Storage.Database)
	}

	if cfg.Storage.Corpus != "training.data" {
		t.Errorf("expected Corpus=training.data, got %s", cfg.Storage.Corpus)
	}

	if cfg.Ranking.Cost != 1.0 {
		t.Errorf("expected Cost=1.0, got %v", cfg.Ranking.Cost)
	}

	if cfg.Fetch.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.Fetch.TimeoutSeconds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "missing storage dir",
			modify: func(c *Config) {
				c.Storage.Dir = ""
			},
			wantErr: true,
		},
		{
			name: "database and corpus collide",
			modify: func(c *Config) {
				c.Storage.Corpus = c.Storage.Database
			},
			wantErr: true,
		},
		{
			name: "invalid timeout",
			modify: func(c *Config) {
				c.Fetch.TimeoutSeconds = 0
			},
			wantErr: true,
		},
		{
			name: "non-positive cost",
			modify: func(c *Config) {
				c.Ranking.Cost = 0
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			modify: func(c *Config) {
				c.Log.Level = "verbose"
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			modify: func(c *Config) {
				c.Log.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.Storage.Dir != filepath.Join(home, ".rssreader") {
		t.Errorf("expected expanded default dir, got %s", cfg.Storage.Dir)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[storage]
dir = "` + dir + `"
corpus = "feedback.json"

[ranking]
cost = 0.5
default_limit = 25
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := cfg.Storage.CorpusPath(); got != filepath.Join(dir, "feedback.json") {
		t.Errorf("CorpusPath() = %q", got)
	}
	if got := cfg.Storage.DatabasePath(); got != filepath.Join(dir, "main.db") {
		t.Errorf("DatabasePath() = %q", got)
	}
	if cfg.Ranking.Cost != 0.5 {
		t.Errorf("expected Cost=0.5, got %v", cfg.Ranking.Cost)
	}
	if cfg.Ranking.DefaultLimit != 25 {
		t.Errorf("expected DefaultLimit=25, got %d", cfg.Ranking.DefaultLimit)
	}
	// untouched sections keep defaults
	if cfg.Ranking.MaxIterations != 1000 {
		t.Errorf("expected MaxIterations=1000, got %d", cfg.Ranking.MaxIterations)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[storage\ndir = "), 0644)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestAbsoluteStoragePaths(t *testing.T) {
	s := StorageConfig{Dir: "/data", Database: "/elsewhere/feeds.db", Corpus: "training.data"}

	if s.DatabasePath() != "/elsewhere/feeds.db" {
		t.Errorf("DatabasePath() = %q", s.DatabasePath())
	}
	if s.CorpusPath() != "/data/training.data" {
		t.Errorf("CorpusPath() = %q", s.CorpusPath())
	}
}

func TestTimeout(t *testing.T) {
	cfg := Default()

	if got := cfg.Fetch.Timeout().Seconds(); got != 30 {
		t.Errorf("Timeout() = %v seconds, want 30", got)
	}
}
