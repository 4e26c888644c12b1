package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/features"
)

// formatVersion is bumped whenever the on-disk layout changes
const formatVersion = 1

// fileFormat is the persisted layout: parallel label and vector sequences
type fileFormat struct {
	Version int               `json:"version"`
	Labels  []Label           `json:"labels"`
	Vectors []features.Vector `json:"vectors"`
}

// Open locks the corpus file and loads it. A missing or unreadable file
// yields an empty corpus; an unreadable one is moved aside first.
// Callers must defer Close to persist the session.
func Open(path string, logger zerolog.Logger) (*Corpus, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock corpus: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	c := &Corpus{
		path:   path,
		lock:   lock,
		logger: logger.With().Str("component", "corpus").Logger(),
	}
	c.load()

	return c, nil
}

// load reads the file into memory. It never fails.
func (c *Corpus) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug().Str("path", c.path).Msg("no corpus on disk, starting empty")
		} else {
			c.logger.Warn().Err(err).Str("path", c.path).Msg("failed to read corpus, starting empty")
		}
		return
	}

	labels, vectors, err := decode(data)
	if err != nil {
		backup := c.path + ".corrupt"
		if renameErr := os.Rename(c.path, backup); renameErr != nil {
			c.logger.Warn().Err(renameErr).Msg("failed to move corrupt corpus aside")
			backup = ""
		}
		c.logger.Warn().Err(err).Str("path", c.path).Str("backup", backup).
			Msg("corrupt corpus, starting empty")
		return
	}

	c.labels = labels
	c.vectors = vectors
	c.logger.Debug().Int("examples", len(labels)).Msg("corpus loaded")
}

// decode parses and validates a persisted corpus
func decode(data []byte) ([]Label, []features.Vector, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	if f.Version != formatVersion {
		return nil, nil, fmt.Errorf("unsupported corpus version %d", f.Version)
	}
	if len(f.Labels) != len(f.Vectors) {
		return nil, nil, fmt.Errorf("corpus has %d labels but %d vectors", len(f.Labels), len(f.Vectors))
	}
	for i := range f.Labels {
		if f.Labels[i] != Positive && f.Labels[i] != Negative {
			return nil, nil, fmt.Errorf("example %d: invalid label %d", i, f.Labels[i])
		}
		if !f.Vectors[i].Valid() {
			return nil, nil, fmt.Errorf("example %d: invalid feature vector", i)
		}
	}
	return f.Labels, f.Vectors, nil
}

// Flush writes the whole corpus to disk, replacing the previous file atomically
func (c *Corpus) Flush() error {
	if c.closed {
		return ErrClosed
	}
	if c.path == "" {
		return nil
	}

	data, err := json.Marshal(fileFormat{
		Version: formatVersion,
		Labels:  c.labels,
		Vectors: c.vectors,
	})
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	if err := writeAtomic(c.path, data); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}

	c.logger.Debug().Int("examples", len(c.labels)).Str("path", c.path).Msg("corpus persisted")
	return nil
}

// Close persists the corpus and releases the lock. Calling it again is a no-op.
func (c *Corpus) Close() error {
	if c.closed {
		return nil
	}

	var errs []error
	if err := c.Flush(); err != nil {
		errs = append(errs, err)
	}
	c.closed = true

	if c.lock != nil {
		if err := c.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("failed to unlock corpus: %w", err))
		}
	}

	return errors.Join(errs...)
}

// writeAtomic writes data to a temp file next to path and renames it over path
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure before the rename
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
