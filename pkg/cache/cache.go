// Package cache provides a file-backed key→value store with TTL-based
// invalidation for registry lookup results. One file per key; the file
// modification time is the write timestamp. Entries are never purged,
// only overwritten — the cache directory's lifecycle belongs to
// whoever configures it.
package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultTTL is the cache validity window applied when no TTL is
// configured.
const DefaultTTL = 3600 * time.Second

// entryFileMode is the permission applied to cache entry files.
const entryFileMode = 0o644

// errCreateCacheDir indicates a failure to create the cache directory.
var errCreateCacheDir = errors.New("failed to create cache directory")

// Config carries the cache location and validity window. An explicit
// struct rather than ambient process state so callers own the setup.
type Config struct {
	Dir string        // Directory holding one file per cached key.
	TTL time.Duration // Validity window; DefaultTTL when zero.
}

// Store persists lookup results under a directory with TTL-governed
// reads. Safe for sequential use; concurrent writers to distinct keys
// do not interfere.
type Store struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewStore creates a Store over the given filesystem, creating the
// cache directory if needed.
func NewStore(fs afero.Fs, cfg Config) (*Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateCacheDir, err)
	}

	return &Store{fs: fs, dir: cfg.Dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached value for key and true, or "" and false when
// the entry is absent or its age has reached the TTL.
func (s *Store) Get(key string) (string, bool) {
	path := s.entryPath(key)

	info, err := s.fs.Stat(path)
	if err != nil {
		return "", false
	}

	age := s.now().Sub(info.ModTime())
	if age >= s.ttl {
		logrus.WithFields(logrus.Fields{
			"key": key,
			"age": age,
		}).Debug("Cache entry expired")

		return "", false
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Debug("Failed to read cache entry")

		return "", false
	}

	return strings.TrimSuffix(string(data), "\n"), true
}

// Put persists value under key with the current timestamp, overwriting
// any prior entry. Failed lookups are cached the same way as
// successful ones, bounding retry storms within the TTL window.
func (s *Store) Put(key, value string) error {
	path := s.entryPath(key)

	if err := afero.WriteFile(s.fs, path, []byte(value+"\n"), entryFileMode); err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}

	// WriteFile on an existing entry keeps the old mtime on some
	// filesystems; refresh it so the TTL window restarts.
	now := s.now()

	return s.fs.Chtimes(path, now, now)
}

// entryPath maps a key to its storage file, replacing path-unsafe
// separators.
func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(key, "/", "_"))
}
