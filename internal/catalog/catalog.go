package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// ErrUnavailable indicates the catalog storage directory cannot be read.
var ErrUnavailable = errors.New("backup catalog unavailable")

// ErrNoBaseline indicates no full backup exists yet.
var ErrNoBaseline = errors.New("no full backup found, create a full backup first")

// Catalog scans the backup storage layout. It is read-only: producers append
// artifact files, the catalog never mutates or reorders them.
type Catalog struct {
	root   string
	logger *slog.Logger
}

// New creates a catalog rooted at dir. The layout is dir/full and
// dir/incremental.
func New(dir string) *Catalog {
	return &Catalog{
		root:   dir,
		logger: slog.Default().With("component", "catalog"),
	}
}

// Root returns the catalog root directory.
func (c *Catalog) Root() string {
	return c.root
}

// FullDir returns the directory holding full backup artifacts.
func (c *Catalog) FullDir() string {
	return filepath.Join(c.root, "full")
}

// IncrementalDir returns the directory holding incremental backup artifacts.
func (c *Catalog) IncrementalDir() string {
	return filepath.Join(c.root, "incremental")
}

// EnsureLayout creates the lineage directories if they do not exist.
func (c *Catalog) EnsureLayout() error {
	for _, dir := range []string{c.root, c.FullDir(), c.IncrementalDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListFull returns all full backup artifacts ordered ascending by creation
// time.
func (c *Catalog) ListFull() ([]Artifact, error) {
	return c.list(c.FullDir(), LineageFull)
}

// ListIncremental returns all incremental backup artifacts ordered ascending
// by creation time.
func (c *Catalog) ListIncremental() ([]Artifact, error) {
	return c.list(c.IncrementalDir(), LineageIncremental)
}

// ListAll returns artifacts from both lineages merged and ordered ascending
// by creation time.
func (c *Catalog) ListAll() ([]Artifact, error) {
	full, err := c.ListFull()
	if err != nil {
		return nil, err
	}
	incremental, err := c.ListIncremental()
	if err != nil {
		return nil, err
	}

	all := append(full, incremental...)
	sortArtifacts(all)
	return all, nil
}

// LatestFull returns the most recent full backup artifact. It fails with
// ErrNoBaseline when none exists.
func (c *Catalog) LatestFull() (Artifact, error) {
	full, err := c.ListFull()
	if err != nil {
		return Artifact{}, err
	}
	if len(full) == 0 {
		return Artifact{}, ErrNoBaseline
	}
	return full[len(full)-1], nil
}

func (c *Catalog) list(dir string, lineage Lineage) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// An uninitialized lineage directory is an empty catalog,
			// not a failure.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !MatchesArtifact(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		artifacts = append(artifacts, Artifact{
			Path:       filepath.Join(dir, entry.Name()),
			Lineage:    lineage,
			CreatedAt:  info.ModTime(),
			Compressed: IsCompressedName(entry.Name()),
			SizeBytes:  info.Size(),
		})
	}

	sortArtifacts(artifacts)
	return artifacts, nil
}

// sortArtifacts orders artifacts ascending by creation time, falling back to
// path order so equal timestamps stay deterministic.
func sortArtifacts(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		if artifacts[i].CreatedAt.Equal(artifacts[j].CreatedAt) {
			return artifacts[i].Path < artifacts[j].Path
		}
		return artifacts[i].CreatedAt.Before(artifacts[j].CreatedAt)
	})
}
