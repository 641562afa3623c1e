// Package catalog enumerates backup artifacts on durable storage.
package catalog

import (
	"strings"
	"time"
)

// Lineage identifies which backup lineage an artifact belongs to.
type Lineage string

const (
	// LineageFull is a complete snapshot of the database.
	LineageFull Lineage = "full"
	// LineageIncremental contains rows changed since the last full backup.
	LineageIncremental Lineage = "incremental"
)

// CompressedSuffix marks an artifact as gzip compressed.
const CompressedSuffix = ".gz"

// Artifact describes one backup file. Artifacts are immutable once written;
// the catalog only ever appends new ones.
type Artifact struct {
	// Path is the location of the file on durable storage.
	Path string

	// Lineage is the backup lineage the artifact belongs to.
	Lineage Lineage

	// CreatedAt is derived from the file's modification time, a proxy for
	// the logical backup-completion time. Fragile under clock skew or
	// mtime-preserving copies.
	CreatedAt time.Time

	// Compressed reports whether the file carries the .gz suffix.
	Compressed bool

	// SizeBytes is informational only.
	SizeBytes int64
}

// IsCompressedName reports whether a filename follows the compressed
// naming convention.
func IsCompressedName(name string) bool {
	return strings.HasSuffix(name, CompressedSuffix)
}
