package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Artifact filenames follow the layout the dump tool has always used:
// full_backup_20060102_150405.sql[.gz] and
// incremental_backup_20060102_150405.sql[.gz].
const (
	timestampLayout    = "20060102_150405"
	fullPrefix         = "full_backup_"
	incrementalPrefix  = "incremental_backup_"
	uncompressedSuffix = ".sql"
)

// BackupFilename creates a timestamped artifact filename for a lineage.
func BackupFilename(lineage Lineage, timestamp time.Time) string {
	prefix := fullPrefix
	if lineage == LineageIncremental {
		prefix = incrementalPrefix
	}
	return fmt.Sprintf("%s%s%s", prefix, timestamp.Format(timestampLayout), uncompressedSuffix)
}

// ParseBackupFilename extracts the lineage and embedded timestamp from an
// artifact filename. The embedded timestamp records when the dump started;
// artifact ordering still uses file modification time.
func ParseBackupFilename(name string) (Lineage, time.Time, error) {
	// Strip compression and dump suffixes
	base := strings.TrimSuffix(name, CompressedSuffix)
	base = strings.TrimSuffix(base, uncompressedSuffix)

	var lineage Lineage
	switch {
	case strings.HasPrefix(base, fullPrefix):
		lineage = LineageFull
		base = strings.TrimPrefix(base, fullPrefix)
	case strings.HasPrefix(base, incrementalPrefix):
		lineage = LineageIncremental
		base = strings.TrimPrefix(base, incrementalPrefix)
	default:
		return "", time.Time{}, fmt.Errorf("unrecognized backup filename: %s", name)
	}

	t, err := time.Parse(timestampLayout, base)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid timestamp in backup filename %s: %w", name, err)
	}

	return lineage, t, nil
}

// MatchesArtifact reports whether a filename looks like a backup artifact,
// compressed or not.
func MatchesArtifact(name string) bool {
	return strings.HasSuffix(name, uncompressedSuffix) ||
		strings.HasSuffix(name, uncompressedSuffix+CompressedSuffix)
}
