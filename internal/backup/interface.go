// Package backup produces full and incremental backup artifacts.
package backup

import (
	"context"
	"io"
	"time"
)

// Dumper defines the interface to the external dump tool.
type Dumper interface {
	// DumpFull writes a transactionally-consistent snapshot of the whole
	// database to w.
	DumpFull(ctx context.Context, w io.Writer) error

	// DumpIncremental writes rows whose change-tracking timestamp column
	// is newer than since to w. This is a logical approximation of
	// incremental capture: deleted rows, rows without the tracking
	// column, and schema changes are not included.
	DumpIncremental(ctx context.Context, since time.Time, w io.Writer) error
}

// DumpError reports a non-zero exit from the external dump tool, carrying
// its diagnostic output.
type DumpError struct {
	Stderr string
	Err    error
}

func (e *DumpError) Error() string {
	if e.Stderr != "" {
		return "mysqldump failed: " + e.Stderr
	}
	return "mysqldump failed: " + e.Err.Error()
}

func (e *DumpError) Unwrap() error {
	return e.Err
}
