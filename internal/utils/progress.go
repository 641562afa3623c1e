package utils

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// progressInterval is how many bytes pass between progress callbacks.
const progressInterval = 10 * 1024 * 1024

// ProgressReader wraps an io.Reader and reports cumulative bytes read.
// Uploads wrap their source file with it so long transfers surface
// periodic progress in the logs instead of going silent.
type ProgressReader struct {
	reader   io.Reader
	total    atomic.Int64
	started  time.Time
	onUpdate func(bytesRead int64, elapsed time.Duration)
}

// NewProgressReader returns a reader that invokes onUpdate roughly every
// 10MB of data read. onUpdate may be nil.
func NewProgressReader(reader io.Reader, onUpdate func(bytesRead int64, elapsed time.Duration)) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		started:  time.Now(),
		onUpdate: onUpdate,
	}
}

// Read implements io.Reader.
func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		total := pr.total.Add(int64(n))
		if pr.onUpdate != nil && (total%progressInterval) < int64(n) {
			pr.onUpdate(total, time.Since(pr.started))
		}
	}
	return n, err
}

// BytesRead returns the total number of bytes read so far.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.total.Load()
}

// FormatBytes renders a byte count in human-readable form, e.g. "1.5 GB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatRate renders a transfer rate, e.g. "12.3 MB/s".
func FormatRate(bytesPerSecond float64) string {
	return fmt.Sprintf("%s/s", FormatBytes(int64(bytesPerSecond)))
}
