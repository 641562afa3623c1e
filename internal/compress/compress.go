// Package compress applies the reversible gzip transform used for backup
// artifacts. Both directions stream through a fixed-size buffer so memory
// stays bounded regardless of artifact size.
package compress

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/imedwei/mysql-pitr-backup/internal/utils"
)

// Suffix is the filename suffix marking a compressed artifact.
const Suffix = ".gz"

// ErrCorrupt indicates the compressed input is truncated or damaged.
var ErrCorrupt = errors.New("corrupt compressed artifact")

// Compress writes a gzip compressed copy of path with the .gz suffix
// appended, removes the original file, and returns the new path.
func Compress(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = src.Close()
	}()

	compressedPath := path + Suffix
	dst, err := os.Create(compressedPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", compressedPath, err)
	}

	gw := gzip.NewWriter(dst)
	if err := copyWithPool(gw, src); err != nil {
		_ = gw.Close()
		_ = dst.Close()
		_ = os.Remove(compressedPath)
		return "", fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := gw.Close(); err != nil {
		_ = dst.Close()
		_ = os.Remove(compressedPath)
		return "", fmt.Errorf("failed to finalize compression of %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(compressedPath)
		return "", fmt.Errorf("failed to close %s: %w", compressedPath, err)
	}

	// The compressed copy is complete; drop the original.
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove original %s: %w", path, err)
	}

	return compressedPath, nil
}

// Decompress streams the gzip file at src into an uncompressed copy at dst,
// leaving src untouched. A partial dst is removed on failure.
func Decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return codecError(src, err)
	}
	defer func() {
		_ = gr.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if err := copyWithPool(out, gr); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return codecError(src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	return nil
}

// codecError maps gzip stream failures onto ErrCorrupt so callers can
// distinguish a damaged artifact from filesystem trouble.
func codecError(path string, err error) error {
	if errors.Is(err, gzip.ErrHeader) || errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return fmt.Errorf("failed to decompress %s: %w", path, err)
}

func copyWithPool(dst io.Writer, src io.Reader) error {
	buf := utils.DefaultBufferPool.Get()
	defer utils.DefaultBufferPool.Put(buf)

	_, err := io.CopyBuffer(dst, src, buf)
	return err
}
