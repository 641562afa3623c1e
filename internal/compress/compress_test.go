package compress

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "small text",
			data: []byte("INSERT INTO users VALUES (1, 'alice');\n"),
		},
		{
			name: "empty file",
			data: nil,
		},
		{
			name: "larger than copy buffer",
			data: bytes.Repeat([]byte("CREATE TABLE t (id INT);\n"), 8192),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			original := filepath.Join(dir, "full_backup_20250101_000000.sql")
			if err := os.WriteFile(original, tt.data, 0o644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}

			compressed, err := Compress(original)
			if err != nil {
				t.Fatalf("Compress() failed: %v", err)
			}
			if compressed != original+".gz" {
				t.Errorf("Compress() path = %s, want %s", compressed, original+".gz")
			}
			if _, err := os.Stat(original); !os.IsNotExist(err) {
				t.Errorf("original file should be removed after compression")
			}

			restored := filepath.Join(dir, "restored.sql")
			if err := Decompress(compressed, restored); err != nil {
				t.Fatalf("Decompress() failed: %v", err)
			}

			// The source must survive decompression
			if _, err := os.Stat(compressed); err != nil {
				t.Errorf("compressed source should remain after decompression: %v", err)
			}

			got, err := os.ReadFile(restored)
			if err != nil {
				t.Fatalf("failed to read restored file: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(tt.data))
			}
		})
	}
}

func TestDecompressCorruptInput(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "not gzip at all",
			data: []byte("plain sql, no gzip header"),
		},
		{
			name: "truncated stream",
			data: nil, // filled in below from a real compressed file
		},
	}

	// Build a truncated but validly-headed stream
	full := filepath.Join(dir, "full_backup_20250101_000000.sql")
	if err := os.WriteFile(full, []byte(strings.Repeat("x", 4096)), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	compressed, err := Compress(full)
	if err != nil {
		t.Fatalf("Compress() failed: %v", err)
	}
	blob, err := os.ReadFile(compressed)
	if err != nil {
		t.Fatalf("failed to read compressed fixture: %v", err)
	}
	tests[1].data = blob[:len(blob)/2]

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(dir, tt.name+".sql.gz")
			if err := os.WriteFile(src, tt.data, 0o644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}

			dst := filepath.Join(dir, tt.name+".out")
			err := Decompress(src, dst)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Decompress() error = %v, want ErrCorrupt", err)
			}
			if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
				t.Errorf("partial output should be removed on failure")
			}
		})
	}
}

func TestCompressMissingFile(t *testing.T) {
	if _, err := Compress(filepath.Join(t.TempDir(), "nope.sql")); err == nil {
		t.Error("Compress() on missing file should fail")
	}
}
