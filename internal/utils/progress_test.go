package utils

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressReader_CountsBytes(t *testing.T) {
	src := strings.NewReader(strings.Repeat("x", 1000))
	pr := NewProgressReader(src, nil)

	n, err := io.Copy(io.Discard, pr)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if n != 1000 {
		t.Errorf("copied %d bytes, want 1000", n)
	}
	if pr.BytesRead() != 1000 {
		t.Errorf("BytesRead() = %d, want 1000", pr.BytesRead())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %s, want %s", tt.bytes, got, tt.want)
		}
	}
}

func TestBufferPool_RoundTrip(t *testing.T) {
	pool := NewBufferPool(64)

	buf := pool.Get()
	if len(buf) != 64 {
		t.Fatalf("Get() returned %d bytes, want 64", len(buf))
	}
	pool.Put(buf)

	again := pool.Get()
	if len(again) != 64 {
		t.Errorf("Get() after Put() returned %d bytes, want 64", len(again))
	}
}

func TestBufferPool_RejectsWrongSize(t *testing.T) {
	pool := NewBufferPool(64)
	pool.Put(make([]byte, 16))

	if got := pool.Get(); len(got) != 64 {
		t.Errorf("pool handed out %d-byte buffer after foreign Put", len(got))
	}
}

func TestBufferPool_CopyUsable(t *testing.T) {
	pool := NewBufferPool(8)
	buf := pool.Get()
	defer pool.Put(buf)

	var dst bytes.Buffer
	if _, err := io.CopyBuffer(&dst, strings.NewReader("hello world"), buf); err != nil {
		t.Fatalf("CopyBuffer failed: %v", err)
	}
	if dst.String() != "hello world" {
		t.Errorf("copied %q", dst.String())
	}
}
