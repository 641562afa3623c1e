// Package utils holds small helpers shared across the backup tool.
package utils

import "sync"

// BufferPool recycles fixed-size byte slices for streaming copies. Dump and
// compression passes move whole-database payloads, so avoiding a fresh
// allocation per copy keeps GC pressure flat during large backups.
type BufferPool struct {
	pool sync.Pool
	size int
}

type pooledBuffer struct {
	b []byte
}

// NewBufferPool returns a pool handing out buffers of bufferSize bytes.
func NewBufferPool(bufferSize int) *BufferPool {
	return &BufferPool{
		size: bufferSize,
		pool: sync.Pool{
			New: func() interface{} {
				return &pooledBuffer{b: make([]byte, bufferSize)}
			},
		},
	}
}

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() []byte {
	buf := p.pool.Get().(*pooledBuffer)
	return buf.b[:p.size]
}

// Put returns a buffer to the pool. Buffers of a different capacity are
// dropped so the pool never hands out a short slice.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) == p.size {
		p.pool.Put(&pooledBuffer{b: buf})
	}
}

// DefaultBufferPool is shared by the compression and upload paths. 32KB
// matches the io.Copy internal buffer size.
var DefaultBufferPool = NewBufferPool(32 * 1024)
