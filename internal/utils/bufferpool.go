package utils

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// ReadChunkSize is the size of a single body read
const ReadChunkSize = 32 * 1024

// BufferPool provides pooled byte buffers for line accumulation and body reads.
// Uses bytebufferpool for automatic size-class management and anti-fragmentation
type BufferPool struct {
	pool *bytebufferpool.Pool
}

// Global buffer pool instance
var (
	globalPool     *BufferPool
	globalPoolOnce sync.Once
)

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: &bytebufferpool.Pool{},
	}
}

// Get retrieves an empty buffer from the pool
func (bp *BufferPool) Get() *bytebufferpool.ByteBuffer {
	return bp.pool.Get()
}

// GetSized retrieves a buffer whose B has length n, ready to be read into
func (bp *BufferPool) GetSized(n int) *bytebufferpool.ByteBuffer {
	buf := bp.pool.Get()
	if cap(buf.B) < n {
		buf.B = make([]byte, n)
	} else {
		buf.B = buf.B[:n]
	}
	return buf
}

// Put returns a buffer to the pool. The buffer must not be used afterwards.
func (bp *BufferPool) Put(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	bp.pool.Put(buf)
}

// Global returns the global buffer pool instance
func Global() *BufferPool {
	globalPoolOnce.Do(func() {
		globalPool = NewBufferPool()
	})
	return globalPool
}

// Get is a convenience function that uses the global pool
func Get() *bytebufferpool.ByteBuffer {
	return Global().Get()
}

// GetSized is a convenience function that uses the global pool
func GetSized(n int) *bytebufferpool.ByteBuffer {
	return Global().GetSized(n)
}

// Put is a convenience function that uses the global pool
func Put(buf *bytebufferpool.ByteBuffer) {
	Global().Put(buf)
}
