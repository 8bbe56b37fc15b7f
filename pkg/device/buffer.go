package device

import "sync/atomic"

// Buffer is a refcounted device memory allocation. A new buffer starts
// with one reference; Retain adds one and Release drops one. When the
// last reference is dropped the memory returns to the allocator's pool.
//
// Bytes exposes the host-visible emulated device memory. Reading it is
// only well-defined after the stream that last wrote the buffer has been
// synchronized.
type Buffer struct {
	data  []byte
	size  int64
	alloc *Allocator
	refs  atomic.Int64
}

// Size returns the buffer length in bytes.
func (b *Buffer) Size() int64 {
	return b.size
}

// Bytes returns the buffer contents. The slice aliases device memory and
// is invalid once the buffer is released.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Retain adds a reference and returns the buffer for chaining.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release drops a reference, freeing the buffer when none remain.
// Release on an already-freed buffer panics.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	if n < 0 {
		panic("device: buffer released more times than retained")
	}
	if n == 0 {
		b.alloc.free(b)
	}
}

// Refs returns the current reference count.
func (b *Buffer) Refs() int64 {
	return b.refs.Load()
}
