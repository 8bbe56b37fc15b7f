package pool

import (
	"math/bits"
	"sync"
)

// BytePool recycles byte slices in power-of-two size classes. Slices larger
// than the biggest class bypass the pool and fall through to the garbage
// collector; huge device buffers do not benefit from pooling.
type BytePool struct {
	buckets [maxBucket + 1]sync.Pool
}

const (
	// minBucketBits is the smallest pooled size class (256 bytes).
	minBucketBits = 8
	// maxBucketBits is the largest pooled size class (64 MiB).
	maxBucketBits = 26
	maxBucket     = maxBucketBits - minBucketBits
)

// NewBytePool creates an empty byte pool.
func NewBytePool() *BytePool {
	return &BytePool{}
}

// Get returns a zero-length slice with capacity of at least n bytes.
func (p *BytePool) Get(n int64) []byte {
	b := p.bucketFor(n)
	if b < 0 {
		return make([]byte, 0, n)
	}
	if v := p.buckets[b].Get(); v != nil {
		return v.([]byte)[:0]
	}
	return make([]byte, 0, int64(1)<<uint(b+minBucketBits))
}

// Put returns a slice to its size class for reuse. Slices outside the
// pooled size range are dropped.
func (p *BytePool) Put(buf []byte) {
	c := int64(cap(buf))
	if c == 0 {
		return
	}
	// Only exact power-of-two capacities in range are recycled so a Get
	// never hands back less capacity than its class promises.
	if c&(c-1) != 0 {
		return
	}
	b := int(bits.TrailingZeros64(uint64(c))) - minBucketBits
	if b < 0 || b > maxBucket {
		return
	}
	p.buckets[b].Put(buf[:0]) //nolint:staticcheck // SA6002: slice header boxing is the accepted cost
}

// bucketFor returns the smallest size class holding n bytes, or -1 when n
// is outside the pooled range.
func (p *BytePool) bucketFor(n int64) int {
	if n <= 0 || n > int64(1)<<maxBucketBits {
		return -1
	}
	bitsNeeded := bits.Len64(uint64(n - 1))
	if n == 1 {
		bitsNeeded = 1
	}
	if bitsNeeded < minBucketBits {
		bitsNeeded = minBucketBits
	}
	return bitsNeeded - minBucketBits
}
