package device

import (
	"sync/atomic"

	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/logger"
	"github.com/gframe-dev/gframe/pkg/metrics"
	"github.com/gframe-dev/gframe/pkg/pool"
)

// Allocator hands out device buffers. It is safe for concurrent use from
// multiple host threads. Released memory returns to a size-bucketed pool.
type Allocator struct {
	limit int64 // 0 means unlimited
	inUse atomic.Int64
	pool  *pool.BytePool
}

// NewAllocator creates an allocator with an optional byte limit. A zero
// limit disables the cap.
func NewAllocator(limitBytes int64) *Allocator {
	return &Allocator{
		limit: limitBytes,
		pool:  pool.NewBytePool(),
	}
}

// Allocate returns an uninitialized buffer of exactly n bytes. n == 0 is
// valid and yields an empty, non-nil buffer. Exhaustion surfaces as an
// allocation error; the contents of a fresh buffer are unspecified until
// written.
func (a *Allocator) Allocate(n int64) (*Buffer, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "negative allocation size %d", n)
	}

	if a.limit > 0 {
		if a.inUse.Add(n) > a.limit {
			a.inUse.Add(-n)
			metrics.DeviceAllocationFailures.Inc()
			logger.Error("device allocation failed",
				logger.ByteSize(n),
				logger.BytesInUse(a.inUse.Load()))
			return nil, errors.Newf(errors.ErrorTypeAllocation,
				"out of device memory: requested %d bytes, limit %d", n, a.limit).
				WithDetail("in_use", a.inUse.Load())
		}
	} else {
		a.inUse.Add(n)
	}

	buf := &Buffer{
		data:  a.pool.Get(n)[:n],
		size:  n,
		alloc: a,
	}
	buf.refs.Store(1)

	metrics.DeviceAllocations.Inc()
	metrics.DeviceBytesInUse.Add(float64(n))
	return buf, nil
}

// InUse returns the bytes currently held by live buffers.
func (a *Allocator) InUse() int64 {
	return a.inUse.Load()
}

func (a *Allocator) free(b *Buffer) {
	a.pool.Put(b.data)
	b.data = nil
	a.inUse.Add(-b.size)
	metrics.DeviceReleases.Inc()
	metrics.DeviceBytesInUse.Sub(float64(b.size))
}
