package device

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gframe-dev/gframe/pkg/config"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/logger"
)

func newTestRuntime(t *testing.T, limit int64) *Runtime {
	t.Helper()
	rt := NewRuntime(config.Runtime{AllocatorLimitBytes: limit})
	t.Cleanup(rt.Close)
	return rt
}

func TestAllocate(t *testing.T) {
	rt := newTestRuntime(t, 0)

	buf, err := rt.Allocator().Allocate(128)
	require.NoError(t, err)
	assert.Equal(t, int64(128), buf.Size())
	assert.Len(t, buf.Bytes(), 128)
	assert.Equal(t, int64(128), rt.Allocator().InUse())

	buf.Release()
	assert.Equal(t, int64(0), rt.Allocator().InUse())
}

func TestAllocateZero(t *testing.T) {
	rt := newTestRuntime(t, 0)

	buf, err := rt.Allocator().Allocate(0)
	require.NoError(t, err)
	require.NotNil(t, buf)
	assert.Equal(t, int64(0), buf.Size())
	assert.NotNil(t, buf.Bytes())
	buf.Release()
}

func TestAllocateNegative(t *testing.T) {
	rt := newTestRuntime(t, 0)

	_, err := rt.Allocator().Allocate(-1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestAllocateLimit(t *testing.T) {
	rt := newTestRuntime(t, 1024)

	buf, err := rt.Allocator().Allocate(1000)
	require.NoError(t, err)

	_, err = rt.Allocator().Allocate(100)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAllocation))

	// Releasing makes room again.
	buf.Release()
	buf2, err := rt.Allocator().Allocate(100)
	require.NoError(t, err)
	buf2.Release()
}

func TestBufferRetainRelease(t *testing.T) {
	rt := newTestRuntime(t, 0)

	buf, err := rt.Allocator().Allocate(64)
	require.NoError(t, err)
	buf.Retain()
	assert.Equal(t, int64(2), buf.Refs())

	buf.Release()
	assert.Equal(t, int64(64), rt.Allocator().InUse(), "still one reference alive")

	buf.Release()
	assert.Equal(t, int64(0), rt.Allocator().InUse())
}

func TestConcurrentAllocation(t *testing.T) {
	rt := newTestRuntime(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf, err := rt.Allocator().Allocate(256)
				if err == nil {
					buf.Release()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), rt.Allocator().InUse())
}

func TestStreamOrdering(t *testing.T) {
	rt := newTestRuntime(t, 0)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		rt.Stream().Enqueue(func() error {
			got = append(got, i)
			return nil
		})
	}
	require.NoError(t, rt.Stream().Synchronize())

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestStreamFaultSurfacesAtSync(t *testing.T) {
	rt := newTestRuntime(t, 0)

	rt.Stream().Enqueue(func() error {
		return errors.New(errors.ErrorTypeInternal, "kernel fault")
	})
	rt.Stream().Enqueue(func() error { return nil })

	err := rt.Stream().Synchronize()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStream))

	// The fault clears once surfaced.
	assert.NoError(t, rt.Stream().Synchronize())
}

func TestBoundaryCross(t *testing.T) {
	rt := newTestRuntime(t, 0)
	b := rt.Boundary()

	b.Acquire()
	crossed := false
	err := b.Cross(func() error {
		// The guard is free while device work runs.
		other := make(chan struct{})
		go func() {
			b.Acquire()
			b.Release()
			close(other)
		}()
		<-other
		crossed = true
		return nil
	})
	b.Release()

	require.NoError(t, err)
	assert.True(t, crossed)
}

func TestNativeTableDetach(t *testing.T) {
	rt := newTestRuntime(t, 0)

	buf, err := rt.Allocator().Allocate(32)
	require.NoError(t, err)

	nt := NewNativeTable(&NativeColumn{Rows: 4, Data: buf})
	assert.Equal(t, 1, nt.Len())

	cols := nt.Detach()
	assert.Len(t, cols, 1)
	assert.Equal(t, 0, nt.Len(), "result is emptied by adoption")

	cols[0].Release()
	assert.Equal(t, int64(0), rt.Allocator().InUse())
}

func TestDefaultRuntime(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestNewRuntimeConfiguresLogging(t *testing.T) {
	rt := NewRuntime(config.Runtime{LogLevel: "debug", LogEncoding: "console"})
	defer rt.Close()

	assert.NotNil(t, logger.Get())

	// An invalid level must not prevent runtime construction.
	rt2 := NewRuntime(config.Runtime{LogLevel: "shouting"})
	defer rt2.Close()
	assert.NotNil(t, rt2.Allocator())
}
