package column

import (
	"encoding/binary"
	"math"

	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// Host-side construction helpers. Each builder allocates device buffers
// and enqueues the host-to-device copy on the runtime's stream; the data
// is device-visible once the stream synchronizes. The valid slice marks
// valid rows; nil means no nulls.

// NewInt32 builds an owned int32 column from host values.
func NewInt32(rt *device.Runtime, values []int32, valid []bool) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)) * 4)
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		buf := data.Bytes()
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		}
		return nil
	})
	return withValidity(rt, types.Int32, int64(len(values)), data, valid)
}

// NewInt64 builds an owned int64 column from host values.
func NewInt64(rt *device.Runtime, values []int64, valid []bool) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)) * 8)
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		buf := data.Bytes()
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
		return nil
	})
	return withValidity(rt, types.Int64, int64(len(values)), data, valid)
}

// NewFloat32 builds an owned float32 column from host values.
func NewFloat32(rt *device.Runtime, values []float32, valid []bool) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)) * 4)
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		buf := data.Bytes()
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		return nil
	})
	return withValidity(rt, types.Float32, int64(len(values)), data, valid)
}

// NewFloat64 builds an owned float64 column from host values.
func NewFloat64(rt *device.Runtime, values []float64, valid []bool) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)) * 8)
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		buf := data.Bytes()
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
		return nil
	})
	return withValidity(rt, types.Float64, int64(len(values)), data, valid)
}

// NewBool8 builds an owned bool8 column from host values.
func NewBool8(rt *device.Runtime, values []bool, valid []bool) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)))
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		buf := data.Bytes()
		for i, v := range values {
			if v {
				buf[i] = 1
			} else {
				buf[i] = 0
			}
		}
		return nil
	})
	return withValidity(rt, types.Bool8, int64(len(values)), data, valid)
}

// NewUint8 builds an owned raw byte column, the shape chars buffers take.
func NewUint8(rt *device.Runtime, values []byte) (*Column, error) {
	data, err := rt.Allocator().Allocate(int64(len(values)))
	if err != nil {
		return nil, err
	}
	rt.Stream().Enqueue(func() error {
		copy(data.Bytes(), values)
		return nil
	})
	return New(rt, types.Uint8, int64(len(values)), data, nil, 0), nil
}

func withValidity(rt *device.Runtime, dtype types.DataType, rows int64, data *device.Buffer, valid []bool) (*Column, error) {
	if valid == nil {
		return New(rt, dtype, rows, data, nil, 0), nil
	}
	if int64(len(valid)) != rows {
		data.Release()
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"validity length %d does not match %d rows", len(valid), rows)
	}

	bitmap, nullCount, err := BuildValidity(rt, valid)
	if err != nil {
		data.Release()
		return nil, err
	}
	return New(rt, dtype, rows, data, bitmap, nullCount), nil
}

// BuildValidity allocates an Arrow-layout validity bitmap from a host
// validity slice and returns it with its null count. A nil bitmap is
// returned when every row is valid.
func BuildValidity(rt *device.Runtime, valid []bool) (*device.Buffer, int64, error) {
	var nullCount int64
	for _, ok := range valid {
		if !ok {
			nullCount++
		}
	}
	if nullCount == 0 {
		return nil, 0, nil
	}

	bitmap, err := rt.Allocator().Allocate(int64(len(valid)+7) / 8)
	if err != nil {
		return nil, 0, err
	}
	rt.Stream().Enqueue(func() error {
		buf := bitmap.Bytes()
		for i := range buf {
			buf[i] = 0
		}
		for i, ok := range valid {
			if ok {
				buf[i>>3] |= 1 << uint(i&7)
			}
		}
		return nil
	})
	return bitmap, nullCount, nil
}
