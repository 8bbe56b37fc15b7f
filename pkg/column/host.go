package column

import (
	"encoding/binary"
	"math"

	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// Host readback helpers. Each synchronizes the column's stream before the
// host-visible read, so a pending device fault surfaces here.

// HostInt32s copies the column's values back to the host.
func (c *Column) HostInt32s() ([]int32, error) {
	if err := c.syncForRead(types.Int32); err != nil {
		return nil, err
	}
	buf := c.data.Bytes()
	out := make([]int32, c.rows)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(buf[(c.offset+int64(i))*4:]))
	}
	return out, nil
}

// HostInt64s copies the column's values back to the host.
func (c *Column) HostInt64s() ([]int64, error) {
	if err := c.syncForRead(types.Int64); err != nil {
		return nil, err
	}
	buf := c.data.Bytes()
	out := make([]int64, c.rows)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(buf[(c.offset+int64(i))*8:]))
	}
	return out, nil
}

// HostFloat32s copies the column's values back to the host.
func (c *Column) HostFloat32s() ([]float32, error) {
	if err := c.syncForRead(types.Float32); err != nil {
		return nil, err
	}
	buf := c.data.Bytes()
	out := make([]float32, c.rows)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[(c.offset+int64(i))*4:]))
	}
	return out, nil
}

// HostFloat64s copies the column's values back to the host.
func (c *Column) HostFloat64s() ([]float64, error) {
	if err := c.syncForRead(types.Float64); err != nil {
		return nil, err
	}
	buf := c.data.Bytes()
	out := make([]float64, c.rows)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[(c.offset+int64(i))*8:]))
	}
	return out, nil
}

// HostBool8s copies the column's values back to the host.
func (c *Column) HostBool8s() ([]bool, error) {
	if err := c.syncForRead(types.Bool8); err != nil {
		return nil, err
	}
	buf := c.data.Bytes()
	out := make([]bool, c.rows)
	for i := range out {
		out[i] = buf[c.offset+int64(i)] != 0
	}
	return out, nil
}

// HostBytes copies a raw byte column back to the host.
func (c *Column) HostBytes() ([]byte, error) {
	if err := c.syncForRead(types.Uint8); err != nil {
		return nil, err
	}
	out := make([]byte, c.rows)
	copy(out, c.data.Bytes()[c.offset:])
	return out, nil
}

// HostValidity copies the validity of every row back to the host with a
// single synchronization. A nil validity bitmap yields an all-true slice.
func (c *Column) HostValidity() ([]bool, error) {
	if err := c.rt.Stream().Synchronize(); err != nil {
		return nil, err
	}
	out := make([]bool, c.rows)
	for i := range out {
		out[i] = c.validAt(int64(i))
	}
	return out, nil
}

// NullAt reports whether row i is null, synchronizing first.
func (c *Column) NullAt(i int64) (bool, error) {
	if i < 0 || i >= c.rows {
		return false, errors.Newf(errors.ErrorTypeInvalidArgument, "row %d outside %d rows", i, c.rows)
	}
	if err := c.rt.Stream().Synchronize(); err != nil {
		return false, err
	}
	return !c.validAt(i), nil
}

func (c *Column) syncForRead(want types.DataType) error {
	if c.dtype != want {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"column is %s, not %s", c.dtype, want)
	}
	return c.rt.Stream().Synchronize()
}
