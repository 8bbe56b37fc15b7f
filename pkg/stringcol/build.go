package stringcol

import (
	"encoding/binary"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// Build constructs an owned string column from host values. The offset
// width follows PreferredOffsetType for the total byte size. The valid
// slice marks valid rows; nil means no nulls. Null rows contribute no
// bytes and repeat the previous offset.
func Build(rt *device.Runtime, values []string, valid []bool) (*column.Column, error) {
	var total int64
	for i, v := range values {
		if valid == nil || i >= len(valid) || valid[i] {
			total += int64(len(v))
		}
	}
	return BuildWithOffsetType(rt, values, valid, PreferredOffsetType(total))
}

// BuildWithOffsetType constructs an owned string column with an explicit
// offset width, regardless of the large-strings threshold. Interchange
// import uses it to preserve the width of the source representation.
func BuildWithOffsetType(rt *device.Runtime, values []string, valid []bool, offType types.DataType) (*column.Column, error) {
	rows := int64(len(values))
	if valid != nil && int64(len(valid)) != rows {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"validity length %d does not match %d rows", len(valid), rows)
	}
	if !offType.IsOffsetType() {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"offsets column must be int32 or int64, got %s", offType)
	}

	var total int64
	for i, v := range values {
		if valid == nil || valid[i] {
			total += int64(len(v))
		}
	}
	offsetsBuf, err := rt.Allocator().Allocate((rows + 1) * offType.Width())
	if err != nil {
		return nil, err
	}

	chars, err := AllocateChars(rt, total)
	if err != nil {
		offsetsBuf.Release()
		return nil, err
	}

	rt.Stream().Enqueue(func() error {
		off := offsetsBuf.Bytes()
		data := chars.Data().Bytes()
		var pos int64
		putOffset(off, offType, 0, pos)
		for i, v := range values {
			if valid == nil || valid[i] {
				copy(data[pos:], v)
				pos += int64(len(v))
			}
			putOffset(off, offType, int64(i)+1, pos)
		}
		return nil
	})

	validity, nullCount, err := column.BuildValidity(rt, valid)
	if err != nil {
		offsetsBuf.Release()
		chars.Release()
		return nil, err
	}

	offsets := column.New(rt, offType, rows+1, offsetsBuf, nil, 0)
	return column.New(rt, types.String, rows, nil, validity, nullCount, offsets, chars), nil
}

func putOffset(buf []byte, offType types.DataType, index, value int64) {
	if offType == types.Int32 {
		binary.LittleEndian.PutUint32(buf[index*4:], uint32(value))
		return
	}
	binary.LittleEndian.PutUint64(buf[index*8:], uint64(value))
}

// HostStrings copies a string column back to the host, returning the
// values and a per-row validity slice.
func HostStrings(col *column.Column) ([]string, []bool, error) {
	if err := validateStringsColumn(col); err != nil {
		return nil, nil, err
	}
	if err := col.Runtime().Stream().Synchronize(); err != nil {
		return nil, nil, err
	}

	valid, err := col.HostValidity()
	if err != nil {
		return nil, nil, err
	}

	offsets := col.Child(0)
	chars := col.Child(1).Data().Bytes()
	values := make([]string, col.Rows())
	for i := int64(0); i < col.Rows(); i++ {
		if !valid[i] {
			continue
		}
		start, end := offsetAt(offsets, i), offsetAt(offsets, i+1)
		values[i] = string(chars[start:end])
	}
	return values, valid, nil
}

func validateStringsColumn(col *column.Column) error {
	if col == nil || col.DType() != types.String {
		return errors.New(errors.ErrorTypeInvalidArgument, "not a string column")
	}
	if len(col.Children()) != 2 {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"string column must carry offsets and chars children, got %d", len(col.Children()))
	}
	offsets := col.Child(0)
	if !offsets.DType().IsOffsetType() {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"offsets column must be int32 or int64, got %s", offsets.DType())
	}
	if offsets.Rows() != col.Rows()+1 {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"offsets column has %d rows, want %d", offsets.Rows(), col.Rows()+1)
	}
	return nil
}
