package stringcol

import (
	"encoding/binary"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/config"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// SizeThresholdBytes returns the maximum total byte size representable
// with 32-bit offsets before a string column switches to 64-bit offsets.
// The default is the maximum signed 32-bit value; the environment
// override is read once, lazily (see config.LargeStringsThresholdEnv).
func SizeThresholdBytes() int64 {
	return config.LargeStringsThreshold()
}

// PreferredOffsetType selects the offset width for a string column whose
// chars data totals totalBytes.
func PreferredOffsetType(totalBytes int64) types.DataType {
	if totalBytes > SizeThresholdBytes() {
		return types.Int64
	}
	return types.Int32
}

// ReadOffsetAt returns the offsets value at index, widened to int64 with
// no clamping. The offsets column must be int32 or int64. Unlike most
// operations here this blocks: the column's stream is synchronized before
// the host-visible read, so a pending device fault surfaces as the error.
func ReadOffsetAt(offsets *column.Column, index int64) (int64, error) {
	if offsets == nil {
		return 0, errors.New(errors.ErrorTypeInvalidArgument, "nil offsets column")
	}
	if !offsets.DType().IsOffsetType() {
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"offsets column must be int32 or int64, got %s", offsets.DType())
	}
	if index < 0 || index >= offsets.Rows() {
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"offset index %d outside %d rows", index, offsets.Rows())
	}

	if err := offsets.Runtime().Stream().Synchronize(); err != nil {
		return 0, err
	}
	return offsetAt(offsets, index), nil
}

// offsetAt decodes one offsets entry. The caller must have synchronized.
func offsetAt(offsets *column.Column, index int64) int64 {
	buf := offsets.Data().Bytes()
	i := offsets.Offset() + index
	if offsets.DType() == types.Int32 {
		return int64(int32(binary.LittleEndian.Uint32(buf[i*4:])))
	}
	return int64(binary.LittleEndian.Uint64(buf[i*8:]))
}
