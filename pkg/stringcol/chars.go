package stringcol

import (
	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// AllocateChars allocates the chars child column for a string column: an
// uninitialized byte column of exactly byteCount bytes, to be filled by
// the caller. Ownership transfers to the caller. byteCount zero is valid
// and yields an empty, non-null buffer; sizes past the 32-bit range are
// supported to back 64-bit-offset columns.
func AllocateChars(rt *device.Runtime, byteCount int64) (*column.Column, error) {
	if byteCount < 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"negative chars size %d", byteCount)
	}
	buf, err := rt.Allocator().Allocate(byteCount)
	if err != nil {
		return nil, err
	}
	return column.New(rt, types.Uint8, byteCount, buf, nil, 0), nil
}
