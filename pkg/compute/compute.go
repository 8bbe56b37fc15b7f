// Package compute is the interface boundary to the device compute
// library. It exposes the two primitives the table constructors need,
// a deep copy and a contiguous row gather, both producing native
// results for adoption with table.FromDeviceResult. Kernel internals
// live behind this boundary.
package compute

import (
	"context"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/observability"
	"github.com/gframe-dev/gframe/pkg/table"
)

// Copy deep-copies every column window the view describes into freshly
// allocated device memory, returning an owning native result. The copy
// work runs on the runtime's stream after any pending writes to the
// source buffers and is settled before returning, so the source may be
// released once the result is in hand.
func Copy(ctx context.Context, rt *device.Runtime, v table.TableView) (*device.NativeTable, error) {
	_, end := observability.StartSpan(ctx, "compute.Copy",
		observability.IntAttr("columns", v.NumColumns()),
		observability.Int64Attr("rows", v.NumRows()))

	if rt == nil {
		rt = device.Default()
	}

	b := rt.Boundary()
	b.Acquire()
	defer b.Release()

	var res *device.NativeTable
	err := b.Cross(func() error {
		cols := make([]*device.NativeColumn, 0, v.NumColumns())
		for _, cv := range v.Cols {
			nc, err := copyColumn(rt, cv)
			if err != nil {
				for _, c := range cols {
					c.Release()
				}
				return err
			}
			cols = append(cols, nc)
		}

		// Settle the copies so the caller may free the source as soon
		// as the result is in hand.
		if err := rt.Stream().Synchronize(); err != nil {
			for _, c := range cols {
				c.Release()
			}
			return err
		}
		res = device.NewNativeTable(cols...)
		return nil
	})
	if err != nil {
		end(err)
		return nil, err
	}
	end(nil)
	return res, nil
}

// Gather copies a contiguous row window out of the view into an owning
// native result. Fixed-width columns only; gathering a string column is
// rejected because its rows are not addressable by a fixed stride.
func Gather(ctx context.Context, rt *device.Runtime, v table.TableView, rowStart, rowCount int64) (*device.NativeTable, error) {
	_, end := observability.StartSpan(ctx, "compute.Gather",
		observability.Int64Attr("row_start", rowStart),
		observability.Int64Attr("row_count", rowCount))

	if rt == nil {
		rt = device.Default()
	}

	if rowStart < 0 || rowCount < 0 || rowStart+rowCount > v.NumRows() {
		err := errors.Newf(errors.ErrorTypeInvalidArgument,
			"window [%d, %d) outside %d rows", rowStart, rowStart+rowCount, v.NumRows())
		end(err)
		return nil, err
	}
	for i, cv := range v.Cols {
		if !cv.DType.IsFixedWidth() {
			err := errors.Newf(errors.ErrorTypeInvalidArgument,
				"column %d is %s, gather supports fixed-width columns only", i, cv.DType)
			end(err)
			return nil, err
		}
	}

	b := rt.Boundary()
	b.Acquire()
	defer b.Release()

	var res *device.NativeTable
	err := b.Cross(func() error {
		cols := make([]*device.NativeColumn, 0, v.NumColumns())
		release := func() {
			for _, c := range cols {
				c.Release()
			}
		}
		for _, cv := range v.Cols {
			window := cv
			window.Offset += rowStart
			window.Rows = rowCount
			window.NullCount = 0
			nc, err := copyColumn(rt, window)
			if err != nil {
				release()
				return err
			}
			cols = append(cols, nc)
		}

		// Null counts of an arbitrary window are not known up front;
		// settle the copies and count from the gathered bitmaps.
		if err := rt.Stream().Synchronize(); err != nil {
			release()
			return err
		}
		for _, nc := range cols {
			if nc.Validity != nil {
				nc.NullCount = countClearBits(nc.Validity.Bytes(), nc.Rows)
			}
		}
		res = device.NewNativeTable(cols...)
		return nil
	})
	if err != nil {
		end(err)
		return nil, err
	}
	end(nil)
	return res, nil
}

// copyColumn allocates destination buffers for one column window and
// enqueues the copies, recursing into children. On error any buffers
// already allocated for this column are released.
func copyColumn(rt *device.Runtime, cv column.ColumnView) (*device.NativeColumn, error) {
	nc := &device.NativeColumn{DType: cv.DType, Rows: cv.Rows, NullCount: cv.NullCount}

	if cv.Data != nil {
		width := cv.DType.Width()
		dst, err := rt.Allocator().Allocate(cv.Rows * width)
		if err != nil {
			return nil, err
		}
		src, off := cv.Data, cv.Offset*width
		n := cv.Rows * width
		rt.Stream().Enqueue(func() error {
			copy(dst.Bytes(), src.Bytes()[off:off+n])
			return nil
		})
		nc.Data = dst
	}

	if cv.Validity != nil {
		dst, err := rt.Allocator().Allocate((cv.Rows + 7) / 8)
		if err != nil {
			nc.Release()
			return nil, err
		}
		src, off, rows := cv.Validity, cv.Offset, cv.Rows
		rt.Stream().Enqueue(func() error {
			out := dst.Bytes()
			in := src.Bytes()
			// Recycled buffers arrive non-zeroed; clear before setting bits.
			for i := range out {
				out[i] = 0
			}
			for i := int64(0); i < rows; i++ {
				bit := off + i
				if in[bit>>3]&(1<<uint(bit&7)) != 0 {
					out[i>>3] |= 1 << uint(i&7)
				}
			}
			return nil
		})
		nc.Validity = dst
	}

	for _, child := range cv.Children {
		nchild, err := copyColumn(rt, child)
		if err != nil {
			nc.Release()
			return nil, err
		}
		nc.Children = append(nc.Children, nchild)
	}
	return nc, nil
}

func countClearBits(bitmap []byte, rows int64) int64 {
	var nulls int64
	for i := int64(0); i < rows; i++ {
		if bitmap[i>>3]&(1<<uint(i&7)) == 0 {
			nulls++
		}
	}
	return nulls
}
