package table

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/metrics"
	"github.com/gframe-dev/gframe/pkg/observability"
	"github.com/gframe-dev/gframe/pkg/stringcol"
	"github.com/gframe-dev/gframe/pkg/types"
)

// ToArrow converts the table to an Arrow record using the caller-supplied
// per-column metadata. The metadata sequence must carry exactly one entry
// per top-level column, with one child entry for each string column's
// character data; any shape mismatch fails with a structure-mismatch
// error and leaves the table unmodified.
//
// The conversion synchronizes the table's stream and runs with the
// device-boundary guard released. The returned record's fixed-width and
// string buffers alias the table's device memory: serialize or copy it
// before releasing the table.
func (t *Table) ToArrow(ctx context.Context, meta []ColumnMetadata) (arrow.Record, error) {
	_, end := observability.StartSpan(ctx, "table.ToArrow",
		observability.IntAttr("columns", t.NumColumns()),
		observability.Int64Attr("rows", t.NumRows()))

	b := t.rt.Boundary()
	b.Acquire()
	defer b.Release()

	if err := validateMetadata(t.cols, meta); err != nil {
		metrics.InterchangeExports.WithLabelValues(metrics.StatusError).Inc()
		end(err)
		return nil, err
	}

	var rec arrow.Record
	err := b.Cross(func() error {
		if err := t.rt.Stream().Synchronize(); err != nil {
			return err
		}

		arrs := make([]arrow.Array, len(t.cols))
		fields := make([]arrow.Field, len(t.cols))
		for i, c := range t.cols {
			arr, err := exportColumn(c)
			if err != nil {
				return err
			}
			arrs[i] = arr
			fields[i] = arrow.Field{Name: meta[i].Name, Type: arr.DataType(), Nullable: true}
		}

		schema := arrow.NewSchema(fields, nil)
		rec = array.NewRecord(schema, arrs, t.NumRows())
		for _, arr := range arrs {
			arr.Release()
		}
		return nil
	})
	if err != nil {
		metrics.InterchangeExports.WithLabelValues(metrics.StatusError).Inc()
		end(err)
		return nil, err
	}

	metrics.InterchangeExports.WithLabelValues(metrics.StatusOK).Inc()
	end(nil)
	return rec, nil
}

// FromArrow imports an Arrow record, producing one owning column per
// record column in order, including recursive import of string children.
// String and LargeString columns land with 32-bit and 64-bit offsets
// respectively, preserving the source representation.
func FromArrow(ctx context.Context, rt *device.Runtime, rec arrow.Record) (*Table, error) {
	_, end := observability.StartSpan(ctx, "table.FromArrow",
		observability.Int64Attr("rows", rec.NumRows()))

	if rt == nil {
		rt = device.Default()
	}

	cols := make([]*column.Column, 0, rec.NumCols())
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}
	for i := 0; i < int(rec.NumCols()); i++ {
		c, err := importColumn(rt, rec.Column(i))
		if err != nil {
			release()
			metrics.InterchangeImports.WithLabelValues(metrics.StatusError).Inc()
			end(err)
			return nil, err
		}
		cols = append(cols, c)
	}

	tbl, err := New(rt, cols...)
	if err != nil {
		release()
		metrics.InterchangeImports.WithLabelValues(metrics.StatusError).Inc()
		end(err)
		return nil, err
	}

	metrics.InterchangeImports.WithLabelValues(metrics.StatusOK).Inc()
	end(nil)
	return tbl, nil
}

// exportColumn builds one Arrow array aliasing the column's device
// buffers. The caller must have synchronized the stream.
func exportColumn(c *column.Column) (arrow.Array, error) {
	switch c.DType() {
	case types.String:
		return exportStringColumn(c)
	case types.Bool8:
		return exportBoolColumn(c)
	default:
		return exportFixedColumn(c)
	}
}

func exportFixedColumn(c *column.Column) (arrow.Array, error) {
	dt, err := arrowFixedType(c.DType())
	if err != nil {
		return nil, err
	}

	buffers := []*memory.Buffer{validityBuffer(c), memory.NewBufferBytes(c.Data().Bytes())}
	data := array.NewData(dt, int(c.Rows()), buffers, nil, int(c.NullCount()), int(c.Offset()))
	defer data.Release()
	return array.MakeFromData(data), nil
}

func exportStringColumn(c *column.Column) (arrow.Array, error) {
	if len(c.Children()) != 2 {
		return nil, errors.Newf(errors.ErrorTypeStructureMismatch,
			"string column must carry offsets and chars children, got %d", len(c.Children()))
	}
	offsets, chars := c.Child(0), c.Child(1)

	var dt arrow.DataType
	switch offsets.DType() {
	case types.Int32:
		dt = arrow.BinaryTypes.String
	case types.Int64:
		dt = arrow.BinaryTypes.LargeString
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"offsets column must be int32 or int64, got %s", offsets.DType())
	}

	buffers := []*memory.Buffer{
		validityBuffer(c),
		memory.NewBufferBytes(offsets.Data().Bytes()),
		memory.NewBufferBytes(chars.Data().Bytes()),
	}
	data := array.NewData(dt, int(c.Rows()), buffers, nil, int(c.NullCount()), 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// exportBoolColumn repacks byte-per-row booleans into Arrow's bit-packed
// layout; this one export copies.
func exportBoolColumn(c *column.Column) (arrow.Array, error) {
	bldr := array.NewBooleanBuilder(memory.NewGoAllocator())
	defer bldr.Release()

	buf := c.Data().Bytes()
	for i := int64(0); i < c.Rows(); i++ {
		bit := c.Offset() + i
		if c.Validity() != nil && c.Validity().Bytes()[bit>>3]&(1<<uint(bit&7)) == 0 {
			bldr.AppendNull()
			continue
		}
		bldr.Append(buf[c.Offset()+i] != 0)
	}
	return bldr.NewBooleanArray(), nil
}

func validityBuffer(c *column.Column) *memory.Buffer {
	if c.Validity() == nil {
		return nil
	}
	return memory.NewBufferBytes(c.Validity().Bytes())
}

func arrowFixedType(t types.DataType) (arrow.DataType, error) {
	switch t {
	case types.Uint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case types.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case types.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case types.Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case types.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"type %s has no interchange mapping", t)
	}
}

// importColumn copies one Arrow array into an owning device column.
func importColumn(rt *device.Runtime, arr arrow.Array) (*column.Column, error) {
	valid := importValidity(arr)

	switch a := arr.(type) {
	case *array.Int32:
		values := make([]int32, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewInt32(rt, values, valid)
	case *array.Int64:
		values := make([]int64, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewInt64(rt, values, valid)
	case *array.Float32:
		values := make([]float32, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewFloat32(rt, values, valid)
	case *array.Float64:
		values := make([]float64, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewFloat64(rt, values, valid)
	case *array.Boolean:
		values := make([]bool, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewBool8(rt, values, valid)
	case *array.Uint8:
		if a.NullN() != 0 {
			return nil, errors.New(errors.ErrorTypeInvalidArgument,
				"uint8 columns with nulls are not importable")
		}
		values := make([]byte, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.NewUint8(rt, values)
	case *array.String:
		values := make([]string, a.Len())
		for i := range values {
			if valid == nil || valid[i] {
				values[i] = a.Value(i)
			}
		}
		return stringcol.BuildWithOffsetType(rt, values, valid, types.Int32)
	case *array.LargeString:
		values := make([]string, a.Len())
		for i := range values {
			if valid == nil || valid[i] {
				values[i] = a.Value(i)
			}
		}
		return stringcol.BuildWithOffsetType(rt, values, valid, types.Int64)
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"interchange type %s is not importable", arr.DataType())
	}
}

func importValidity(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	valid := make([]bool, arr.Len())
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}
	return valid
}
