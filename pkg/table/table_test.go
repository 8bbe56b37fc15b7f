package table

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/compression"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/stringcol"
	"github.com/gframe-dev/gframe/pkg/testutil"
	"github.com/gframe-dev/gframe/pkg/types"
)

func newTestTable(t *testing.T, rt *device.Runtime) *Table {
	t.Helper()

	ints, err := column.NewInt64(rt, []int64{10, 20, 30, 40}, nil)
	require.NoError(t, err)
	floats, err := column.NewFloat64(rt, []float64{1.5, 2.5, 3.5, 4.5}, []bool{true, false, true, true})
	require.NoError(t, err)
	strs, err := stringcol.Build(rt, []string{"alpha", "", "gamma", "delta"}, []bool{true, true, false, true})
	require.NoError(t, err)

	tbl, err := New(rt, ints, floats, strs)
	require.NoError(t, err)
	return tbl
}

func testMeta() []ColumnMetadata {
	return []ColumnMetadata{
		Meta("id"),
		Meta("score"),
		Meta("label", Meta("chars")),
	}
}

func TestNewRejectsNilColumn(t *testing.T) {
	rt := testutil.TestRuntime(t)

	c, err := column.NewInt64(rt, []int64{1}, nil)
	require.NoError(t, err)
	defer c.Release()

	_, err = New(rt, c, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestNewRejectsRowMismatch(t *testing.T) {
	rt := testutil.TestRuntime(t)

	a, err := column.NewInt64(rt, []int64{1, 2}, nil)
	require.NoError(t, err)
	defer a.Release()
	b, err := column.NewInt64(rt, []int64{1, 2, 3}, nil)
	require.NoError(t, err)
	defer b.Release()

	_, err = New(rt, a, b)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))
}

func TestViewMatchesTable(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)
	defer tbl.Release()

	v := tbl.View()
	assert.Equal(t, 3, v.NumColumns())
	assert.Equal(t, int64(4), v.NumRows())
	assert.Equal(t, types.Int64, v.Column(0).DType)
	assert.Equal(t, types.Float64, v.Column(1).DType)
	assert.Equal(t, types.String, v.Column(2).DType)
	assert.Equal(t, int64(1), v.Column(1).NullCount)
}

func TestFromViewOutlivesOwner(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)

	v := tbl.View()
	proj, err := FromView(TableView{Cols: []column.ColumnView{v.Cols[0], v.Cols[2]}}, tbl)
	require.NoError(t, err)
	defer proj.Release()

	assert.Equal(t, column.SharedView, proj.Column(0).Ownership())
	assert.Equal(t, column.SharedView, proj.Column(1).Ownership())

	// Releasing the owner must not invalidate the projection's buffers.
	tbl.Release()

	got, err := proj.Column(0).HostInt64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40}, got)

	strs, valid, err := stringcol.HostStrings(proj.Column(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "", "", "delta"}, strs)
	assert.Equal(t, []bool{true, true, false, true}, valid)
}

func TestFromViewRejectsForeignView(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)
	defer tbl.Release()
	other := newTestTable(t, rt)
	defer other.Release()

	_, err := FromView(other.View(), tbl)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))
}

func TestToArrowMetadataMismatch(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)
	defer tbl.Release()

	_, err := tbl.ToArrow(context.Background(), []ColumnMetadata{Meta("id"), Meta("score")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))

	// The failed export must leave the table readable.
	got, err := tbl.Column(0).HostInt64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40}, got)
}

func TestToArrowStringNeedsChildMeta(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)
	defer tbl.Release()

	_, err := tbl.ToArrow(context.Background(), []ColumnMetadata{Meta("id"), Meta("score"), Meta("label")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))
}

func TestArrowRoundTrip(t *testing.T) {
	rt := testutil.TestRuntime(t)
	tbl := newTestTable(t, rt)
	defer tbl.Release()

	rec, err := tbl.ToArrow(context.Background(), testMeta())
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, []string{"id", "score", "label"}, []string{
		rec.Schema().Field(0).Name,
		rec.Schema().Field(1).Name,
		rec.Schema().Field(2).Name,
	})
	assert.Equal(t, arrow.BinaryTypes.String, rec.Schema().Field(2).Type)

	back, err := FromArrow(context.Background(), rt, rec)
	require.NoError(t, err)
	defer back.Release()

	ints, err := back.Column(0).HostInt64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40}, ints)

	floats, err := back.Column(1).HostFloat64s()
	require.NoError(t, err)
	assert.Equal(t, 1.5, floats[0])
	assert.Equal(t, int64(1), back.Column(1).NullCount())

	strs, valid, err := stringcol.HostStrings(back.Column(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "", "", "delta"}, strs)
	assert.Equal(t, []bool{true, true, false, true}, valid)
}

func TestFromArrowPreservesOffsetWidth(t *testing.T) {
	rt := testutil.TestRuntime(t)
	pool := memory.NewGoAllocator()

	sb := array.NewStringBuilder(pool)
	sb.AppendValues([]string{"a", "bb"}, nil)
	small := sb.NewStringArray()
	sb.Release()
	defer small.Release()

	lb := array.NewLargeStringBuilder(pool)
	lb.AppendValues([]string{"c", "dd"}, nil)
	large := lb.NewLargeStringArray()
	lb.Release()
	defer large.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "small", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "large", Type: arrow.BinaryTypes.LargeString, Nullable: true},
	}, nil)
	rec := array.NewRecord(schema, []arrow.Array{small, large}, 2)
	defer rec.Release()

	tbl, err := FromArrow(context.Background(), rt, rec)
	require.NoError(t, err)
	defer tbl.Release()

	assert.Equal(t, types.Int32, tbl.Column(0).Child(0).DType())
	assert.Equal(t, types.Int64, tbl.Column(1).Child(0).DType())
}

func TestSnapshotRoundTrip(t *testing.T) {
	algos := []compression.Algorithm{
		compression.None,
		compression.Zstd,
		compression.LZ4,
		compression.S2,
		compression.Snappy,
	}
	for _, algo := range algos {
		t.Run(string(algo), func(t *testing.T) {
			rt := testutil.TestRuntime(t)
			tbl := newTestTable(t, rt)
			defer tbl.Release()

			var buf bytes.Buffer
			require.NoError(t, tbl.Serialize(context.Background(), &buf, algo, testMeta()))

			back, meta, err := Deserialize(context.Background(), rt, bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer back.Release()

			require.Len(t, meta, 3)
			assert.Equal(t, "id", meta[0].Name)
			assert.Equal(t, "label", meta[2].Name)

			ints, err := back.Column(0).HostInt64s()
			require.NoError(t, err)
			assert.Equal(t, []int64{10, 20, 30, 40}, ints)

			strs, valid, err := stringcol.HostStrings(back.Column(2))
			require.NoError(t, err)
			assert.Equal(t, []string{"alpha", "", "", "delta"}, strs)
			assert.Equal(t, []bool{true, true, false, true}, valid)
		})
	}
}

func TestDeserializeRejectsOversizedHeaderLengths(t *testing.T) {
	rt := testutil.TestRuntime(t)

	// A corrupt header declaring a huge metadata length must fail before
	// any allocation is attempted.
	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	buf.WriteByte(4)
	buf.WriteString("none")
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	_, _, err := Deserialize(context.Background(), rt, bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))

	// Likewise for the payload length.
	buf.Reset()
	buf.Write(snapshotMagic)
	buf.WriteByte(4)
	buf.WriteString("none")
	buf.Write([]byte{2, 0, 0, 0})
	buf.WriteString("[]")
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	_, _, err = Deserialize(context.Background(), rt, bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	rt := testutil.TestRuntime(t)

	_, _, err := Deserialize(context.Background(), rt, bytes.NewReader([]byte("not a snapshot at all")))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStructureMismatch))
}

func TestMetadataEncodeDecode(t *testing.T) {
	meta := testMeta()
	data, err := EncodeMetadata(meta)
	require.NoError(t, err)

	back, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, meta, back)
	require.Len(t, back[2].Children, 1)
	assert.Equal(t, "chars", back[2].Children[0].Name)
}
