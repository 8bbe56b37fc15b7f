package stringcol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/config"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

func newTestRuntime(t *testing.T) *device.Runtime {
	t.Helper()
	rt := device.NewRuntime(config.Runtime{})
	t.Cleanup(rt.Close)
	return rt
}

func TestSizeThresholdDefault(t *testing.T) {
	config.ResetLargeStringsThreshold()
	t.Cleanup(config.ResetLargeStringsThreshold)

	assert.Equal(t, int64(math.MaxInt32), SizeThresholdBytes())
}

func TestSizeThresholdOverride(t *testing.T) {
	config.ResetLargeStringsThreshold()
	t.Cleanup(config.ResetLargeStringsThreshold)
	t.Setenv(config.LargeStringsThresholdEnv, "100")

	assert.Equal(t, int64(100), SizeThresholdBytes())
}

func TestPreferredOffsetTypeFlipsAtThreshold(t *testing.T) {
	config.ResetLargeStringsThreshold()
	t.Cleanup(config.ResetLargeStringsThreshold)
	t.Setenv(config.LargeStringsThresholdEnv, "100")

	assert.Equal(t, types.Int32, PreferredOffsetType(99))
	assert.Equal(t, types.Int32, PreferredOffsetType(100))
	assert.Equal(t, types.Int64, PreferredOffsetType(101))
}

func TestAllocateCharsZero(t *testing.T) {
	rt := newTestRuntime(t)

	chars, err := AllocateChars(rt, 0)
	require.NoError(t, err)
	defer chars.Release()

	assert.Equal(t, types.Uint8, chars.DType())
	assert.Equal(t, int64(0), chars.Rows())
	require.NotNil(t, chars.Data())
	assert.NotNil(t, chars.Data().Bytes())
}

func TestAllocateCharsExactSize(t *testing.T) {
	rt := newTestRuntime(t)

	chars, err := AllocateChars(rt, 1000)
	require.NoError(t, err)
	defer chars.Release()

	assert.Equal(t, int64(1000), chars.Data().Size())
}

func TestAllocateCharsBeyond32Bit(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates more than 2 GiB")
	}
	rt := newTestRuntime(t)

	n := int64(math.MaxInt32) + 8
	chars, err := AllocateChars(rt, n)
	require.NoError(t, err)
	defer chars.Release()

	assert.Equal(t, n, chars.Data().Size())
}

func TestAllocateCharsNegative(t *testing.T) {
	rt := newTestRuntime(t)

	_, err := AllocateChars(rt, -1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestReadOffsetAt(t *testing.T) {
	rt := newTestRuntime(t)

	// 3 rows, middle row empty: offsets [0, 3, 3, 10].
	offsets, err := column.NewInt64(rt, []int64{0, 3, 3, 10}, nil)
	require.NoError(t, err)
	defer offsets.Release()

	got, err := ReadOffsetAt(offsets, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)

	got, err = ReadOffsetAt(offsets, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestReadOffsetAtInt32(t *testing.T) {
	rt := newTestRuntime(t)

	offsets, err := column.NewInt32(rt, []int32{0, 5, 9}, nil)
	require.NoError(t, err)
	defer offsets.Release()

	got, err := ReadOffsetAt(offsets, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)
}

func TestReadOffsetAtRejectsNonIntegerTypes(t *testing.T) {
	rt := newTestRuntime(t)

	floats, err := column.NewFloat64(rt, []float64{0, 1}, nil)
	require.NoError(t, err)
	defer floats.Release()

	_, err = ReadOffsetAt(floats, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestReadOffsetAtBounds(t *testing.T) {
	rt := newTestRuntime(t)

	offsets, err := column.NewInt32(rt, []int32{0, 1}, nil)
	require.NoError(t, err)
	defer offsets.Release()

	_, err = ReadOffsetAt(offsets, 2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
	_, err = ReadOffsetAt(offsets, -1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestBuildRoundTrip(t *testing.T) {
	rt := newTestRuntime(t)

	values := []string{"hello", "", "world", "x"}
	valid := []bool{true, true, false, true}
	col, err := Build(rt, values, valid)
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, types.String, col.DType())
	assert.Equal(t, int64(4), col.Rows())
	assert.Equal(t, int64(1), col.NullCount())
	require.Len(t, col.Children(), 2)
	assert.Equal(t, types.Int32, col.Child(0).DType())
	assert.Equal(t, int64(6), col.Child(1).Rows(), "null row contributes no bytes")

	got, gotValid, err := HostStrings(col)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "", "", "x"}, got)
	assert.Equal(t, valid, gotValid)
}

func TestBuildSwitchesTo64BitOffsets(t *testing.T) {
	config.ResetLargeStringsThreshold()
	t.Cleanup(config.ResetLargeStringsThreshold)
	t.Setenv(config.LargeStringsThresholdEnv, "8")

	rt := newTestRuntime(t)

	col, err := Build(rt, []string{"0123456789"}, nil)
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, types.Int64, col.Child(0).DType())

	last, err := ReadOffsetAt(col.Child(0), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), last, "final offset equals chars size")
}

func TestMaterialize(t *testing.T) {
	rt := newTestRuntime(t)

	col, err := Build(rt, []string{"abc", "", "xy"}, []bool{true, true, false})
	require.NoError(t, err)
	defer col.Release()

	views, err := Materialize(col)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "abc", views[0].String())
	assert.False(t, views[0].IsNull())

	// Empty but non-null is distinguishable from null.
	assert.False(t, views[1].IsNull())
	assert.Equal(t, 0, views[1].Len())
	assert.NotNil(t, views[1].Bytes())

	assert.True(t, views[2].IsNull())
	assert.Equal(t, 0, views[2].Len())
	assert.Nil(t, views[2].Bytes())
}

func TestMaterializeAliasesCharsBuffer(t *testing.T) {
	rt := newTestRuntime(t)

	col, err := Build(rt, []string{"abcdef"}, nil)
	require.NoError(t, err)
	defer col.Release()

	views, err := Materialize(col)
	require.NoError(t, err)

	chars := col.Child(1).Data().Bytes()
	assert.Equal(t, &chars[0], &views[0].Bytes()[0], "descriptor aliases chars storage")
}

func TestMaterializeRejectsNonStringColumn(t *testing.T) {
	rt := newTestRuntime(t)

	ints, err := column.NewInt64(rt, []int64{1}, nil)
	require.NoError(t, err)
	defer ints.Release()

	_, err = Materialize(ints)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}
