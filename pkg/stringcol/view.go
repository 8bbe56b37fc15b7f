package stringcol

import (
	"github.com/gframe-dev/gframe/pkg/column"
)

// StringView is an ephemeral per-row string descriptor aliasing the
// source column's chars buffer. A null row carries the nil sentinel,
// distinguishable from an empty but non-null string. Views are invalid
// once the chars buffer is released.
type StringView struct {
	data []byte
}

// NullStringView is the reserved descriptor for null rows.
var NullStringView = StringView{}

// IsNull reports whether the row was null.
func (v StringView) IsNull() bool {
	return v.data == nil
}

// Len returns the string length in bytes; zero for null rows.
func (v StringView) Len() int {
	return len(v.data)
}

// Bytes returns the raw string bytes, aliasing the chars buffer.
func (v StringView) Bytes() []byte {
	return v.data
}

// String copies the view into a host string.
func (v StringView) String() string {
	return string(v.data)
}

// Materialize projects a string column into a dense array of per-row
// string views, row order preserved. The result aliases the column's
// chars buffer and must not be used after the column is released. The
// column's stream is synchronized so the descriptors observe completed
// writes.
func Materialize(col *column.Column) ([]StringView, error) {
	if err := validateStringsColumn(col); err != nil {
		return nil, err
	}
	if err := col.Runtime().Stream().Synchronize(); err != nil {
		return nil, err
	}

	valid, err := col.HostValidity()
	if err != nil {
		return nil, err
	}

	offsets := col.Child(0)
	chars := col.Child(1).Data().Bytes()
	views := make([]StringView, col.Rows())
	for i := int64(0); i < col.Rows(); i++ {
		if !valid[i] {
			views[i] = NullStringView
			continue
		}
		start, end := offsetAt(offsets, i), offsetAt(offsets, i+1)
		views[i] = StringView{data: chars[start:end:end]}
	}
	return views, nil
}
