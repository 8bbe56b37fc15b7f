package device

import "github.com/gframe-dev/gframe/pkg/types"

// NativeColumn is a column produced by the device compute library. It
// exclusively owns its buffers until a table adopts it.
type NativeColumn struct {
	DType     types.DataType
	Rows      int64
	NullCount int64
	Data      *Buffer
	Validity  *Buffer
	Children  []*NativeColumn
}

// Release drops the column's buffers, recursively.
func (c *NativeColumn) Release() {
	if c.Data != nil {
		c.Data.Release()
		c.Data = nil
	}
	if c.Validity != nil {
		c.Validity.Release()
		c.Validity = nil
	}
	for _, child := range c.Children {
		child.Release()
	}
	c.Children = nil
}

// NativeTable is the opaque table-of-columns result of a compute-library
// call. Adoption moves its columns out, leaving it empty.
type NativeTable struct {
	cols []*NativeColumn
}

// NewNativeTable wraps compute-library result columns in production order.
func NewNativeTable(cols ...*NativeColumn) *NativeTable {
	return &NativeTable{cols: cols}
}

// Len returns the remaining column count.
func (t *NativeTable) Len() int {
	return len(t.cols)
}

// Detach moves the columns out of the result, leaving it empty. The
// caller takes ownership of every returned column.
func (t *NativeTable) Detach() []*NativeColumn {
	cols := t.cols
	t.cols = nil
	return cols
}

// Release drops any columns still held by the result.
func (t *NativeTable) Release() {
	for _, c := range t.cols {
		c.Release()
	}
	t.cols = nil
}
