// Package column provides the owning and non-owning column handles that
// gframe tables are built from.
//
// A column is a typed device buffer plus an optional validity bitmap
// (Arrow layout, one bit per row, LSB first). String columns carry two
// children: an offsets column (int32 or int64, rows+1 entries) and a
// chars column (uint8, the concatenated character data).
//
// Every column is either the exclusive owner of its buffers or a shared
// view that retains another column's buffers. The distinction is an
// explicit field on the handle, not an implicit reference convention.
package column

import (
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// Ownership tags how a column relates to its buffers.
type Ownership int

const (
	// Owned marks a column that exclusively owns its buffers.
	Owned Ownership = iota
	// SharedView marks a column aliasing buffers kept alive by an owner
	// column, retained per column.
	SharedView
)

// Column is a handle to a typed device buffer with an optional validity
// bitmap. A non-owning column must never outlive its owner; shared views
// enforce this by retaining the owner's buffers.
type Column struct {
	rt        *device.Runtime
	dtype     types.DataType
	rows      int64
	nullCount int64
	// offset is the element offset into data for shared slices. Owned
	// columns always sit at offset zero.
	offset    int64
	data      *device.Buffer
	validity  *device.Buffer
	children  []*Column
	ownership Ownership
	owner     *Column
}

// New creates an exclusively owning column, adopting the given buffers.
// The buffers' references pass to the column.
func New(rt *device.Runtime, dtype types.DataType, rows int64, data, validity *device.Buffer, nullCount int64, children ...*Column) *Column {
	return &Column{
		rt:        rt,
		dtype:     dtype,
		rows:      rows,
		nullCount: nullCount,
		data:      data,
		validity:  validity,
		children:  children,
		ownership: Owned,
	}
}

// NewFromNative adopts a compute-library result column, taking ownership
// of its buffers recursively.
func NewFromNative(rt *device.Runtime, nc *device.NativeColumn) *Column {
	children := make([]*Column, len(nc.Children))
	for i, child := range nc.Children {
		children[i] = NewFromNative(rt, child)
	}
	return &Column{
		rt:        rt,
		dtype:     nc.DType,
		rows:      nc.Rows,
		nullCount: nc.NullCount,
		data:      nc.Data,
		validity:  nc.Validity,
		children:  children,
		ownership: Owned,
	}
}

// Share creates a non-owning slice of rows [rowOffset, rowOffset+rows)
// that keeps the owner's buffers alive by retaining them. String columns
// only support whole-column shares; re-basing offsets needs a kernel.
func Share(owner *Column, rowOffset, rows int64) (*Column, error) {
	if owner == nil {
		return nil, errors.New(errors.ErrorTypeTypeMismatch, "nil owner column")
	}
	if rowOffset < 0 || rows < 0 || rowOffset+rows > owner.rows {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"share window [%d, %d) outside column of %d rows", rowOffset, rowOffset+rows, owner.rows)
	}
	if owner.dtype == types.String && (rowOffset != 0 || rows != owner.rows) {
		return nil, errors.New(errors.ErrorTypeInvalidArgument,
			"string columns only support whole-column shares")
	}

	children := make([]*Column, len(owner.children))
	for i, child := range owner.children {
		shared, err := Share(child, 0, child.rows)
		if err != nil {
			return nil, err
		}
		children[i] = shared
	}

	c := &Column{
		rt:        owner.rt,
		dtype:     owner.dtype,
		rows:      rows,
		nullCount: owner.nullCount,
		offset:    owner.offset + rowOffset,
		data:      owner.data,
		validity:  owner.validity,
		children:  children,
		ownership: SharedView,
		owner:     owner,
	}
	if c.data != nil {
		c.data.Retain()
	}
	if c.validity != nil {
		c.validity.Retain()
	}
	if rowOffset != 0 || rows != owner.rows {
		// Partial windows cannot reuse the owner's null count, and the
		// bitmap is only host-readable once pending writes drain.
		if err := owner.rt.Stream().Synchronize(); err != nil {
			c.Release()
			return nil, err
		}
		c.nullCount = c.countNulls()
	}
	return c, nil
}

// Release drops the column's buffer references, recursively. For an owned
// column this frees the memory; for a shared view it drops the retained
// owner references.
func (c *Column) Release() {
	if c.data != nil {
		c.data.Release()
		c.data = nil
	}
	if c.validity != nil {
		c.validity.Release()
		c.validity = nil
	}
	for _, child := range c.children {
		child.Release()
	}
	c.children = nil
	c.owner = nil
}

// DType returns the column's logical type.
func (c *Column) DType() types.DataType { return c.dtype }

// Rows returns the row count.
func (c *Column) Rows() int64 { return c.rows }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int64 { return c.nullCount }

// Offset returns the element offset into the data buffer.
func (c *Column) Offset() int64 { return c.offset }

// Data returns the backing data buffer without transferring ownership.
func (c *Column) Data() *device.Buffer { return c.data }

// Validity returns the validity bitmap buffer, or nil when every row is
// valid.
func (c *Column) Validity() *device.Buffer { return c.validity }

// Children returns the child columns.
func (c *Column) Children() []*Column { return c.children }

// Child returns the i-th child column.
func (c *Column) Child(i int) *Column { return c.children[i] }

// Ownership reports whether the column owns or shares its buffers.
func (c *Column) Ownership() Ownership { return c.ownership }

// Owner returns the column this view shares buffers with, or nil for an
// owned column.
func (c *Column) Owner() *Column { return c.owner }

// Runtime returns the device runtime the column was created on.
func (c *Column) Runtime() *device.Runtime { return c.rt }

// View builds a fresh non-owning view of the column, recursively. The
// view borrows the buffers without retaining them and must not outlive
// the column.
func (c *Column) View() ColumnView {
	children := make([]ColumnView, len(c.children))
	for i, child := range c.children {
		children[i] = child.View()
	}
	return ColumnView{
		DType:     c.dtype,
		Rows:      c.rows,
		NullCount: c.nullCount,
		Offset:    c.offset,
		Data:      c.data,
		Validity:  c.validity,
		Children:  children,
	}
}

// validAt reads the validity bit for logical row i. Only meaningful after
// the writing stream has been synchronized.
func (c *Column) validAt(i int64) bool {
	if c.validity == nil {
		return true
	}
	bit := c.offset + i
	return c.validity.Bytes()[bit>>3]&(1<<uint(bit&7)) != 0
}

func (c *Column) countNulls() int64 {
	if c.validity == nil {
		return 0
	}
	var nulls int64
	for i := int64(0); i < c.rows; i++ {
		if !c.validAt(i) {
			nulls++
		}
	}
	return nulls
}
