// Package table provides the ordered, equal-length column container at
// the core of gframe, its ephemeral views, and the Arrow interchange
// bridge.
//
// A table either exclusively owns all memory reachable from its columns
// or is a shared-ownership projection whose columns retain the buffers of
// an owner table. Views are rebuilt on demand, carry no ownership, and
// must not outlive the table that produced them.
//
// The constructors FromDeviceResult and FromView are the trusted,
// compute-boundary surface: they are meant for algorithm implementations
// that receive native results or window an existing table, not for
// general callers.
package table

import (
	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/logger"
)

// Table is an ordered collection of equal-length columns. Insertion order
// defines column position.
type Table struct {
	rt   *device.Runtime
	cols []*column.Column
}

// New constructs a table that takes ownership of the given columns. A nil
// entry is not a valid column handle and fails with a type-mismatch
// error; differing row counts fail with a structure-mismatch error.
func New(rt *device.Runtime, cols ...*column.Column) (*Table, error) {
	if rt == nil {
		rt = device.Default()
	}
	for i, c := range cols {
		if c == nil {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"element %d is not a valid column handle", i)
		}
	}
	for i := 1; i < len(cols); i++ {
		if cols[i].Rows() != cols[0].Rows() {
			return nil, errors.Newf(errors.ErrorTypeStructureMismatch,
				"column %d has %d rows, column 0 has %d", i, cols[i].Rows(), cols[0].Rows())
		}
	}
	return &Table{rt: rt, cols: cols}, nil
}

// FromDeviceResult adopts a compute-library result, wrapping each native
// column into an owning column in production order. The native result is
// emptied. Trusted surface: intended for algorithm implementations.
func FromDeviceResult(rt *device.Runtime, res *device.NativeTable) *Table {
	if rt == nil {
		rt = device.Default()
	}
	natives := res.Detach()
	cols := make([]*column.Column, len(natives))
	for i, nc := range natives {
		cols[i] = column.NewFromNative(rt, nc)
	}
	logger.Debug("adopted device result", logger.Columns(len(cols)))
	return &Table{rt: rt, cols: cols}
}

// FromView builds a shared-ownership projection of owner: one non-owning
// column per view entry, each retaining the owner column it aliases (the
// owner reference is per column since slices may come from different
// positions within owner's columns). The projection keeps the underlying
// buffers alive even after the owner is released. Trusted surface:
// intended for algorithm implementations.
func FromView(v TableView, owner *Table) (*Table, error) {
	if owner == nil {
		return nil, errors.New(errors.ErrorTypeTypeMismatch, "nil owner table")
	}
	cols := make([]*column.Column, 0, v.NumColumns())
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}
	for i, cv := range v.Cols {
		ownerCol := owner.columnForBuffer(cv)
		if ownerCol == nil {
			release()
			return nil, errors.Newf(errors.ErrorTypeStructureMismatch,
				"view entry %d does not alias any column of the owner table", i)
		}
		shared, err := column.Share(ownerCol, cv.Offset-ownerCol.Offset(), cv.Rows)
		if err != nil {
			release()
			return nil, err
		}
		cols = append(cols, shared)
	}
	return &Table{rt: owner.rt, cols: cols}, nil
}

// columnForBuffer locates the owner column whose buffers a view entry
// aliases. String views are matched through their chars child.
func (t *Table) columnForBuffer(cv column.ColumnView) *column.Column {
	for _, c := range t.cols {
		if cv.Data != nil && c.Data() == cv.Data {
			return c
		}
		if cv.Data == nil && len(cv.Children) > 0 && len(c.Children()) > 0 &&
			c.Child(len(c.Children())-1).Data() == cv.Children[len(cv.Children)-1].Data {
			return c
		}
	}
	return nil
}

// View walks the column sequence in order and builds a fresh non-owning
// view for each. The view is recomputed on every call and is the point
// where control crosses into the device-compute boundary.
func (t *Table) View() TableView {
	cols := make([]column.ColumnView, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.View()
	}
	return TableView{Cols: cols}
}

// Columns returns the column sequence in order.
func (t *Table) Columns() []*column.Column {
	return t.cols
}

// Column returns the i-th column.
func (t *Table) Column(i int) *column.Column {
	return t.cols[i]
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// NumRows returns the row count; zero for a table with no columns.
func (t *Table) NumRows() int64 {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Rows()
}

// Runtime returns the device runtime the table lives on.
func (t *Table) Runtime() *device.Runtime {
	return t.rt
}

// Release drops every column. For an owning table this frees the device
// memory; for a projection it drops the retained owner references.
func (t *Table) Release() {
	for _, c := range t.cols {
		c.Release()
	}
	t.cols = nil
}

// TableView is an ephemeral, non-owning projection of a table's columns
// for passing to device compute operations. It must not outlive the
// table that produced it.
type TableView struct {
	Cols []column.ColumnView
}

// NumColumns returns the view's column count.
func (v TableView) NumColumns() int {
	return len(v.Cols)
}

// NumRows returns the view's row count; zero for an empty view.
func (v TableView) NumRows() int64 {
	if len(v.Cols) == 0 {
		return 0
	}
	return v.Cols[0].Rows
}

// Column returns the i-th column view.
func (v TableView) Column(i int) column.ColumnView {
	return v.Cols[i]
}
