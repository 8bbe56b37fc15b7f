package column

import (
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/types"
)

// ColumnView is an ephemeral, non-owning projection of a column for
// passing across the device-compute boundary. It borrows the buffers
// without retaining them and must not outlive the column that produced
// it.
type ColumnView struct {
	DType     types.DataType
	Rows      int64
	NullCount int64
	Offset    int64
	Data      *device.Buffer
	Validity  *device.Buffer
	Children  []ColumnView
}

// Child returns the i-th child view.
func (v ColumnView) Child(i int) ColumnView {
	return v.Children[i]
}
