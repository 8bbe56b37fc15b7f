// Package gframe provides a device-resident columnar table core: typed
// columns with Arrow-compatible memory layout, owning and shared-view
// tables, a zero-copy Arrow interchange bridge, and compressed snapshot
// serialization.
//
// # Architecture
//
// gframe is organized around three layers:
//
// 1. Device runtime (pkg/device): reference-counted buffers, a pooled
// allocator with an optional byte limit, ordered asynchronous execution
// streams with fault reporting at synchronization, and the
// host-orchestration boundary that serializes entry into device work.
//
// 2. Columns (pkg/column, pkg/stringcol): typed columns over device
// buffers with Arrow-style validity bitmaps. String columns carry their
// offsets and character data as child columns, with the offset width
// chosen by total size against the configurable large-strings threshold.
//
// 3. Tables (pkg/table, pkg/compute): ordered equal-length column
// containers with exclusive or shared ownership, ephemeral views for
// crossing the compute boundary, the Arrow record bridge, and snapshot
// serialization over the compression stack.
//
// # Quick Start
//
// Build a table and export it as an Arrow record:
//
//	import (
//	    "context"
//	    "github.com/gframe-dev/gframe/pkg/column"
//	    "github.com/gframe-dev/gframe/pkg/device"
//	    "github.com/gframe-dev/gframe/pkg/stringcol"
//	    "github.com/gframe-dev/gframe/pkg/table"
//	)
//
//	rt := device.Default()
//	ids, _ := column.NewInt64(rt, []int64{1, 2, 3}, nil)
//	names, _ := stringcol.Build(rt, []string{"a", "b", "c"}, nil)
//	tbl, _ := table.New(rt, ids, names)
//	defer tbl.Release()
//
//	meta := []table.ColumnMetadata{
//	    table.Meta("id"),
//	    table.Meta("name", table.Meta("chars")),
//	}
//	rec, _ := tbl.ToArrow(context.Background(), meta)
//	defer rec.Release()
package gframe
