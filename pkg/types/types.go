// Package types defines the logical column types shared across gframe
package types

import "fmt"

// DataType represents the logical type of a column
type DataType int

const (
	// Bool8 is a boolean stored as one byte per row
	Bool8 DataType = iota
	// Uint8 is an unsigned byte; chars buffers of string columns use it
	Uint8
	// Int32 is a 32-bit signed integer
	Int32
	// Int64 is a 64-bit signed integer
	Int64
	// Float32 is a 32-bit floating point number
	Float32
	// Float64 is a 64-bit floating point number
	Float64
	// String is variable-length UTF-8 data carried by offsets and chars
	// child columns
	String
)

// Width returns the fixed element width in bytes, or 0 for variable-length
// types.
func (t DataType) Width() int64 {
	switch t {
	case Bool8, Uint8:
		return 1
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// IsFixedWidth reports whether every element occupies Width() bytes.
func (t DataType) IsFixedWidth() bool {
	return t != String
}

// IsOffsetType reports whether the type may carry string offsets.
func (t DataType) IsOffsetType() bool {
	return t == Int32 || t == Int64
}

// String implements fmt.Stringer
func (t DataType) String() string {
	switch t {
	case Bool8:
		return "bool8"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}
