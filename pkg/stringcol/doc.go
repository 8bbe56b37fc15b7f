// Package stringcol provides the variable-length column support for
// gframe: offset-width selection for large string columns, chars-buffer
// allocation, and materialization of per-row string views for device
// algorithms.
//
// A string column carries two children: an offsets column of rows+1
// monotonically non-decreasing values (int32, or int64 once the column's
// total byte size crosses the large-strings threshold) and a chars column
// holding the concatenated character data. The value at offset index i+1
// minus the value at index i is the byte length of row i; the final value
// equals the chars column's total size.
package stringcol
