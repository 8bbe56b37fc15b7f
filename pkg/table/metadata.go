package table

import (
	gojson "github.com/goccy/go-json"

	"github.com/gframe-dev/gframe/pkg/column"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/types"
)

// ColumnMetadata names one column for interchange export and, recursively,
// its nested children. A string column carries exactly one child entry,
// naming its character data; fixed-width columns carry none.
type ColumnMetadata struct {
	Name     string           `json:"name"`
	Children []ColumnMetadata `json:"children,omitempty"`
}

// Meta is a convenience constructor for a metadata entry.
func Meta(name string, children ...ColumnMetadata) ColumnMetadata {
	return ColumnMetadata{Name: name, Children: children}
}

// EncodeMetadata serializes a metadata sequence for snapshot headers and
// diagnostics.
func EncodeMetadata(meta []ColumnMetadata) ([]byte, error) {
	data, err := gojson.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "encode column metadata")
	}
	return data, nil
}

// DecodeMetadata reverses EncodeMetadata.
func DecodeMetadata(data []byte) ([]ColumnMetadata, error) {
	var meta []ColumnMetadata
	if err := gojson.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "decode column metadata")
	}
	return meta, nil
}

// validateMetadata checks that the metadata sequence aligns with the
// actual column structure, including nested children.
func validateMetadata(cols []*column.Column, meta []ColumnMetadata) error {
	if len(meta) != len(cols) {
		return errors.Newf(errors.ErrorTypeStructureMismatch,
			"metadata count %d does not match column count %d", len(meta), len(cols)).
			WithDetail("columns", len(cols)).
			WithDetail("metadata", len(meta))
	}
	for i, c := range cols {
		if err := validateColumnMetadata(c, meta[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateColumnMetadata(c *column.Column, m ColumnMetadata) error {
	if c.DType() == types.String {
		if len(m.Children) != 1 {
			return errors.Newf(errors.ErrorTypeStructureMismatch,
				"string column %q needs exactly one child metadata entry for its character data, got %d",
				m.Name, len(m.Children))
		}
		return nil
	}
	if len(m.Children) != 0 {
		return errors.Newf(errors.ErrorTypeStructureMismatch,
			"column %q is %s and carries no children, but metadata has %d",
			m.Name, c.DType(), len(m.Children))
	}
	return nil
}
