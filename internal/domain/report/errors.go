package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType is returned when a reader is requested for a
	// document format that has no table source.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrTableShape means no table in the document matched the expected
	// columns. It usually indicates a bulletin layout change.
	ErrTableShape = errors.New("report table shape mismatch")

	// ErrDocument wraps failures opening or decoding a bulletin.
	ErrDocument = errors.New("failed to read report document")
)

// TableShapeError describes a table lookup that found no matching layout.
type TableShapeError struct {
	Filename string
	Columns  []string
	Tables   int
}

func (e *TableShapeError) Error() string {
	return fmt.Sprintf("no table with columns [%s] among %d tables in %s",
		strings.Join(e.Columns, ", "), e.Tables, e.Filename)
}

func (e *TableShapeError) Unwrap() error { return ErrTableShape }
