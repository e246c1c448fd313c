package common

import (
	"context"
	"io"
)

// StreamConverter defines the interface for converting parsed data to SQL output
type StreamConverter interface {
	ConvertToSQL(ctx context.Context, writer io.Writer) error
}

// RowProvider defines the interface for providing data to be inserted into SQLite
type RowProvider interface {
	GetTableNames() []string
	GetHeaders(tableName string) []string
	// ScanRows iterates over rows for the given table.
	// It calls the yield function for each row; a nil element is stored as NULL.
	// If yield returns an error, iteration stops and that error is returned.
	ScanRows(ctx context.Context, tableName string, yield func([]interface{}, error) error) error
}

// Driver opens a RowProvider for one input stream.
type Driver interface {
	Open(source io.Reader, config *ConversionConfig) (RowProvider, error)
}

// ColumnTyper is implemented by providers that know their column types.
type ColumnTyper interface {
	GetColumnTypes(tableName string) []string
}
