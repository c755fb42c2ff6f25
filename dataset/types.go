package dataset

import (
	"context"
	"strings"

	"github.com/dataviewer/dataviewer-go/filter"
)

// Column describes one column of a loaded dataset. Immutable once the
// dataset is loaded.
type Column struct {
	Name         string   `json:"name"`
	DType        string   `json:"dtype"`
	Nullable     bool     `json:"nullable"`
	NullCount    int64    `json:"null_count"`
	UniqueCount  int64    `json:"unique_count,omitempty"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// Query describes one data request against a source.
type Query struct {
	// Filters are AND-combined predicates. May be empty.
	Filters []filter.Predicate

	// Columns projects specific columns. Empty selects all.
	Columns []string

	// Limit bounds the returned rows. Zero means the source default.
	Limit int

	// Offset skips rows for pagination.
	Offset int
}

// QueryResult is the outcome of a filtered query.
type QueryResult struct {
	// Rows holds the returned records, column name to value.
	Rows []map[string]any

	// TotalRows is the number of rows matching the filters, ignoring
	// limit and offset.
	TotalRows int64
}

// Source is a queryable dataset. Implementations own their underlying
// connection; Close releases it.
type Source interface {
	// ID returns the session-unique source identifier.
	ID() string

	// Name returns the display name (file name or table name).
	Name() string

	// Columns returns column metadata including per-column unique
	// counts and sample values.
	Columns(ctx context.Context) ([]Column, error)

	// DataTypes returns the name to declared-type map consumed by
	// filter.Classify: "numeric", "datetime", "datetime_candidate" or
	// "categorical".
	DataTypes(ctx context.Context) (map[string]string, error)

	// RowCount returns the unfiltered row count.
	RowCount(ctx context.Context) (int64, error)

	// Query returns filtered rows and the filtered row count.
	Query(ctx context.Context, q Query) (*QueryResult, error)

	// DistinctValues returns at most limit distinct non-null values of
	// the column, rendered as strings. Used for filter dropdowns.
	DistinctValues(ctx context.Context, column string, limit int) ([]string, error)

	// NumericValues returns all non-null values of a numeric column.
	// Used by outlier detection and summary statistics.
	NumericValues(ctx context.Context, column string) ([]float64, error)

	// Correlate returns the Pearson correlation between two numeric
	// columns, computed by the backend.
	Correlate(ctx context.Context, x, y string) (float64, error)

	// Close releases the source's resources.
	Close() error
}

// defaultQueryLimit bounds queries that do not specify a limit.
const defaultQueryLimit = 100

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
// Understood by both DuckDB and PostgreSQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
