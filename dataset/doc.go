// Package dataset provides the data-source abstraction behind the
// filter and chart engines.
//
// A Source exposes column metadata, the declared-type map consumed by
// filter.Classify, filtered row queries, bounded distinct-value lists
// for filter dropdowns, and the numeric column access the analysis
// package needs. Two implementations are provided:
//
//   - DuckDBSource: local CSV files registered as DuckDB views via
//     read_csv_auto. This is the upload path.
//   - PostgresSource: tables in an external PostgreSQL database with
//     server-side filter pushdown. This is the database-connect path.
//
// Filter predicates are pushed down as SQL through filter.SQLEncoder
// in both cases.
//
// Registry tracks the live sources of a session; exactly one source is
// active at a time and switching datasets re-fetches column metadata.
package dataset
