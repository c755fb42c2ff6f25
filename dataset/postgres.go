package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dataviewer/dataviewer-go/filter"
)

// ConnectPostgres opens a connection pool to an external PostgreSQL
// database. The caller owns the pool and closes it when the session
// ends.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

// ListPostgresTables returns the user tables available for loading,
// schema-qualified, for the database-connect flow.
func ListPostgresTables(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, err
		}
		tables = append(tables, schema+"."+name)
	}
	return tables, rows.Err()
}

// PostgresSourceConfig configures a PostgreSQL-backed source.
type PostgresSourceConfig struct {
	// Pool is the shared connection pool.
	// REQUIRED: MUST NOT be nil.
	Pool *pgxpool.Pool

	// ID is the session-unique source identifier.
	// REQUIRED: MUST be non-empty.
	ID string

	// Table is the table name.
	// REQUIRED: MUST be non-empty.
	Table string

	// Schema is the table's schema.
	// OPTIONAL: Defaults to "public".
	Schema string

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// PostgresSource serves a table in an external PostgreSQL database.
// Filters are pushed down server-side; the table is never loaded
// whole.
type PostgresSource struct {
	pool   *pgxpool.Pool
	id     string
	schema string
	table  string
	logger *slog.Logger

	declared map[string]string
}

var _ Source = (*PostgresSource)(nil)

// NewPostgresSource creates a source for one table. The table's
// existence is verified by fetching its column metadata.
func NewPostgresSource(ctx context.Context, cfg PostgresSourceConfig) (*PostgresSource, error) {
	if cfg.Pool == nil {
		return nil, errors.New("dataset: postgres source requires a pool")
	}
	if cfg.ID == "" || cfg.Table == "" {
		return nil, errors.New("dataset: postgres source requires id and table")
	}
	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &PostgresSource{
		pool:   cfg.Pool,
		id:     cfg.ID,
		schema: schema,
		table:  cfg.Table,
		logger: logger,
	}
	types, err := s.DataTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("table %s.%s not found or has no columns", schema, cfg.Table)
	}

	logger.Info("postgres source registered", "id", cfg.ID, "table", s.Name())
	return s, nil
}

// ID returns the source identifier.
func (s *PostgresSource) ID() string { return s.id }

// Name returns the schema-qualified table name.
func (s *PostgresSource) Name() string { return s.schema + "." + s.table }

// Close releases nothing: the pool is shared and owned by the session.
func (s *PostgresSource) Close() error { return nil }

func (s *PostgresSource) tableRef() string {
	return quoteIdent(s.schema) + "." + quoteIdent(s.table)
}

// Columns returns column metadata with unique counts and up to five
// sample values per column.
func (s *PostgresSource) Columns(ctx context.Context) ([]Column, error) {
	described, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(described))
	for _, d := range described {
		col := Column{Name: d.name, DType: strings.ToLower(d.columnType)}

		ident := quoteIdent(d.name)
		err := s.pool.QueryRow(ctx, fmt.Sprintf(
			"SELECT count(DISTINCT %s), count(*) - count(%s) FROM %s",
			ident, ident, s.tableRef())).Scan(&col.UniqueCount, &col.NullCount)
		if err != nil {
			return nil, fmt.Errorf("failed to profile column %q: %w", d.name, err)
		}
		col.Nullable = col.NullCount > 0

		samples, err := s.DistinctValues(ctx, d.name, 5)
		if err != nil {
			return nil, err
		}
		col.SampleValues = samples

		columns = append(columns, col)
	}
	return columns, nil
}

// DataTypes buckets each column into the declared types consumed by
// filter.Classify. Server types are authoritative, so no
// datetime-candidate probing happens here.
func (s *PostgresSource) DataTypes(ctx context.Context) (map[string]string, error) {
	if s.declared != nil {
		return s.declared, nil
	}

	described, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}
	types := make(map[string]string, len(described))
	for _, d := range described {
		types[d.name] = postgresTypeKind(d.columnType).declared()
	}
	s.declared = types
	return types, nil
}

// RowCount returns the unfiltered row count.
func (s *PostgresSource) RowCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+s.tableRef()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// Query runs a filtered, projected, paginated query against the table.
func (s *PostgresSource) Query(ctx context.Context, q Query) (*QueryResult, error) {
	where, err := s.whereClause(ctx, q.Filters)
	if err != nil {
		return nil, err
	}

	projection := "*"
	if len(q.Columns) > 0 {
		idents := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			idents[i] = quoteIdent(c)
		}
		projection = strings.Join(idents, ", ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", projection, s.tableRef())
	countStmt := "SELECT count(*) FROM " + s.tableRef()
	if where != "" {
		stmt += " WHERE " + where
		countStmt += " WHERE " + where
	}
	stmt += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset)

	rows, err := s.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []map[string]any
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(fields))
		for i, f := range fields {
			record[f.Name] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int64
	if err := s.pool.QueryRow(ctx, countStmt).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	return &QueryResult{Rows: records, TotalRows: total}, nil
}

// DistinctValues returns at most limit distinct non-null values,
// rendered as strings.
func (s *PostgresSource) DistinctValues(ctx context.Context, column string, limit int) ([]string, error) {
	ident := quoteIdent(column)
	stmt := fmt.Sprintf("SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL LIMIT %d",
		ident, s.tableRef(), ident, limit)

	rows, err := s.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("distinct values for %q failed: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// NumericValues returns all non-null values of a numeric column.
func (s *PostgresSource) NumericValues(ctx context.Context, column string) ([]float64, error) {
	ident := quoteIdent(column)
	stmt := fmt.Sprintf("SELECT %s::double precision FROM %s WHERE %s IS NOT NULL",
		ident, s.tableRef(), ident)

	rows, err := s.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("numeric values for %q failed: %w", column, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Correlate returns the Pearson correlation between two numeric columns.
func (s *PostgresSource) Correlate(ctx context.Context, x, y string) (float64, error) {
	stmt := fmt.Sprintf("SELECT corr(%s::double precision, %s::double precision) FROM %s",
		quoteIdent(x), quoteIdent(y), s.tableRef())

	var r *float64
	if err := s.pool.QueryRow(ctx, stmt).Scan(&r); err != nil {
		return 0, fmt.Errorf("correlation of %q and %q failed: %w", x, y, err)
	}
	if r == nil {
		return 0, nil
	}
	return *r, nil
}

func (s *PostgresSource) whereClause(ctx context.Context, predicates []filter.Predicate) (string, error) {
	if len(predicates) == 0 {
		return "", nil
	}
	declared, err := s.DataTypes(ctx)
	if err != nil {
		return "", err
	}
	types := make(map[string]filter.SemanticType, len(declared))
	for name, dt := range declared {
		types[name] = filter.Classify(dt)
	}
	return filter.NewSQLEncoder(types).EncodeFilters(predicates), nil
}

func (s *PostgresSource) describe(ctx context.Context) ([]describedColumn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, s.schema, s.table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}
	defer rows.Close()

	var described []describedColumn
	for rows.Next() {
		var d describedColumn
		if err := rows.Scan(&d.name, &d.columnType); err != nil {
			return nil, err
		}
		described = append(described, d)
	}
	return described, rows.Err()
}
