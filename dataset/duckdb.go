package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/dataviewer/dataviewer-go/filter"
)

// ErrColumnNotFound indicates a column name unknown to the source.
var ErrColumnNotFound = errors.New("column not found")

// OpenDuckDB opens the in-memory DuckDB database shared by the
// session's CSV sources. The caller owns the handle and closes it when
// the session ends.
func OpenDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return db, nil
}

// CSVSourceConfig configures a DuckDB-backed CSV source.
type CSVSourceConfig struct {
	// DB is the DuckDB handle the view is registered on.
	// REQUIRED: MUST NOT be nil.
	DB *sql.DB

	// ID is the session-unique source identifier.
	// REQUIRED: MUST be non-empty.
	ID string

	// Path is the CSV file to load.
	// REQUIRED: MUST be non-empty.
	Path string

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// DuckDBSource serves a CSV file through a DuckDB view created with
// read_csv_auto, which also performs the type sniffing the engine's
// declared types are derived from.
type DuckDBSource struct {
	db     *sql.DB
	id     string
	name   string
	view   string
	logger *slog.Logger

	declared map[string]string // declared-type cache
}

var _ Source = (*DuckDBSource)(nil)

// NewCSVSource registers a CSV file as a DuckDB view and returns the
// source backed by it.
func NewCSVSource(ctx context.Context, cfg CSVSourceConfig) (*DuckDBSource, error) {
	if cfg.DB == nil {
		return nil, errors.New("dataset: csv source requires a database handle")
	}
	if cfg.ID == "" || cfg.Path == "" {
		return nil, errors.New("dataset: csv source requires id and path")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &DuckDBSource{
		db:     cfg.DB,
		id:     cfg.ID,
		name:   filepath.Base(cfg.Path),
		view:   "src_" + sanitizeIdent(cfg.ID),
		logger: logger,
	}

	stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM read_csv_auto(%s)",
		quoteIdent(s.view), quoteStringLiteral(cfg.Path))
	if _, err := cfg.DB.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to load CSV %q: %w", cfg.Path, err)
	}

	logger.Info("csv source registered", "id", cfg.ID, "file", s.name)
	return s, nil
}

// ID returns the source identifier.
func (s *DuckDBSource) ID() string { return s.id }

// Name returns the CSV file name.
func (s *DuckDBSource) Name() string { return s.name }

// Close drops the backing view. The shared database handle stays open.
func (s *DuckDBSource) Close() error {
	_, err := s.db.Exec("DROP VIEW IF EXISTS " + quoteIdent(s.view))
	return err
}

// Columns returns column metadata with unique counts and up to five
// sample values per column.
func (s *DuckDBSource) Columns(ctx context.Context) ([]Column, error) {
	described, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(described))
	for _, d := range described {
		col := Column{Name: d.name, DType: strings.ToLower(d.columnType)}

		ident := quoteIdent(d.name)
		row := s.db.QueryRowContext(ctx, fmt.Sprintf(
			"SELECT count(DISTINCT %s), count(*) - count(%s) FROM %s",
			ident, ident, quoteIdent(s.view)))
		if err := row.Scan(&col.UniqueCount, &col.NullCount); err != nil {
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
// filter.Classify. Text columns whose sampled values all cast to
// timestamps are reported as datetime_candidate.
func (s *DuckDBSource) DataTypes(ctx context.Context) (map[string]string, error) {
	if s.declared != nil {
		return s.declared, nil
	}

	described, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}

	types := make(map[string]string, len(described))
	for _, d := range described {
		kind := duckdbTypeKind(d.columnType)
		if kind == kindText {
			candidate, err := s.isDatetimeCandidate(ctx, d.name)
			if err != nil {
				return nil, err
			}
			if candidate {
				types[d.name] = "datetime_candidate"
				continue
			}
		}
		types[d.name] = kind.declared()
	}
	s.declared = types
	return types, nil
}

// isDatetimeCandidate samples up to 100 non-null values and reports
// whether every one casts to a timestamp.
func (s *DuckDBSource) isDatetimeCandidate(ctx context.Context, column string) (bool, error) {
	ident := quoteIdent(column)
	stmt := fmt.Sprintf(
		"SELECT count(*), count(*) FILTER (WHERE try_cast(v AS TIMESTAMP) IS NULL) "+
			"FROM (SELECT %s AS v FROM %s WHERE %s IS NOT NULL LIMIT 100) t",
		ident, quoteIdent(s.view), ident)

	var total, failed int64
	if err := s.db.QueryRowContext(ctx, stmt).Scan(&total, &failed); err != nil {
		return false, fmt.Errorf("failed to probe column %q: %w", column, err)
	}
	return total > 0 && failed == 0, nil
}

// RowCount returns the unfiltered row count.
func (s *DuckDBSource) RowCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteIdent(s.view)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// Query runs a filtered, projected, paginated query against the view.
func (s *DuckDBSource) Query(ctx context.Context, q Query) (*QueryResult, error) {
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

	stmt := fmt.Sprintf("SELECT %s FROM %s", projection, quoteIdent(s.view))
	countStmt := "SELECT count(*) FROM " + quoteIdent(s.view)
	if where != "" {
		stmt += " WHERE " + where
		countStmt += " WHERE " + where
	}
	stmt += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, countStmt).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	return &QueryResult{Rows: records, TotalRows: total}, nil
}

// DistinctValues returns at most limit distinct non-null values,
// rendered as strings.
func (s *DuckDBSource) DistinctValues(ctx context.Context, column string, limit int) ([]string, error) {
	ident := quoteIdent(column)
	stmt := fmt.Sprintf(
		"SELECT DISTINCT CAST(%s AS VARCHAR) FROM %s WHERE %s IS NOT NULL LIMIT %d",
		ident, quoteIdent(s.view), ident, limit)

	rows, err := s.db.QueryContext(ctx, stmt)
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
func (s *DuckDBSource) NumericValues(ctx context.Context, column string) ([]float64, error) {
	ident := quoteIdent(column)
	stmt := fmt.Sprintf("SELECT CAST(%s AS DOUBLE) FROM %s WHERE %s IS NOT NULL",
		ident, quoteIdent(s.view), ident)

	rows, err := s.db.QueryContext(ctx, stmt)
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
func (s *DuckDBSource) Correlate(ctx context.Context, x, y string) (float64, error) {
	stmt := fmt.Sprintf("SELECT corr(CAST(%s AS DOUBLE), CAST(%s AS DOUBLE)) FROM %s",
		quoteIdent(x), quoteIdent(y), quoteIdent(s.view))

	var r sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, stmt).Scan(&r); err != nil {
		return 0, fmt.Errorf("correlation of %q and %q failed: %w", x, y, err)
	}
	if !r.Valid {
		return 0, nil
	}
	return r.Float64, nil
}

// whereClause encodes the predicates with the source's semantic types.
func (s *DuckDBSource) whereClause(ctx context.Context, predicates []filter.Predicate) (string, error) {
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

// describedColumn is one row of DESCRIBE output.
type describedColumn struct {
	name       string
	columnType string
}

func (s *DuckDBSource) describe(ctx context.Context) ([]describedColumn, error) {
	rows, err := s.db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+quoteIdent(s.view))
	if err != nil {
		return nil, fmt.Errorf("failed to describe view: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var described []describedColumn
	for rows.Next() {
		// DESCRIBE yields column_name, column_type plus nullable extras.
		fields := make([]any, len(names))
		var name, columnType string
		fields[0] = &name
		fields[1] = &columnType
		for i := 2; i < len(fields); i++ {
			fields[i] = new(sql.NullString)
		}
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		described = append(described, describedColumn{name: name, columnType: columnType})
	}
	return described, rows.Err()
}

// scanRecords converts sql rows into column-name keyed records.
func scanRecords(rows *sql.Rows) ([]map[string]any, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(names))
		for i, name := range names {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[name] = v
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// sanitizeIdent keeps letters, digits and underscores so source IDs can
// be embedded in view names.
func sanitizeIdent(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// quoteStringLiteral quotes a SQL string literal.
func quoteStringLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
