package dataset

// The tests in this file open an in-memory DuckDB database and exercise
// the full path from CSV file to filtered query results.

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dataviewer/dataviewer-go/filter"
)

const testCSV = `id,name,age,city,signup_date
1,Alice,34,Berlin,2024-01-15
2,Bob,28,Paris,2024-02-20
3,Charlie,45,Berlin,2024-03-05
4,Dana,52,Madrid,2024-04-11
5,Eve,23,Paris,2024-05-30
`

func newTestCSVSource(t *testing.T) *DuckDBSource {
	t.Helper()

	db, err := OpenDuckDB()
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	path := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}

	s, err := NewCSVSource(context.Background(), CSVSourceConfig{
		DB:   db,
		ID:   "test",
		Path: path,
	})
	if err != nil {
		t.Fatalf("NewCSVSource failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCSVSourceMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	count, err := s.RowCount(ctx)
	if err != nil {
		t.Fatalf("RowCount failed: %v", err)
	}
	if count != 5 {
		t.Errorf("RowCount = %d, want 5", count)
	}

	types, err := s.DataTypes(ctx)
	if err != nil {
		t.Fatalf("DataTypes failed: %v", err)
	}
	wantTypes := map[string]string{
		"id":          "numeric",
		"name":        "categorical",
		"age":         "numeric",
		"city":        "categorical",
		"signup_date": "datetime",
	}
	for col, want := range wantTypes {
		if types[col] != want {
			t.Errorf("DataTypes[%s] = %q, want %q", col, types[col], want)
		}
	}

	columns, err := s.Columns(ctx)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if len(columns) != 5 {
		t.Fatalf("expected 5 columns, got %d", len(columns))
	}
	for _, col := range columns {
		if col.Name == "city" {
			if col.UniqueCount != 3 {
				t.Errorf("city unique count = %d, want 3", col.UniqueCount)
			}
			if col.Nullable {
				t.Error("city must not be nullable")
			}
			if len(col.SampleValues) == 0 {
				t.Error("city must have sample values")
			}
		}
	}
}

func TestCSVSourceQueryWithFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	res, err := s.Query(ctx, Query{
		Filters: []filter.Predicate{
			{Column: "age", Operator: filter.OpGt, Value: "30"},
			{Column: "city", Operator: filter.OpEq, Value: "Berlin"},
		},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", res.TotalRows)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	for _, row := range res.Rows {
		if row["city"] != "Berlin" {
			t.Errorf("unexpected city %v", row["city"])
		}
	}
}

func TestCSVSourceQueryPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	res, err := s.Query(ctx, Query{Limit: 2, Offset: 2, Columns: []string{"name"}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5 without filters", res.TotalRows)
	}
	for _, row := range res.Rows {
		if len(row) != 1 {
			t.Errorf("projection must return only selected columns, got %v", row)
		}
	}
}

func TestCSVSourceDistinctValues(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	values, err := s.DistinctValues(ctx, "city", 10)
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if len(values) != 3 {
		t.Errorf("expected 3 distinct cities, got %v", values)
	}

	bounded, err := s.DistinctValues(ctx, "city", 2)
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if len(bounded) != 2 {
		t.Errorf("limit must bound the result, got %v", bounded)
	}
}

func TestCSVSourceNumericValuesAndCorrelation(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	values, err := s.NumericValues(ctx, "age")
	if err != nil {
		t.Fatalf("NumericValues failed: %v", err)
	}
	if len(values) != 5 {
		t.Errorf("expected 5 ages, got %d", len(values))
	}

	r, err := s.Correlate(ctx, "id", "id")
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if r < 0.999 {
		t.Errorf("self correlation = %f, want 1", r)
	}
}

func TestCSVSourceInFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestCSVSource(t)

	res, err := s.Query(ctx, Query{
		Filters: []filter.Predicate{
			{Column: "city", Operator: filter.OpIn, Values: []string{"Paris", "Madrid"}},
		},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", res.TotalRows)
	}
}
