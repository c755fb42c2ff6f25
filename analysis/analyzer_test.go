package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/dataviewer/dataviewer-go/chart"
	"github.com/dataviewer/dataviewer-go/dataset"
)

// stubSource is an in-memory dataset.Source with canned metadata,
// numeric values and correlations.
type stubSource struct {
	columns []dataset.Column
	types   map[string]string
	rows    int64
	numeric map[string][]float64
	corr    map[string]float64
	corrErr map[string]error
}

func (s *stubSource) ID() string   { return "stub" }
func (s *stubSource) Name() string { return "stub" }
func (s *stubSource) Columns(ctx context.Context) ([]dataset.Column, error) {
	return s.columns, nil
}
func (s *stubSource) DataTypes(ctx context.Context) (map[string]string, error) {
	return s.types, nil
}
func (s *stubSource) RowCount(ctx context.Context) (int64, error) { return s.rows, nil }
func (s *stubSource) Query(ctx context.Context, q dataset.Query) (*dataset.QueryResult, error) {
	return &dataset.QueryResult{}, nil
}
func (s *stubSource) DistinctValues(ctx context.Context, column string, limit int) ([]string, error) {
	return nil, nil
}
func (s *stubSource) NumericValues(ctx context.Context, column string) ([]float64, error) {
	return s.numeric[column], nil
}
func (s *stubSource) Correlate(ctx context.Context, x, y string) (float64, error) {
	key := x + "|" + y
	if err := s.corrErr[key]; err != nil {
		return 0, err
	}
	return s.corr[key], nil
}
func (s *stubSource) Close() error { return nil }

func salesSource() *stubSource {
	return &stubSource{
		columns: []dataset.Column{
			{Name: "date", UniqueCount: 6},
			{Name: "revenue", UniqueCount: 6},
			{Name: "cost", UniqueCount: 6},
			{Name: "units", UniqueCount: 6},
			{Name: "region", UniqueCount: 4},
			{Name: "order_id", UniqueCount: 100},
		},
		types: map[string]string{
			"date":     "datetime",
			"revenue":  "numeric",
			"cost":     "numeric",
			"units":    "numeric",
			"region":   "categorical",
			"order_id": "categorical",
		},
		rows: 6,
		numeric: map[string][]float64{
			"revenue": {1, 2, 3, 4, 5, 100},
			"cost":    {2, 4, 6, 8, 10, 12},
			"units":   {5, 5, 5, 5, 5, 5},
		},
		corr: map[string]float64{
			"revenue|cost":  0.92,
			"revenue|units": 0.10,
			"cost|units":    -0.20,
		},
	}
}

func newTestAnalyzer(t *testing.T, src dataset.Source, maxSuggestions int) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(AnalyzerConfig{Source: src, MaxSuggestions: maxSuggestions})
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return a
}

func TestSuggestChartsRanking(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	suggestions, err := a.SuggestCharts(ctx)
	if err != nil {
		t.Fatalf("SuggestCharts failed: %v", err)
	}

	// 3 time series + heatmap + 3 histograms + 2 box plots + 1 scatter
	// already fill the default cap of 10; the bar chart falls off.
	if len(suggestions) != 10 {
		t.Fatalf("expected 10 suggestions, got %d", len(suggestions))
	}

	want := []struct {
		chartType chart.Type
		x, y      string
	}{
		{chart.TimeSeries, "date", "revenue"},
		{chart.TimeSeries, "date", "cost"},
		{chart.TimeSeries, "date", "units"},
		{chart.Heatmap, "", ""},
		{chart.Histogram, "revenue", ""},
		{chart.Histogram, "cost", ""},
		{chart.Histogram, "units", ""},
		{chart.Box, "region", "revenue"},
		{chart.Box, "region", "cost"},
		{chart.Scatter, "revenue", "cost"},
	}
	for i, w := range want {
		got := suggestions[i]
		if got.ChartType != w.chartType || got.XColumn != w.x || got.YColumn != w.y {
			t.Errorf("suggestion %d = %s(%q, %q), want %s(%q, %q)",
				i, got.ChartType, got.XColumn, got.YColumn, w.chartType, w.x, w.y)
		}
		if got.Priority != i+1 {
			t.Errorf("suggestion %d priority = %d, want %d", i, got.Priority, i+1)
		}
	}

	wantReason := "Correlation between revenue and cost (r=0.92)"
	if suggestions[9].Reason != wantReason {
		t.Errorf("scatter reason = %q, want %q", suggestions[9].Reason, wantReason)
	}
}

func TestSuggestChartsSkipsHighCardinalityCategories(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	suggestions, err := a.SuggestCharts(ctx)
	if err != nil {
		t.Fatalf("SuggestCharts failed: %v", err)
	}
	for _, s := range suggestions {
		if s.XColumn == "order_id" {
			t.Errorf("order_id has 100 uniques and must not be suggested: %+v", s)
		}
	}
}

func TestSuggestChartsCorrelationFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	src := salesSource()
	src.corrErr = map[string]error{
		"revenue|cost": errors.New("backend unavailable"),
	}
	a := newTestAnalyzer(t, src, 0)

	suggestions, err := a.SuggestCharts(ctx)
	if err != nil {
		t.Fatalf("SuggestCharts must not fail on a correlation error: %v", err)
	}
	for _, s := range suggestions {
		if s.ChartType == chart.Scatter {
			t.Errorf("failed pair must be skipped, got scatter %+v", s)
		}
	}
}

func TestSuggestChartsHonorsMax(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 5)

	suggestions, err := a.SuggestCharts(ctx)
	if err != nil {
		t.Fatalf("SuggestCharts failed: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(suggestions))
	}
	if suggestions[3].ChartType != chart.Heatmap {
		t.Errorf("suggestion 4 = %s, want heatmap", suggestions[3].ChartType)
	}
}

func TestSuggestChartsNoDatetime(t *testing.T) {
	ctx := context.Background()
	src := salesSource()
	src.types["date"] = "categorical"
	src.columns[0].UniqueCount = 6
	a := newTestAnalyzer(t, src, 0)

	suggestions, err := a.SuggestCharts(ctx)
	if err != nil {
		t.Fatalf("SuggestCharts failed: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].ChartType != chart.Heatmap {
		t.Errorf("first suggestion = %s, want heatmap without datetime columns",
			suggestions[0].ChartType)
	}
	for _, s := range suggestions {
		if s.ChartType == chart.TimeSeries {
			t.Errorf("no time series expected without datetime columns: %+v", s)
		}
	}
}

func TestSummaryStats(t *testing.T) {
	ctx := context.Background()
	src := salesSource()
	src.columns[4].NullCount = 2 // region
	a := newTestAnalyzer(t, src, 0)

	stats, err := a.SummaryStats(ctx)
	if err != nil {
		t.Fatalf("SummaryStats failed: %v", err)
	}
	if len(stats) != 6 {
		t.Fatalf("expected stats for 6 columns, got %d", len(stats))
	}

	byName := make(map[string]ColumnStats, len(stats))
	for _, s := range stats {
		byName[s.Column] = s
	}

	revenue := byName["revenue"]
	if revenue.Count != 6 || revenue.UniqueValues != 6 {
		t.Errorf("revenue count/uniques = %d/%d, want 6/6", revenue.Count, revenue.UniqueValues)
	}
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"mean", revenue.Mean, 115.0 / 6},
		{"min", revenue.Min, 1},
		{"max", revenue.Max, 100},
		{"q25", revenue.Q25, 2.25},
		{"median", revenue.Median, 3.5},
		{"q75", revenue.Q75, 4.75},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("revenue %s is nil", c.name)
			continue
		}
		if math.Abs(*c.got-c.want) > 1e-9 {
			t.Errorf("revenue %s = %v, want %v", c.name, *c.got, c.want)
		}
	}
	if revenue.Std == nil || *revenue.Std <= 0 {
		t.Errorf("revenue std = %v, want positive", revenue.Std)
	}

	region := byName["region"]
	if region.Count != 4 || region.NullCount != 2 {
		t.Errorf("region count/nulls = %d/%d, want 4/2", region.Count, region.NullCount)
	}
	if region.Mean != nil || region.Std != nil {
		t.Error("categorical column must not carry numeric stats")
	}

	units := byName["units"]
	if units.Std == nil || *units.Std != 0 {
		t.Errorf("constant column std = %v, want 0", units.Std)
	}
}

func TestDetectOutliersIQR(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	report, err := a.DetectOutliers(ctx, "revenue", MethodIQR, 0)
	if err != nil {
		t.Fatalf("DetectOutliers failed: %v", err)
	}
	if len(report.Indices) != 1 || report.Indices[0] != 5 {
		t.Fatalf("outlier indices = %v, want [5]", report.Indices)
	}
	if report.Values[0] != 100 {
		t.Errorf("outlier value = %v, want 100", report.Values[0])
	}

	// A wide threshold admits everything.
	report, err = a.DetectOutliers(ctx, "revenue", MethodIQR, 100)
	if err != nil {
		t.Fatalf("DetectOutliers failed: %v", err)
	}
	if len(report.Indices) != 0 {
		t.Errorf("expected no outliers at threshold 100, got %v", report.Indices)
	}
}

func TestDetectOutliersZScore(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	// The sample std is inflated by the outlier itself, so the default
	// threshold of 3 finds nothing.
	report, err := a.DetectOutliers(ctx, "revenue", MethodZScore, 0)
	if err != nil {
		t.Fatalf("DetectOutliers failed: %v", err)
	}
	if len(report.Indices) != 0 {
		t.Errorf("expected no outliers at default threshold, got %v", report.Indices)
	}

	report, err = a.DetectOutliers(ctx, "revenue", MethodZScore, 2)
	if err != nil {
		t.Fatalf("DetectOutliers failed: %v", err)
	}
	if len(report.Indices) != 1 || report.Indices[0] != 5 {
		t.Errorf("outlier indices = %v, want [5]", report.Indices)
	}

	// Zero variance yields no outliers rather than dividing by zero.
	report, err = a.DetectOutliers(ctx, "units", MethodZScore, 0)
	if err != nil {
		t.Fatalf("DetectOutliers failed: %v", err)
	}
	if len(report.Indices) != 0 {
		t.Errorf("constant column must have no outliers, got %v", report.Indices)
	}
}

func TestDetectOutliersValidation(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	if _, err := a.DetectOutliers(ctx, "missing", MethodIQR, 0); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}
	if _, err := a.DetectOutliers(ctx, "region", MethodIQR, 0); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("expected ErrNotNumeric, got %v", err)
	}
	if _, err := a.DetectOutliers(ctx, "revenue", "median", 0); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestCorrelationMatrix(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t, salesSource(), 0)

	corr, err := a.CorrelationMatrix(ctx)
	if err != nil {
		t.Fatalf("CorrelationMatrix failed: %v", err)
	}
	wantCols := []string{"revenue", "cost", "units"}
	if fmt.Sprint(corr.Columns) != fmt.Sprint(wantCols) {
		t.Fatalf("columns = %v, want %v", corr.Columns, wantCols)
	}
	for i := range corr.Matrix {
		if corr.Matrix[i][i] != 1 {
			t.Errorf("diagonal [%d][%d] = %v, want 1", i, i, corr.Matrix[i][i])
		}
	}
	if corr.Matrix[0][1] != 0.92 || corr.Matrix[1][0] != 0.92 {
		t.Errorf("revenue/cost = %v and %v, want symmetric 0.92",
			corr.Matrix[0][1], corr.Matrix[1][0])
	}
	if corr.Matrix[1][2] != -0.20 || corr.Matrix[2][1] != -0.20 {
		t.Errorf("cost/units = %v and %v, want symmetric -0.20",
			corr.Matrix[1][2], corr.Matrix[2][1])
	}
}

func TestCorrelationMatrixNoNumericColumns(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{
		columns: []dataset.Column{{Name: "region"}},
		types:   map[string]string{"region": "categorical"},
	}
	a := newTestAnalyzer(t, src, 0)

	if _, err := a.CorrelationMatrix(ctx); !errors.Is(err, ErrNoNumericColumns) {
		t.Errorf("expected ErrNoNumericColumns, got %v", err)
	}
}
