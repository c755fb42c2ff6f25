package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dataviewer/dataviewer-go/chart"
	"github.com/dataviewer/dataviewer-go/dataset"
	"github.com/dataviewer/dataviewer-go/filter"
)

// Analyzer errors.
var (
	// ErrColumnNotFound indicates a column name unknown to the dataset.
	ErrColumnNotFound = errors.New("column not found")

	// ErrNotNumeric indicates an operation that requires a numeric
	// column was given a non-numeric one.
	ErrNotNumeric = errors.New("column must be numeric")

	// ErrNoNumericColumns indicates the dataset has no numeric columns
	// to correlate.
	ErrNoNumericColumns = errors.New("no numeric columns found for correlation analysis")
)

// defaultMaxSuggestions bounds the suggestion list produced by
// SuggestCharts before the engine trims it for display.
const defaultMaxSuggestions = 10

// Correlation threshold above which a scatter plot is suggested for a
// numeric column pair.
const scatterCorrThreshold = 0.5

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	// Source is the dataset to analyze.
	// REQUIRED: MUST NOT be nil.
	Source dataset.Source

	// MaxSuggestions bounds the list returned by SuggestCharts.
	// OPTIONAL: Defaults to 10.
	MaxSuggestions int

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// Analyzer computes chart suggestions and descriptive statistics for
// one dataset source. Safe to recreate cheaply when the session
// switches datasets.
type Analyzer struct {
	source         dataset.Source
	maxSuggestions int
	logger         *slog.Logger
}

// NewAnalyzer creates an analyzer over the given source.
func NewAnalyzer(cfg AnalyzerConfig) (*Analyzer, error) {
	if cfg.Source == nil {
		return nil, errors.New("analysis: analyzer requires a source")
	}
	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		source:         cfg.Source,
		maxSuggestions: maxSuggestions,
		logger:         logger,
	}, nil
}

// columnBuckets splits the dataset's columns by semantic type,
// preserving dataset column order within each bucket.
type columnBuckets struct {
	numeric     []string
	categorical []string
	datetime    []string

	// uniques maps column name to its distinct value count, used to
	// keep category-based suggestions to a readable cardinality.
	uniques map[string]int64
}

func (a *Analyzer) bucketColumns(ctx context.Context) (*columnBuckets, error) {
	columns, err := a.source.Columns(ctx)
	if err != nil {
		return nil, err
	}
	declared, err := a.source.DataTypes(ctx)
	if err != nil {
		return nil, err
	}

	b := &columnBuckets{uniques: make(map[string]int64, len(columns))}
	for _, col := range columns {
		b.uniques[col.Name] = col.UniqueCount
		switch filter.Classify(declared[col.Name]) {
		case filter.Numeric:
			b.numeric = append(b.numeric, col.Name)
		case filter.Datetime:
			b.datetime = append(b.datetime, col.Name)
		default:
			b.categorical = append(b.categorical, col.Name)
		}
	}
	return b, nil
}

// SuggestCharts proposes chart configurations ranked by priority,
// highest first. The heuristic favors time series when datetime
// columns exist, then correlation views, distributions, categorical
// comparisons and high-correlation scatter pairs.
func (a *Analyzer) SuggestCharts(ctx context.Context) ([]chart.Suggestion, error) {
	b, err := a.bucketColumns(ctx)
	if err != nil {
		return nil, err
	}

	var suggestions []chart.Suggestion
	priority := 1
	add := func(t chart.Type, x, y, reason string) {
		suggestions = append(suggestions, chart.Suggestion{
			ChartType: t,
			XColumn:   x,
			YColumn:   y,
			Reason:    reason,
			Priority:  priority,
		})
		priority++
	}

	// Time series pairs come first.
	for _, dt := range head(b.datetime, 2) {
		for _, num := range head(b.numeric, 3) {
			add(chart.TimeSeries, dt, num,
				fmt.Sprintf("Time series analysis of %s over %s", num, dt))
		}
	}

	if len(b.numeric) >= 3 {
		add(chart.Heatmap, "", "", "Correlation analysis between numeric variables")
	}

	for _, col := range head(b.numeric, 3) {
		add(chart.Histogram, col, "", fmt.Sprintf("Distribution analysis of %s", col))
	}

	for _, cat := range head(b.categorical, 2) {
		if u := b.uniques[cat]; u < 2 || u > 10 {
			continue
		}
		for _, num := range head(b.numeric, 2) {
			add(chart.Box, cat, num,
				fmt.Sprintf("Compare %s distribution across %s categories", num, cat))
		}
	}

	// Scatter plots for strongly correlated numeric pairs. A failed
	// correlation query skips the pair rather than failing the whole
	// suggestion pass.
	for i, x := range head(b.numeric, 5) {
		for _, y := range between(b.numeric, i+1, 6) {
			r, err := a.source.Correlate(ctx, x, y)
			if err != nil {
				a.logger.Warn("correlation for scatter suggestion failed",
					"x", x, "y", y, "error", err)
				continue
			}
			if r := math.Abs(r); r > scatterCorrThreshold {
				add(chart.Scatter, x, y,
					fmt.Sprintf("Correlation between %s and %s (r=%.2f)", x, y, r))
			}
		}
	}

	for _, cat := range head(b.categorical, 3) {
		if u := b.uniques[cat]; u >= 2 && u <= 20 {
			add(chart.Bar, cat, "", fmt.Sprintf("Frequency distribution of %s", cat))
		}
	}

	if len(suggestions) > a.maxSuggestions {
		suggestions = suggestions[:a.maxSuggestions]
	}
	return suggestions, nil
}

// head returns at most n leading elements of s.
func head(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// between returns s[lo:hi] clamped to the slice bounds.
func between(s []string, lo, hi int) []string {
	if lo >= len(s) {
		return nil
	}
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}
