package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dataviewer/dataviewer-go/filter"
)

// Outlier detection methods and their conventional thresholds.
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"

	DefaultIQRThreshold    = 1.5
	DefaultZScoreThreshold = 3.0
)

// ColumnStats holds descriptive statistics for one column. The numeric
// fields are nil for non-numeric columns and for empty datasets.
type ColumnStats struct {
	Column       string   `json:"column"`
	Count        int64    `json:"count"`
	NullCount    int64    `json:"null_count"`
	UniqueValues int64    `json:"unique_values"`
	Mean         *float64 `json:"mean,omitempty"`
	Std          *float64 `json:"std,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Q25          *float64 `json:"q25,omitempty"`
	Median       *float64 `json:"median,omitempty"`
	Q75          *float64 `json:"q75,omitempty"`
}

// OutlierReport lists the outliers found in one numeric column.
// Indices are positions within the column's non-null value sequence.
type OutlierReport struct {
	Column  string    `json:"column"`
	Method  string    `json:"method"`
	Indices []int     `json:"outlier_indices"`
	Values  []float64 `json:"outlier_values"`
}

// Correlation is the pairwise Pearson correlation matrix of the
// dataset's numeric columns. Matrix[i][j] correlates Columns[i] with
// Columns[j]; the diagonal is 1.
type Correlation struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

// SummaryStats returns descriptive statistics for every column in
// dataset column order. Numeric columns additionally get mean, sample
// standard deviation, min, max and quartiles.
func (a *Analyzer) SummaryStats(ctx context.Context) ([]ColumnStats, error) {
	columns, err := a.source.Columns(ctx)
	if err != nil {
		return nil, err
	}
	declared, err := a.source.DataTypes(ctx)
	if err != nil {
		return nil, err
	}
	total, err := a.source.RowCount(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]ColumnStats, 0, len(columns))
	for _, col := range columns {
		s := ColumnStats{
			Column:       col.Name,
			Count:        total - col.NullCount,
			NullCount:    col.NullCount,
			UniqueValues: col.UniqueCount,
		}
		if filter.Classify(declared[col.Name]) == filter.Numeric {
			values, err := a.source.NumericValues(ctx, col.Name)
			if err != nil {
				return nil, err
			}
			fillNumericStats(&s, values)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func fillNumericStats(s *ColumnStats, values []float64) {
	if len(values) == 0 {
		return
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = ptr(mean(values))
	s.Min = ptr(sorted[0])
	s.Max = ptr(sorted[len(sorted)-1])
	s.Q25 = ptr(quantile(sorted, 0.25))
	s.Median = ptr(quantile(sorted, 0.5))
	s.Q75 = ptr(quantile(sorted, 0.75))
	if len(values) >= 2 {
		s.Std = ptr(sampleStd(values))
	}
}

// DetectOutliers finds outliers in a numeric column. Method is
// MethodIQR or MethodZScore; a non-positive threshold selects the
// method's conventional default.
func (a *Analyzer) DetectOutliers(ctx context.Context, column, method string, threshold float64) (*OutlierReport, error) {
	declared, err := a.source.DataTypes(ctx)
	if err != nil {
		return nil, err
	}
	dt, ok := declared[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	if filter.Classify(dt) != filter.Numeric {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, column)
	}

	values, err := a.source.NumericValues(ctx, column)
	if err != nil {
		return nil, err
	}

	report := &OutlierReport{Column: column, Method: method}
	switch method {
	case MethodIQR:
		if threshold <= 0 {
			threshold = DefaultIQRThreshold
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		if len(sorted) == 0 {
			return report, nil
		}
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lower := q1 - threshold*iqr
		upper := q3 + threshold*iqr
		for i, v := range values {
			if v < lower || v > upper {
				report.Indices = append(report.Indices, i)
				report.Values = append(report.Values, v)
			}
		}

	case MethodZScore:
		if threshold <= 0 {
			threshold = DefaultZScoreThreshold
		}
		if len(values) < 2 {
			return report, nil
		}
		m := mean(values)
		std := sampleStd(values)
		if std == 0 {
			return report, nil
		}
		for i, v := range values {
			if math.Abs(v-m)/std > threshold {
				report.Indices = append(report.Indices, i)
				report.Values = append(report.Values, v)
			}
		}

	default:
		return nil, fmt.Errorf("unknown outlier method: %s", method)
	}
	return report, nil
}

// CorrelationMatrix computes the pairwise Pearson correlation of all
// numeric columns server-side.
func (a *Analyzer) CorrelationMatrix(ctx context.Context) (*Correlation, error) {
	b, err := a.bucketColumns(ctx)
	if err != nil {
		return nil, err
	}
	if len(b.numeric) == 0 {
		return nil, ErrNoNumericColumns
	}

	n := len(b.numeric)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := a.source.Correlate(ctx, b.numeric[i], b.numeric[j])
			if err != nil {
				return nil, err
			}
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return &Correlation{Columns: b.numeric, Matrix: matrix}, nil
}

func ptr(v float64) *float64 { return &v }

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the standard deviation with one delta degree of
// freedom. Callers guarantee len(values) >= 2.
func sampleStd(values []float64) float64 {
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quantile interpolates linearly between the two nearest order
// statistics. Values must be sorted and non-empty.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
