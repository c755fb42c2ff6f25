// Package analysis provides exploratory data analysis over a dataset
// source: chart suggestions ranked by priority, per-column summary
// statistics, outlier detection and the numeric correlation matrix.
//
// The Analyzer pulls values and metadata through the dataset.Source
// interface, so the same code serves CSV-backed and database-backed
// datasets.
//
// Example usage:
//
//	a, err := analysis.NewAnalyzer(analysis.AnalyzerConfig{Source: src})
//	if err != nil {
//		return err
//	}
//	suggestions, err := a.SuggestCharts(ctx)
//	if err != nil {
//		return err
//	}
//	for _, s := range suggestions {
//		fmt.Println(s.ChartType, s.Reason)
//	}
package analysis
