// Package dataviewer provides a high-level API for building interactive
// tabular data exploration backends: dataset loading, filter
// construction, chart configuration and chart suggestions.
//
// The dataviewer package ties the building blocks together:
//   - Classifying dataset columns into numeric, datetime and
//     categorical semantic types
//   - Building filter predicates through a validated state machine
//   - Managing the ordered set of applied filters with automatic
//     re-querying
//   - Assembling chart configurations with per-type options and
//     required-field gating
//   - Consuming ranked chart suggestions from the analysis layer
//
// # Quick Start
//
// Load a CSV file and drive a filtered chart in a few lines:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/dataviewer/dataviewer-go"
//	    "github.com/dataviewer/dataviewer-go/chart"
//	    "github.com/dataviewer/dataviewer-go/dataset"
//	    "github.com/dataviewer/dataviewer-go/filter"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    db, err := dataset.OpenDuckDB()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer db.Close()
//
//	    src, err := dataset.NewCSVSource(ctx, dataset.CSVSourceConfig{
//	        DB: db, ID: "sales", Path: "sales.csv",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer src.Close()
//
//	    session, err := dataviewer.NewSession(ctx, dataviewer.SessionConfig{
//	        Source:   src,
//	        Renderer: myRenderer,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer session.Close()
//
//	    // Build and apply a filter.
//	    b, _ := session.NewFilterBuilder()
//	    b.SelectColumn("revenue")
//	    b.SelectOperator(ctx, filter.OpGt)
//	    b.SetValue("1000")
//	    p, _ := b.Apply()
//	    if err := session.ApplyFilter(ctx, p); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Configure and generate a chart over the filtered data.
//	    a, _ := session.ConfigureChart(chart.Scatter)
//	    a.SetX("revenue")
//	    a.SetY("cost")
//	    result, err := session.GenerateChart(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("chart over %d rows", result.TotalRows)
//	}
//
// # Architecture
//
// The package follows an interface-based design:
//
//   - dataset.Source: queryable dataset (CSV via DuckDB, PostgreSQL
//     tables)
//   - Renderer: consumed rendering backend, receives the normalized
//     chart spec and the filtered data
//   - Suggester: chart suggestion provider, defaulting to the analysis
//     package's heuristic
//
// The Session owns the working state: the active source's column
// metadata, the applied filter set and the chart assembler. Every
// filter mutation re-queries the source; a failed query rolls the
// mutation back so the previous state is never lost.
//
// # Concurrency
//
// A Session and its builders are owned by a single goroutine. Distinct
// sessions are fully independent and may run concurrently. Blocking
// operations take a context.Context and respect cancellation.
//
// # Logging
//
// The package uses log/slog. Pass a configured Logger in SessionConfig
// or set a LogLevel to get a default text logger at that level.
package dataviewer
