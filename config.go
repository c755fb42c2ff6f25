package dataviewer

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dataviewer/dataviewer-go/chart"
	"github.com/dataviewer/dataviewer-go/dataset"
)

// Renderer is the consumed rendering backend. It receives the
// normalized chart spec together with the filtered data and produces a
// serialized figure. The engine never interprets the figure bytes.
type Renderer interface {
	Render(ctx context.Context, spec chart.Spec, data *dataset.QueryResult) (*RenderResult, error)
}

// RenderResult is the renderer's output.
type RenderResult struct {
	// Figure is the serialized figure, typically JSON.
	Figure []byte
}

// Suggester proposes chart configurations for the active dataset,
// ranked by priority with 1 highest.
type Suggester interface {
	SuggestCharts(ctx context.Context) ([]chart.Suggestion, error)
}

// SessionConfig contains configuration for a data exploration session.
type SessionConfig struct {
	// Source is the initial dataset.
	// REQUIRED: MUST NOT be nil.
	Source dataset.Source

	// Renderer produces figures from chart specs.
	// REQUIRED: MUST NOT be nil.
	Renderer Renderer

	// Suggester provides chart suggestions.
	// OPTIONAL: If nil, the analysis package's heuristic over the
	// active source is used.
	Suggester Suggester

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// MaxFilterOptions bounds the distinct-value fetch for categorical
	// filter dropdowns.
	// OPTIONAL: If 0, defaults to 100.
	MaxFilterOptions int

	// PreviewLimit bounds the rows held in the filtered preview that is
	// refreshed on every filter change.
	// OPTIONAL: If 0, defaults to 100.
	PreviewLimit int

	// ChartRowLimit bounds the rows handed to the renderer.
	// OPTIONAL: If 0, defaults to 10000.
	ChartRowLimit int
}

// Standard errors returned by the dataviewer package.
var (
	// ErrInvalidConfig indicates SessionConfig validation failed.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrNoChart indicates GenerateChart was called before a chart type
	// was configured.
	ErrNoChart = errors.New("no chart configured")

	// ErrTicketSourceMismatch indicates a refresh ticket issued for a
	// different dataset than the session's active one.
	ErrTicketSourceMismatch = errors.New("ticket was issued for a different dataset")
)

// Preview and chart defaults.
const (
	defaultPreviewLimit  = 100
	defaultChartRowLimit = 10000
)

// newLogger resolves the configured logger the same way for every
// entry point: explicit logger wins, then a text logger at LogLevel,
// then the process default.
func newLogger(logger *slog.Logger, level *slog.Level) *slog.Logger {
	if logger != nil {
		return logger
	}
	if level != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *level}))
	}
	return slog.Default()
}
