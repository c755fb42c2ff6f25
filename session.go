package dataviewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dataviewer/dataviewer-go/analysis"
	"github.com/dataviewer/dataviewer-go/chart"
	"github.com/dataviewer/dataviewer-go/dataset"
	"github.com/dataviewer/dataviewer-go/filter"
	"github.com/dataviewer/dataviewer-go/internal/recovery"
	"github.com/dataviewer/dataviewer-go/internal/ticket"
)

// ChartResult is the outcome of chart generation.
type ChartResult struct {
	// Spec is the normalized chart configuration the renderer received.
	Spec chart.Spec

	// Render is the renderer's output.
	Render *RenderResult

	// Ticket is an opaque refresh token. Pass it to RefreshChart to
	// re-render the same chart later, regardless of how the working
	// state has moved on.
	Ticket []byte

	// TotalRows is the filtered row count the chart was built over.
	TotalRows int64
}

// Session is the working state of one data exploration dialog: the
// active dataset, its column metadata, the applied filters and the
// chart being configured.
//
// A session is owned by a single goroutine. Distinct sessions are
// independent and may run concurrently.
type Session struct {
	source   dataset.Source
	renderer Renderer
	logger   *slog.Logger

	suggester        Suggester
	defaultSuggester bool

	maxFilterOptions int
	previewLimit     int
	chartRowLimit    int

	columns  []dataset.Column
	declared map[string]string
	types    map[string]filter.SemanticType

	filters   *filter.Set
	assembler *chart.Assembler
	codec     *ticket.Codec

	preview *dataset.QueryResult
}

// NewSession creates a session over the given source. Column metadata
// is fetched and an unfiltered preview query is issued immediately, so
// a misconfigured source fails fast.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidConfig)
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("%w: renderer is required", ErrInvalidConfig)
	}

	previewLimit := cfg.PreviewLimit
	if previewLimit <= 0 {
		previewLimit = defaultPreviewLimit
	}
	chartRowLimit := cfg.ChartRowLimit
	if chartRowLimit <= 0 {
		chartRowLimit = defaultChartRowLimit
	}

	codec, err := ticket.NewCodec()
	if err != nil {
		return nil, err
	}

	s := &Session{
		source:           cfg.Source,
		renderer:         cfg.Renderer,
		logger:           newLogger(cfg.Logger, cfg.LogLevel),
		suggester:        cfg.Suggester,
		maxFilterOptions: cfg.MaxFilterOptions,
		previewLimit:     previewLimit,
		chartRowLimit:    chartRowLimit,
		codec:            codec,
	}
	s.filters = filter.NewSet(s.requery)

	if cfg.Suggester == nil {
		s.defaultSuggester = true
		if err := s.resetSuggester(); err != nil {
			codec.Close()
			return nil, err
		}
	}

	if err := s.loadMetadata(ctx, cfg.Source); err != nil {
		codec.Close()
		return nil, err
	}
	if err := s.requery(ctx, nil); err != nil {
		codec.Close()
		return nil, err
	}

	s.logger.Info("session started", "source", cfg.Source.ID(), "columns", len(s.columns))
	return s, nil
}

// Close releases the session's resources. The dataset source is owned
// by the caller and stays open.
func (s *Session) Close() error {
	return s.codec.Close()
}

func (s *Session) resetSuggester() error {
	analyzer, err := analysis.NewAnalyzer(analysis.AnalyzerConfig{
		Source: s.source,
		Logger: s.logger,
	})
	if err != nil {
		return err
	}
	s.suggester = analyzer
	return nil
}

// loadMetadata fetches and caches column metadata and semantic types
// for the given source.
func (s *Session) loadMetadata(ctx context.Context, src dataset.Source) error {
	columns, err := src.Columns(ctx)
	if err != nil {
		return fmt.Errorf("failed to load column metadata: %w", err)
	}
	declared, err := src.DataTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load data types: %w", err)
	}

	types := make(map[string]filter.SemanticType, len(declared))
	for name, dt := range declared {
		types[name] = filter.Classify(dt)
	}

	s.columns = columns
	s.declared = declared
	s.types = types
	return nil
}

// requery refreshes the filtered preview. Installed as the filter
// set's change callback, so a failure here rolls the mutation back.
func (s *Session) requery(ctx context.Context, predicates []filter.Predicate) error {
	res, err := s.source.Query(ctx, dataset.Query{
		Filters: predicates,
		Limit:   s.previewLimit,
	})
	if err != nil {
		return fmt.Errorf("filtered query failed: %w", err)
	}
	s.preview = res
	return nil
}

// Source returns the active dataset source.
func (s *Session) Source() dataset.Source { return s.source }

// Columns returns the cached column metadata of the active dataset.
func (s *Session) Columns() []dataset.Column {
	return append([]dataset.Column(nil), s.columns...)
}

// SemanticTypes returns the cached column name to semantic type map.
func (s *Session) SemanticTypes() map[string]filter.SemanticType {
	out := make(map[string]filter.SemanticType, len(s.types))
	for name, t := range s.types {
		out[name] = t
	}
	return out
}

// Preview returns the filtered preview refreshed on the last filter
// change, including the filtered row count.
func (s *Session) Preview() *dataset.QueryResult { return s.preview }

// SwitchDataset replaces the active source. Column metadata is
// re-fetched, filters are discarded and the chart configuration is
// reset. Any failure along the way rolls the whole switch back, so the
// session stays fully on the old dataset and the user can retry.
func (s *Session) SwitchDataset(ctx context.Context, src dataset.Source) error {
	prev := sessionState{
		source:    s.source,
		columns:   s.columns,
		declared:  s.declared,
		types:     s.types,
		filters:   s.filters,
		assembler: s.assembler,
		suggester: s.suggester,
		preview:   s.preview,
	}

	s.source = src
	if err := s.loadMetadata(ctx, src); err != nil {
		s.restore(prev)
		return err
	}

	s.filters = filter.NewSet(s.requery)
	s.assembler = nil
	if s.defaultSuggester {
		if err := s.resetSuggester(); err != nil {
			s.restore(prev)
			return err
		}
	}
	if err := s.requery(ctx, nil); err != nil {
		s.restore(prev)
		return err
	}

	s.logger.Info("dataset switched", "source", src.ID())
	return nil
}

// sessionState snapshots the per-dataset working state for rollback.
type sessionState struct {
	source    dataset.Source
	columns   []dataset.Column
	declared  map[string]string
	types     map[string]filter.SemanticType
	filters   *filter.Set
	assembler *chart.Assembler
	suggester Suggester
	preview   *dataset.QueryResult
}

func (s *Session) restore(prev sessionState) {
	s.source = prev.source
	s.columns = prev.columns
	s.declared = prev.declared
	s.types = prev.types
	s.filters = prev.filters
	s.assembler = prev.assembler
	s.suggester = prev.suggester
	s.preview = prev.preview
}

// NewFilterBuilder creates a filter builder over the active dataset's
// columns, with distinct values fetched through the source.
func (s *Session) NewFilterBuilder() (*filter.Builder, error) {
	return filter.NewBuilder(filter.BuilderConfig{
		Columns:    s.types,
		Fetch:      s.source.DistinctValues,
		MaxOptions: s.maxFilterOptions,
		Logger:     s.logger,
	})
}

// ApplyFilter appends a predicate and refreshes the preview. On query
// failure the predicate is not retained.
func (s *Session) ApplyFilter(ctx context.Context, p filter.Predicate) error {
	return s.filters.Add(ctx, p)
}

// RemoveFilter removes the predicate at the given index and refreshes
// the preview. On query failure the predicate is restored.
func (s *Session) RemoveFilter(ctx context.Context, index int) error {
	return s.filters.RemoveAt(ctx, index)
}

// ClearFilters removes all predicates. Clearing more than three
// filters requires confirmed=true; otherwise ErrConfirmationRequired
// is returned and nothing changes.
func (s *Session) ClearFilters(ctx context.Context, confirmed bool) error {
	if confirmed {
		return s.filters.ClearConfirmed(ctx)
	}
	return s.filters.Clear(ctx)
}

// Filters returns the applied predicates in application order.
func (s *Session) Filters() []filter.Predicate { return s.filters.Predicates() }

// ConfigureChart starts a chart configuration of the given type,
// replacing any chart in progress, and returns the assembler for axis
// and option selection.
func (s *Session) ConfigureChart(t chart.Type) (*chart.Assembler, error) {
	a, err := chart.NewAssembler(t)
	if err != nil {
		return nil, err
	}
	s.assembler = a
	return a, nil
}

// Chart returns the assembler of the chart in progress, or nil when no
// chart is configured.
func (s *Session) Chart() *chart.Assembler { return s.assembler }

// GenerateChart builds the chart spec, queries the filtered data and
// submits both to the renderer. The working configuration is untouched
// by failures at any stage, so the user can adjust and retry.
func (s *Session) GenerateChart(ctx context.Context) (*ChartResult, error) {
	if s.assembler == nil {
		return nil, ErrNoChart
	}
	spec, err := s.assembler.Build()
	if err != nil {
		return nil, err
	}
	return s.render(ctx, spec, s.filters.Predicates())
}

// RefreshChart re-renders a previously generated chart from its
// ticket. The session's working state is not consulted or modified;
// the ticket must belong to the active dataset.
func (s *Session) RefreshChart(ctx context.Context, data []byte) (*ChartResult, error) {
	t, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if t.SourceID != s.source.ID() {
		return nil, fmt.Errorf("%w: ticket for %q, active is %q",
			ErrTicketSourceMismatch, t.SourceID, s.source.ID())
	}

	res, err := s.render(ctx, t.Chart, t.Filters)
	if err != nil {
		return nil, err
	}
	res.Ticket = data
	return res, nil
}

func (s *Session) render(ctx context.Context, spec chart.Spec, predicates []filter.Predicate) (*ChartResult, error) {
	data, err := s.source.Query(ctx, dataset.Query{
		Filters: predicates,
		Limit:   s.chartRowLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("chart data query failed: %w", err)
	}

	render, err := recovery.RecoverToValue(s.logger, "Render", func() (*RenderResult, error) {
		return s.renderer.Render(ctx, spec, data)
	})
	if err != nil {
		return nil, fmt.Errorf("chart rendering failed: %w", err)
	}

	tk, err := s.codec.Encode(&ticket.Ticket{
		SourceID: s.source.ID(),
		Chart:    spec,
		Filters:  predicates,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chart generated", "type", spec.ChartType, "rows", data.TotalRows)
	return &ChartResult{
		Spec:      spec,
		Render:    render,
		Ticket:    tk,
		TotalRows: data.TotalRows,
	}, nil
}

// Suggestions returns the top chart suggestions for the active
// dataset, at most chart.MaxSuggestions, highest priority first.
//
// A failed fetch is logged and yields an empty list; suggestions are
// an optional aid and never block the dialog.
func (s *Session) Suggestions(ctx context.Context) []chart.Suggestion {
	suggestions, err := recovery.RecoverToValue(s.logger, "SuggestCharts", func() ([]chart.Suggestion, error) {
		return s.suggester.SuggestCharts(ctx)
	})
	if err != nil {
		s.logger.Warn("chart suggestion fetch failed, showing none", "error", err)
		return nil
	}
	return chart.TopSuggestions(suggestions)
}

// ApplySuggestion adopts a suggestion as the chart in progress,
// overwriting any existing configuration in one step.
func (s *Session) ApplySuggestion(suggestion chart.Suggestion) error {
	if s.assembler == nil {
		a, err := chart.NewAssembler(suggestion.ChartType)
		if err != nil {
			return err
		}
		s.assembler = a
	}
	// SetType validates before mutating, so a rejected suggestion
	// leaves the existing configuration intact.
	return s.assembler.ApplySuggestion(suggestion)
}
