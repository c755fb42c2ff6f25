package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Assembly errors.
var (
	// ErrMissingFields indicates Build was called while CanGenerate is
	// false: a required axis for the current chart type is unset.
	ErrMissingFields = errors.New("required chart fields are missing")

	// ErrInvalidChartType indicates an unknown chart type.
	ErrInvalidChartType = errors.New("invalid chart type")
)

// NumericColorPrefix marks a color selection as a numeric column to be
// rendered as a continuous gradient instead of categorical grouping.
// The prefix is stripped before the column name reaches the spec.
const NumericColorPrefix = "numeric:"

// Assembler holds the working chart configuration for one chart.
//
// Axis selections (x, y, color, size, title) survive a chart-type
// switch; every type-specific option is reset to its documented
// default on SetType. Owned by a single session goroutine.
type Assembler struct {
	chartType Type

	x     string
	y     string
	color string
	size  string
	title string

	line      lineOptions
	bar       barOptions
	scatter   scatterOptions
	histogram histogramOptions
	box       boxOptions
	heatmap   heatmapOptions
}

// NewAssembler creates an assembler for the given chart type with all
// options at their defaults.
func NewAssembler(t Type) (*Assembler, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChartType, t)
	}
	a := &Assembler{chartType: t}
	a.resetOptions()
	return a, nil
}

// ChartType returns the current chart type.
func (a *Assembler) ChartType() Type { return a.chartType }

// SetType switches the chart type and resets every type-specific
// option to its documented default. Axis selections are kept.
// Cross-type option leakage is a correctness bug, so the reset happens
// even when switching back to a previously configured type.
func (a *Assembler) SetType(t Type) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChartType, t)
	}
	a.chartType = t
	a.resetOptions()
	return nil
}

func (a *Assembler) resetOptions() {
	a.line = defaultLineOptions()
	a.bar = defaultBarOptions()
	a.scatter = defaultScatterOptions()
	a.histogram = defaultHistogramOptions()
	a.box = defaultBoxOptions()
	a.heatmap = defaultHeatmapOptions()
}

// SetX selects the x-axis column. Empty string clears it.
func (a *Assembler) SetX(column string) { a.x = column }

// X returns the x-axis column.
func (a *Assembler) X() string { return a.x }

// SetY selects the single y-axis column. Empty string clears it.
func (a *Assembler) SetY(column string) { a.y = column }

// Y returns the single y-axis column.
func (a *Assembler) Y() string { return a.y }

// SetTitle sets the chart title.
func (a *Assembler) SetTitle(title string) { a.title = title }

// Title returns the chart title.
func (a *Assembler) Title() string { return a.title }

// SetSize selects the marker-size column (scatter only at build time).
func (a *Assembler) SetSize(column string) { a.size = column }

// SetColor selects the color column. A selection carrying
// NumericColorPrefix is routed to the continuous-gradient option
// instead of the categorical color column; the two are mutually
// exclusive and selecting one clears the other.
func (a *Assembler) SetColor(column string) {
	if numeric, ok := strings.CutPrefix(column, NumericColorPrefix); ok {
		a.scatter.colorNumeric = numeric
		a.color = ""
		return
	}
	a.color = column
	a.scatter.colorNumeric = ""
}

// Color returns the categorical color column, if any.
func (a *Assembler) Color() string { return a.color }

// ColorNumeric returns the numeric-gradient color column, if any.
func (a *Assembler) ColorNumeric() string { return a.scatter.colorNumeric }

// SetYColumns replaces the multi-Y selection (line charts). Any member
// of the secondary-axis set no longer present is removed, keeping the
// subset invariant.
func (a *Assembler) SetYColumns(columns []string) {
	a.line.yColumns = append([]string(nil), columns...)
	a.pruneSecondary()
}

// YColumns returns a copy of the multi-Y selection.
func (a *Assembler) YColumns() []string {
	return append([]string(nil), a.line.yColumns...)
}

// AddYColumn appends a column to the multi-Y selection if not present.
func (a *Assembler) AddYColumn(column string) {
	for _, c := range a.line.yColumns {
		if c == column {
			return
		}
	}
	a.line.yColumns = append(a.line.yColumns, column)
}

// RemoveYColumn removes a column from the multi-Y selection and from
// the secondary-axis set.
func (a *Assembler) RemoveYColumn(column string) {
	a.line.yColumns = removeString(a.line.yColumns, column)
	a.pruneSecondary()
}

// SetSecondaryYColumns replaces the secondary-axis set. Columns not in
// the multi-Y selection are dropped: the secondary set is always a
// subset of YColumns.
func (a *Assembler) SetSecondaryYColumns(columns []string) {
	a.line.secondaryY = append([]string(nil), columns...)
	a.pruneSecondary()
}

// SecondaryYColumns returns a copy of the secondary-axis set.
func (a *Assembler) SecondaryYColumns() []string {
	return append([]string(nil), a.line.secondaryY...)
}

// CanAssignSecondary reports whether secondary-axis assignment should
// be offered: it needs at least two selected Y columns.
func (a *Assembler) CanAssignSecondary() bool {
	return len(a.line.yColumns) >= 2
}

func (a *Assembler) pruneSecondary() {
	if len(a.line.secondaryY) == 0 {
		return
	}
	member := make(map[string]bool, len(a.line.yColumns))
	for _, c := range a.line.yColumns {
		member[c] = true
	}
	kept := a.line.secondaryY[:0]
	for _, c := range a.line.secondaryY {
		if member[c] {
			kept = append(kept, c)
		}
	}
	a.line.secondaryY = kept
}

// SetBarMode sets the bar combination mode (default group).
func (a *Assembler) SetBarMode(m BarMode) error {
	if a.chartType != Bar {
		return &OptionError{Option: "bar_mode", Type: a.chartType}
	}
	if m != BarModeGroup && m != BarModeStack {
		return &OptionError{Option: "bar_mode", Reason: fmt.Sprintf("unknown mode %q", m)}
	}
	a.bar.mode = m
	return nil
}

// SetSortOrder sets the bar category sort order (default none).
func (a *Assembler) SetSortOrder(s SortOrder) error {
	if a.chartType != Bar {
		return &OptionError{Option: "sort_order", Type: a.chartType}
	}
	switch s {
	case SortNone, SortAsc, SortDesc, SortAlpha:
		a.bar.sort = s
		return nil
	default:
		return &OptionError{Option: "sort_order", Reason: fmt.Sprintf("unknown order %q", s)}
	}
}

// SetOrientation sets the bar orientation (default vertical).
func (a *Assembler) SetOrientation(o Orientation) error {
	if a.chartType != Bar {
		return &OptionError{Option: "orientation", Type: a.chartType}
	}
	if o != OrientationVertical && o != OrientationHorizontal {
		return &OptionError{Option: "orientation", Reason: fmt.Sprintf("unknown orientation %q", o)}
	}
	a.bar.orientation = o
	return nil
}

// SetShowTrendline toggles the scatter trendline (default off).
func (a *Assembler) SetShowTrendline(show bool) error {
	if a.chartType != Scatter {
		return &OptionError{Option: "show_trendline", Type: a.chartType}
	}
	a.scatter.showTrendline = show
	return nil
}

// SetTrendlineDegree sets the polynomial degree of the scatter
// trendline, 1 through 3 (default 1).
func (a *Assembler) SetTrendlineDegree(degree int) error {
	if a.chartType != Scatter {
		return &OptionError{Option: "trendline_degree", Type: a.chartType}
	}
	if degree < 1 || degree > 3 {
		return &OptionError{Option: "trendline_degree", Reason: fmt.Sprintf("degree %d out of range [1,3]", degree)}
	}
	a.scatter.trendlineDegree = degree
	return nil
}

// SetShowDistributionFit toggles the histogram distribution-fit overlay.
func (a *Assembler) SetShowDistributionFit(show bool) error {
	if a.chartType != Histogram {
		return &OptionError{Option: "show_distribution_fit", Type: a.chartType}
	}
	a.histogram.showDistributionFit = show
	return nil
}

// SetShowStatistics toggles the histogram statistics annotation.
func (a *Assembler) SetShowStatistics(show bool) error {
	if a.chartType != Histogram {
		return &OptionError{Option: "show_statistics", Type: a.chartType}
	}
	a.histogram.showStatistics = show
	return nil
}

// SetShowPoints toggles point overlays on box and violin charts.
func (a *Assembler) SetShowPoints(show bool) error {
	if a.chartType != Box && a.chartType != Violin {
		return &OptionError{Option: "show_points", Type: a.chartType}
	}
	a.box.showPoints = show
	return nil
}

// SetHorizontal toggles horizontal box and violin charts.
func (a *Assembler) SetHorizontal(horizontal bool) error {
	if a.chartType != Box && a.chartType != Violin {
		return &OptionError{Option: "horizontal", Type: a.chartType}
	}
	a.box.horizontal = horizontal
	return nil
}

// SetColorscale sets the heatmap colorscale (default RdBu).
func (a *Assembler) SetColorscale(scale string) error {
	if a.chartType != Heatmap {
		return &OptionError{Option: "colorscale", Type: a.chartType}
	}
	a.heatmap.colorscale = scale
	return nil
}

// SetShowAnnotations toggles heatmap cell annotations (default on).
func (a *Assembler) SetShowAnnotations(show bool) error {
	if a.chartType != Heatmap {
		return &OptionError{Option: "show_annotations", Type: a.chartType}
	}
	a.heatmap.showAnnotations = show
	return nil
}

// CanGenerate reports whether the required fields for the current
// chart type are present: heatmap needs nothing, histogram needs x
// only, line needs x and a single or multi y, everything else needs
// both x and y.
func (a *Assembler) CanGenerate() bool {
	switch a.chartType {
	case Heatmap:
		return true
	case Histogram:
		return a.x != ""
	case Line:
		return a.x != "" && (a.y != "" || len(a.line.yColumns) > 0)
	default:
		return a.x != "" && a.y != ""
	}
}

// ApplySuggestion populates chart type, x, y and title from the
// suggestion in one atomic update, overwriting any in-progress
// selection. The type switch resets all type-specific options.
func (a *Assembler) ApplySuggestion(s Suggestion) error {
	if err := a.SetType(s.ChartType); err != nil {
		return err
	}
	a.x = s.XColumn
	a.y = s.YColumn
	a.title = s.Reason
	return nil
}

// Build assembles the normalized Spec for the rendering backend.
// Options equal to their documented default are omitted. Returns
// ErrMissingFields while CanGenerate is false.
func (a *Assembler) Build() (Spec, error) {
	if !a.CanGenerate() {
		return Spec{}, fmt.Errorf("%w for %s chart", ErrMissingFields, a.chartType)
	}

	spec := Spec{
		ChartType: a.chartType,
		XColumn:   a.x,
		YColumn:   a.y,
		Title:     a.title,
	}
	if a.chartType != Heatmap {
		spec.ColorColumn = a.color
	}
	if a.chartType == Scatter {
		spec.SizeColumn = a.size
	}

	opts := map[string]any{}
	switch a.chartType {
	case Line:
		if len(a.line.yColumns) > 0 {
			opts["y_columns"] = a.YColumns()
			if spec.YColumn == "" {
				spec.YColumn = a.line.yColumns[0]
			}
		}
		if len(a.line.secondaryY) > 0 {
			opts["secondary_y_columns"] = a.SecondaryYColumns()
		}
	case Bar:
		if a.bar.mode != BarModeGroup {
			opts["bar_mode"] = string(a.bar.mode)
		}
		if a.bar.sort != SortNone {
			opts["sort_order"] = string(a.bar.sort)
		}
		if a.bar.orientation != OrientationVertical {
			opts["orientation"] = string(a.bar.orientation)
		}
	case Scatter:
		if a.scatter.showTrendline {
			opts["show_trendline"] = true
		}
		if a.scatter.trendlineDegree != 1 {
			opts["trendline_degree"] = a.scatter.trendlineDegree
		}
		if a.scatter.colorNumeric != "" {
			opts["color_numeric"] = a.scatter.colorNumeric
		}
	case Histogram:
		if a.histogram.showDistributionFit {
			opts["show_distribution_fit"] = true
		}
		if a.histogram.showStatistics {
			opts["show_statistics"] = true
		}
	case Box, Violin:
		if a.box.showPoints {
			opts["show_points"] = true
		}
		if a.box.horizontal {
			opts["horizontal"] = true
		}
	case Heatmap:
		if a.heatmap.colorscale != DefaultColorscale {
			opts["colorscale"] = a.heatmap.colorscale
		}
		if !a.heatmap.showAnnotations {
			opts["show_annotations"] = false
		}
	case TimeSeries:
		// Mirrors the single y selection for the renderer.
		opts["value_columns"] = []string{a.y}
	}

	if len(opts) > 0 {
		spec.Options = opts
	}
	return spec, nil
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
