package chart

import "fmt"

// BarMode controls how bar series are combined.
type BarMode string

const (
	BarModeGroup BarMode = "group" // default
	BarModeStack BarMode = "stack"
)

// SortOrder controls bar category ordering.
type SortOrder string

const (
	SortNone  SortOrder = "none" // default
	SortAsc   SortOrder = "asc"
	SortDesc  SortOrder = "desc"
	SortAlpha SortOrder = "alpha"
)

// Orientation controls bar direction.
type Orientation string

const (
	OrientationVertical   Orientation = "v" // default
	OrientationHorizontal Orientation = "h"
)

// DefaultColorscale is the heatmap colorscale used when none is chosen.
const DefaultColorscale = "RdBu"

// lineOptions carries line-chart state: the multi-Y selection and the
// secondary-axis subset.
type lineOptions struct {
	yColumns   []string
	secondaryY []string
}

type barOptions struct {
	mode        BarMode
	sort        SortOrder
	orientation Orientation
}

type scatterOptions struct {
	showTrendline   bool
	trendlineDegree int
	colorNumeric    string // continuous gradient column, exclusive with ColorColumn
}

type histogramOptions struct {
	showDistributionFit bool
	showStatistics      bool
}

// boxOptions is shared by box and violin charts.
type boxOptions struct {
	showPoints bool
	horizontal bool
}

type heatmapOptions struct {
	colorscale      string
	showAnnotations bool
}

func defaultLineOptions() lineOptions {
	return lineOptions{}
}

func defaultBarOptions() barOptions {
	return barOptions{mode: BarModeGroup, sort: SortNone, orientation: OrientationVertical}
}

func defaultScatterOptions() scatterOptions {
	return scatterOptions{trendlineDegree: 1}
}

func defaultHistogramOptions() histogramOptions {
	return histogramOptions{}
}

func defaultBoxOptions() boxOptions {
	return boxOptions{}
}

func defaultHeatmapOptions() heatmapOptions {
	return heatmapOptions{colorscale: DefaultColorscale, showAnnotations: true}
}

// OptionError indicates an option set on a chart type it does not
// belong to, or an option value outside its legal set.
type OptionError struct {
	Option string
	Type   Type
	Reason string
}

func (e *OptionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("option %q: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("option %q does not apply to %s charts", e.Option, e.Type)
}
