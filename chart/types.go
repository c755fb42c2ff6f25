package chart

// Type identifies a supported chart type.
type Type string

const (
	Line       Type = "line"
	Bar        Type = "bar"
	Scatter    Type = "scatter"
	Histogram  Type = "histogram"
	Box        Type = "box"
	Violin     Type = "violin"
	Heatmap    Type = "heatmap"
	TimeSeries Type = "time_series"
)

// Types lists all supported chart types in display order.
func Types() []Type {
	return []Type{Line, Bar, Scatter, Histogram, Box, Violin, Heatmap, TimeSeries}
}

// Valid reports whether t is a supported chart type.
func (t Type) Valid() bool {
	switch t {
	case Line, Bar, Scatter, Histogram, Box, Violin, Heatmap, TimeSeries:
		return true
	}
	return false
}

// Spec is the normalized chart description handed to the rendering
// backend. Built transiently by Assembler.Build; read-only afterwards.
type Spec struct {
	ChartType   Type           `json:"chart_type" msgpack:"chart_type"`
	XColumn     string         `json:"x_column,omitempty" msgpack:"x_column,omitempty"`
	YColumn     string         `json:"y_column,omitempty" msgpack:"y_column,omitempty"`
	ColorColumn string         `json:"color_column,omitempty" msgpack:"color_column,omitempty"`
	SizeColumn  string         `json:"size_column,omitempty" msgpack:"size_column,omitempty"`
	Title       string         `json:"title,omitempty" msgpack:"title,omitempty"`
	Options     map[string]any `json:"options,omitempty" msgpack:"options,omitempty"`
}

// Suggestion is a ranked candidate chart configuration proposed by the
// analysis collaborator. Never mutated by the engine.
type Suggestion struct {
	ChartType Type   `json:"chart_type"`
	XColumn   string `json:"x_column,omitempty"`
	YColumn   string `json:"y_column,omitempty"`
	Reason    string `json:"reason"`
	Priority  int    `json:"priority"` // 1 = highest
}

// MaxSuggestions is the number of suggestions the engine consumes for
// display, highest priority first.
const MaxSuggestions = 5

// TopSuggestions returns at most MaxSuggestions suggestions from the
// already-ranked list.
func TopSuggestions(suggestions []Suggestion) []Suggestion {
	if len(suggestions) <= MaxSuggestions {
		return suggestions
	}
	return suggestions[:MaxSuggestions]
}
