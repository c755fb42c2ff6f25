package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Builder construction and apply errors.
var (
	// ErrUnknownColumn indicates a column name not present in the
	// builder's column set.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoColumn indicates an operation that requires a selected column.
	ErrNoColumn = errors.New("no column selected")

	// ErrNotReady indicates Apply was called while CanApply is false.
	ErrNotReady = errors.New("filter is not ready to apply")
)

// errBetweenOrder is the blocking validation message for a numeric
// between range whose upper bound does not exceed the lower bound.
const errBetweenOrder = "End value must be greater than start value"

// State identifies the builder's position in the construction flow.
type State int

const (
	// StateIdle: no column selected.
	StateIdle State = iota
	// StateColumnChosen: column selected, no operator yet.
	StateColumnChosen
	// StateOperatorChosen: column and operator selected, no value yet.
	StateOperatorChosen
	// StateInvalid: value entered but a blocking validation error is set.
	StateInvalid
	// StateValid: value entered and the predicate can be applied.
	StateValid
)

// OptionsFetcher returns the bounded distinct-value list for a column.
// Used to populate the closed-choice input for categorical eq/ne
// filters. The list may be truncated by the fetcher at limit entries.
type OptionsFetcher func(ctx context.Context, column string, limit int) ([]string, error)

// BuilderConfig configures a filter Builder.
type BuilderConfig struct {
	// Columns maps column names to their semantic types.
	// REQUIRED: MUST be non-empty.
	Columns map[string]SemanticType

	// Fetch provides distinct values for categorical eq/ne filters.
	// OPTIONAL: If nil, those filters fall back to free-text input.
	Fetch OptionsFetcher

	// MaxOptions bounds the distinct-value fetch.
	// OPTIONAL: Defaults to 100 if 0.
	MaxOptions int

	// Logger for non-blocking fetch failures.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// Builder constructs and validates one filter predicate at a time.
//
// The builder is an explicit state machine: selecting a column resets
// the operator and all value state, selecting an operator resets only
// the value state. Apply emits the normalized predicate and returns the
// builder to StateIdle.
//
// Not safe for concurrent use: a builder belongs to a single session.
type Builder struct {
	columns    map[string]SemanticType
	fetch      OptionsFetcher
	maxOptions int
	logger     *slog.Logger

	column   string
	semType  SemanticType
	operator Operator
	hasOp    bool

	value   string
	value2  string
	values  []string
	hasVal  bool
	invalid string

	// Distinct values cached per column for the builder's lifetime.
	// Only successful fetches are cached; failures degrade to free text
	// and are retried on the next eq/ne selection.
	options map[string][]string
}

// NewBuilder creates a filter builder for the given column set.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if len(cfg.Columns) == 0 {
		return nil, errors.New("filter: builder requires at least one column")
	}
	maxOptions := cfg.MaxOptions
	if maxOptions <= 0 {
		maxOptions = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	columns := make(map[string]SemanticType, len(cfg.Columns))
	for name, t := range cfg.Columns {
		columns[name] = t
	}
	return &Builder{
		columns:    columns,
		fetch:      cfg.Fetch,
		maxOptions: maxOptions,
		logger:     logger,
		options:    make(map[string][]string),
	}, nil
}

// State returns the builder's current state.
func (b *Builder) State() State {
	switch {
	case b.column == "":
		return StateIdle
	case !b.hasOp:
		return StateColumnChosen
	case !b.hasVal:
		return StateOperatorChosen
	case b.invalid != "":
		return StateInvalid
	default:
		return StateValid
	}
}

// Column returns the selected column name, or "" in StateIdle.
func (b *Builder) Column() string { return b.column }

// ColumnType returns the semantic type of the selected column.
func (b *Builder) ColumnType() SemanticType { return b.semType }

// Operator returns the selected operator. Valid only past StateColumnChosen.
func (b *Builder) Operator() Operator { return b.operator }

// Operators returns the operators legal for the selected column, in
// display order. Returns nil in StateIdle.
func (b *Builder) Operators() []OperatorSpec {
	if b.column == "" {
		return nil
	}
	return OperatorsFor(b.semType)
}

// SelectColumn selects the filter column and resets operator and value
// state. Returns ErrUnknownColumn for columns outside the builder's set.
func (b *Builder) SelectColumn(name string) error {
	t, ok := b.columns[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	b.column = name
	b.semType = t
	b.hasOp = false
	b.operator = ""
	b.resetValues()
	return nil
}

// SelectOperator selects the operator and resets value state. The
// operator must be legal for the selected column's semantic type.
//
// For categorical eq/ne, SelectOperator fetches the column's distinct
// values through the configured fetcher so the UI can offer a closed
// choice. A fetch failure is logged and the input degrades to free
// text; it is never a blocking validation error.
func (b *Builder) SelectOperator(ctx context.Context, op Operator) error {
	if b.column == "" {
		return ErrNoColumn
	}
	if !op.ValidFor(b.semType) {
		return &OperatorError{Operator: op, Type: b.semType}
	}
	b.operator = op
	b.hasOp = true
	b.resetValues()

	if b.semType == Categorical && (op == OpEq || op == OpNe) {
		b.loadOptions(ctx)
	}
	return nil
}

// loadOptions populates the distinct-value cache for the current column.
func (b *Builder) loadOptions(ctx context.Context) {
	if b.fetch == nil {
		return
	}
	if _, ok := b.options[b.column]; ok {
		return
	}
	values, err := b.fetch(ctx, b.column, b.maxOptions)
	if err != nil {
		b.logger.Warn("filter option fetch failed, falling back to free text",
			"column", b.column, "error", err)
		return
	}
	b.options[b.column] = values
}

// Options returns the cached distinct values for the selected column.
// Returns nil when no options are available (fetch missing, failed, or
// still pending), in which case the caller should offer free-text input.
func (b *Builder) Options() []string {
	if b.column == "" {
		return nil
	}
	return b.options[b.column]
}

// SetValue sets the primary filter value. For the in operator the input
// is treated as a comma-separated list: segments are trimmed, empty
// segments discarded, order and duplicates preserved.
func (b *Builder) SetValue(input string) {
	if !b.hasOp {
		return
	}
	b.hasVal = true
	if b.operator == OpIn {
		b.values = splitListInput(input)
		b.value = ""
	} else {
		b.value = input
		b.values = nil
	}
	b.validate()
}

// SetSecondValue sets the upper bound for the between operator.
// Ignored for all other operators.
func (b *Builder) SetSecondValue(input string) {
	if !b.hasOp || b.operator != OpBetween {
		return
	}
	b.hasVal = true
	b.value2 = input
	b.validate()
}

// ValidationError returns the current blocking validation message, or
// "" when none is set. While non-empty, CanApply is false.
func (b *Builder) ValidationError() string { return b.invalid }

// validate recomputes the blocking validation error from value state.
func (b *Builder) validate() {
	b.invalid = ""
	if b.operator != OpBetween {
		return
	}
	// If both bounds parse as numbers the range must be ascending.
	// Non-numeric bounds (date strings) are delegated to the backend.
	lo, err1 := strconv.ParseFloat(strings.TrimSpace(b.value), 64)
	hi, err2 := strconv.ParseFloat(strings.TrimSpace(b.value2), 64)
	if err1 == nil && err2 == nil && hi <= lo {
		b.invalid = errBetweenOrder
	}
}

// CanApply reports whether the builder holds a complete, valid filter.
func (b *Builder) CanApply() bool {
	if b.column == "" || !b.hasOp || b.invalid != "" {
		return false
	}
	switch b.operator {
	case OpBetween:
		return b.value != "" && b.value2 != ""
	case OpIn:
		return len(b.values) > 0
	default:
		return b.value != ""
	}
}

// Apply emits the normalized predicate and resets the builder to
// StateIdle. Returns ErrNotReady if CanApply is false.
func (b *Builder) Apply() (Predicate, error) {
	if !b.CanApply() {
		if b.invalid != "" {
			return Predicate{}, fmt.Errorf("%w: %s", ErrNotReady, b.invalid)
		}
		return Predicate{}, ErrNotReady
	}
	p := Predicate{
		Column:   b.column,
		Operator: b.operator,
	}
	switch b.operator {
	case OpIn:
		p.Values = append([]string(nil), b.values...)
	case OpBetween:
		p.Value = b.value
		p.Value2 = b.value2
	default:
		p.Value = b.value
	}
	b.Reset()
	return p, nil
}

// Reset returns the builder to StateIdle. The distinct-value cache is
// kept: it lives as long as the builder instance.
func (b *Builder) Reset() {
	b.column = ""
	b.semType = ""
	b.operator = ""
	b.hasOp = false
	b.resetValues()
}

func (b *Builder) resetValues() {
	b.value = ""
	b.value2 = ""
	b.values = nil
	b.hasVal = false
	b.invalid = ""
}

// splitListInput splits comma-separated free text into list values.
func splitListInput(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
