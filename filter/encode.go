package filter

import (
	"strconv"
	"strings"
)

// SQLEncoder encodes predicates to a SQL WHERE clause body understood
// by both query backends (DuckDB and PostgreSQL): double-quoted
// identifiers, single-quoted string literals, standard BETWEEN/IN/LIKE.
type SQLEncoder struct {
	types map[string]SemanticType
}

// NewSQLEncoder creates an encoder. The types map drives literal
// rendering: values on numeric columns that parse as numbers are
// emitted unquoted, everything else is quoted. A nil map quotes all
// values.
func NewSQLEncoder(types map[string]SemanticType) *SQLEncoder {
	return &SQLEncoder{types: types}
}

// EncodeFilters converts all predicates to a WHERE clause body without
// the "WHERE" keyword. Predicates are AND-combined in order. Returns
// empty string if no predicate can be encoded.
func (e *SQLEncoder) EncodeFilters(predicates []Predicate) string {
	var parts []string
	for _, p := range predicates {
		if encoded := e.Encode(p); encoded != "" {
			parts = append(parts, encoded)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, ") AND (") + ")"
	}
}

// Encode converts a single predicate to SQL. Returns empty string when
// the predicate has no usable value (e.g. an empty in-list).
func (e *SQLEncoder) Encode(p Predicate) string {
	col := quoteIdent(p.Column)

	switch p.Operator {
	case OpEq:
		return col + " = " + e.literal(p.Column, p.Value)
	case OpNe:
		return col + " <> " + e.literal(p.Column, p.Value)
	case OpGt:
		return col + " > " + e.literal(p.Column, p.Value)
	case OpLt:
		return col + " < " + e.literal(p.Column, p.Value)
	case OpGte:
		return col + " >= " + e.literal(p.Column, p.Value)
	case OpLte:
		return col + " <= " + e.literal(p.Column, p.Value)
	case OpBetween:
		// Inclusive on both bounds.
		return col + " BETWEEN " + e.literal(p.Column, p.Value) +
			" AND " + e.literal(p.Column, p.Value2)
	case OpContains:
		// Case-insensitive substring match over the text rendering.
		return "lower(CAST(" + col + " AS VARCHAR)) LIKE " +
			quoteString("%"+strings.ToLower(p.Value)+"%")
	case OpIn:
		if len(p.Values) == 0 {
			return ""
		}
		items := make([]string, len(p.Values))
		for i, v := range p.Values {
			items[i] = e.literal(p.Column, v)
		}
		return col + " IN (" + strings.Join(items, ", ") + ")"
	default:
		return ""
	}
}

// literal renders a value for the given column. Numeric columns get a
// bare numeric literal when the value parses; all other values are
// quoted and rely on backend coercion (date strings compare fine
// against DATE/TIMESTAMP columns in both backends).
func (e *SQLEncoder) literal(column, value string) string {
	if e.types != nil && e.types[column] == Numeric {
		trimmed := strings.TrimSpace(value)
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return trimmed
		}
	}
	return quoteString(value)
}

// quoteIdent quotes an identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteString quotes a string literal, doubling embedded quotes.
func quoteString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
