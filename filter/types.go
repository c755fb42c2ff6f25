package filter

// SemanticType is the three-way column classification that drives
// operator and axis eligibility.
type SemanticType string

const (
	Numeric     SemanticType = "numeric"
	Categorical SemanticType = "categorical"
	Datetime    SemanticType = "datetime"
)

// Classify maps a declared column data type to its semantic type.
// It is total: any declared type that is not numeric or datetime is
// treated as categorical.
func Classify(declaredType string) SemanticType {
	switch declaredType {
	case "numeric":
		return Numeric
	case "datetime", "datetime_candidate":
		return Datetime
	default:
		return Categorical
	}
}

// Operator identifies a filter comparison operator.
// The string values are the wire names consumed by the query backends.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpBetween  Operator = "between"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
)

// Predicate is one normalized filter condition produced by Builder.
//
// Exactly one of Value/Values carries the comparison value: Values is
// set only for OpIn, Value2 is set only for OpBetween. Predicates are
// immutable once applied; the Set owns them until removal.
type Predicate struct {
	Column   string   `json:"column" msgpack:"column"`
	Operator Operator `json:"operator" msgpack:"operator"`
	Value    string   `json:"value,omitempty" msgpack:"value,omitempty"`
	Values   []string `json:"values,omitempty" msgpack:"values,omitempty"`
	Value2   string   `json:"value2,omitempty" msgpack:"value2,omitempty"`
}
