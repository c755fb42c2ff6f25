package filter

import "fmt"

// OperatorSpec pairs an operator with its display label.
type OperatorSpec struct {
	Operator Operator
	Label    string
}

// operatorTable is the fixed eligibility table. Order matters: it is
// the enumeration order presented to callers.
var operatorTable = map[SemanticType][]OperatorSpec{
	Numeric: {
		{OpEq, "equals"},
		{OpNe, "not equals"},
		{OpGt, "greater than"},
		{OpLt, "less than"},
		{OpGte, "greater or equal"},
		{OpLte, "less or equal"},
		{OpBetween, "between"},
	},
	Categorical: {
		{OpEq, "equals"},
		{OpNe, "not equals"},
		{OpContains, "contains"},
		{OpIn, "in list"},
	},
	Datetime: {
		{OpEq, "equals"},
		{OpGt, "after"},
		{OpLt, "before"},
		{OpGte, "on or after"},
		{OpLte, "on or before"},
		{OpBetween, "between"},
	},
}

// OperatorsFor returns the operators legal for the given semantic type,
// in display order. The returned slice is a copy and safe to modify.
func OperatorsFor(t SemanticType) []OperatorSpec {
	specs := operatorTable[t]
	out := make([]OperatorSpec, len(specs))
	copy(out, specs)
	return out
}

// ValidFor reports whether the operator is legal for the semantic type.
func (o Operator) ValidFor(t SemanticType) bool {
	for _, spec := range operatorTable[t] {
		if spec.Operator == o {
			return true
		}
	}
	return false
}

// Label returns the display label for the operator, independent of
// semantic type. Datetime-specific wording is handled by OperatorsFor.
func (o Operator) Label() string {
	for _, specs := range [...][]OperatorSpec{operatorTable[Numeric], operatorTable[Categorical]} {
		for _, spec := range specs {
			if spec.Operator == o {
				return spec.Label
			}
		}
	}
	return string(o)
}

// OperatorError indicates an operator that is not legal for the
// semantic type of the selected column.
type OperatorError struct {
	Operator Operator
	Type     SemanticType
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %q is not valid for %s columns", e.Operator, e.Type)
}
