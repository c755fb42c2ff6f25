package filter

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		declared string
		want     SemanticType
	}{
		{"numeric", Numeric},
		{"datetime", Datetime},
		{"datetime_candidate", Datetime},
		{"categorical", Categorical},
		{"object", Categorical},
		{"", Categorical},
		{"NUMERIC", Categorical}, // declared types are exact, lowercase
	}
	for _, tt := range tests {
		if got := Classify(tt.declared); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.declared, got, tt.want)
		}
	}
}

func TestOperatorsForOrder(t *testing.T) {
	tests := []struct {
		semType SemanticType
		want    []Operator
	}{
		{Numeric, []Operator{OpEq, OpNe, OpGt, OpLt, OpGte, OpLte, OpBetween}},
		{Categorical, []Operator{OpEq, OpNe, OpContains, OpIn}},
		{Datetime, []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpBetween}},
	}
	for _, tt := range tests {
		specs := OperatorsFor(tt.semType)
		if len(specs) != len(tt.want) {
			t.Fatalf("OperatorsFor(%s): expected %d operators, got %d",
				tt.semType, len(tt.want), len(specs))
		}
		seen := make(map[Operator]bool)
		for i, spec := range specs {
			if spec.Operator != tt.want[i] {
				t.Errorf("OperatorsFor(%s)[%d] = %s, want %s",
					tt.semType, i, spec.Operator, tt.want[i])
			}
			if spec.Label == "" {
				t.Errorf("OperatorsFor(%s)[%d] has empty label", tt.semType, i)
			}
			if seen[spec.Operator] {
				t.Errorf("OperatorsFor(%s) contains duplicate %s", tt.semType, spec.Operator)
			}
			seen[spec.Operator] = true
		}
	}
}

func TestOperatorsForReturnsCopy(t *testing.T) {
	specs := OperatorsFor(Numeric)
	specs[0].Operator = OpContains
	if OperatorsFor(Numeric)[0].Operator != OpEq {
		t.Error("OperatorsFor must return a copy of the table")
	}
}

func TestOperatorValidFor(t *testing.T) {
	tests := []struct {
		op      Operator
		semType SemanticType
		want    bool
	}{
		{OpBetween, Numeric, true},
		{OpBetween, Categorical, false},
		{OpBetween, Datetime, true},
		{OpContains, Categorical, true},
		{OpContains, Numeric, false},
		{OpContains, Datetime, false},
		{OpIn, Categorical, true},
		{OpIn, Numeric, false},
		{OpNe, Datetime, false},
		{OpNe, Numeric, true},
		{OpEq, Datetime, true},
	}
	for _, tt := range tests {
		if got := tt.op.ValidFor(tt.semType); got != tt.want {
			t.Errorf("%s.ValidFor(%s) = %v, want %v", tt.op, tt.semType, got, tt.want)
		}
	}
}

func TestClassifyDrivesRegistry(t *testing.T) {
	// The classifier output must line up with the registry for every
	// declared type, so predicate validity never disagrees with the UI.
	for _, declared := range []string{"numeric", "datetime", "datetime_candidate", "text", "bool"} {
		specs := OperatorsFor(Classify(declared))
		if len(specs) == 0 {
			t.Errorf("no operators for declared type %q", declared)
		}
		for _, spec := range specs {
			if !spec.Operator.ValidFor(Classify(declared)) {
				t.Errorf("operator %s listed but not valid for %q", spec.Operator, declared)
			}
		}
	}
}
