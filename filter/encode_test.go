package filter

import "testing"

func testEncoder() *SQLEncoder {
	return NewSQLEncoder(map[string]SemanticType{
		"age":     Numeric,
		"city":    Categorical,
		"created": Datetime,
	})
}

func TestEncodeComparisons(t *testing.T) {
	enc := testEncoder()
	tests := []struct {
		p    Predicate
		want string
	}{
		{Predicate{Column: "age", Operator: OpEq, Value: "42"}, `"age" = 42`},
		{Predicate{Column: "age", Operator: OpNe, Value: "42"}, `"age" <> 42`},
		{Predicate{Column: "age", Operator: OpGt, Value: "10"}, `"age" > 10`},
		{Predicate{Column: "age", Operator: OpLt, Value: "10"}, `"age" < 10`},
		{Predicate{Column: "age", Operator: OpGte, Value: "10"}, `"age" >= 10`},
		{Predicate{Column: "age", Operator: OpLte, Value: "10"}, `"age" <= 10`},
		{Predicate{Column: "city", Operator: OpEq, Value: "Berlin"}, `"city" = 'Berlin'`},
		{Predicate{Column: "created", Operator: OpGte, Value: "2024-01-01"}, `"created" >= '2024-01-01'`},
	}
	for _, tt := range tests {
		if got := enc.Encode(tt.p); got != tt.want {
			t.Errorf("Encode(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestEncodeBetween(t *testing.T) {
	enc := testEncoder()
	got := enc.Encode(Predicate{Column: "age", Operator: OpBetween, Value: "10", Value2: "50"})
	if got != `"age" BETWEEN 10 AND 50` {
		t.Errorf("unexpected between SQL: %q", got)
	}

	got = enc.Encode(Predicate{Column: "created", Operator: OpBetween, Value: "2024-01-01", Value2: "2024-06-01"})
	if got != `"created" BETWEEN '2024-01-01' AND '2024-06-01'` {
		t.Errorf("unexpected datetime between SQL: %q", got)
	}
}

func TestEncodeContains(t *testing.T) {
	enc := testEncoder()
	got := enc.Encode(Predicate{Column: "city", Operator: OpContains, Value: "Ber"})
	if got != `lower(CAST("city" AS VARCHAR)) LIKE '%ber%'` {
		t.Errorf("unexpected contains SQL: %q", got)
	}
}

func TestEncodeIn(t *testing.T) {
	enc := testEncoder()
	got := enc.Encode(Predicate{Column: "city", Operator: OpIn, Values: []string{"a", "b"}})
	if got != `"city" IN ('a', 'b')` {
		t.Errorf("unexpected in SQL: %q", got)
	}

	if got := enc.Encode(Predicate{Column: "city", Operator: OpIn}); got != "" {
		t.Errorf("empty in-list must encode to empty string, got %q", got)
	}
}

func TestEncodeQuoting(t *testing.T) {
	enc := testEncoder()

	got := enc.Encode(Predicate{Column: `we"ird`, Operator: OpEq, Value: "x"})
	if got != `"we""ird" = 'x'` {
		t.Errorf("identifier quoting broken: %q", got)
	}

	got = enc.Encode(Predicate{Column: "city", Operator: OpEq, Value: "O'Brien"})
	if got != `"city" = 'O''Brien'` {
		t.Errorf("string escaping broken: %q", got)
	}

	// Non-numeric value on a numeric column falls back to a quoted literal.
	got = enc.Encode(Predicate{Column: "age", Operator: OpEq, Value: "abc"})
	if got != `"age" = 'abc'` {
		t.Errorf("non-numeric fallback broken: %q", got)
	}
}

func TestEncodeFiltersConjunction(t *testing.T) {
	enc := testEncoder()

	if got := enc.EncodeFilters(nil); got != "" {
		t.Errorf("expected empty clause, got %q", got)
	}

	one := enc.EncodeFilters([]Predicate{{Column: "age", Operator: OpGt, Value: "10"}})
	if one != `"age" > 10` {
		t.Errorf("single filter must not be parenthesized: %q", one)
	}

	two := enc.EncodeFilters([]Predicate{
		{Column: "age", Operator: OpGt, Value: "10"},
		{Column: "city", Operator: OpEq, Value: "Berlin"},
	})
	if two != `("age" > 10) AND ("city" = 'Berlin')` {
		t.Errorf("unexpected conjunction: %q", two)
	}

	// Unencodable predicates are skipped, keeping the rest.
	mixed := enc.EncodeFilters([]Predicate{
		{Column: "city", Operator: OpIn},
		{Column: "age", Operator: OpGt, Value: "10"},
	})
	if mixed != `"age" > 10` {
		t.Errorf("unexpected clause with skipped predicate: %q", mixed)
	}
}
