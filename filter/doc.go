// Package filter implements the column-typed filter predicate engine.
//
// The package covers three concerns:
//   - Classifying columns into semantic types (numeric, categorical,
//     datetime) from their declared data type. Classify is the single
//     source of truth for type-dependent behavior, so operator
//     eligibility and chart axis eligibility never disagree.
//   - Enumerating the operators legal for each semantic type via
//     OperatorsFor, in stable display order.
//   - Building, validating and holding filter predicates. Builder is an
//     explicit state machine for constructing one predicate at a time;
//     Set is the ordered collection of applied predicates.
//
// # Basic Usage
//
//	b, err := filter.NewBuilder(filter.BuilderConfig{
//	    Columns: map[string]filter.SemanticType{
//	        "age":  filter.Numeric,
//	        "city": filter.Categorical,
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//
//	b.SelectColumn("age")
//	b.SelectOperator(ctx, filter.OpBetween)
//	b.SetValue("10")
//	b.SetSecondValue("50")
//
//	if b.CanApply() {
//	    pred, _ := b.Apply()
//	    set.Add(ctx, pred)
//	}
//
// # SQL Encoding
//
// SQLEncoder converts applied predicates into a WHERE clause body for
// the query backends:
//
//	enc := filter.NewSQLEncoder(types)
//	where := enc.EncodeFilters(set.Predicates())
//	if where != "" {
//	    query := "SELECT * FROM data WHERE " + where
//	}
//
// Predicates are always combined with AND; the package never merges or
// deduplicates predicates on the same column.
package filter
