// Package chart implements chart specification assembly.
//
// Assembler holds the working selections for one chart (type, axes,
// color/size encodings, type-specific options) and produces a
// normalized Spec for the rendering backend. Options are modeled as a
// closed per-type variant rather than a free-form bag, so switching
// chart types can never leak an option from the previous type: SetType
// resets every type-specific field to its documented default.
//
// # Basic Usage
//
//	a, err := chart.NewAssembler(chart.Bar)
//	if err != nil {
//	    return err
//	}
//	a.SetX("city")
//	a.SetY("sales")
//	a.SetBarMode(chart.BarModeStack)
//
//	if a.CanGenerate() {
//	    spec, _ := a.Build()
//	    // submit spec to the renderer
//	}
//
// Build emits only options that differ from their documented defaults,
// keeping wire payloads minimal.
//
// Suggestions produced by the analysis collaborator are applied with
// ApplySuggestion, which atomically populates chart type, x, y and
// title, overwriting any in-progress selection.
package chart
