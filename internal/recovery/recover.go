// Package recovery provides panic recovery for injected collaborators.
// Ensures user-provided renderers and suggestion providers don't crash
// the session.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and an error carrying the
// panic message; the stack trace is logged.
//
// Example:
//
//	result, err := recovery.RecoverToValue(logger, "Render", func() (*RenderResult, error) {
//	    return renderer.Render(ctx, spec, data)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()

			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(stack),
			)

			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
