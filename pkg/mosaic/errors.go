package mosaic

import "fmt"

// InvalidInputError reports a rejected conversion input: malformed image
// bytes, a non-square source, or an out-of-range grid size. It names the
// offending parameter and the violated constraint so callers can correct
// the input and resubmit.
type InvalidInputError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Param, e.Reason)
}

func invalidInput(param, format string, args ...any) error {
	return &InvalidInputError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
