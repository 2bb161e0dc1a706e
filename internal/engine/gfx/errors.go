package gfx

import "fmt"

// ContextUnavailableError reports that a surface cannot provide a context
// with the requested attributes. There is no fallback path.
type ContextUnavailableError struct {
	Requested ContextAttributes
	Err       error
}

func (e *ContextUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graphics context %s unavailable: %v", e.Requested, e.Err)
	}
	return fmt.Sprintf("graphics context %s unavailable", e.Requested)
}

func (e *ContextUnavailableError) Unwrap() error {
	return e.Err
}
