package errx

import (
	"fmt"
	"net/http"
)

// ToolError is returned when an external tool (structured lookup, QA
// backend) fails. It always wraps the underlying cause.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// WrapTool wraps err as a tool failure for the named tool. The result is an
// AppError with status 502 whose cause is a *ToolError.
func WrapTool(tool string, err error) error {
	if err == nil {
		return nil
	}
	return New(&ToolError{Tool: tool, Err: err}, http.StatusBadGateway, fmt.Sprintf("tool %s failed", tool))
}
