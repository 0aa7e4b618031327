package booking

import "errors"

// Result is the uniform envelope handed to callers at the boundary.  Failures
// carry a code and message; successes carry Data.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Failure converts err into a failed Result.  Errors that are not domain
// errors are reported as INTERNAL with a generic message so infrastructure
// details never leak to clients.
func Failure(err error) Result {
	var e *Error
	if errors.As(err, &e) {
		return Result{Code: e.Code, Message: e.Message}
	}
	return Result{Code: CodeInternal, Message: "internal error"}
}
