package models

import "fmt"

// Error codes used in run outcomes and internal error handling.
const (
	ErrCodeTimeout      = "RUN_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeProbe        = "PORTAL_UNREACHABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// MonitorError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type MonitorError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MonitorError) Unwrap() error {
	return e.Err
}

// NewMonitorError creates a new MonitorError.
func NewMonitorError(code, message string, err error) *MonitorError {
	return &MonitorError{Code: code, Message: message, Err: err}
}
