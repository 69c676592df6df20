package cli

import "fmt"

// ExitError carries the process exit code a command wants to terminate
// with. RunE bodies return it instead of calling os.Exit, so command
// execution stays testable end to end: [RunWithConfig] unwraps the code
// into its [ExecuteResult], and only [Execute] ever terminates the process.
//
// Codes: 0 success, 1 CLI or record error, 2 pipeline did not fully succeed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err is an [ExitError] and, if so, its code.
func IsExitError(err error) (int, bool) {
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code, true
	}
	return 0, false
}
