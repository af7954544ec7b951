package snapshot

// ErrorCategory classifies a snapshot error for recovery guidance.
type ErrorCategory int

const (
	// ErrCategoryInput indicates an invalid request (bad mode/range combo).
	ErrCategoryInput ErrorCategory = iota
	// ErrCategoryRender indicates the render pipeline itself failed even
	// after degradation; callers should surface a generic failure message.
	ErrCategoryRender
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryInput:
		return "Invalid Input"
	case ErrCategoryRender:
		return "Render Error"
	default:
		return "Unknown Error"
	}
}

// SnapshotError is an error with recovery information.
type SnapshotError struct {
	Category ErrorCategory // Type of error for determining recovery actions
	Message  string        // Human-readable error message
	HelpText string        // Additional guidance for the user
}

// Error implements the error interface.
func (e SnapshotError) Error() string {
	return e.Message
}

// NewSnapshotError creates a SnapshotError with the given category and message.
func NewSnapshotError(category ErrorCategory, message string) SnapshotError {
	return SnapshotError{
		Category: category,
		Message:  message,
	}
}

// WithHelpText sets additional help text for the error.
func (e SnapshotError) WithHelpText(help string) SnapshotError {
	e.HelpText = help
	return e
}
