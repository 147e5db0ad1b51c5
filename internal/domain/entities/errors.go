package entities

import "errors"

// Error taxonomy for the review pipeline. Callers classify with errors.Is.
var (
	// ErrValidation marks missing or malformed input. No side effects were performed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent proposal, record or user.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a proposal that is no longer pending.
	ErrConflict = errors.New("already reviewed")
	// ErrForbidden marks self-review, a missing role or a blocked account.
	ErrForbidden = errors.New("forbidden")
	// ErrDependency marks a merge or audit write that failed after the transition committed.
	ErrDependency = errors.New("dependency failure")
	// ErrNotification marks a failed outbound notification. It is logged, never returned to callers.
	ErrNotification = errors.New("notification failure")
)

// IsSkippable reports whether a batch item failing with err is skipped with a warning
// rather than treated as a failed review. Dependency failures happen after the
// transition committed and are never skippable, whatever they wrap.
func IsSkippable(err error) bool {
	if errors.Is(err, ErrDependency) {
		return false
	}
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden)
}

// ErrorKind returns a short label for err, used for metrics and HTTP status mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDependency):
		return "dependency"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotification):
		return "notification"
	default:
		return "internal"
	}
}
