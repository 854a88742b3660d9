package learning

import "errors"

// Error kinds. Callers wrap them with context (fmt.Errorf("...: %w", ErrX))
// and the HTTP layer classifies them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalid         = errors.New("invalid input")

	ErrBadCredentials = errors.New("incorrect username or password")
	ErrInactiveUser   = errors.New("inactive user")
)

// ReasonQuizIncomplete is the gate reason when a quiz question lacks a graded answer.
const ReasonQuizIncomplete = "complete the quiz first"
