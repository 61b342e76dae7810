package bracket

import "errors"

// Error kinds. Every DomainError unwraps to one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized")
)

// DomainError carries a message meant to be shown to the user as is.
type DomainError struct {
	kind error
	msg  string
}

func (e *DomainError) Error() string { return e.msg }

func (e *DomainError) Unwrap() error { return e.kind }

func NewValidationError(msg string) error {
	return &DomainError{kind: ErrValidation, msg: msg}
}

func NewAuthorizationError(msg string) error {
	return &DomainError{kind: ErrUnauthorized, msg: msg}
}

var (
	ErrBracketLocked  = NewValidationError("Bracket is locked; cannot regenerate.")
	ErrNotParticipant = NewAuthorizationError("Not authorized to report this match.")
	ErrNotCaptain     = NewAuthorizationError("Only captains may report team matches.")
	ErrDraw           = NewValidationError("No draws allowed.")
)
