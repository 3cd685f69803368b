package service

// Error is a verification outcome with a stable machine-readable kind and a
// human-readable message. Handlers branch on the exported values with
// errors.Is and map Kind to their error_type field.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

// Verification flow outcomes. Infrastructure failures are not part of this
// set and propagate as ordinary wrapped errors.
var (
	ErrUserNotFound    = &Error{Kind: "user_not_found", Message: "no account exists for this email"}
	ErrAlreadyVerified = &Error{Kind: "already_verified", Message: "this email is already verified"}
	ErrCodeInvalid     = &Error{Kind: "code_invalid", Message: "verification code is invalid"}
	ErrCodeExpired     = &Error{Kind: "code_expired", Message: "verification code has expired, request a new one"}
	ErrTooManyAttempts = &Error{Kind: "too_many_attempts", Message: "too many failed attempts, request a new code"}
)
