package resend

import (
	"errors"
	"fmt"
	"time"
)

// Request rejection reasons. The controller maps each to a status and a
// stable client-facing message.
var (
	ErrInvalidName              = errors.New("invalid name")
	ErrInvalidEmail             = errors.New("invalid email")
	ErrInvalidEmailFormat       = errors.New("invalid email format")
	ErrInvalidRegistrationID    = errors.New("invalid registration id")
	ErrInvalidVerificationToken = errors.New("invalid verification token")

	// ErrMismatch covers both a wrong email and a wrong token. Deliberately
	// indistinct so callers cannot probe which field was wrong.
	ErrMismatch = errors.New("request does not match registration")

	ErrAlreadyVerified = errors.New("email already verified")
	ErrStore           = errors.New("registration lookup failed")
	ErrSendFailed      = errors.New("verification email send failed")
)

// CooldownError rejects a resend that arrives too soon after the previous
// email. RetryAfter is how long the client should wait.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("resend throttled, retry after %s", e.RetryAfter)
}

// AsCooldown unwraps err into a *CooldownError if it is one.
func AsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
