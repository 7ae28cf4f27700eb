package validation

import "regexp"

// Field limits for resend requests.
const (
	MaxNameLen  = 200
	MaxEmailLen = 254
)

// Email rules:
// - Exactly one "@" with non-empty local and domain parts.
// - Domain must contain a dot with something after it.
// - No whitespace or additional "@" anywhere.
// - Length checked separately (MaxEmailLen).
//
// Examples valid: jane@example.org, a@b.co
// Examples invalid: jane@example, @example.org, jane@, "ja ne@x.org", ""
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidName returns true if the display name is non-empty and within limits.
func ValidName(name string) bool {
	return name != "" && len(name) <= MaxNameLen
}

// ValidEmail returns true if the address is non-empty and within limits.
// Format is checked separately by ValidEmailFormat.
func ValidEmail(email string) bool {
	return email != "" && len(email) <= MaxEmailLen
}

// ValidEmailFormat returns true if the address matches the allowed pattern.
func ValidEmailFormat(email string) bool {
	return emailRe.MatchString(email)
}
