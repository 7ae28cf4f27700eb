// Package domain holds the core entities shared by the store and the
// HTTP service layer.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no registration matches the given ID.
var ErrNotFound = errors.New("registration not found")

// Registration is a pending sign-up awaiting email confirmation.
// This service only reads registrations; the confirmation flow that flips
// Verified (and any token regeneration) lives elsewhere.
type Registration struct {
	ID                string
	Email             string
	FullName          string
	Verified          bool
	VerificationToken string
	CreatedAt         time.Time
}

// RegistrationRepository is the read-only view of the registrations table.
type RegistrationRepository interface {
	// GetByID returns the registration or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Registration, error)
}
