// Package resend implements the resend-verification flow: gate the request,
// compose the email and hand it to the SMTP sender.
package resend

import (
	"context"
	"errors"
	"time"

	"github.com/uslaccafrica/registration-mailer/internal/domain"
	"github.com/uslaccafrica/registration-mailer/internal/email"
	httpx "github.com/uslaccafrica/registration-mailer/internal/http"
	"github.com/uslaccafrica/registration-mailer/internal/http/dto/resend"
	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
	"github.com/uslaccafrica/registration-mailer/internal/validation"
)

// Cooldown window, measured from the registration's created_at. A request
// landing strictly inside (min, max) is throttled; at or outside either
// bound it goes through.
const (
	cooldownMin = 5 * time.Second
	cooldownMax = 60 * time.Second
)

// Service runs the resend-verification gate.
type Service interface {
	Resend(ctx context.Context, req resend.ResendRequest) error
}

// Deps are the collaborators the service needs.
type Deps struct {
	Registrations domain.RegistrationRepository
	Sender        email.Sender
	Composer      *email.Composer
	BaseURL       string
	Subject       string
	Now           func() time.Time
}

type service struct {
	deps Deps
}

// NewService builds the resend service. A nil Now defaults to time.Now.
func NewService(deps Deps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

// Resend validates the request against the stored registration and, if every
// check passes, sends a fresh verification email. Checks run cheapest first;
// the store is only touched once the request shape is known to be good.
func (s *service) Resend(ctx context.Context, req resend.ResendRequest) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("resend"))

	if err := checkShape(req); err != nil {
		log.Info("request rejected", logger.Err(err))
		return err
	}

	reg, err := s.deps.Registrations.GetByID(ctx, req.RegistrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("registration not found", logger.RegistrationID(req.RegistrationID))
			return domain.ErrNotFound
		}
		log.Error("registration lookup failed", logger.RegistrationID(req.RegistrationID), logger.Err(err))
		return ErrStore
	}

	// Byte equality on both fields. No trimming, no case folding.
	if req.Email != reg.Email || req.VerificationToken != reg.VerificationToken {
		log.Info("credentials do not match registration", logger.RegistrationID(reg.ID))
		return ErrMismatch
	}

	if reg.Verified {
		log.Info("registration already verified", logger.RegistrationID(reg.ID))
		return ErrAlreadyVerified
	}

	elapsed := s.deps.Now().Sub(reg.CreatedAt)
	if elapsed > cooldownMin && elapsed < cooldownMax {
		retryAfter := cooldownMax - elapsed
		log.Info("resend throttled",
			logger.RegistrationID(reg.ID),
			logger.Duration(elapsed),
		)
		return &CooldownError{RetryAfter: retryAfter}
	}

	// The greeting uses the name the caller submitted, not the stored one:
	// the match check binds email and token only, so the two may differ.
	link := email.BuildVerificationLink(s.deps.BaseURL, reg.VerificationToken)
	htmlBody, textBody, err := s.deps.Composer.Compose(req.Name, link)
	if err != nil {
		log.Error("compose failed", logger.RegistrationID(reg.ID), logger.Err(err))
		return ErrSendFailed
	}

	start := s.deps.Now()
	err = s.deps.Sender.Send(reg.Email, s.deps.Subject, htmlBody, textBody)
	httpx.ObserveEmailSend(err, time.Since(start))
	if err != nil {
		diag := email.DiagnoseSMTP(err)
		if diag.Temporary {
			log.Warn("smtp send failed",
				logger.RegistrationID(reg.ID),
				logger.String("smtp_diag", diag.Code),
				logger.Err(err),
			)
		} else {
			log.Error("smtp send failed",
				logger.RegistrationID(reg.ID),
				logger.String("smtp_diag", diag.Code),
				logger.Err(err),
			)
		}
		return ErrSendFailed
	}

	log.Info("verification email sent",
		logger.RegistrationID(reg.ID),
		logger.Email(reg.Email),
	)
	return nil
}

// checkShape validates the request fields in a fixed order and reports the
// first failure only.
func checkShape(req resend.ResendRequest) error {
	if !validation.ValidName(req.Name) {
		return ErrInvalidName
	}
	if !validation.ValidEmail(req.Email) {
		return ErrInvalidEmail
	}
	if !validation.ValidEmailFormat(req.Email) {
		return ErrInvalidEmailFormat
	}
	if req.RegistrationID == "" {
		return ErrInvalidRegistrationID
	}
	if req.VerificationToken == "" {
		return ErrInvalidVerificationToken
	}
	return nil
}
