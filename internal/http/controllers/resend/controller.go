// Package resend exposes the resend-verification endpoint.
package resend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/uslaccafrica/registration-mailer/internal/domain"
	"github.com/uslaccafrica/registration-mailer/internal/http/dto/resend"
	"github.com/uslaccafrica/registration-mailer/internal/http/helpers"
	svc "github.com/uslaccafrica/registration-mailer/internal/http/services/resend"
	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
)

const maxBodyBytes = 1 << 20 // 1MB

// Controller handles HTTP for the resend flow.
type Controller struct {
	Service svc.Service
}

// NewController builds the resend controller.
func NewController(service svc.Service) *Controller {
	return &Controller{Service: service}
}

// Resend handles POST /v1/registrations/resend-verification.
func (c *Controller) Resend(w http.ResponseWriter, r *http.Request) {
	var req resend.ResendRequest
	c.decode(w, r, &req)

	err := c.Service.Resend(r.Context(), req)
	if err == nil {
		helpers.WriteJSON(w, http.StatusOK, resend.ResendResponse{Success: true})
		return
	}

	if ce, ok := svc.AsCooldown(err); ok {
		secs := int(ce.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		helpers.WriteErrorJSON(w, http.StatusTooManyRequests, "Please wait before requesting another email")
		return
	}

	switch {
	case errors.Is(err, svc.ErrInvalidName):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid name")
	case errors.Is(err, svc.ErrInvalidEmail):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid email")
	case errors.Is(err, svc.ErrInvalidEmailFormat):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid email format")
	case errors.Is(err, svc.ErrInvalidRegistrationID):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid registration ID")
	case errors.Is(err, svc.ErrInvalidVerificationToken):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid verification token")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteErrorJSON(w, http.StatusNotFound, "Registration not found")
	case errors.Is(err, svc.ErrStore):
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "Database error")
	case errors.Is(err, svc.ErrMismatch):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, svc.ErrAlreadyVerified):
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "Email already verified")
	case errors.Is(err, svc.ErrSendFailed):
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to send email")
	default:
		// Anything unexpected collapses to the generic send failure so
		// internals never leak to the caller.
		logger.From(r.Context()).Error("unmapped resend error", logger.Err(err))
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to send email")
	}
}

// decode reads the JSON body into req. A field of the wrong JSON type is
// left as its zero value so the field checks reject it with the message for
// that field; a body that cannot be parsed at all yields an all-zero request
// for the same reason.
func (c *Controller) decode(w http.ResponseWriter, r *http.Request, req *resend.ResendRequest) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(req); err != nil && err != io.EOF {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			// Decoding stops at the first mistyped field; zero that field
			// explicitly and keep whatever decoded before it.
			switch te.Field {
			case "name":
				req.Name = ""
			case "email":
				req.Email = ""
			case "registrationId":
				req.RegistrationID = ""
			case "verificationToken":
				req.VerificationToken = ""
			default:
				*req = resend.ResendRequest{}
			}
			return
		}
		*req = resend.ResendRequest{}
	}
}
