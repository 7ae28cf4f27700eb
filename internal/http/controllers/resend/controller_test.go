package resend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uslaccafrica/registration-mailer/internal/domain"
	"github.com/uslaccafrica/registration-mailer/internal/http/dto/resend"
	svc "github.com/uslaccafrica/registration-mailer/internal/http/services/resend"
)

// stubService returns a canned error and records the request it saw.
type stubService struct {
	err  error
	last *resend.ResendRequest
}

func (s *stubService) Resend(_ context.Context, req resend.ResendRequest) error {
	s.last = &req
	return s.err
}

func post(t *testing.T, c *Controller, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/registrations/resend-verification", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	c.Resend(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rr.Body.String())
	}
	return m["error"]
}

const validBody = `{"name":"Jane","email":"jane@example.org","registrationId":"reg-1","verificationToken":"tok-1"}`

func TestResendStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid name", svc.ErrInvalidName, 400, "Invalid name"},
		{"invalid email", svc.ErrInvalidEmail, 400, "Invalid email"},
		{"invalid email format", svc.ErrInvalidEmailFormat, 400, "Invalid email format"},
		{"invalid registration id", svc.ErrInvalidRegistrationID, 400, "Invalid registration ID"},
		{"invalid token", svc.ErrInvalidVerificationToken, 400, "Invalid verification token"},
		{"not found", domain.ErrNotFound, 404, "Registration not found"},
		{"store failure", svc.ErrStore, 500, "Database error"},
		{"mismatch", svc.ErrMismatch, 400, "Invalid request"},
		{"already verified", svc.ErrAlreadyVerified, 400, "Email already verified"},
		{"send failure", svc.ErrSendFailed, 500, "Failed to send email"},
		{"unexpected error", errors.New("boom"), 500, "Failed to send email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(&stubService{err: tc.err})
			rr := post(t, c, validBody)
			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if got := errorBody(t, rr); got != tc.wantMsg {
				t.Errorf("error = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestResendSuccessBody(t *testing.T) {
	stub := &stubService{}
	c := NewController(stub)

	rr := post(t, c, validBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp resend.ResendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Errorf("success = false, want true")
	}
	if stub.last == nil || stub.last.RegistrationID != "reg-1" {
		t.Errorf("service did not receive the decoded request: %+v", stub.last)
	}
}

func TestResendCooldownSetsRetryAfter(t *testing.T) {
	c := NewController(&stubService{err: &svc.CooldownError{RetryAfter: 42 * time.Second}})

	rr := post(t, c, validBody)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if got := errorBody(t, rr); got != "Please wait before requesting another email" {
		t.Errorf("error = %q", got)
	}
	if got := rr.Header().Get("Retry-After"); got != "42" {
		t.Errorf("Retry-After = %q, want 42", got)
	}
}

func TestResendDecodeZeroesMistypedFields(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		check func(t *testing.T, req resend.ResendRequest)
	}{
		{
			name: "name as number",
			body: `{"name":42,"email":"jane@example.org","registrationId":"reg-1","verificationToken":"tok-1"}`,
			check: func(t *testing.T, req resend.ResendRequest) {
				if req.Name != "" {
					t.Errorf("Name = %q, want empty", req.Name)
				}
			},
		},
		{
			name: "token as object",
			body: `{"name":"Jane","email":"jane@example.org","registrationId":"reg-1","verificationToken":{"a":1}}`,
			check: func(t *testing.T, req resend.ResendRequest) {
				if req.VerificationToken != "" {
					t.Errorf("VerificationToken = %q, want empty", req.VerificationToken)
				}
				if req.Name != "Jane" {
					t.Errorf("earlier fields should survive, Name = %q", req.Name)
				}
			},
		},
		{
			name: "not json at all",
			body: `this is not json`,
			check: func(t *testing.T, req resend.ResendRequest) {
				if req != (resend.ResendRequest{}) {
					t.Errorf("req = %+v, want zero value", req)
				}
			},
		},
		{
			name: "empty body",
			body: "",
			check: func(t *testing.T, req resend.ResendRequest) {
				if req != (resend.ResendRequest{}) {
					t.Errorf("req = %+v, want zero value", req)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubService{}
			c := NewController(stub)
			post(t, c, tc.body)
			if stub.last == nil {
				t.Fatalf("service was never called")
			}
			tc.check(t, *stub.last)
		})
	}
}
