package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uslaccafrica/registration-mailer/internal/domain"
	"github.com/uslaccafrica/registration-mailer/internal/email"
	healthctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/health"
	resendctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/resend"
	"github.com/uslaccafrica/registration-mailer/internal/http/router"
	resendsvc "github.com/uslaccafrica/registration-mailer/internal/http/services/resend"
)

type memRepo struct {
	regs map[string]domain.Registration
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	reg, ok := m.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &reg, nil
}

type capturingSender struct {
	sent []struct{ to, html, text string }
}

func (c *capturingSender) Send(to, _ string, htmlBody, textBody string) error {
	c.sent = append(c.sent, struct{ to, html, text string }{to, htmlBody, textBody})
	return nil
}

// newStack wires the full HTTP handler over in-memory collaborators.
func newStack(t *testing.T, repo *memRepo, sender *capturingSender, now time.Time) *httptest.Server {
	t.Helper()
	tmpl, err := email.DefaultTemplates()
	require.NoError(t, err)

	service := resendsvc.NewService(resendsvc.Deps{
		Registrations: repo,
		Sender:        sender,
		Composer:      email.NewComposer(tmpl),
		BaseURL:       "https://register.uslaccafrica.org",
		Subject:       "Verify your email address",
		Now:           func() time.Time { return now },
	})

	handler := router.New(router.Deps{
		Resend: resendctrl.NewController(service),
		Health: healthctrl.NewController(nil),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func postResend(t *testing.T, srv *httptest.Server, payload map[string]any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := srv.Client().Post(
		srv.URL+"/v1/registrations/resend-verification",
		"application/json",
		bytes.NewReader(b),
	)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestResendFlowEndToEnd(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &memRepo{regs: map[string]domain.Registration{
		"R1": {
			ID:                "R1",
			Email:             "a@b.com",
			FullName:          "A<b>",
			Verified:          false,
			VerificationToken: "T1",
			CreatedAt:         now.Add(-10 * time.Second),
		},
	}}
	sender := &capturingSender{}
	srv := newStack(t, repo, sender, now)

	payload := map[string]any{
		"name":              "A<b>",
		"email":             "a@b.com",
		"registrationId":    "R1",
		"verificationToken": "T1",
	}

	// 10s-old record sits inside the cooldown window.
	resp, body := postResend(t, srv, payload)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "Please wait before requesting another email", body["error"])
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Empty(t, sender.sent)

	// Backdate to a fresh record: the initial-email window is exempt.
	reg := repo.regs["R1"]
	reg.CreatedAt = now.Add(-2 * time.Second)
	repo.regs["R1"] = reg

	resp, body = postResend(t, srv, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	require.Len(t, sender.sent, 1)
	require.Equal(t, "a@b.com", sender.sent[0].to)
	require.Contains(t, sender.sent[0].html, "token=T1")
	require.Contains(t, sender.sent[0].html, "A&lt;b&gt;")
	require.NotContains(t, sender.sent[0].html, "A<b>")
	require.Contains(t, sender.sent[0].text, "token=T1")
}

func TestResendFlowErrorStatuses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &memRepo{regs: map[string]domain.Registration{
		"R1": {
			ID: "R1", Email: "a@b.com", FullName: "Ana",
			VerificationToken: "T1", CreatedAt: now.Add(-5 * time.Minute),
		},
		"R2": {
			ID: "R2", Email: "b@c.com", FullName: "Ben", Verified: true,
			VerificationToken: "T2", CreatedAt: now.Add(-5 * time.Minute),
		},
	}}
	srv := newStack(t, repo, &capturingSender{}, now)

	base := map[string]any{
		"name":              "Ana",
		"email":             "a@b.com",
		"registrationId":    "R1",
		"verificationToken": "T1",
	}
	with := func(k string, v any) map[string]any {
		m := make(map[string]any, len(base))
		for kk, vv := range base {
			m[kk] = vv
		}
		m[k] = v
		return m
	}

	cases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantMsg    string
	}{
		{"name too long", with("name", strings.Repeat("x", 201)), 400, "Invalid name"},
		{"name wrong type", with("name", 42), 400, "Invalid name"},
		{"bad email format", with("email", "not-an-email"), 400, "Invalid email format"},
		{"missing token", with("verificationToken", ""), 400, "Invalid verification token"},
		{"unknown registration", with("registrationId", "nope"), 404, "Registration not found"},
		{"token mismatch", with("verificationToken", "wrong"), 400, "Invalid request"},
		{"already verified", map[string]any{
			"name": "Ben", "email": "b@c.com",
			"registrationId": "R2", "verificationToken": "T2",
		}, 400, "Email already verified"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postResend(t, srv, tc.payload)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			require.Equal(t, tc.wantMsg, body["error"])
			require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestPreflightFromBrowser(t *testing.T) {
	srv := newStack(t, &memRepo{}, &capturingSender{}, time.Now())

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/registrations/resend-verification", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://register.uslaccafrica.org")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
