package email

import (
	"strings"
	"testing"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	tmpl, err := DefaultTemplates()
	if err != nil {
		t.Fatalf("DefaultTemplates: %v", err)
	}
	return NewComposer(tmpl)
}

func TestComposeEscapesNameInHTMLOnly(t *testing.T) {
	c := newTestComposer(t)

	html, text, err := c.Compose("<b>Jane</b>", "https://register.uslaccafrica.org/verify-email?token=abc")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(html, "&lt;b&gt;Jane&lt;/b&gt;") {
		t.Errorf("html body should contain escaped name, got:\n%s", html)
	}
	if strings.Contains(html, "<b>Jane</b>") {
		t.Errorf("html body must not contain raw markup from the name")
	}
	if !strings.Contains(text, "<b>Jane</b>") {
		t.Errorf("text body should contain the raw name, got:\n%s", text)
	}
}

func TestComposeLeavesAmpersandsAlone(t *testing.T) {
	c := newTestComposer(t)

	html, _, err := c.Compose("Sipho & Thandi", "https://example.org/verify-email?token=t")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(html, "Sipho & Thandi") {
		t.Errorf("ampersand in name must pass through unchanged, got:\n%s", html)
	}
}

func TestComposeLinkAppearsTwiceInHTMLOnceInText(t *testing.T) {
	c := newTestComposer(t)
	link := "https://register.uslaccafrica.org/verify-email?token=tok-123"

	html, text, err := c.Compose("Jane", link)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := strings.Count(html, link); got != 2 {
		t.Errorf("html body should contain the link twice (href + fallback), got %d", got)
	}
	if !strings.Contains(html, `href="`+link+`"`) {
		t.Errorf("html body should use the link as an href")
	}
	if got := strings.Count(text, link); got != 1 {
		t.Errorf("text body should contain the link once, got %d", got)
	}
}

func TestBuildVerificationLink(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		token   string
		want    string
	}{
		{
			name:    "default base",
			baseURL: "https://register.uslaccafrica.org",
			token:   "abc123",
			want:    "https://register.uslaccafrica.org/verify-email?token=abc123",
		},
		{
			name:    "trailing slash trimmed",
			baseURL: "https://register.uslaccafrica.org/",
			token:   "abc123",
			want:    "https://register.uslaccafrica.org/verify-email?token=abc123",
		},
		{
			name:    "token gets percent-encoded",
			baseURL: "https://register.uslaccafrica.org",
			token:   "a b+c/d=e&f",
			want:    "https://register.uslaccafrica.org/verify-email?token=a+b%2Bc%2Fd%3De%26f",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildVerificationLink(tc.baseURL, tc.token); got != tc.want {
				t.Errorf("BuildVerificationLink(%q, %q) = %q, want %q", tc.baseURL, tc.token, got, tc.want)
			}
		})
	}
}
