package email

import (
	"net/url"
	"strings"
)

// VerifyPath is the path segment of the verification link. The web front
// end at the base URL serves this route and calls the confirmation flow.
const VerifyPath = "/verify-email"

// nameEscaper neutralizes markup in the user-supplied display name.
// Only '<' and '>' are replaced; everything else passes through verbatim.
var nameEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Composer renders the verification email from fixed templates.
// Pure given its inputs: no I/O, no clock.
type Composer struct {
	tmpl *Templates
}

// NewComposer creates a composer over the given templates.
func NewComposer(tmpl *Templates) *Composer {
	return &Composer{tmpl: tmpl}
}

// Compose renders the HTML and plain-text bodies for a verification email.
// The name is HTML-escaped before interpolation; the link is interpolated
// as-is and must come from BuildVerificationLink.
func (c *Composer) Compose(name, verificationLink string) (htmlBody, textBody string, err error) {
	vars := VerifyVars{
		Name: nameEscaper.Replace(name),
		Link: verificationLink,
	}

	var hb, tb strings.Builder
	if err = c.tmpl.VerifyHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	// The text body gets the raw name: no markup context there.
	vars.Name = name
	if err = c.tmpl.VerifyTXT.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// BuildVerificationLink joins the configured base URL with the verify path
// and the percent-encoded token.
func BuildVerificationLink(baseURL, token string) string {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		u = &url.URL{Scheme: "https", Host: baseURL}
	}
	u.Path = VerifyPath
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
