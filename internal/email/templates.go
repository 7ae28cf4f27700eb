package email

import (
	"embed"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/verify_email.html templates/verify_email.txt
var templateFS embed.FS

// Templates holds the parsed verification email templates.
// Both are text/template on purpose: the only user-controlled value
// interpolated into HTML is the display name, which the composer escapes
// itself before rendering.
type Templates struct {
	VerifyHTML *template.Template
	VerifyTXT  *template.Template
}

// VerifyVars are the variables the verification templates see.
type VerifyVars struct {
	Name string
	Link string
}

// DefaultTemplates parses the embedded templates.
func DefaultTemplates() (*Templates, error) {
	return parsePair(
		mustRead("templates/verify_email.html"),
		mustRead("templates/verify_email.txt"),
	)
}

// LoadTemplates reads verify_email.html / verify_email.txt from dir,
// for deployments that override the embedded copy.
func LoadTemplates(dir string) (*Templates, error) {
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		return string(b), err
	}
	vh, err := read("verify_email.html")
	if err != nil {
		return nil, err
	}
	vt, err := read("verify_email.txt")
	if err != nil {
		return nil, err
	}
	return parsePair(vh, vt)
}

func parsePair(htmlSrc, txtSrc string) (*Templates, error) {
	vh, err := template.New("verify_html").Parse(htmlSrc)
	if err != nil {
		return nil, err
	}
	vt, err := template.New("verify_txt").Parse(txtSrc)
	if err != nil {
		return nil, err
	}
	return &Templates{VerifyHTML: vh, VerifyTXT: vt}, nil
}

func mustRead(name string) string {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}
