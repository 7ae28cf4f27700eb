package validation

import (
	"strings"
	"testing"
)

func TestValidName(t *testing.T) {
	if !ValidName("Jane Doe") {
		t.Errorf("plain name should be valid")
	}
	if !ValidName(strings.Repeat("a", MaxNameLen)) {
		t.Errorf("name at the limit should be valid")
	}
	if ValidName(strings.Repeat("a", MaxNameLen+1)) {
		t.Errorf("name over the limit should be invalid")
	}
	if ValidName("") {
		t.Errorf("empty name should be invalid")
	}
}

func TestValidEmail(t *testing.T) {
	long := strings.Repeat("a", MaxEmailLen-10) + "@e.org"
	if !ValidEmail(long) {
		t.Errorf("email within the limit should be valid")
	}
	if ValidEmail(strings.Repeat("a", MaxEmailLen-5) + "@e.org") {
		t.Errorf("email over the limit should be invalid")
	}
	if ValidEmail("") {
		t.Errorf("empty email should be invalid")
	}
}

func TestValidEmailFormat(t *testing.T) {
	valid := []string{
		"jane@example.org",
		"a@b.co",
		"first.last+tag@sub.domain.example",
	}
	for _, e := range valid {
		if !ValidEmailFormat(e) {
			t.Errorf("%q should be a valid format", e)
		}
	}

	invalid := []string{
		"",
		"jane@example",
		"@example.org",
		"jane@",
		"jane@@example.org",
		"ja ne@example.org",
		"jane@exa mple.org",
		"plainaddress",
		"jane@.org.",
	}
	for _, e := range invalid {
		if ValidEmailFormat(e) {
			t.Errorf("%q should be an invalid format", e)
		}
	}
}
