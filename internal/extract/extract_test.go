package extract

import (
	"reflect"
	"testing"
)

func TestFirstEmail(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"plain", "jo@example.com", "jo@example.com", true},
		{"in sentence", "I'm jo@example.com, thanks", "jo@example.com", true},
		{"first of two", "a@b.co then c@d.org", "a@b.co", true},
		{"plus and dots", "reach me at first.last+lenah@mail.example.co.uk", "first.last+lenah@mail.example.co.uk", true},
		{"percent and dash", "x%y-z@host-name.io", "x%y-z@host-name.io", true},
		{"greeting", "hi", "", false},
		{"no tld", "jo@localhost", "", false},
		{"one letter tld", "jo@example.c", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstEmail(tt.text)
			if got != tt.want || ok != tt.found {
				t.Errorf("FirstEmail(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestAllEmailsKeepsOrderAndDuplicates(t *testing.T) {
	text := "cc b@x.com and a@y.org, also b@x.com"
	want := []string{"b@x.com", "a@y.org", "b@x.com"}

	if got := AllEmails(text); !reflect.DeepEqual(got, want) {
		t.Errorf("AllEmails() = %v, want %v", got, want)
	}
	if got := AllEmails("nothing here"); len(got) != 0 {
		t.Errorf("AllEmails() = %v, want none", got)
	}
}

func TestFirstURL(t *testing.T) {
	got, ok := FirstURL("look at https://www.rightmove.co.uk/properties/123 please")
	if !ok || got != "https://www.rightmove.co.uk/properties/123" {
		t.Errorf("FirstURL() = (%q, %v)", got, ok)
	}
	if _, ok := FirstURL("no link"); ok {
		t.Error("FirstURL() found a link in plain text")
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("agent@agency.com") {
		t.Error("IsEmail rejected a bare address")
	}
	for _, s := range []string{"", "agent", "to agent@agency.com", "agent@agency.com extra"} {
		if IsEmail(s) {
			t.Errorf("IsEmail(%q) = true", s)
		}
	}
}
