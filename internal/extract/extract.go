// Package extract finds email addresses and links in free text.
package extract

import "regexp"

var (
	emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlRE   = regexp.MustCompile(`https?://\S+`)
)

// FirstEmail returns the first email-like substring of text. The second
// result is false when text contains no address.
func FirstEmail(text string) (string, bool) {
	m := emailRE.FindString(text)
	return m, m != ""
}

// AllEmails returns every non-overlapping address in text, left to right.
// Duplicates are kept.
func AllEmails(text string) []string {
	return emailRE.FindAllString(text, -1)
}

// FirstURL returns the first http or https link in text.
func FirstURL(text string) (string, bool) {
	m := urlRE.FindString(text)
	return m, m != ""
}

// IsEmail reports whether s is exactly one address with nothing around it.
func IsEmail(s string) bool {
	loc := emailRE.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
