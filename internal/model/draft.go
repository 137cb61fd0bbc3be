package model

import "strings"

// Draft is an unsent email awaiting confirmation. All three fields are set
// together; a Draft with a missing field is never held as pending.
type Draft struct {
	// To is the single recipient address.
	To string `json:"to"`

	// Subject is the email subject line.
	Subject string `json:"subject"`

	// Body is the plain-text email body.
	Body string `json:"body"`
}

// Complete reports whether every field of the draft is non-blank.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.To) != "" &&
		strings.TrimSpace(d.Subject) != "" &&
		strings.TrimSpace(d.Body) != ""
}
