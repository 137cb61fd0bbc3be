// Package draft builds enquiry emails from a free-text message without a
// language model.
package draft

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/lenah/internal/extract"
	"github.com/nhle/lenah/internal/model"
)

// DefaultSignOff is used when no sender name is given.
const DefaultSignOff = "LENAH"

// Input is the raw single-shot request.
type Input struct {
	To       string
	Message  string
	YourName string
	Subject  string
}

// Validation errors returned by Validate.
var (
	ErrMissingRecipient = errors.New("recipient email is required")
	ErrMissingMessage   = errors.New("message is required")
)

// Validate checks the request at the input boundary. Build itself never
// rejects input.
func Validate(in Input) error {
	to := strings.TrimSpace(in.To)
	if to == "" {
		return ErrMissingRecipient
	}
	if !extract.IsEmail(to) {
		return fmt.Errorf("recipient %q is not a valid email address", to)
	}
	if strings.TrimSpace(in.Message) == "" {
		return ErrMissingMessage
	}
	return nil
}

// Build turns the request into a draft. A blank subject is replaced with a
// dated "Enquiry" subject.
func Build(in Input, now time.Time) model.Draft {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = Subject(now)
	}

	return model.Draft{
		To:      strings.TrimSpace(in.To),
		Subject: subject,
		Body:    Body(in.Message, in.YourName),
	}
}

// Subject returns "Enquiry (DD Mon YYYY)" for the given day.
func Subject(now time.Time) string {
	return fmt.Sprintf("Enquiry (%s)", now.Format("02 Jan 2006"))
}

// Body wraps message in the standard greeting and sign-off.
func Body(message, yourName string) string {
	signOff := strings.TrimSpace(yourName)
	if signOff == "" {
		signOff = DefaultSignOff
	}

	var sb strings.Builder
	sb.WriteString("Hello,\n\n")
	sb.WriteString(strings.TrimSpace(message))
	sb.WriteString("\n\nMany thanks,\n")
	sb.WriteString(signOff)
	sb.WriteString("\n")
	return sb.String()
}
