// Package draftform collects a single-shot enquiry from the terminal.
package draftform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/lenah/internal/draft"
	"github.com/nhle/lenah/internal/extract"
)

// Action is what to do with the built draft.
type Action string

const (
	ActionDraft Action = "draft"
	ActionSend  Action = "send"
)

// Values are the form results. Fields already set are shown pre-filled.
type Values struct {
	draft.Input

	// Me is the sender's own address, copied on a sent email.
	Me     string
	Action Action
}

// NewForm builds the enquiry form bound to v.
func NewForm(v *Values) *huh.Form {
	if v.Action == "" {
		v.Action = ActionDraft
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recipient email").
				Placeholder("agent@agency.com").
				Value(&v.To).
				Validate(validateEmail),
			huh.NewText().
				Title("Message").
				Placeholder("What would you like to ask?").
				Value(&v.Message).
				Validate(validateRequired("Message")),
			huh.NewInput().
				Title("Your name").
				Placeholder("Optional, signs the email").
				Value(&v.YourName),
			huh.NewInput().
				Title("Your email").
				Placeholder("Copied on anything sent").
				Value(&v.Me).
				Validate(validateOptionalEmail),
			huh.NewInput().
				Title("Subject").
				Placeholder("Optional, defaults to a dated enquiry").
				Value(&v.Subject),
			huh.NewSelect[Action]().
				Title("Then").
				Options(
					huh.NewOption("Save as draft", ActionDraft),
					huh.NewOption("Send now", ActionSend),
				).
				Value(&v.Action),
		),
	)
}

// Run shows the form and returns huh.ErrUserAborted if the user quits.
func Run(v *Values) error {
	if err := NewForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		return fmt.Errorf("running draft form: %w", err)
	}
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Recipient email is required")
	}
	if !extract.IsEmail(s) {
		return fmt.Errorf("%q is not an email address", s)
	}
	return nil
}

func validateOptionalEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateEmail(s)
}
