// Package mail delivers drafts through the mail provider.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Outgoing is a message handed to the provider.
type Outgoing struct {
	To      string
	Cc      []string
	Subject string
	Body    string
}

// Gateway is the mail provider as seen by the conversation. Credential
// handling is entirely the gateway's concern.
type Gateway interface {
	// CreateDraft stores msg as a draft in the mailbox without delivering
	// it and returns the provider's draft ID.
	CreateDraft(ctx context.Context, msg Outgoing) (string, error)

	// Send delivers msg immediately and returns the provider's message ID.
	Send(ctx context.Context, msg Outgoing) (string, error)
}

// MissingCredentialError indicates that an OAuth client file or cached
// token is absent or unreadable.
type MissingCredentialError struct {
	Path string
	Hint string
	Err  error
}

func (e *MissingCredentialError) Error() string {
	msg := fmt.Sprintf("missing credential %s", e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *MissingCredentialError) Unwrap() error { return e.Err }

// IsMissingCredential reports whether err (or any error in its chain) is a
// MissingCredentialError.
func IsMissingCredential(err error) bool {
	var mcErr *MissingCredentialError
	return errors.As(err, &mcErr)
}

// ProviderError is a failed provider operation. Detail is safe to show to
// the user.
type ProviderError struct {
	Op     string
	Code   int
	Detail string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Detail)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err (or any error in its chain) is a
// ProviderError.
func IsProviderError(err error) bool {
	var pErr *ProviderError
	return errors.As(err, &pErr)
}

// Detail returns the user-facing text for err.
func Detail(err error) string {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Detail
	}
	return err.Error()
}
