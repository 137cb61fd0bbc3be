// Package ai turns a chat transcript into a structured reply using a
// language model constrained to a fixed JSON schema.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nhle/lenah/internal/model"
)

// Action is the side effect a generator proposes.
type Action string

const (
	ActionNone      Action = "none"
	ActionSendEmail Action = "send_email"
)

// SchemaName names the structured output in provider requests.
const SchemaName = "lenah_output"

// Result is a generator reply. Every field is always present on the wire.
type Result struct {
	AssistantText string   `json:"assistant_text"`
	Action        Action   `json:"action"`
	To            string   `json:"to"`
	Cc            []string `json:"cc"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
}

// HasDraft reports whether the result carries any draft content.
func (r Result) HasDraft() bool {
	return strings.TrimSpace(r.Subject) != "" || strings.TrimSpace(r.Body) != ""
}

// Generator produces a structured reply from the trailing conversation.
// System messages in msgs carry context notes, not user turns.
type Generator interface {
	Generate(ctx context.Context, msgs []model.Message) (Result, error)

	// Name identifies the backing provider for display and logs.
	Name() string
}

// ContractError indicates a generator reply that does not match the
// schema. Raw holds the offending payload, truncated.
type ContractError struct {
	Reason string
	Raw    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("generator reply violates schema: %s", e.Reason)
}

// IsContractError reports whether err (or any error in its chain) is a
// ContractError.
func IsContractError(err error) bool {
	var cErr *ContractError
	return errors.As(err, &cErr)
}

// Schema is the JSON schema every reply must satisfy.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"assistant_text": map[string]any{"type": "string"},
		"action": map[string]any{
			"type": "string",
			"enum": []string{string(ActionNone), string(ActionSendEmail)},
		},
		"to":      map[string]any{"type": "string"},
		"cc":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"subject": map[string]any{"type": "string"},
		"body":    map[string]any{"type": "string"},
	},
	"required":             []string{"assistant_text", "action", "to", "cc", "subject", "body"},
	"additionalProperties": false,
}

// wireResult mirrors Result with pointers so absent keys can be told
// apart from empty values.
type wireResult struct {
	AssistantText *string   `json:"assistant_text"`
	Action        *string   `json:"action"`
	To            *string   `json:"to"`
	Cc            *[]string `json:"cc"`
	Subject       *string   `json:"subject"`
	Body          *string   `json:"body"`
}

// Decode parses data strictly: unknown keys, missing keys, wrong types,
// an unknown action and trailing data are all contract violations.
func Decode(data []byte) (Result, error) {
	raw := truncate(string(data), 512)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireResult
	if err := dec.Decode(&w); err != nil {
		return Result{}, &ContractError{Reason: err.Error(), Raw: raw}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Result{}, &ContractError{Reason: "trailing data after object", Raw: raw}
	}

	var missing []string
	if w.AssistantText == nil {
		missing = append(missing, "assistant_text")
	}
	if w.Action == nil {
		missing = append(missing, "action")
	}
	if w.To == nil {
		missing = append(missing, "to")
	}
	if w.Cc == nil {
		missing = append(missing, "cc")
	}
	if w.Subject == nil {
		missing = append(missing, "subject")
	}
	if w.Body == nil {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return Result{}, &ContractError{
			Reason: "missing required fields: " + strings.Join(missing, ", "),
			Raw:    raw,
		}
	}

	action := Action(*w.Action)
	if action != ActionNone && action != ActionSendEmail {
		return Result{}, &ContractError{Reason: fmt.Sprintf("unknown action %q", action), Raw: raw}
	}

	return Result{
		AssistantText: *w.AssistantText,
		Action:        action,
		To:            *w.To,
		Cc:            *w.Cc,
		Subject:       *w.Subject,
		Body:          *w.Body,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
