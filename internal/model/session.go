package model

import (
	"strings"

	"github.com/google/uuid"
)

// State is the position of a session in the enquiry conversation.
type State string

const (
	StateNeedUserEmail State = "need_user_email"
	StateNeedRecipient State = "need_recipient"
	StateNeedDetails   State = "need_details"
	StateConfirm       State = "confirm"
)

// Label returns a short human-readable name for the state.
func (s State) Label() string {
	switch s {
	case StateNeedUserEmail:
		return "waiting for your email"
	case StateNeedRecipient:
		return "waiting for recipient"
	case StateNeedDetails:
		return "collecting details"
	case StateConfirm:
		return "awaiting confirmation"
	default:
		return string(s)
	}
}

// Session holds everything known about one user conversation. It lives only
// in memory and is owned by a single UI session; nothing in it is persisted.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Messages is the ordered transcript.
	Messages []Message

	// UserEmail is the session owner's address. Every sent message is
	// copied to it.
	UserEmail string

	// RecipientEmail is the enquiry recipient collected in need_recipient.
	RecipientEmail string

	// PropertyURL is the most recent listing link the user pasted.
	PropertyURL string

	// KnownAddresses lists every address the user has typed, in the
	// order first seen. Proposed recipients are checked against it.
	KnownAddresses []string

	// PendingDraft is the draft shown in the last preview, if any.
	PendingDraft *Draft

	// State is the current conversation state.
	State State
}

// NewSession creates an empty session in the need_user_email state.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		State: StateNeedUserEmail,
	}
}

// Append adds a message to the end of the transcript.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// Window returns a copy of the last n messages of the transcript.
func (s *Session) Window(n int) []Message {
	start := 0
	if n > 0 && len(s.Messages) > n {
		start = len(s.Messages) - n
	}
	out := make([]Message, len(s.Messages)-start)
	copy(out, s.Messages[start:])
	return out
}

// Remember records addresses in KnownAddresses, skipping ones already seen.
// Comparison is case-insensitive.
func (s *Session) Remember(addrs ...string) {
	for _, a := range addrs {
		if a == "" || s.HasSeen(a) {
			continue
		}
		s.KnownAddresses = append(s.KnownAddresses, a)
	}
}

// HasSeen reports whether addr has appeared in the conversation.
func (s *Session) HasSeen(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	for _, known := range s.KnownAddresses {
		if strings.EqualFold(known, addr) {
			return true
		}
	}
	return false
}

// Reset discards the transcript and all collected state, keeping the ID.
func (s *Session) Reset() {
	s.Messages = nil
	s.UserEmail = ""
	s.RecipientEmail = ""
	s.PropertyURL = ""
	s.KnownAddresses = nil
	s.PendingDraft = nil
	s.State = StateNeedUserEmail
}

// ForgetUserEmail clears only the owner's address. The session returns to
// need_user_email so nothing can be sent until a new address is given;
// the transcript, recipient and pending draft are kept.
func (s *Session) ForgetUserEmail() {
	s.UserEmail = ""
	s.State = StateNeedUserEmail
}

// ResumeState is the state a session should be in once it has a user
// email, given what else has already been collected.
func (s *Session) ResumeState() State {
	switch {
	case s.PendingDraft != nil:
		return StateConfirm
	case s.RecipientEmail != "":
		return StateNeedDetails
	default:
		return StateNeedRecipient
	}
}
