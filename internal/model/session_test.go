package model

import "testing"

func TestSessionWindowReturnsTail(t *testing.T) {
	s := NewSession()
	for i := 0; i < 15; i++ {
		s.Append(RoleUser, string(rune('a'+i)))
	}

	w := s.Window(12)
	if len(w) != 12 {
		t.Fatalf("len(Window(12)) = %d, want 12", len(w))
	}
	if w[0].Content != "d" || w[11].Content != "o" {
		t.Errorf("window = %q..%q, want d..o", w[0].Content, w[11].Content)
	}

	w[0].Content = "changed"
	if s.Messages[3].Content != "d" {
		t.Error("Window must return a copy")
	}
}

func TestSessionRememberIsCaseInsensitive(t *testing.T) {
	s := NewSession()
	s.Remember("Agent@Agency.com", "agent@agency.com", "", "jo@example.com")

	if len(s.KnownAddresses) != 2 {
		t.Fatalf("KnownAddresses = %v, want 2 entries", s.KnownAddresses)
	}
	if !s.HasSeen("AGENT@agency.com") {
		t.Error("HasSeen should match regardless of case")
	}
	if s.HasSeen("  ") {
		t.Error("blank address must never count as seen")
	}
}

func TestForgetUserEmailKeepsRestOfSession(t *testing.T) {
	s := NewSession()
	s.UserEmail = "jo@example.com"
	s.RecipientEmail = "agent@agency.com"
	s.PendingDraft = &Draft{To: "agent@agency.com", Subject: "s", Body: "b"}
	s.State = StateConfirm
	s.Append(RoleUser, "hello")

	s.ForgetUserEmail()

	if s.UserEmail != "" {
		t.Error("UserEmail not cleared")
	}
	if s.State != StateNeedUserEmail {
		t.Errorf("State = %s, want need_user_email", s.State)
	}
	if s.RecipientEmail == "" || s.PendingDraft == nil || len(s.Messages) != 1 {
		t.Error("forget must keep recipient, draft and transcript")
	}
	if s.ResumeState() != StateConfirm {
		t.Errorf("ResumeState() = %s, want confirm", s.ResumeState())
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewSession()
	id := s.ID
	s.UserEmail = "jo@example.com"
	s.Remember("jo@example.com")
	s.State = StateNeedDetails
	s.Append(RoleUser, "hi")

	s.Reset()

	if s.ID != id {
		t.Error("Reset must keep the session ID")
	}
	if s.UserEmail != "" || len(s.KnownAddresses) != 0 || len(s.Messages) != 0 {
		t.Errorf("session not cleared: %+v", s)
	}
	if s.State != StateNeedUserEmail {
		t.Errorf("State = %s, want need_user_email", s.State)
	}
}
