package app

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/ai"
	"github.com/nhle/lenah/internal/conversation"
	"github.com/nhle/lenah/internal/mail"
	"github.com/nhle/lenah/internal/model"
	"github.com/nhle/lenah/internal/ui/command"
)

func newTestApp(t *testing.T) (Model, *model.Session) {
	t.Helper()
	machine := conversation.New(ai.NewOffline(""), mail.NewMockGateway(),
		conversation.Options{Mode: model.GmailModeDraft}, log.New(io.Discard))
	sess := model.NewSession()
	m := New(machine, sess, Options{
		Display:       model.DisplayConfig{Title: "LENAH", CentralMailbox: "desk@lenah.test"},
		MarkdownStyle: "notty",
		Notice:        "Drafting offline.",
	})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), sess
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestViewShowsSidebarAndHeader(t *testing.T) {
	m, _ := newTestApp(t)
	out := m.View()
	for _, want := range []string{"LENAH", "offline · draft", "desk@lenah.test", "Recipient", "waiting for your email"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF1})
	if m.currentView != ViewHelp {
		t.Fatalf("view = %v, want help", m.currentView)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyF1})
	if m.currentView != ViewChat {
		t.Errorf("view = %v, want chat", m.currentView)
	}
}

func TestCommandPaletteReset(t *testing.T) {
	m, sess := newTestApp(t)
	sess.UserEmail = "jo@example.com"

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.currentView != ViewCommand {
		t.Fatalf("view = %v, want command", m.currentView)
	}

	updated, _ := m.Update(command.CommandMsg(command.Reset))
	m = updated.(Model)
	if m.currentView != ViewChat {
		t.Errorf("view = %v, want chat", m.currentView)
	}
	if sess.UserEmail != "" || len(sess.Messages) != 1 {
		t.Errorf("session not reset: %+v", sess)
	}
	if m.keyHints() != "session reset" {
		t.Errorf("status = %q", m.keyHints())
	}
}

func TestForgetKey(t *testing.T) {
	m, sess := newTestApp(t)
	sess.UserEmail = "jo@example.com"
	sess.RecipientEmail = "agent@agency.com"
	sess.State = model.StateNeedDetails

	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if sess.UserEmail != "" || sess.RecipientEmail != "agent@agency.com" {
		t.Errorf("after forget: user=%q recipient=%q", sess.UserEmail, sess.RecipientEmail)
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newTestApp(t)
	updated, _ := m.Update(command.CommandMsg("dance"))
	m = updated.(Model)
	if !strings.Contains(m.keyHints(), `unknown command "dance"`) {
		t.Errorf("status = %q", m.keyHints())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestApp(t)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared on quit")
	}
}
