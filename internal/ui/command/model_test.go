package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"reset", Reset, true},
		{"  Forget ", Forget, true},
		{"q", Quit, true},
		{"draft", Preview, true},
		{"dance", "dance", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(60, 10)
	m.input.SetValue("clear")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if got := cmd(); got != CommandMsg(Reset) {
		t.Errorf("msg = %#v, want reset", got)
	}
	if m.input.Value() != "" {
		t.Error("input not cleared")
	}
}
