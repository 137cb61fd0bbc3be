package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lenah/internal/conversation"
	"github.com/nhle/lenah/internal/keys"
	"github.com/nhle/lenah/internal/model"
	"github.com/nhle/lenah/internal/theme"
	"github.com/nhle/lenah/internal/ui"
	"github.com/nhle/lenah/internal/ui/chat"
	"github.com/nhle/lenah/internal/ui/command"
	helpview "github.com/nhle/lenah/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChat ViewState = iota
	ViewHelp
	ViewCommand
)

// Options configures the root model.
type Options struct {
	Display model.DisplayConfig

	// MarkdownStyle is a glamour standard style name.
	MarkdownStyle string

	// Notice, when set, is shown under the greeting.
	Notice string
}

// Model is the root Bubble Tea model that manages view routing, layout and
// the operator controls.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	chat         chat.Model
	helpView     helpview.Model
	commandView  command.Model
	display      model.DisplayConfig
	provider     string
	mode         string
	status       string
	ready        bool
	quitting     bool
}

// New creates the root model for one chat session.
func New(machine *conversation.Machine, sess *model.Session, opts Options) Model {
	k := keys.DefaultKeyMap()

	style := opts.MarkdownStyle
	if style == "" {
		style = "auto"
	}

	c := chat.New(machine, sess, k, style, 80, 24)
	if opts.Notice != "" {
		c.Notice(opts.Notice)
	}

	return Model{
		currentView: ViewChat,
		keys:        k,
		chat:        c,
		helpView:    helpview.New(k, command.Names, 80, 24),
		commandView: command.New(80, 24),
		display:     opts.Display,
		provider:    machine.GeneratorName(),
		mode:        machine.Mode(),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.chat.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.chat.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m, nil

	case chat.TurnDoneMsg:
		// Turns finish even if an overlay opened meanwhile.
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		m.status = ""
		return m, cmd

	case command.CommandMsg:
		m.currentView = ViewChat
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			if m.currentView == ViewCommand {
				m.currentView = ViewChat
				return m, m.chat.Focus()
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView != ViewChat {
				m.currentView = ViewChat
				return m, m.chat.Focus()
			}

		case key.Matches(msg, m.keys.Reset):
			if m.currentView == ViewChat {
				return m, m.executeCommand(command.Reset)
			}

		case key.Matches(msg, m.keys.Forget):
			if m.currentView == ViewChat {
				return m, m.executeCommand(command.Forget)
			}

		case key.Matches(msg, m.keys.Preview):
			if m.currentView == ViewChat {
				return m, m.executeCommand(command.Preview)
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// executeCommand runs an operator command from a key binding or the
// palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.Reset:
		if !m.chat.Reset() {
			m.status = "wait for the current reply before resetting"
			return nil
		}
		m.status = "session reset"
	case command.Forget:
		if !m.chat.Forget() {
			m.status = "wait for the current reply before forgetting your email"
			return nil
		}
		m.status = "email forgotten"
	case command.Preview:
		m.chat.ShowPreview()
	case command.Help:
		m.previousView = ViewChat
		m.currentView = ViewHelp
		return nil
	case command.Quit:
		m.quitting = true
		return tea.Quit
	default:
		m.status = fmt.Sprintf("unknown command %q", cmd)
		return nil
	}
	return m.chat.Focus()
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.title(), m.provider+" · "+m.mode)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), m.renderSidebar(), statusBar)
}

func (m Model) title() string {
	if m.display.Title != "" {
		return m.display.Title
	}
	return "LENAH"
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return lipgloss.JoinVertical(lipgloss.Left, m.commandView.View(), m.chat.View())
	default:
		return m.chat.View()
	}
}

// renderSidebar shows what the session has collected so far.
func (m Model) renderSidebar() string {
	if m.layout.SidebarWidth == 0 {
		return ""
	}

	s := m.chat.Summary()
	orDash := func(v string) string {
		if v == "" {
			return "—"
		}
		return v
	}

	draftState := "none"
	if s.HasDraft {
		draftState = "awaiting `send`"
	}

	rows := []struct{ label, value string }{
		{"Mailbox", orDash(m.display.CentralMailbox)},
		{"You (CC)", orDash(s.UserEmail)},
		{"Recipient", orDash(s.RecipientEmail)},
		{"Property", orDash(s.PropertyURL)},
		{"Draft", draftState},
		{"Delivery", m.mode},
	}

	width := m.layout.SidebarWidth - 4
	lines := []string{
		theme.StateStyle(s.State).Render(s.State.Label()),
		"",
	}
	for _, r := range rows {
		lines = append(lines,
			theme.LabelStyle.Render(r.label),
			lipgloss.NewStyle().Width(width).Render(r.value),
		)
	}

	return theme.SidebarStyle.
		Width(m.layout.SidebarWidth - 2).
		Height(m.layout.ContentHeight() - 2).
		Render(strings.Join(lines, "\n"))
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.status != "" {
		return m.status
	}

	switch m.currentView {
	case ViewHelp:
		return "f1 close help | esc back"
	case ViewCommand:
		return "enter run | tab complete | esc back"
	default:
		if m.chat.Busy() {
			return "waiting for reply... | ctrl+c quit"
		}
		return "enter send | ctrl+r reset | ctrl+f forget email | ctrl+p draft | ctrl+k commands | f1 help"
	}
}
