package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lenah/internal/ai"
	"github.com/nhle/lenah/internal/conversation"
	"github.com/nhle/lenah/internal/keys"
	"github.com/nhle/lenah/internal/model"
	"github.com/nhle/lenah/internal/theme"
)

// TurnDoneMsg carries the outcome of a conversation turn.
type TurnDoneMsg struct {
	Reply conversation.Reply
	Err   error
}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeError
)

// notice is a display-only block shown before transcript entry at. It is
// never part of the session.
type notice struct {
	at   int
	kind noticeKind
	text string
}

// Summary is a snapshot of the session for the sidebar.
type Summary struct {
	UserEmail      string
	RecipientEmail string
	PropertyURL    string
	State          model.State
	HasDraft       bool
}

// Model is the chat panel. The session is only touched from Update or from
// the single in-flight turn command; rendering reads a snapshot taken
// between turns.
type Model struct {
	machine *conversation.Machine
	session *model.Session
	keys    *keys.KeyMap

	input    textarea.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	style    string

	transcript []model.Message
	summary    Summary
	notices    []notice
	pending    string
	busy       bool

	width  int
	height int
}

// New creates a chat panel for sess and shows the greeting. style is a
// glamour standard style name such as "auto", "dark" or "notty".
func New(
	machine *conversation.Machine,
	sess *model.Session,
	k *keys.KeyMap,
	style string,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = k.Newline
	ta.Focus()

	m := Model{
		machine:  machine,
		session:  sess,
		keys:     k,
		input:    ta,
		viewport: viewport.New(width, height),
		style:    style,
	}
	machine.Greeting(sess)
	m.snapshot()
	m.SetSize(width, height)
	return m
}

// Init returns the initial command for the chat panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the chat panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TurnDoneMsg:
		m.busy = false
		m.pending = ""
		m.snapshot()
		if msg.Err != nil {
			m.addNotice(noticeError, describeError(msg.Err))
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	cmds = append(cmds, taCmd)

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input for the chat panel.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}

		m.input.Reset()
		m.busy = true
		m.pending = text
		m.refreshViewport()
		return m, m.runTurn(text)

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runTurn returns a command that hands text to the state machine.
func (m Model) runTurn(text string) tea.Cmd {
	machine, sess := m.machine, m.session
	return func() tea.Msg {
		reply, err := machine.Handle(context.Background(), sess, text)
		return TurnDoneMsg{Reply: reply, Err: err}
	}
}

// describeError turns a failed turn into a user-facing notice.
func describeError(err error) string {
	if ai.IsContractError(err) {
		return fmt.Sprintf("The assistant sent a reply I couldn't use (%v). Nothing was changed; try again or rephrase.", err)
	}
	return fmt.Sprintf("The assistant is unavailable: %v. Nothing was changed; try again.", err)
}

// Reset starts a fresh session. It reports false while a turn is running.
func (m *Model) Reset() bool {
	if m.busy {
		return false
	}
	m.machine.Reset(m.session)
	m.notices = nil
	m.input.Reset()
	m.snapshot()
	m.refreshViewport()
	return true
}

// Forget clears the stored user email. It reports false while a turn is
// running.
func (m *Model) Forget() bool {
	if m.busy {
		return false
	}
	m.machine.Forget(m.session)
	m.snapshot()
	m.refreshViewport()
	return true
}

// ShowPreview displays the pending draft again without changing it.
func (m *Model) ShowPreview() {
	if m.busy {
		return
	}
	text, ok := m.machine.Preview(m.session)
	if !ok {
		text = "There is no draft yet."
	}
	m.addNotice(noticeInfo, text)
	m.refreshViewport()
}

// Notice shows an informational block below the transcript.
func (m *Model) Notice(text string) {
	m.addNotice(noticeInfo, text)
	m.refreshViewport()
}

// Busy reports whether a turn is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// Summary returns the session snapshot taken after the last turn.
func (m Model) Summary() Summary {
	return m.summary
}

func (m *Model) addNotice(kind noticeKind, text string) {
	m.notices = append(m.notices, notice{at: len(m.transcript), kind: kind, text: text})
}

// snapshot copies what the view needs from the session.
func (m *Model) snapshot() {
	m.transcript = m.session.Window(0)
	m.summary = Summary{
		UserEmail:      m.session.UserEmail,
		RecipientEmail: m.session.RecipientEmail,
		PropertyURL:    m.session.PropertyURL,
		State:          m.session.State,
		HasDraft:       m.session.PendingDraft != nil,
	}
}

// refreshViewport re-renders the conversation content and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the transcript with notices interleaved.
func (m Model) renderConversation() string {
	var sections []string

	next := 0
	flush := func(upTo int) {
		for next < len(m.notices) && m.notices[next].at <= upTo {
			sections = append(sections, m.renderNotice(m.notices[next]), "")
			next++
		}
	}

	for i, msg := range m.transcript {
		flush(i)
		if msg.Role == model.RoleSystem {
			continue
		}
		sections = append(sections, roleLabel(msg.Role), m.renderMarkdown(msg.Content))
	}
	flush(len(m.transcript))

	if m.busy {
		sections = append(sections,
			roleLabel(model.RoleUser),
			m.renderMarkdown(m.pending),
			theme.HelpStyle.Render("LENAH is thinking..."),
		)
	}

	return strings.Join(sections, "\n")
}

func (m Model) renderNotice(n notice) string {
	if n.kind == noticeError {
		return theme.ErrorStyle.Width(m.contentWidth()).Render(n.text)
	}
	return m.renderMarkdown(n.text)
}

func roleLabel(role model.Role) string {
	name := "LENAH"
	if role == model.RoleUser {
		name = "You"
	}
	return theme.RoleStyle(role).Render(name)
}

// renderMarkdown renders content with glamour, falling back to plain text.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// View renders the chat panel.
func (m Model) View() string {
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", m.contentWidth()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 2).
		Render(content)
}

// SetSize updates the chat panel dimensions and rebuilds the markdown
// renderer for the new wrap width.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(m.contentWidth())

	vpHeight := height - 7 // input, separator and borders
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = vpHeight

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(m.contentWidth()-2),
	)
	if err == nil {
		m.renderer = r
	}
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
