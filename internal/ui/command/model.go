package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lenah/internal/theme"
)

// CommandMsg is emitted when the user executes a command. It holds the
// canonical command name, or the raw input when nothing matched.
type CommandMsg string

// Palette commands.
const (
	Reset   = "reset"
	Forget  = "forget"
	Preview = "preview"
	Help    = "help"
	Quit    = "quit"
)

// Names lists the palette commands in display order.
var Names = []string{Reset, Forget, Preview, Help, Quit}

var aliases = map[string]string{
	"new":          Reset,
	"clear":        Reset,
	"forget email": Forget,
	"draft":        Preview,
	"show":         Preview,
	"?":            Help,
	"q":            Quit,
	"exit":         Quit,
}

// Resolve maps user input to a command name. Unknown input is returned
// unchanged with ok false.
func Resolve(input string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, name := range Names {
		if s == name {
			return name, true
		}
	}
	if name, ok := aliases[s]; ok {
		return name, true
	}
	return input, false
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = strings.Join(Names, " | ")
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		raw := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if raw == "" {
			return m, nil
		}
		name, _ := Resolve(raw)
		return m, func() tea.Msg {
			return CommandMsg(name)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command Palette"),
		m.input.View(),
		theme.HelpStyle.Render("tab completes, enter runs, esc closes"),
	)

	return theme.PanelStyle.
		Width(m.width - 2).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
