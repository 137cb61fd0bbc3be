package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lenah/internal/theme"
)

// minWidthForSidebar is the narrowest terminal that still shows the
// session sidebar.
const minWidthForSidebar = 80

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
	SidebarWidth    int
}

// NewLayout creates a Layout with the given terminal dimensions. The
// sidebar is dropped on narrow terminals.
func NewLayout(width, height int) Layout {
	sidebar := 0
	if width >= minWidthForSidebar {
		sidebar = 32
	}
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
		SidebarWidth:    sidebar,
	}
}

// ContentWidth returns the width left for the main content area.
func (l Layout) ContentWidth() int {
	return l.Width - l.SidebarWidth
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title and a right-aligned
// status.
func (l Layout) RenderHeader(title string, status string) string {
	return l.fill(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fill(theme.StatusBarStyle, hints, "")
}

// fill renders left and right in style, padding the gap between them to
// the full width.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := l.Width - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// RenderWithFrame composes a full terminal view: header, the content area
// with an optional sidebar on its right, and the status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	sidebar string,
	statusBar string,
) string {
	body := content
	if l.SidebarWidth > 0 && sidebar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, content, sidebar)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		statusBar,
	)
}
