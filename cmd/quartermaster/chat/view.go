package chat

import (
	"fmt"
	"strings"

	"quartermaster/internal/session"
)

const (
	headerHeight    = 1
	footerHeight    = 1
	inputAreaHeight = 3
)

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.session.State() == session.StateSelectingPackage && !m.busy {
		b.WriteString(m.picker.View())
	} else {
		b.WriteString(m.history.View())
	}

	b.WriteString("\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := fmt.Sprintf(" Quartermaster · session %.8s ", m.session.ID())
	return m.styles.Header.Width(m.width).Render(title)
}

func (m Model) inputView() string {
	if m.busy {
		return m.styles.Spinner.Render(m.spinner.View()) + m.styles.Muted.Render(" working...")
	}

	switch m.session.State() {
	case session.StateConfirmingInstall, session.StateConfirmingRawCommand:
		return m.styles.Warning.Render("  Confirm? press y or n")
	case session.StateSelectingPackage:
		return m.styles.Muted.Render("  ↑/↓ to move, enter to select")
	default:
		return m.styles.Prompt.Render("> ") + m.input.View()
	}
}

func (m Model) footerView() string {
	hint := "enter send · esc quit"
	if m.err != nil {
		hint = m.err.Error()
		return m.styles.Error.Width(m.width).Render(" " + hint)
	}
	return m.styles.Footer.Width(m.width).Render(hint)
}

// refreshHistory re-renders the transcript into the viewport and scrolls
// to the latest message.
func (m *Model) refreshHistory() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.session.Transcript().Messages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	m.history.SetContent(b.String())
	m.history.GotoBottom()
}

func (m *Model) renderMessage(msg session.Message) string {
	switch msg.Role {
	case session.RoleUser:
		return m.styles.Prompt.Render("you ") + m.styles.UserInput.Render(msg.Content)
	case session.RoleAssistant:
		return m.styles.AgentResponse.Render(m.renderMarkdown(msg.Content))
	case session.RoleError:
		return m.styles.Error.Render("✗ ") + m.styles.Body.Render(msg.Content)
	default:
		return m.styles.SystemNote.Render(msg.Content)
	}
}

// renderMarkdown runs glamour over assistant text, falling back to the raw
// string when rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
