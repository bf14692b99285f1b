package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"quartermaster/internal/session"
)

// Update is the bubbletea event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil && msg.reply.State == session.StateSelectingPackage {
			m.showResults()
		}
		m.refreshHistory()
		return m, nil
	}

	return m.updateWidgets(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.session.State() == session.StateAwaitingInput && !m.busy {
			return m, tea.Quit
		}
	}

	if m.busy {
		return m, nil
	}

	switch m.session.State() {
	case session.StateAwaitingInput:
		if msg.String() == "enter" {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.err = nil
			return m, submitCmd(m.ctx, m.session, text)
		}

	case session.StateSelectingPackage:
		if msg.String() == "enter" {
			if item, ok := m.picker.SelectedItem().(resultItem); ok {
				m.busy = true
				return m, chooseCmd(m.ctx, m.session, item.name)
			}
			return m, nil
		}

	case session.StateConfirmingInstall, session.StateConfirmingRawCommand:
		switch strings.ToLower(msg.String()) {
		case "y":
			m.busy = true
			return m, confirmCmd(m.ctx, m.session, true)
		case "n":
			m.busy = true
			return m, confirmCmd(m.ctx, m.session, false)
		}
		return m, nil
	}

	return m.updateWidgets(msg)
}

// updateWidgets forwards a message to whichever widget owns the focus.
func (m Model) updateWidgets(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.session.State() {
	case session.StateSelectingPackage:
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	case session.StateAwaitingInput:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.history, cmd = m.history.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
