package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"quartermaster/internal/session"
)

// replyMsg carries the session's response to an asynchronous action back
// into the update loop.
type replyMsg struct {
	reply session.Reply
	err   error
}

// submitCmd sends free text to the session off the UI goroutine.
func submitCmd(ctx context.Context, sess *session.Session, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := sess.Submit(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

// chooseCmd resolves a package selection.
func chooseCmd(ctx context.Context, sess *session.Session, name string) tea.Cmd {
	return func() tea.Msg {
		reply, err := sess.Choose(ctx, name)
		return replyMsg{reply: reply, err: err}
	}
}

// confirmCmd answers a pending yes/no gate.
func confirmCmd(ctx context.Context, sess *session.Session, yes bool) tea.Cmd {
	return func() tea.Msg {
		reply, err := sess.Confirm(ctx, yes)
		return replyMsg{reply: reply, err: err}
	}
}
