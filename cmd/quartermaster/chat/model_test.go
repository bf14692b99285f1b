package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quartermaster/cmd/quartermaster/ui"
	"quartermaster/internal/config"
	"quartermaster/internal/session"
	"quartermaster/internal/shell"
)

type fakeClient struct {
	reply string
}

func (c *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.reply, nil
}

func (c *fakeClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.reply, nil
}

type fakeRunner struct {
	outcome shell.Outcome
}

func (r *fakeRunner) Run(ctx context.Context, command string, timeout time.Duration) (shell.Outcome, error) {
	return r.outcome, nil
}

const searchFixture = "Name   Id         Version  Source\n" +
	"----------------------------------\n" +
	"7-Zip  7zip.7zip  23.01    winget\n"

func newTestModel(t *testing.T, llmReply string, outcome shell.Outcome) Model {
	t.Helper()
	sess := session.New(
		&fakeClient{reply: llmReply},
		&fakeRunner{outcome: outcome},
		config.ExecutionConfig{CommandTimeout: time.Minute},
	)
	m := New(context.Background(), sess, ui.NewStyles(ui.DarkTheme()))
	m.setSize(100, 30)
	return m
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func TestSubmitShowsSearchResults(t *testing.T) {
	m := newTestModel(t, "WINGET_SEARCH: 7zip", shell.Outcome{Stdout: searchFixture})

	m.input.SetValue("install 7zip")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.True(t, m.busy, "busy while the session call is in flight")

	m = runCmd(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, session.StateSelectingPackage, m.session.State())
	require.Len(t, m.picker.Items(), 1)

	item, ok := m.picker.Items()[0].(resultItem)
	require.True(t, ok)
	assert.Equal(t, "7-Zip", item.name)
	assert.Equal(t, "7zip.7zip", item.id)
}

func TestSelectionLeadsToConfirmGate(t *testing.T) {
	m := newTestModel(t, "WINGET_SEARCH: 7zip", shell.Outcome{Stdout: searchFixture})

	m.input.SetValue("install 7zip")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)
	assert.Equal(t, session.StateConfirmingInstall, m.session.State())
	assert.Contains(t, m.View(), "press y or n")

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = runCmd(t, updated.(Model), cmd)
	assert.Equal(t, session.StateAwaitingInput, m.session.State())
}

func TestDeclineConfirmation(t *testing.T) {
	m := newTestModel(t, "WINGET_INSTALL: Git.Git", shell.Outcome{})

	m.input.SetValue("install git")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)
	assert.Equal(t, session.StateConfirmingInstall, m.session.State())

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = runCmd(t, updated.(Model), cmd)
	assert.Equal(t, session.StateAwaitingInput, m.session.State())

	msgs := m.session.Transcript().Messages()
	assert.Contains(t, msgs[len(msgs)-1].Content, "cancelled")
}

func TestEmptySubmitIsIgnored(t *testing.T) {
	m := newTestModel(t, "anything", shell.Outcome{})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t, "anything", shell.Outcome{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// ctxClient records the context the session hands to the model client.
type ctxClient struct {
	seen context.Context
}

func (c *ctxClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

func (c *ctxClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	c.seen = ctx
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "ok", nil
}

func TestCommandsCarryProgramContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &ctxClient{}
	sess := session.New(client, &fakeRunner{}, config.ExecutionConfig{CommandTimeout: time.Minute})
	m := New(ctx, sess, ui.NewStyles(ui.DarkTheme()))
	m.setSize(100, 30)

	m.input.SetValue("install 7zip")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)

	require.NotNil(t, client.seen)
	assert.ErrorIs(t, client.seen.Err(), context.Canceled)

	msgs := m.session.Transcript().Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, session.RoleError, last.Role)
	assert.Contains(t, last.Content, "context canceled")
}

func TestViewShowsTranscript(t *testing.T) {
	m := newTestModel(t, "Hello! How can I help?", shell.Outcome{})

	m.input.SetValue("hi")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)

	view := m.View()
	assert.Contains(t, view, "Quartermaster")
	assert.Contains(t, view, "hi")
}
