package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quartermaster/internal/store"
)

// pingStub is a canned llm.Client for the status ping.
type pingStub struct {
	err error
}

func (c *pingStub) Complete(ctx context.Context, prompt string) (string, error) {
	return "Hello!", c.err
}

func (c *pingStub) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return "Hello!", c.err
}

func TestPingModel(t *testing.T) {
	require.NoError(t, pingModel(context.Background(), &pingStub{}))

	err := pingModel(context.Background(), &pingStub{err: errors.New("401 unauthorized")})
	assert.ErrorContains(t, err, "401")
}

func TestRenderSessions(t *testing.T) {
	var buf bytes.Buffer
	renderSessions(&buf, []store.SessionSummary{
		{ID: "abc-123", StartedAt: time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC), Turns: 4},
	})

	out := buf.String()
	assert.Contains(t, out, "abc-123")
	assert.Contains(t, out, "2026-02-03 09:30")
	assert.Contains(t, out, "4 turns")
}

func TestRenderTranscriptFromStore(t *testing.T) {
	st, err := store.Open(store.DefaultPath(t.TempDir()))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.AppendTurn(ctx, "abc-123", "user", "install 7zip"))
	require.NoError(t, st.AppendTurn(ctx, "abc-123", "assistant", "WINGET_SEARCH: 7zip"))

	turns, err := st.Turns(ctx, "abc-123")
	require.NoError(t, err)
	require.Len(t, turns, 2)

	var buf bytes.Buffer
	renderTranscript(&buf, turns)

	out := buf.String()
	assert.Contains(t, out, "[user] install 7zip")
	assert.Contains(t, out, "[assistant] WINGET_SEARCH: 7zip")
}
