package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTurn(ctx, "sess-1", "user", "install 7zip"))
	require.NoError(t, s.AppendTurn(ctx, "sess-1", "assistant", "WINGET_SEARCH: 7zip"))
	require.NoError(t, s.AppendTurn(ctx, "sess-1", "system", "Found 2 packages"))

	turns, err := s.Turns(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "install 7zip", turns[0].Content)
	assert.Equal(t, "system", turns[2].Role)
}

func TestListSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTurn(ctx, "sess-a", "user", "one"))
	require.NoError(t, s.AppendTurn(ctx, "sess-a", "assistant", "two"))
	require.NoError(t, s.AppendTurn(ctx, "sess-b", "user", "three"))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[string]int{}
	for _, sum := range sessions {
		byID[sum.ID] = sum.Turns
	}
	assert.Equal(t, 2, byID["sess-a"])
	assert.Equal(t, 1, byID["sess-b"])
}

func TestTurnsForUnknownSession(t *testing.T) {
	s := openTestStore(t)

	turns, err := s.Turns(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendTurn(context.Background(), "sess-1", "user", "hello"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	turns, err := s2.Turns(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].Content)
}
