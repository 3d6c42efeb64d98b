package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateSessionIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	a, err := s.GetOrCreateSession("default")
	require.NoError(t, err)
	b, err := s.GetOrCreateSession("default")
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)

	other, err := s.GetOrCreateSession("work")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, other.ID)

	sessions, err := s.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}

func TestRecentMessagesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.GetOrCreateSession("default")
	require.NoError(t, err)

	for _, m := range []Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two", Tool: "general_chat"},
		{Role: "user", Content: "three"},
	} {
		require.NoError(t, s.AddMessage(sess.ID, m))
	}

	got, err := s.RecentMessages(sess.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "two", got[0].Content)
	require.Equal(t, "general_chat", got[0].Tool)
	require.Equal(t, "three", got[1].Content)
	require.False(t, got[1].CreatedAt.IsZero())
}

func TestSearchMessagesAcrossSessions(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.GetOrCreateSession("a")
	b, _ := s.GetOrCreateSession("b")
	require.NoError(t, s.AddMessage(a.ID, Message{Role: "user", Content: "tell me about Nillion network"}))
	require.NoError(t, s.AddMessage(b.ID, Message{Role: "assistant", Content: "Nillion is a blind computation network"}))
	require.NoError(t, s.AddMessage(b.ID, Message{Role: "user", Content: "and solana?"}))

	got, err := s.SearchMessages([]string{"nillion", "network"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, b.ID, got[0].SessionID, "newest first")

	got, err = s.SearchMessages([]string{" ", ""}, 10)
	require.NoError(t, err)
	require.Empty(t, got)
}
