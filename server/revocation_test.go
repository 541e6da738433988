package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRevocationListSweepsExpiredEntries(t *testing.T) {
	now := time.Now()
	l := newRevocationList()
	l.nowFunc = func() time.Time { return now }

	l.Seen("short", now.Add(time.Minute))
	l.Seen("long", now.Add(time.Hour))
	require.Len(t, l.seen, 2)

	// Inside the sweep interval nothing is dropped even once expired
	now = now.Add(30 * time.Second)
	l.Seen("other", now.Add(time.Hour))
	require.Len(t, l.seen, 3)

	now = now.Add(2 * time.Minute)
	l.Seen("latest", now.Add(time.Hour))
	require.Len(t, l.seen, 3)
	require.NotContains(t, l.seen, "short")

	require.Equal(t, 3, l.RevokeAll())
	require.True(t, l.IsRevoked("long"))
	require.Empty(t, l.seen)

	now = now.Add(2 * time.Hour)
	l.Seen("fresh", now.Add(time.Hour))
	require.False(t, l.IsRevoked("long"))
	require.Len(t, l.seen, 1)
}
