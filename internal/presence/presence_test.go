package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
)

func TestBetter(t *testing.T) {
	assert.True(t, Better(contact.PresenceAvailable, contact.PresenceBusy))
	assert.True(t, Better(contact.PresenceOffline, contact.PresenceUnknown))
	assert.False(t, Better(contact.PresenceUnknown, contact.PresenceOffline))
	assert.False(t, Better(contact.PresenceAway, contact.PresenceAway), "ties keep the current best")
	assert.False(t, Better(contact.PresenceUnknown, contact.PresenceUnknown))
}

func TestSelect_PicksMostAvailable(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	presences := []contact.Presence{
		{State: contact.PresenceBusy, Nickname: "busy"},
		{State: contact.PresenceUnknown, Nickname: "unknown"},
		{State: contact.PresenceAvailable, Nickname: "here", CustomMessage: "hi", Timestamp: ts},
	}

	got, ok := Select(presences)
	require.True(t, ok)
	assert.Equal(t, contact.GlobalPresence{
		State:         contact.PresenceAvailable,
		Timestamp:     ts,
		Nickname:      "here",
		CustomMessage: "hi",
	}, got)
}

func TestSelect_AllUnknownKeepsFirst(t *testing.T) {
	got, ok := Select([]contact.Presence{
		{State: contact.PresenceUnknown, Nickname: "first"},
		{State: contact.PresenceUnknown, Nickname: "second"},
	})
	require.True(t, ok)
	assert.Equal(t, "first", got.Nickname)
}

func TestSelect_TieKeepsFirst(t *testing.T) {
	got, ok := Select([]contact.Presence{
		{State: contact.PresenceUnknown, Nickname: "u"},
		{State: contact.PresenceAway, Nickname: "a1"},
		{State: contact.PresenceAway, Nickname: "a2"},
	})
	require.True(t, ok)
	assert.Equal(t, "a1", got.Nickname)
}

func TestSelect_Empty(t *testing.T) {
	_, ok := Select(nil)
	assert.False(t, ok)
}

func TestSelect_DropsCommonMetadata(t *testing.T) {
	got, ok := Select([]contact.Presence{{
		Common: contact.Common{DetailURI: "presence:1", Contexts: []string{"Home"}},
		State:  contact.PresenceAway,
	}})
	require.True(t, ok)
	assert.True(t, got.Common.Empty())
}
