// Package presence derives a contact's global presence from its individual
// presence details.
package presence

import "github.com/roach88/contactdb/internal/contact"

// Better reports whether candidate should replace current as the best
// presence seen so far.
func Better(candidate, current contact.PresenceState) bool {
	if current == contact.PresenceUnknown && candidate != contact.PresenceUnknown {
		return true
	}
	return candidate.Rank() < current.Rank()
}

// Select returns the best-ranked presence among presences as a
// GlobalPresence. The scan is stable: on equal rank the earliest entry wins.
// ok is false when presences is empty.
func Select(presences []contact.Presence) (best contact.GlobalPresence, ok bool) {
	idx := -1
	for i, p := range presences {
		if idx < 0 || Better(p.State, presences[idx].State) {
			idx = i
		}
	}
	if idx < 0 {
		return contact.GlobalPresence{}, false
	}
	winner := presences[idx]
	return contact.GlobalPresence{
		State:         winner.State,
		Timestamp:     winner.Timestamp,
		Nickname:      winner.Nickname,
		CustomMessage: winner.CustomMessage,
	}, true
}
