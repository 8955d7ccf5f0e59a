package contact

import "fmt"

// PresenceState is the availability reported by a presence detail.
// Lower values are "more present"; Unknown is the zero value and always
// ranks last.
type PresenceState int

const (
	PresenceUnknown PresenceState = iota
	PresenceAvailable
	PresenceAway
	PresenceExtendedAway
	PresenceBusy
	PresenceHidden
	PresenceOffline
)

var presenceNames = []string{"unknown", "available", "away", "extended-away", "busy", "hidden", "offline"}

func (s PresenceState) String() string {
	if s >= 0 && int(s) < len(presenceNames) {
		return presenceNames[s]
	}
	return fmt.Sprintf("PresenceState(%d)", int(s))
}

// ParsePresenceState maps a name produced by String back to a state.
func ParsePresenceState(name string) (PresenceState, error) {
	for i, n := range presenceNames {
		if n == name {
			return PresenceState(i), nil
		}
	}
	return PresenceUnknown, fmt.Errorf("unknown presence state %q", name)
}

// Rank orders states for best-presence selection: lower is better and
// Unknown sorts after every known state.
func (s PresenceState) Rank() int {
	if s == PresenceUnknown {
		return len(presenceNames)
	}
	return int(s)
}
