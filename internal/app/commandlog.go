package app

import "time"

// RosterSwapInverse is the swap that reverses a substitution: PlayerOut is
// the player the original substitution brought in.
type RosterSwapInverse struct {
	TeamID    string
	PlayerOut string
	PlayerIn  string
}

// FoulInverse describes one foul to remove from the book.
type FoulInverse struct {
	TeamID    string
	PlayerID  string
	Technical bool
}

// ShotClockInverse restores the shot clock to a prior snapshot.
type ShotClockInverse struct {
	Seconds int
	Frozen  bool
}

// Inverse is the structural description sufficient to reverse one applied
// mutation. Nil/zero fields are untouched when applied.
type Inverse struct {
	RemoveEventID       string
	RestoreRoster       *RosterSwapInverse
	RemoveFoul          *FoulInverse
	RestorePossession   *string
	RestoreArrow        *string
	RestoreShotClock    *ShotClockInverse
	RestoreClockRunning *bool
	RemoveSlotIDs       []string
	ReopenSlotID        string
	RefundTimeoutTeam   string
}

// CommandLogEntry records one applied mutation and its inverse.
type CommandLogEntry struct {
	ID        string
	Label     string
	AppliedAt time.Time
	Inverse   Inverse
	// StatEventID is set for stat mutations; undo voids the stored record.
	StatEventID string
	// Substitution is set for roster mutations; undo records the mirror
	// substitution as its compensating write.
	Substitution *RosterSwapInverse
}

// CommandLog is a bounded ring of applied mutations. When capacity is
// exceeded the oldest entries are dropped silently; undo past that point is
// unavailable.
type CommandLog struct {
	entries []CommandLogEntry
	max     int
}

// NewCommandLog returns a log bounded at max entries; max below one falls
// back to a single-entry history.
func NewCommandLog(max int) *CommandLog {
	if max < 1 {
		max = 1
	}
	return &CommandLog{max: max}
}

// Push appends an entry, evicting the oldest when full.
func (l *CommandLog) Push(entry CommandLogEntry) {
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Pop removes and returns the most recent entry.
func (l *CommandLog) Pop() (CommandLogEntry, bool) {
	if len(l.entries) == 0 {
		return CommandLogEntry{}, false
	}
	entry := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return entry, true
}

// Take removes and returns the entry with the given id wherever it sits.
// Used when a remote write fails after later mutations have landed.
func (l *CommandLog) Take(id string) (CommandLogEntry, bool) {
	for i := range l.entries {
		if l.entries[i].ID == id {
			entry := l.entries[i]
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return entry, true
		}
	}
	return CommandLogEntry{}, false
}

// NewestID returns the id of the most recent entry, or "" when empty.
func (l *CommandLog) NewestID() string {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].ID
}

// Len returns the number of undoable entries.
func (l *CommandLog) Len() int {
	return len(l.entries)
}
