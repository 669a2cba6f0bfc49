package domain

import "time"

// StatType is the closed set of recordable stat kinds. Keeping this an enum
// forces exhaustive handling in the shot-clock table, score fold and
// sequence linker.
type StatType int

const (
	StatFieldGoal StatType = iota
	StatThreePointer
	StatFreeThrow
	StatRebound
	StatAssist
	StatSteal
	StatBlock
	StatTurnover
	StatFoul
)

// String returns the wire/storage name for the stat type.
func (t StatType) String() string {
	switch t {
	case StatFieldGoal:
		return "field_goal"
	case StatThreePointer:
		return "three_pointer"
	case StatFreeThrow:
		return "free_throw"
	case StatRebound:
		return "rebound"
	case StatAssist:
		return "assist"
	case StatSteal:
		return "steal"
	case StatBlock:
		return "block"
	case StatTurnover:
		return "turnover"
	case StatFoul:
		return "foul"
	}
	return "unknown"
}

// StatTypeFromString parses a wire/storage stat type name.
func StatTypeFromString(s string) (StatType, bool) {
	for t := StatFieldGoal; t <= StatFoul; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Modifier qualifies a stat event (shot result, rebound side, foul class).
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierMade
	ModifierMissed
	ModifierOffensive
	ModifierDefensive
	ModifierPersonal
	ModifierTechnical
)

// String returns the wire/storage name for the modifier.
func (m Modifier) String() string {
	switch m {
	case ModifierMade:
		return "made"
	case ModifierMissed:
		return "missed"
	case ModifierOffensive:
		return "offensive"
	case ModifierDefensive:
		return "defensive"
	case ModifierPersonal:
		return "personal"
	case ModifierTechnical:
		return "technical"
	}
	return "none"
}

// ModifierFromString parses a wire/storage modifier name.
func ModifierFromString(s string) (Modifier, bool) {
	for m := ModifierNone; m <= ModifierTechnical; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// StatEvent is one append-only ledger entry. Once committed it is immutable
// except for removal when the remote write fails.
type StatEvent struct {
	ID          string
	PersistedID string // set when the record store acknowledges the write
	Pending     bool   // true while the remote write is in flight
	GameID      string
	TeamID      string
	PlayerID    string
	// IsOpponent marks an untracked-opponent stat in single-team mode; the
	// points fold credits the other team.
	IsOpponent    bool
	Type          StatType
	Modifier      Modifier
	Quarter       int
	ClockSeconds  int
	SequenceID    string
	LinkedEventID string
	CreatedAt     time.Time
}

// Points returns the scoring value of the event: 2 for a made field goal,
// 3 for a made three, 1 for a made free throw, 0 otherwise.
func (e StatEvent) Points() int {
	if e.Modifier != ModifierMade {
		return 0
	}
	switch e.Type {
	case StatFieldGoal:
		return 2
	case StatThreePointer:
		return 3
	case StatFreeThrow:
		return 1
	case StatRebound, StatAssist, StatSteal, StatBlock, StatTurnover, StatFoul:
		return 0
	}
	return 0
}
