package app

import "courtside/internal/domain"

// EventKind identifies engine events for dispatch to the hosting port.
type EventKind string

const (
	EventClockStarted    EventKind = "clock_started"
	EventClockStopped    EventKind = "clock_stopped"
	EventClockReset      EventKind = "clock_reset"
	EventClockExpired    EventKind = "clock_expired"
	EventStatRecorded    EventKind = "stat_recorded"
	EventStatPersisted   EventKind = "stat_persisted"
	EventStatWriteFailed EventKind = "stat_write_failed"
	EventSubApplied      EventKind = "substitution_applied"
	EventSubWriteFailed  EventKind = "substitution_write_failed"
	EventSubPersisted    EventKind = "substitution_persisted"
	EventQuarterAdvanced EventKind = "quarter_advanced"
	EventOvertimeStarted EventKind = "overtime_started"
	EventGameCompleted   EventKind = "game_completed"
	EventGameCancelled   EventKind = "game_cancelled"
	EventShotClockAlert  EventKind = "shot_clock_violation"
	EventAlertConfirmed  EventKind = "shot_clock_violation_confirmed"
	EventAlertDismissed  EventKind = "shot_clock_violation_dismissed"
	EventSequenceOpened  EventKind = "sequence_opened"
	EventSequenceClosed  EventKind = "sequence_closed"
	EventBonusActivated  EventKind = "bonus_activated"
	EventPlayerFouledOut EventKind = "player_fouled_out"
	EventPlayerEjected   EventKind = "player_ejected"
	EventTimeoutCalled   EventKind = "timeout_called"
	EventPossessionFlip  EventKind = "possession_changed"
	EventUndoApplied     EventKind = "undo_applied"
)

// Event is an engine event with optional targeted recipients; empty
// Recipients means broadcast.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string
}

type ClockPayload struct {
	Quarter          int
	SecondsRemaining int
	Running          bool
}

type StatRecordedPayload struct {
	Event     domain.StatEvent
	HomeScore int
	AwayScore int
}

type StatPersistedPayload struct {
	EventID     string
	PersistedID string
}

type StatWriteFailedPayload struct {
	Intent StatIntent
	Err    string
}

type SubAppliedPayload struct {
	TeamID    string
	PlayerOut string
	PlayerIn  string
}

type SubWriteFailedPayload struct {
	Intent SubstitutionIntent
	Err    string
}

type QuarterAdvancedPayload struct {
	Quarter      int
	ClockSeconds int
}

type OvertimeStartedPayload struct {
	Period       int // 1-based overtime number
	Quarter      int
	ClockSeconds int
}

type GameCompletedPayload struct {
	HomeScore int
	AwayScore int
}

type ShotClockAlertPayload struct {
	TeamID string
}

type SequenceSlotPayload struct {
	Slot domain.SequenceSlot
}

type BonusActivatedPayload struct {
	// TeamID is the team whose foul count triggered the bonus.
	TeamID string
	Level  domain.BonusLevel
}

type FoulTroublePayload struct {
	TeamID        string
	PlayerID      string
	PersonalFouls int
}

type TimeoutCalledPayload struct {
	TeamID    string
	Remaining int
}

type PossessionPayload struct {
	TeamID string
}

type UndoAppliedPayload struct {
	Label string
}
