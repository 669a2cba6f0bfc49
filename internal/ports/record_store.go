package ports

import "context"

// GameStatus is the lifecycle state persisted for a game.
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusOvertime   GameStatus = "overtime"
	StatusCompleted  GameStatus = "completed"
	StatusCancelled  GameStatus = "cancelled"
)

// StatRecord is the storage shape of one stat event.
type StatRecord struct {
	GameID       string
	TeamID       string
	PlayerID     string
	Opponent     bool
	StatType     string
	Modifier     string
	Quarter      int
	ClockSeconds int
}

// SubstitutionRecord is the storage shape of one substitution.
type SubstitutionRecord struct {
	GameID       string
	TeamID       string
	PlayerOutID  string
	PlayerInID   string
	Quarter      int
	ClockSeconds int
}

// ClockState is the storage shape of the game clock.
type ClockState struct {
	GameID           string
	Quarter          int
	MinutesRemaining int
	SecondsRemaining int
	Running          bool
}

// GameRecordStore is the remote persistence collaborator. All calls are
// fallible; the engine applies optimistically and rolls back on failure.
type GameRecordStore interface {
	// RecordStat persists a stat event and returns its store-assigned id.
	RecordStat(ctx context.Context, rec StatRecord) (string, error)

	// RecordSubstitution persists a substitution. Recording the mirror
	// substitution is the idempotent-safe compensation for an undo.
	RecordSubstitution(ctx context.Context, rec SubstitutionRecord) error

	// UpdateGameStatus persists a lifecycle transition.
	UpdateGameStatus(ctx context.Context, gameID string, status GameStatus) error

	// UpdateClockState persists the clock. Implementations may coalesce
	// rapid updates; the engine treats this as best-effort.
	UpdateClockState(ctx context.Context, state ClockState) error

	// VoidRecord tombstones a previously written stat record. Voiding an
	// already-void or unknown record succeeds.
	VoidRecord(ctx context.Context, gameID, recordID string) error
}
