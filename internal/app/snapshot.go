package app

import (
	"courtside/internal/domain"
	"courtside/internal/ports"
)

// TeamSnapshot is the per-team slice of a game snapshot.
type TeamSnapshot struct {
	TeamID            string            `json:"team_id"`
	Score             int               `json:"score"`
	OnCourt           []string          `json:"on_court"`
	Bench             []string          `json:"bench"`
	TeamFouls         int               `json:"team_fouls"`
	Bonus             domain.BonusLevel `json:"bonus"`
	TimeoutsRemaining int               `json:"timeouts_remaining"`
	PersonalFouls     map[string]int    `json:"personal_fouls"`
}

// Snapshot is the full authoritative game state, sufficient for a client
// joining mid-game to render without replaying history.
type Snapshot struct {
	GameID           string                `json:"game_id"`
	RulesetID        string                `json:"ruleset_id"`
	Status           ports.GameStatus      `json:"status"`
	Quarter          int                   `json:"quarter"`
	SecondsRemaining int                   `json:"seconds_remaining"`
	ClockRunning     bool                  `json:"clock_running"`
	ShotClockSeconds int                   `json:"shot_clock_seconds"`
	ShotClockFrozen  bool                  `json:"shot_clock_frozen"`
	Possession       string                `json:"possession"`
	PossessionArrow  string                `json:"possession_arrow"`
	Home             TeamSnapshot          `json:"home"`
	Away             TeamSnapshot          `json:"away"`
	PendingSequences []domain.SequenceSlot `json:"pending_sequences"`
	// ViolationTeam is set while a shot-clock violation awaits confirmation.
	ViolationTeam string `json:"violation_team,omitempty"`
	UndoDepth     int    `json:"undo_depth"`
}

// Snapshot returns a point-in-time copy of the game state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	home, away := e.ledger.Scores(e.homeTeamID, e.awayTeamID)
	violationTeam := ""
	if e.violation != nil {
		violationTeam = e.violation.teamID
	}
	return Snapshot{
		GameID:           e.gameID,
		RulesetID:        e.rules.ID,
		Status:           e.status,
		Quarter:          e.clock.Quarter,
		SecondsRemaining: e.clock.SecondsRemaining,
		ClockRunning:     e.clock.Running,
		ShotClockSeconds: e.shotClock.Seconds(),
		ShotClockFrozen:  e.shotClock.Frozen(),
		Possession:       e.possession.Holder(),
		PossessionArrow:  e.possession.Arrow(),
		Home:             e.teamSnapshotLocked(e.homeTeamID, home),
		Away:             e.teamSnapshotLocked(e.awayTeamID, away),
		PendingSequences: e.sequences.Pending(),
		ViolationTeam:    violationTeam,
		UndoDepth:        e.log.Len(),
	}
}

func (e *Engine) teamSnapshotLocked(teamID string, score int) TeamSnapshot {
	roster := e.rosters[teamID]
	personals := make(map[string]int)
	for playerID, count := range e.fouls.PersonalCounts() {
		if roster.Has(playerID) {
			personals[playerID] = count
		}
	}
	return TeamSnapshot{
		TeamID:            teamID,
		Score:             score,
		OnCourt:           roster.OnCourt(),
		Bench:             roster.Bench(),
		TeamFouls:         e.fouls.TeamFouls(teamID),
		Bonus:             e.fouls.BonusLevel(teamID),
		TimeoutsRemaining: e.timeouts[teamID],
		PersonalFouls:     personals,
	}
}
