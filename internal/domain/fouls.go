package domain

import "errors"

// ErrPlayerFouledOut rejects on-court actions (including substituting in)
// for a player who has reached the personal foul limit.
var ErrPlayerFouledOut = errors.New("player has fouled out")

// BonusLevel describes the free-throw bonus the opposing offense has earned
// against a team's foul count.
type BonusLevel int

const (
	BonusNone BonusLevel = iota
	// BonusSingle is the one-and-one (or per-ruleset single) bonus.
	BonusSingle
	// BonusDouble is the double bonus where defined by the ruleset.
	BonusDouble
)

// FoulOutcome summarizes the consequences of one recorded foul.
type FoulOutcome struct {
	PersonalCount  int
	TechnicalCount int
	TeamCount      int
	FouledOut      bool
	Ejected        bool
	// Bonus is the level the opposing team's shooters now enjoy.
	Bonus BonusLevel
	// BonusCrossed is true when this foul moved the bonus level up.
	BonusCrossed bool
}

// FoulBook tracks personal, technical and team foul counts for both teams
// under one ruleset.
type FoulBook struct {
	rules      Ruleset
	personal   map[string]int
	technicals map[string]int
	team       map[string]int
}

// NewFoulBook returns an empty foul book for the ruleset.
func NewFoulBook(rules Ruleset) *FoulBook {
	return &FoulBook{
		rules:      rules,
		personal:   make(map[string]int),
		technicals: make(map[string]int),
		team:       make(map[string]int),
	}
}

// RecordFoul increments the player's personal count and the team count, and
// reports the resulting bonus/foul-out/ejection state. Technical fouls also
// count toward the personal total but are tracked separately for ejection.
func (f *FoulBook) RecordFoul(teamID, playerID string, technical bool) FoulOutcome {
	before := f.BonusLevel(teamID)

	f.team[teamID]++
	if playerID != "" {
		f.personal[playerID]++
		if technical {
			f.technicals[playerID]++
		}
	}

	after := f.BonusLevel(teamID)
	return FoulOutcome{
		PersonalCount:  f.personal[playerID],
		TechnicalCount: f.technicals[playerID],
		TeamCount:      f.team[teamID],
		FouledOut:      f.IsFouledOut(playerID),
		Ejected:        f.IsEjected(playerID),
		Bonus:          after,
		BonusCrossed:   after > before,
	}
}

// RemoveFoul reverses one recorded foul; the structural inverse for undo and
// write-failure rollback.
func (f *FoulBook) RemoveFoul(teamID, playerID string, technical bool) {
	if f.team[teamID] > 0 {
		f.team[teamID]--
	}
	if playerID != "" {
		if f.personal[playerID] > 0 {
			f.personal[playerID]--
		}
		if technical && f.technicals[playerID] > 0 {
			f.technicals[playerID]--
		}
	}
}

// IsFouledOut reports whether the player reached the personal foul limit.
func (f *FoulBook) IsFouledOut(playerID string) bool {
	return playerID != "" && f.personal[playerID] >= f.rules.PersonalFoulLimit
}

// IsEjected reports whether the player collected enough technicals for
// ejection.
func (f *FoulBook) IsEjected(playerID string) bool {
	return playerID != "" && f.technicals[playerID] >= f.rules.TechnicalEjectionCount
}

// BonusLevel returns the bonus the opposing offense holds against teamID's
// current team foul count.
func (f *FoulBook) BonusLevel(teamID string) BonusLevel {
	count := f.team[teamID]
	if f.rules.FoulDoubleBonusThreshold > 0 && count >= f.rules.FoulDoubleBonusThreshold {
		return BonusDouble
	}
	if count >= f.rules.FoulBonusThreshold {
		return BonusSingle
	}
	return BonusNone
}

// PersonalFouls returns the player's personal foul count.
func (f *FoulBook) PersonalFouls(playerID string) int {
	return f.personal[playerID]
}

// TechnicalFouls returns the player's technical foul count.
func (f *FoulBook) TechnicalFouls(playerID string) int {
	return f.technicals[playerID]
}

// TeamFouls returns the team's current-period foul count.
func (f *FoulBook) TeamFouls(teamID string) int {
	return f.team[teamID]
}

// AdvancePeriod resets team fouls according to the ruleset cadence when play
// moves from the given period into the next. Overtime periods always start
// with fresh team fouls.
func (f *FoulBook) AdvancePeriod(enteringPeriod int) {
	switch f.rules.TeamFoulReset {
	case ResetEachQuarter:
		f.resetTeamFouls()
	case ResetEachHalf:
		half := f.rules.PeriodsPerGame/2 + 1
		if enteringPeriod == half || enteringPeriod > f.rules.PeriodsPerGame {
			f.resetTeamFouls()
		}
	}
}

func (f *FoulBook) resetTeamFouls() {
	for t := range f.team {
		f.team[t] = 0
	}
}

// PersonalCounts returns a copy of all personal foul counts.
func (f *FoulBook) PersonalCounts() map[string]int {
	out := make(map[string]int, len(f.personal))
	for p, n := range f.personal {
		out[p] = n
	}
	return out
}

// TeamCounts returns a copy of both team foul counts.
func (f *FoulBook) TeamCounts() map[string]int {
	out := make(map[string]int, len(f.team))
	for t, n := range f.team {
		out[t] = n
	}
	return out
}
