package domain

import "sync"

// TeamFoulResetCadence controls when team foul counts return to zero.
type TeamFoulResetCadence int

const (
	// ResetEachQuarter clears team fouls at every period boundary.
	ResetEachQuarter TeamFoulResetCadence = iota
	// ResetEachHalf clears team fouls only at the half and before overtime.
	ResetEachHalf
)

// ShotClockKeep leaves the shot clock untouched for a trigger that would
// otherwise reset it.
const ShotClockKeep = -1

// Ruleset bundles the timing, foul and timeout constants for one federation.
// Values are read-only to the engine; custom rulesets are registered once and
// looked up by id.
type Ruleset struct {
	ID                    string
	QuarterLengthSeconds  int
	PeriodsPerGame        int
	OvertimeLengthSeconds int

	ShotClockFullReset int
	// ShotClockOffensiveReboundReset is the seconds after an offensive
	// rebound, or ShotClockKeep to leave the clock running.
	ShotClockOffensiveReboundReset int
	// ShotClockDefensiveFoulReset applies to frontcourt fouls by the defense.
	ShotClockDefensiveFoulReset int
	// ShotClockOOBThreshold governs out-of-bounds with offense retaining:
	// the clock drops to this value only when it currently exceeds it.
	// Zero keeps the clock unchanged.
	ShotClockOOBThreshold int

	FoulBonusThreshold int
	// FoulDoubleBonusThreshold is zero when the ruleset has no double bonus.
	FoulDoubleBonusThreshold int
	PersonalFoulLimit        int
	TechnicalEjectionCount   int
	TimeoutAllotment         int
	TeamFoulReset            TeamFoulResetCadence
}

// PeriodLengthSeconds returns the clock length for the given period,
// accounting for overtime.
func (r Ruleset) PeriodLengthSeconds(period int) int {
	if period > r.PeriodsPerGame {
		return r.OvertimeLengthSeconds
	}
	return r.QuarterLengthSeconds
}

// IsOvertime reports whether the given period is beyond regulation.
func (r Ruleset) IsOvertime(period int) bool {
	return period > r.PeriodsPerGame
}

var (
	// RulesetNBA follows NBA timing and foul rules.
	RulesetNBA = Ruleset{
		ID:                             "nba",
		QuarterLengthSeconds:           720,
		PeriodsPerGame:                 4,
		OvertimeLengthSeconds:          300,
		ShotClockFullReset:             24,
		ShotClockOffensiveReboundReset: 14,
		ShotClockDefensiveFoulReset:    14,
		ShotClockOOBThreshold:          14,
		FoulBonusThreshold:             5,
		FoulDoubleBonusThreshold:       0,
		PersonalFoulLimit:              6,
		TechnicalEjectionCount:         2,
		TimeoutAllotment:               7,
		TeamFoulReset:                  ResetEachQuarter,
	}

	// RulesetFIBA follows FIBA timing and foul rules.
	RulesetFIBA = Ruleset{
		ID:                             "fiba",
		QuarterLengthSeconds:           600,
		PeriodsPerGame:                 4,
		OvertimeLengthSeconds:          300,
		ShotClockFullReset:             24,
		ShotClockOffensiveReboundReset: ShotClockKeep,
		ShotClockDefensiveFoulReset:    24,
		ShotClockOOBThreshold:          0,
		FoulBonusThreshold:             5,
		FoulDoubleBonusThreshold:       0,
		PersonalFoulLimit:              5,
		TechnicalEjectionCount:         2,
		TimeoutAllotment:               5,
		TeamFoulReset:                  ResetEachQuarter,
	}

	// RulesetNCAA follows NCAA men's timing and foul rules (two halves).
	RulesetNCAA = Ruleset{
		ID:                             "ncaa",
		QuarterLengthSeconds:           1200,
		PeriodsPerGame:                 2,
		OvertimeLengthSeconds:          300,
		ShotClockFullReset:             30,
		ShotClockOffensiveReboundReset: 20,
		ShotClockDefensiveFoulReset:    20,
		ShotClockOOBThreshold:          14,
		FoulBonusThreshold:             7,
		FoulDoubleBonusThreshold:       10,
		PersonalFoulLimit:              5,
		TechnicalEjectionCount:         2,
		TimeoutAllotment:               4,
		TeamFoulReset:                  ResetEachHalf,
	}
)

var (
	rulesetMu sync.RWMutex
	rulesets  = map[string]Ruleset{
		RulesetNBA.ID:  RulesetNBA,
		RulesetFIBA.ID: RulesetFIBA,
		RulesetNCAA.ID: RulesetNCAA,
	}
)

// RulesetByID looks up a registered ruleset. The boolean is false when the
// id is unknown.
func RulesetByID(id string) (Ruleset, bool) {
	rulesetMu.RLock()
	defer rulesetMu.RUnlock()
	r, ok := rulesets[id]
	return r, ok
}

// RegisterRuleset adds a custom ruleset to the registry, replacing any
// previous entry with the same id.
func RegisterRuleset(r Ruleset) {
	rulesetMu.Lock()
	defer rulesetMu.Unlock()
	rulesets[r.ID] = r
}
