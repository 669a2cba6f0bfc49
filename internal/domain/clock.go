package domain

import "errors"

// ErrNegativeDelta flags a tick with a non-positive delta, which is a caller
// bug rather than a game situation.
var ErrNegativeDelta = errors.New("tick delta must be positive")

// GameClock tracks the current period and remaining seconds. SecondsRemaining
// never goes negative and only decreases while the clock runs.
type GameClock struct {
	Quarter          int
	SecondsRemaining int
	Running          bool
}

// NewGameClock returns a stopped clock at the start of the first period.
func NewGameClock(rules Ruleset) GameClock {
	return GameClock{Quarter: 1, SecondsRemaining: rules.QuarterLengthSeconds}
}

// Start sets the clock running. Starting a running clock is a no-op.
func (c *GameClock) Start() {
	c.Running = true
}

// Stop halts the clock. Stopping a stopped clock is a no-op.
func (c *GameClock) Stop() {
	c.Running = false
}

// Tick decrements the remaining seconds by delta while running, clamping at
// zero. Ticks against a stopped clock are ignored so replays stay idempotent.
func (c *GameClock) Tick(delta int) error {
	if delta <= 0 {
		return ErrNegativeDelta
	}
	if !c.Running {
		return nil
	}
	c.SecondsRemaining -= delta
	if c.SecondsRemaining < 0 {
		c.SecondsRemaining = 0
	}
	return nil
}

// Reset restores the full period length for the current quarter and stops
// the clock.
func (c *GameClock) Reset(rules Ruleset) {
	c.SecondsRemaining = rules.PeriodLengthSeconds(c.Quarter)
	c.Running = false
}

// AdvanceOutcome classifies what should happen when a period clock hits zero.
type AdvanceOutcome int

const (
	// AdvanceNone means the clock has time left; nothing to do.
	AdvanceNone AdvanceOutcome = iota
	// AdvanceNextQuarter moves to the next regulation period.
	AdvanceNextQuarter
	// AdvanceOvertime starts an (additional) overtime period on a tie.
	AdvanceOvertime
	// AdvanceComplete ends the game with a winner.
	AdvanceComplete
)

// AdvanceDecision is the result of DecideAdvance. Quarter and ClockSeconds
// describe the state to move to when the outcome advances play.
type AdvanceDecision struct {
	Outcome        AdvanceOutcome
	Quarter        int
	ClockSeconds   int
	OvertimePeriod int // 1-based overtime number, set for AdvanceOvertime
}

// DecideAdvance is the pure period-transition decision. Ties beyond
// regulation keep producing overtime periods until a winner emerges.
func DecideAdvance(quarter, secondsRemaining int, rules Ruleset, scoreA, scoreB int) AdvanceDecision {
	if secondsRemaining > 0 {
		return AdvanceDecision{Outcome: AdvanceNone, Quarter: quarter, ClockSeconds: secondsRemaining}
	}

	if quarter < rules.PeriodsPerGame {
		return AdvanceDecision{
			Outcome:      AdvanceNextQuarter,
			Quarter:      quarter + 1,
			ClockSeconds: rules.QuarterLengthSeconds,
		}
	}

	if scoreA == scoreB {
		next := quarter + 1
		return AdvanceDecision{
			Outcome:        AdvanceOvertime,
			Quarter:        next,
			ClockSeconds:   rules.OvertimeLengthSeconds,
			OvertimePeriod: next - rules.PeriodsPerGame,
		}
	}

	return AdvanceDecision{Outcome: AdvanceComplete, Quarter: quarter}
}
