package domain

// ShotClockTrigger identifies the event class driving a shot-clock reset
// decision.
type ShotClockTrigger int

const (
	// TriggerPossessionChange covers defensive rebounds, made shots, steals
	// and turnovers: always a full reset.
	TriggerPossessionChange ShotClockTrigger = iota
	// TriggerOffensiveRebound applies the ruleset's offensive-rebound value,
	// which may be "keep".
	TriggerOffensiveRebound
	// TriggerDefensiveFoul is a frontcourt foul by the defense.
	TriggerDefensiveFoul
	// TriggerBackcourtFoul always grants a full reset.
	TriggerBackcourtFoul
	// TriggerOutOfBounds is offense retaining after out of bounds: the clock
	// drops to the ruleset threshold only when currently above it.
	TriggerOutOfBounds
	// TriggerFreeThrow freezes the clock for the free-throw sequence.
	TriggerFreeThrow
)

// ShotClock is the secondary countdown forcing a shot attempt. It freezes
// during free-throw sequences and reports expiry from Tick so the caller can
// surface a violation.
type ShotClock struct {
	rules   Ruleset
	seconds int
	frozen  bool
}

// NewShotClock returns a fully reset shot clock for the ruleset.
func NewShotClock(rules Ruleset) *ShotClock {
	return &ShotClock{rules: rules, seconds: rules.ShotClockFullReset}
}

// Seconds returns the remaining shot-clock seconds.
func (s *ShotClock) Seconds() int {
	return s.seconds
}

// Frozen reports whether the clock is held for a free-throw sequence.
func (s *ShotClock) Frozen() bool {
	return s.frozen
}

// Apply runs the ruleset transition table for the trigger.
func (s *ShotClock) Apply(trigger ShotClockTrigger) {
	switch trigger {
	case TriggerPossessionChange, TriggerBackcourtFoul:
		s.seconds = s.rules.ShotClockFullReset
		s.frozen = false
	case TriggerOffensiveRebound:
		if s.rules.ShotClockOffensiveReboundReset != ShotClockKeep {
			s.seconds = s.rules.ShotClockOffensiveReboundReset
		}
		s.frozen = false
	case TriggerDefensiveFoul:
		if s.rules.ShotClockDefensiveFoulReset != ShotClockKeep {
			s.seconds = s.rules.ShotClockDefensiveFoulReset
		}
		s.frozen = false
	case TriggerOutOfBounds:
		if s.rules.ShotClockOOBThreshold > 0 && s.seconds > s.rules.ShotClockOOBThreshold {
			s.seconds = s.rules.ShotClockOOBThreshold
		}
		s.frozen = false
	case TriggerFreeThrow:
		s.frozen = true
	}
}

// Tick decrements by delta unless frozen or already expired. Returns true
// exactly when this tick reached zero, signaling a violation to surface.
func (s *ShotClock) Tick(delta int) bool {
	if s.frozen || s.seconds == 0 || delta <= 0 {
		return false
	}
	s.seconds -= delta
	if s.seconds <= 0 {
		s.seconds = 0
		return true
	}
	return false
}

// Set forces the remaining seconds and frozen state; used for explicit
// corrections and undo restores.
func (s *ShotClock) Set(seconds int, frozen bool) {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > s.rules.ShotClockFullReset {
		seconds = s.rules.ShotClockFullReset
	}
	s.seconds = seconds
	s.frozen = frozen
}
