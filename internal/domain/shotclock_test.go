package domain

import "testing"

func TestShotClockResetTable(t *testing.T) {
	tests := []struct {
		name    string
		rules   Ruleset
		current int
		trigger ShotClockTrigger
		want    int
	}{
		{name: "nba offensive rebound resets to 14", rules: RulesetNBA, current: 10, trigger: TriggerOffensiveRebound, want: 14},
		{name: "nba offensive rebound lowers from 20", rules: RulesetNBA, current: 20, trigger: TriggerOffensiveRebound, want: 14},
		{name: "fiba offensive rebound keeps", rules: RulesetFIBA, current: 9, trigger: TriggerOffensiveRebound, want: 9},
		{name: "ncaa offensive rebound resets to 20", rules: RulesetNCAA, current: 7, trigger: TriggerOffensiveRebound, want: 20},
		{name: "possession change full reset", rules: RulesetNBA, current: 3, trigger: TriggerPossessionChange, want: 24},
		{name: "nba frontcourt defensive foul", rules: RulesetNBA, current: 6, trigger: TriggerDefensiveFoul, want: 14},
		{name: "fiba defensive foul full reset", rules: RulesetFIBA, current: 6, trigger: TriggerDefensiveFoul, want: 24},
		{name: "ncaa defensive foul", rules: RulesetNCAA, current: 6, trigger: TriggerDefensiveFoul, want: 20},
		{name: "backcourt foul full reset", rules: RulesetNBA, current: 6, trigger: TriggerBackcourtFoul, want: 24},
		{name: "nba oob above threshold drops to 14", rules: RulesetNBA, current: 19, trigger: TriggerOutOfBounds, want: 14},
		{name: "nba oob below threshold unchanged", rules: RulesetNBA, current: 8, trigger: TriggerOutOfBounds, want: 8},
		{name: "fiba oob unchanged", rules: RulesetFIBA, current: 19, trigger: TriggerOutOfBounds, want: 19},
		{name: "ncaa oob above threshold drops to 14", rules: RulesetNCAA, current: 22, trigger: TriggerOutOfBounds, want: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShotClock(tt.rules)
			s.Set(tt.current, false)
			s.Apply(tt.trigger)
			if s.Seconds() != tt.want {
				t.Fatalf("seconds = %d, want %d", s.Seconds(), tt.want)
			}
		})
	}
}

func TestShotClockFreezeForFreeThrows(t *testing.T) {
	s := NewShotClock(RulesetNBA)
	s.Set(17, false)
	s.Apply(TriggerFreeThrow)
	if !s.Frozen() {
		t.Fatalf("shot clock should be frozen")
	}
	if expired := s.Tick(5); expired || s.Seconds() != 17 {
		t.Fatalf("frozen clock moved: expired=%t seconds=%d", expired, s.Seconds())
	}

	// Possession change thaws and fully resets.
	s.Apply(TriggerPossessionChange)
	if s.Frozen() || s.Seconds() != 24 {
		t.Fatalf("thaw failed: frozen=%t seconds=%d", s.Frozen(), s.Seconds())
	}
}

func TestShotClockExpirySignal(t *testing.T) {
	s := NewShotClock(RulesetNBA)
	s.Set(2, false)
	if s.Tick(1) {
		t.Fatalf("expired one second early")
	}
	if !s.Tick(1) {
		t.Fatalf("expected expiry signal at zero")
	}
	// Only the crossing tick signals; the clock stays at zero after.
	if s.Tick(1) {
		t.Fatalf("expiry signaled twice")
	}
	if s.Seconds() != 0 {
		t.Fatalf("seconds = %d, want 0", s.Seconds())
	}
}

func TestShotClockSetClamps(t *testing.T) {
	s := NewShotClock(RulesetNBA)
	s.Set(99, false)
	if s.Seconds() != 24 {
		t.Fatalf("seconds = %d, want clamp to 24", s.Seconds())
	}
	s.Set(-3, false)
	if s.Seconds() != 0 {
		t.Fatalf("seconds = %d, want clamp to 0", s.Seconds())
	}
}
