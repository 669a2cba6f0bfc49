package domain

import "testing"

func TestClockTickMonotonicity(t *testing.T) {
	c := NewGameClock(RulesetNBA)
	if c.SecondsRemaining != 720 || c.Quarter != 1 || c.Running {
		t.Fatalf("unexpected initial clock: %+v", c)
	}

	// Ticks against a stopped clock are ignored.
	if err := c.Tick(5); err != nil {
		t.Fatalf("tick stopped clock: %v", err)
	}
	if c.SecondsRemaining != 720 {
		t.Fatalf("stopped clock moved: %d", c.SecondsRemaining)
	}

	c.Start()
	if err := c.Tick(5); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if c.SecondsRemaining != 715 {
		t.Fatalf("seconds = %d, want 715", c.SecondsRemaining)
	}

	// Clamps at zero.
	if err := c.Tick(10000); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if c.SecondsRemaining != 0 {
		t.Fatalf("seconds = %d, want 0", c.SecondsRemaining)
	}
}

func TestClockRejectsNonPositiveDelta(t *testing.T) {
	c := NewGameClock(RulesetNBA)
	c.Start()
	for _, delta := range []int{0, -1, -30} {
		if err := c.Tick(delta); err != ErrNegativeDelta {
			t.Fatalf("Tick(%d) err = %v, want ErrNegativeDelta", delta, err)
		}
	}
	if c.SecondsRemaining != 720 {
		t.Fatalf("rejected tick mutated clock: %d", c.SecondsRemaining)
	}
}

func TestClockStartStopIdempotent(t *testing.T) {
	c := NewGameClock(RulesetFIBA)
	c.Start()
	c.Start()
	if !c.Running {
		t.Fatalf("clock should be running")
	}
	c.Stop()
	c.Stop()
	if c.Running {
		t.Fatalf("clock should be stopped")
	}
}

func TestDecideAdvance(t *testing.T) {
	tests := []struct {
		name        string
		quarter     int
		seconds     int
		scoreA      int
		scoreB      int
		wantOutcome AdvanceOutcome
		wantQuarter int
		wantClock   int
		wantOT      int
	}{
		{name: "time left is noop", quarter: 2, seconds: 30, scoreA: 40, scoreB: 38, wantOutcome: AdvanceNone, wantQuarter: 2, wantClock: 30},
		{name: "mid game advances", quarter: 2, seconds: 0, scoreA: 40, scoreB: 38, wantOutcome: AdvanceNextQuarter, wantQuarter: 3, wantClock: 720},
		{name: "regulation tie starts overtime", quarter: 4, seconds: 0, scoreA: 88, scoreB: 88, wantOutcome: AdvanceOvertime, wantQuarter: 5, wantClock: 300, wantOT: 1},
		{name: "regulation winner completes", quarter: 4, seconds: 0, scoreA: 90, scoreB: 88, wantOutcome: AdvanceComplete, wantQuarter: 4},
		{name: "overtime tie repeats", quarter: 5, seconds: 0, scoreA: 95, scoreB: 95, wantOutcome: AdvanceOvertime, wantQuarter: 6, wantClock: 300, wantOT: 2},
		{name: "overtime winner completes", quarter: 6, seconds: 0, scoreA: 101, scoreB: 99, wantOutcome: AdvanceComplete, wantQuarter: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideAdvance(tt.quarter, tt.seconds, RulesetNBA, tt.scoreA, tt.scoreB)
			if got.Outcome != tt.wantOutcome {
				t.Fatalf("outcome = %d, want %d", got.Outcome, tt.wantOutcome)
			}
			if got.Quarter != tt.wantQuarter {
				t.Fatalf("quarter = %d, want %d", got.Quarter, tt.wantQuarter)
			}
			if tt.wantClock != 0 && got.ClockSeconds != tt.wantClock {
				t.Fatalf("clock = %d, want %d", got.ClockSeconds, tt.wantClock)
			}
			if got.OvertimePeriod != tt.wantOT {
				t.Fatalf("overtime period = %d, want %d", got.OvertimePeriod, tt.wantOT)
			}
		})
	}
}

func TestDecideAdvanceHalves(t *testing.T) {
	got := DecideAdvance(1, 0, RulesetNCAA, 30, 28)
	if got.Outcome != AdvanceNextQuarter || got.Quarter != 2 || got.ClockSeconds != 1200 {
		t.Fatalf("unexpected half advance: %+v", got)
	}
}
