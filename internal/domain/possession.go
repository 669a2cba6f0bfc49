package domain

// PossessionTracker maintains which team holds the ball and the alternating
// jump-ball arrow. Only possession-changing events mutate it.
type PossessionTracker struct {
	homeTeamID string
	awayTeamID string
	holder     string
	arrow      string
}

// NewPossessionTracker starts with the given holder; the arrow initially
// points at the other team (whoever loses the opening tip gets the arrow).
func NewPossessionTracker(homeTeamID, awayTeamID, initialHolder string) *PossessionTracker {
	t := &PossessionTracker{homeTeamID: homeTeamID, awayTeamID: awayTeamID, holder: initialHolder}
	t.arrow = t.Opponent(initialHolder)
	return t
}

// Holder returns the team currently in possession, or "" when unset.
func (t *PossessionTracker) Holder() string {
	return t.holder
}

// Arrow returns the team the jump-ball arrow currently favors.
func (t *PossessionTracker) Arrow() string {
	return t.arrow
}

// Opponent returns the other team's id.
func (t *PossessionTracker) Opponent(teamID string) string {
	if teamID == t.homeTeamID {
		return t.awayTeamID
	}
	return t.homeTeamID
}

// Set forces the holder; used for explicit corrections and undo restores.
func (t *PossessionTracker) Set(teamID string) {
	t.holder = teamID
}

// SetArrow forces the arrow; used for undo restores.
func (t *PossessionTracker) SetArrow(teamID string) {
	t.arrow = teamID
}

// ApplyStat flips or retains possession for the event. eventTeam is the team
// the stat is credited to after opponent-flag resolution. Returns true when
// the holder changed.
func (t *PossessionTracker) ApplyStat(ev StatEvent, eventTeam string) bool {
	prev := t.holder
	switch ev.Type {
	case StatFieldGoal, StatThreePointer, StatFreeThrow:
		if ev.Modifier == ModifierMade {
			t.holder = t.Opponent(eventTeam)
		}
	case StatRebound:
		// Offensive rebound retains; defensive rebound takes the ball.
		t.holder = eventTeam
	case StatSteal:
		t.holder = eventTeam
	case StatTurnover:
		t.holder = t.Opponent(eventTeam)
	case StatAssist, StatBlock, StatFoul:
	}
	return t.holder != prev
}

// JumpBall resolves a held-ball situation: the arrow team takes possession
// and the arrow alternates to the other team. Returns the new holder.
func (t *PossessionTracker) JumpBall() string {
	t.holder = t.arrow
	t.arrow = t.Opponent(t.arrow)
	return t.holder
}
