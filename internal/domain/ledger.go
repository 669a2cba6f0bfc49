package domain

// Ledger is the append-only in-memory record of stat events for one game.
// Scores are never stored; they are refolded from the events so the display
// can never drift from the record.
type Ledger struct {
	events []StatEvent
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// PendingEntry is the handle for an optimistically appended event. Exactly
// one of Commit or Rollback is expected per handle; both are idempotent.
type PendingEntry struct {
	ledger *Ledger
	id     string
	closed bool
}

// ID returns the ledger id of the pending event.
func (p *PendingEntry) ID() string {
	return p.id
}

// Commit finalizes the entry with the id assigned by the record store.
func (p *PendingEntry) Commit(persistedID string) {
	if p.closed {
		return
	}
	p.closed = true
	for i := range p.ledger.events {
		if p.ledger.events[i].ID == p.id {
			p.ledger.events[i].PersistedID = persistedID
			p.ledger.events[i].Pending = false
			return
		}
	}
}

// Rollback removes the entry, restoring the ledger to its pre-append state.
func (p *PendingEntry) Rollback() {
	if p.closed {
		return
	}
	p.closed = true
	p.ledger.Remove(p.id)
}

// Append optimistically adds an event and returns its pending handle.
func (l *Ledger) Append(ev StatEvent) *PendingEntry {
	ev.Pending = true
	l.events = append(l.events, ev)
	return &PendingEntry{ledger: l, id: ev.ID}
}

// Remove deletes the event with the given id, preserving append order of the
// rest. Returns false when the id is unknown.
func (l *Ledger) Remove(id string) bool {
	for i := range l.events {
		if l.events[i].ID == id {
			l.events = append(l.events[:i], l.events[i+1:]...)
			return true
		}
	}
	return false
}

// Events returns a copy of the ledger in append order.
func (l *Ledger) Events() []StatEvent {
	out := make([]StatEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Ledger) Len() int {
	return len(l.events)
}

// Get returns the event with the given id.
func (l *Ledger) Get(id string) (StatEvent, bool) {
	for i := range l.events {
		if l.events[i].ID == id {
			return l.events[i], true
		}
	}
	return StatEvent{}, false
}

// Scores folds the ledger into (home, away) points. The fold depends only on
// the multiset of made events, not their order. Opponent-flagged events are
// credited to the other team.
func (l *Ledger) Scores(homeTeamID, awayTeamID string) (int, int) {
	home, away := 0, 0
	for i := range l.events {
		pts := l.events[i].Points()
		if pts == 0 {
			continue
		}
		team := l.events[i].TeamID
		if l.events[i].IsOpponent {
			if team == homeTeamID {
				team = awayTeamID
			} else {
				team = homeTeamID
			}
		}
		switch team {
		case homeTeamID:
			home += pts
		case awayTeamID:
			away += pts
		}
	}
	return home, away
}
