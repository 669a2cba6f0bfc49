package domain

import "errors"

var (
	// ErrUnknownSlot rejects resolution of a slot id that does not exist.
	ErrUnknownSlot = errors.New("sequence slot not found")
	// ErrSlotClosed rejects resolution of a slot already resolved or expired.
	ErrSlotClosed = errors.New("sequence slot already closed")
)

// SequenceKind is the attribution a slot asks for.
type SequenceKind int

const (
	SequenceAssist SequenceKind = iota
	SequenceRebound
	SequenceBlock
	SequenceTurnover
)

// String returns the wire name for the kind.
func (k SequenceKind) String() string {
	switch k {
	case SequenceAssist:
		return "assist"
	case SequenceRebound:
		return "rebound"
	case SequenceBlock:
		return "block"
	case SequenceTurnover:
		return "turnover"
	}
	return "unknown"
}

// SequenceSlot is a pending attribution opened by a qualifying event. It is
// closed by an explicit selection or skip, or expires when a newer qualifying
// event of the same kind opens a fresh slot for the same team. An expired
// slot stays permanently unresolved; it is never silently dropped.
type SequenceSlot struct {
	ID                 string
	Kind               SequenceKind
	OriginatingEventID string
	TeamID             string
	Resolved           bool
	Skipped            bool
	Expired            bool
	ResolutionPlayerID string
}

func (s *SequenceSlot) open() bool {
	return !s.Resolved && !s.Expired
}

// SequenceBoard owns all sequence slots for one game. Slot ids come from the
// injected generator so the board stays dependency-free.
type SequenceBoard struct {
	slots []*SequenceSlot
	newID func() string
}

// NewSequenceBoard returns an empty board using newID for slot ids.
func NewSequenceBoard(newID func() string) *SequenceBoard {
	return &SequenceBoard{newID: newID}
}

// OpenForStat opens the attribution slots a stat event calls for and returns
// them. singleTeam enables the opponent-steal turnover slot. Older open
// slots of the same kind and team expire first.
func (b *SequenceBoard) OpenForStat(ev StatEvent, eventTeam string, singleTeam bool) []*SequenceSlot {
	var kinds []SequenceKind
	switch ev.Type {
	case StatFieldGoal, StatThreePointer:
		switch ev.Modifier {
		case ModifierMade:
			kinds = append(kinds, SequenceAssist)
		case ModifierMissed:
			kinds = append(kinds, SequenceRebound, SequenceBlock)
		}
	case StatSteal:
		if singleTeam && ev.IsOpponent {
			kinds = append(kinds, SequenceTurnover)
		}
	case StatFreeThrow, StatRebound, StatAssist, StatBlock, StatTurnover, StatFoul:
	}

	opened := make([]*SequenceSlot, 0, len(kinds))
	for _, kind := range kinds {
		team := eventTeam
		if kind == SequenceTurnover {
			// The turnover belongs to the tracked team that lost the ball.
			team = ev.TeamID
		}
		b.expireOpen(kind, team)
		slot := &SequenceSlot{
			ID:                 b.newID(),
			Kind:               kind,
			OriginatingEventID: ev.ID,
			TeamID:             team,
		}
		b.slots = append(b.slots, slot)
		opened = append(opened, slot)
	}
	return opened
}

// Resolve closes a slot with the selected player, or marks it skipped when
// playerID is empty.
func (b *SequenceBoard) Resolve(slotID, playerID string) (*SequenceSlot, error) {
	slot := b.find(slotID)
	if slot == nil {
		return nil, ErrUnknownSlot
	}
	if !slot.open() {
		return nil, ErrSlotClosed
	}
	slot.Resolved = true
	if playerID == "" {
		slot.Skipped = true
	} else {
		slot.ResolutionPlayerID = playerID
	}
	return slot, nil
}

// CloseLinked closes the newest open slot whose originating event the
// follow-up stat points at, matching the slot kind to the stat type. Returns
// nil when no open slot matches.
func (b *SequenceBoard) CloseLinked(ev StatEvent) *SequenceSlot {
	kind, ok := slotKindForStat(ev.Type)
	if !ok {
		return nil
	}
	for i := len(b.slots) - 1; i >= 0; i-- {
		slot := b.slots[i]
		if slot.open() && slot.OriginatingEventID == ev.LinkedEventID && slot.Kind == kind {
			slot.Resolved = true
			slot.ResolutionPlayerID = ev.PlayerID
			return slot
		}
	}
	return nil
}

// Remove deletes slots by id; the structural inverse of opening them.
func (b *SequenceBoard) Remove(slotIDs []string) {
	for _, id := range slotIDs {
		for i := range b.slots {
			if b.slots[i].ID == id {
				b.slots = append(b.slots[:i], b.slots[i+1:]...)
				break
			}
		}
	}
}

// Reopen clears resolution on a slot; the structural inverse of Resolve.
func (b *SequenceBoard) Reopen(slotID string) {
	if slot := b.find(slotID); slot != nil {
		slot.Resolved = false
		slot.Skipped = false
		slot.ResolutionPlayerID = ""
	}
}

// Pending returns copies of all open slots in creation order.
func (b *SequenceBoard) Pending() []SequenceSlot {
	var out []SequenceSlot
	for _, slot := range b.slots {
		if slot.open() {
			out = append(out, *slot)
		}
	}
	return out
}

func (b *SequenceBoard) expireOpen(kind SequenceKind, teamID string) {
	for _, slot := range b.slots {
		if slot.open() && slot.Kind == kind && slot.TeamID == teamID {
			slot.Expired = true
		}
	}
}

func (b *SequenceBoard) find(slotID string) *SequenceSlot {
	for _, slot := range b.slots {
		if slot.ID == slotID {
			return slot
		}
	}
	return nil
}

func slotKindForStat(t StatType) (SequenceKind, bool) {
	switch t {
	case StatAssist:
		return SequenceAssist, true
	case StatRebound:
		return SequenceRebound, true
	case StatBlock:
		return SequenceBlock, true
	case StatTurnover:
		return SequenceTurnover, true
	case StatFieldGoal, StatThreePointer, StatFreeThrow, StatSteal, StatFoul:
	}
	return 0, false
}
