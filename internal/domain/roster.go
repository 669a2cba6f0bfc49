package domain

import (
	"errors"
	"fmt"
	"sort"
)

const onCourtSize = 5

var (
	// ErrPlayerNotOnCourt rejects a substitution whose outgoing player is not
	// on the floor.
	ErrPlayerNotOnCourt = errors.New("player is not on court")
	// ErrPlayerAlreadyOnCourt rejects a substitution whose incoming player is
	// already on the floor.
	ErrPlayerAlreadyOnCourt = errors.New("player is already on court")
	// ErrPlayerNotOnTeam rejects references to players outside the roster.
	ErrPlayerNotOnTeam = errors.New("player is not on the team roster")
)

// Roster is one team's on-court/bench partition. The two sets are disjoint
// and Swap is the only mutator.
type Roster struct {
	TeamID  string
	onCourt map[string]bool
	bench   map[string]bool
}

// NewRoster builds a roster from the starting five and the bench. The two
// lists must be disjoint and the starters must number exactly five unless
// the bench is empty too (single-team mode tracks only one real roster).
func NewRoster(teamID string, onCourt, bench []string) (*Roster, error) {
	r := &Roster{
		TeamID:  teamID,
		onCourt: make(map[string]bool, len(onCourt)),
		bench:   make(map[string]bool, len(bench)),
	}
	for _, p := range onCourt {
		if r.onCourt[p] {
			return nil, fmt.Errorf("duplicate starter %q", p)
		}
		r.onCourt[p] = true
	}
	for _, p := range bench {
		if r.onCourt[p] || r.bench[p] {
			return nil, fmt.Errorf("player %q listed twice", p)
		}
		r.bench[p] = true
	}
	if len(r.onCourt) > onCourtSize {
		return nil, fmt.Errorf("%d starters, court holds %d", len(r.onCourt), onCourtSize)
	}
	return r, nil
}

// Swap substitutes out for in, atomically moving both players between sets.
func (r *Roster) Swap(playerOut, playerIn string) error {
	if !r.onCourt[playerOut] {
		return ErrPlayerNotOnCourt
	}
	if r.onCourt[playerIn] {
		return ErrPlayerAlreadyOnCourt
	}
	if !r.bench[playerIn] {
		return ErrPlayerNotOnTeam
	}
	delete(r.onCourt, playerOut)
	delete(r.bench, playerIn)
	r.onCourt[playerIn] = true
	r.bench[playerOut] = true
	return nil
}

// IsOnCourt reports whether the player is currently on the floor.
func (r *Roster) IsOnCourt(playerID string) bool {
	return r.onCourt[playerID]
}

// Has reports whether the player belongs to the team at all.
func (r *Roster) Has(playerID string) bool {
	return r.onCourt[playerID] || r.bench[playerID]
}

// OnCourt returns the on-court players in stable order.
func (r *Roster) OnCourt() []string {
	return sortedKeys(r.onCourt)
}

// Bench returns the bench players in stable order.
func (r *Roster) Bench() []string {
	return sortedKeys(r.bench)
}

// Size returns the total roster size.
func (r *Roster) Size() int {
	return len(r.onCourt) + len(r.bench)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
