package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"courtside/internal/domain"
	"courtside/internal/ports"

	"github.com/google/uuid"
)

var (
	// ErrGameNotActive rejects mutations on completed or cancelled games.
	ErrGameNotActive = errors.New("game is not active")
	// ErrClockNotRunning rejects stat recording while the clock is stopped
	// unless the engine is configured to allow it.
	ErrClockNotRunning = errors.New("clock is not running")
	// ErrNothingToUndo is returned when the command log is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrStateConflict rejects operations that contradict current state.
	ErrStateConflict = errors.New("operation conflicts with current state")
	// ErrNoTimeoutsRemaining rejects a timeout past the ruleset allotment.
	ErrNoTimeoutsRemaining = errors.New("no timeouts remaining")
	// ErrUnknownTeam rejects intents naming a team not in this game.
	ErrUnknownTeam = errors.New("team is not in this game")
	// ErrNoViolationPending rejects confirming an absent violation.
	ErrNoViolationPending = errors.New("no shot clock violation pending")
)

// Config carries the host-tunable engine behavior.
type Config struct {
	// AllowStatsWhileStopped permits recording with a stopped clock
	// (dead-ball corrections).
	AllowStatsWhileStopped bool
	// AutoPossessionFlip derives possession changes from stat events.
	AutoPossessionFlip bool
	// SingleTeamMode tracks one real roster; the opponent is a bare score.
	SingleTeamMode bool
	// MaxHistorySize bounds the undo log.
	MaxHistorySize int
	// ViolationDismissAfter is the wall-clock window before an unconfirmed
	// shot-clock violation auto-dismisses.
	ViolationDismissAfter time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxHistorySize == 0 {
		c.MaxHistorySize = 50
	}
	if c.ViolationDismissAfter == 0 {
		c.ViolationDismissAfter = 10 * time.Second
	}
	return c
}

// TeamSetup names a team and its starting lineup.
type TeamSetup struct {
	TeamID  string
	OnCourt []string
	Bench   []string
}

// StatIntent is a request to record one stat event.
type StatIntent struct {
	TeamID   string
	PlayerID string
	// IsOpponent credits the stat to the other team (single-team mode).
	IsOpponent bool
	Type       domain.StatType
	Modifier   domain.Modifier
	// Backcourt marks a backcourt foul for the shot-clock table.
	Backcourt bool
	// Shooting marks a shooting foul; free throws freeze the shot clock.
	Shooting bool
	// LinkedEventID closes the pending sequence slot opened by that event.
	LinkedEventID string
}

// SubstitutionIntent is a request to swap two players.
type SubstitutionIntent struct {
	TeamID    string
	PlayerOut string
	PlayerIn  string
}

// AdvanceResult reports what AdvanceIfNeeded decided.
type AdvanceResult struct {
	Outcome        domain.AdvanceOutcome
	Quarter        int
	OvertimePeriod int
}

// DispatchFunc runs storage writes off the caller's goroutine. Tests inject
// a synchronous variant.
type DispatchFunc func(fn func())

type violationPrompt struct {
	teamID   string
	deadline time.Time
}

// Engine is the authoritative game-state and rules engine for one game. All
// state is owned by the engine and mutated only through its operations; a
// mutex serializes callers and asynchronous write completions.
type Engine struct {
	mu       sync.Mutex
	ctx      context.Context
	rules    domain.Ruleset
	cfg      Config
	store    ports.GameRecordStore
	dispatch DispatchFunc
	now      func() time.Time

	gameID     string
	homeTeamID string
	awayTeamID string
	status     ports.GameStatus

	clock      domain.GameClock
	shotClock  *domain.ShotClock
	ledger     *domain.Ledger
	rosters    map[string]*domain.Roster
	fouls      *domain.FoulBook
	possession *domain.PossessionTracker
	sequences  *domain.SequenceBoard
	log        *CommandLog
	timeouts   map[string]int
	violation  *violationPrompt

	// inflight tracks command-log entry ids whose remote write has not
	// completed; undone marks inflight entries reversed by Undo so the
	// write completion compensates instead of committing.
	inflight map[string]bool
	undone   map[string]bool

	// asyncEvents queues events produced off the caller's goroutine until
	// the host drains them.
	asyncEvents []Event
}

// NewEngine builds an engine for one game. store must be non-nil; dispatch
// may be nil for goroutine dispatch. The home team takes opening possession;
// the arrow starts with the away team.
func NewEngine(ctx context.Context, gameID string, rules domain.Ruleset, home, away TeamSetup, store ports.GameRecordStore, cfg Config, dispatch DispatchFunc) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if home.TeamID == "" || away.TeamID == "" || home.TeamID == away.TeamID {
		return nil, fmt.Errorf("two distinct team ids are required")
	}
	homeRoster, err := domain.NewRoster(home.TeamID, home.OnCourt, home.Bench)
	if err != nil {
		return nil, fmt.Errorf("home roster: %w", err)
	}
	awayRoster, err := domain.NewRoster(away.TeamID, away.OnCourt, away.Bench)
	if err != nil {
		return nil, fmt.Errorf("away roster: %w", err)
	}
	if dispatch == nil {
		dispatch = func(fn func()) { go fn() }
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		ctx:        ctx,
		rules:      rules,
		cfg:        cfg,
		store:      store,
		dispatch:   dispatch,
		now:        time.Now,
		gameID:     gameID,
		homeTeamID: home.TeamID,
		awayTeamID: away.TeamID,
		status:     ports.StatusInProgress,
		clock:      domain.NewGameClock(rules),
		shotClock:  domain.NewShotClock(rules),
		ledger:     domain.NewLedger(),
		rosters: map[string]*domain.Roster{
			home.TeamID: homeRoster,
			away.TeamID: awayRoster,
		},
		fouls:      domain.NewFoulBook(rules),
		possession: domain.NewPossessionTracker(home.TeamID, away.TeamID, home.TeamID),
		sequences:  domain.NewSequenceBoard(uuid.NewString),
		log:        NewCommandLog(cfg.MaxHistorySize),
		timeouts: map[string]int{
			home.TeamID: rules.TimeoutAllotment,
			away.TeamID: rules.TimeoutAllotment,
		},
		inflight: make(map[string]bool),
		undone:   make(map[string]bool),
	}

	e.dispatch(func() {
		_ = e.store.UpdateGameStatus(e.ctx, e.gameID, ports.StatusInProgress)
	})
	return e, nil
}

func (e *Engine) active() error {
	switch e.status {
	case ports.StatusInProgress, ports.StatusOvertime:
		return nil
	}
	return ErrGameNotActive
}

func (e *Engine) teamKnown(teamID string) bool {
	return teamID == e.homeTeamID || teamID == e.awayTeamID
}

// RecordStat validates and optimistically applies a stat intent, then
// dispatches the remote write. On write failure the mutation is reversed and
// a stat_write_failed event carries the original intent for re-submission.
func (e *Engine) RecordStat(intent StatIntent) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	if !e.teamKnown(intent.TeamID) {
		return nil, ErrUnknownTeam
	}
	if !e.clock.Running && !e.cfg.AllowStatsWhileStopped {
		return nil, ErrClockNotRunning
	}

	eventTeam := intent.TeamID
	if intent.IsOpponent {
		eventTeam = e.possession.Opponent(intent.TeamID)
	}
	if !intent.IsOpponent && intent.PlayerID != "" {
		if e.fouls.IsFouledOut(intent.PlayerID) {
			return nil, domain.ErrPlayerFouledOut
		}
		roster := e.rosters[intent.TeamID]
		if roster.Size() > 0 && !roster.IsOnCourt(intent.PlayerID) {
			return nil, domain.ErrPlayerNotOnCourt
		}
	}

	ev := domain.StatEvent{
		ID:            uuid.NewString(),
		GameID:        e.gameID,
		TeamID:        intent.TeamID,
		PlayerID:      intent.PlayerID,
		IsOpponent:    intent.IsOpponent,
		Type:          intent.Type,
		Modifier:      intent.Modifier,
		Quarter:       e.clock.Quarter,
		ClockSeconds:  e.clock.SecondsRemaining,
		LinkedEventID: intent.LinkedEventID,
		CreatedAt:     e.now(),
	}

	inv := Inverse{RemoveEventID: ev.ID}
	prevShot := ShotClockInverse{Seconds: e.shotClock.Seconds(), Frozen: e.shotClock.Frozen()}
	inv.RestoreShotClock = &prevShot
	prevPossession := e.possession.Holder()

	pending := e.ledger.Append(ev)
	home, away := e.ledger.Scores(e.homeTeamID, e.awayTeamID)
	events := []Event{{Kind: EventStatRecorded, Payload: StatRecordedPayload{Event: ev, HomeScore: home, AwayScore: away}}}

	if intent.LinkedEventID != "" {
		if slot := e.sequences.CloseLinked(ev); slot != nil {
			inv.ReopenSlotID = slot.ID
			events = append(events, Event{Kind: EventSequenceClosed, Payload: SequenceSlotPayload{Slot: *slot}})
		}
	}

	if intent.Type == domain.StatFoul {
		events = append(events, e.applyFoul(intent, eventTeam, &inv)...)
	}

	if trigger, ok := shotClockTriggerFor(intent, eventTeam, e.possession.Holder()); ok {
		e.shotClock.Apply(trigger)
	}
	if intent.Shooting || intent.Type == domain.StatFreeThrow {
		e.shotClock.Apply(domain.TriggerFreeThrow)
	}

	if e.cfg.AutoPossessionFlip {
		if e.possession.ApplyStat(ev, eventTeam) {
			inv.RestorePossession = &prevPossession
			events = append(events, Event{Kind: EventPossessionFlip, Payload: PossessionPayload{TeamID: e.possession.Holder()}})
		}
	}

	for _, slot := range e.sequences.OpenForStat(ev, eventTeam, e.cfg.SingleTeamMode) {
		inv.RemoveSlotIDs = append(inv.RemoveSlotIDs, slot.ID)
		events = append(events, Event{Kind: EventSequenceOpened, Payload: SequenceSlotPayload{Slot: *slot}})
	}

	entry := CommandLogEntry{
		ID:          uuid.NewString(),
		Label:       "stat:" + intent.Type.String(),
		AppliedAt:   e.now(),
		Inverse:     inv,
		StatEventID: ev.ID,
	}
	e.log.Push(entry)

	record := ports.StatRecord{
		GameID:       ev.GameID,
		TeamID:       ev.TeamID,
		PlayerID:     ev.PlayerID,
		Opponent:     ev.IsOpponent,
		StatType:     ev.Type.String(),
		Modifier:     ev.Modifier.String(),
		Quarter:      ev.Quarter,
		ClockSeconds: ev.ClockSeconds,
	}
	e.inflight[entry.ID] = true
	e.dispatch(func() {
		persistedID, err := e.store.RecordStat(e.ctx, record)
		e.mu.Lock()
		defer e.mu.Unlock()
		wasUndone := e.undone[entry.ID]
		delete(e.undone, entry.ID)
		delete(e.inflight, entry.ID)
		if err != nil {
			if wasUndone {
				return
			}
			// The score rollback is unconditional even when the undo
			// entry has been evicted from the bounded history. The
			// shot-clock and possession snapshots only hold while this
			// entry is the newest mutation.
			rollback := inv
			if e.log.NewestID() != entry.ID {
				rollback.RestoreShotClock = nil
				rollback.RestorePossession = nil
			}
			e.log.Take(entry.ID)
			e.applyInverse(rollback)
			e.asyncEvents = append(e.asyncEvents, Event{
				Kind:    EventStatWriteFailed,
				Payload: StatWriteFailedPayload{Intent: intent, Err: err.Error()},
			})
			return
		}
		if wasUndone {
			id := persistedID
			e.dispatch(func() {
				_ = e.store.VoidRecord(e.ctx, e.gameID, id)
			})
			return
		}
		pending.Commit(persistedID)
		e.asyncEvents = append(e.asyncEvents, Event{
			Kind:    EventStatPersisted,
			Payload: StatPersistedPayload{EventID: ev.ID, PersistedID: persistedID},
		})
	})

	return events, nil
}

// applyFoul updates the foul book and emits bonus/foul-out/ejection events.
func (e *Engine) applyFoul(intent StatIntent, eventTeam string, inv *Inverse) []Event {
	playerID := intent.PlayerID
	if intent.IsOpponent {
		playerID = ""
	}
	technical := intent.Modifier == domain.ModifierTechnical
	outcome := e.fouls.RecordFoul(eventTeam, playerID, technical)
	inv.RemoveFoul = &FoulInverse{TeamID: eventTeam, PlayerID: playerID, Technical: technical}

	var events []Event
	if outcome.BonusCrossed {
		events = append(events, Event{Kind: EventBonusActivated, Payload: BonusActivatedPayload{TeamID: eventTeam, Level: outcome.Bonus}})
	}
	if outcome.FouledOut && outcome.PersonalCount == e.rules.PersonalFoulLimit {
		events = append(events, Event{Kind: EventPlayerFouledOut, Payload: FoulTroublePayload{TeamID: eventTeam, PlayerID: playerID, PersonalFouls: outcome.PersonalCount}})
	}
	if outcome.Ejected && outcome.TechnicalCount == e.rules.TechnicalEjectionCount {
		events = append(events, Event{Kind: EventPlayerEjected, Payload: FoulTroublePayload{TeamID: eventTeam, PlayerID: playerID, PersonalFouls: outcome.PersonalCount}})
	}
	return events
}

// shotClockTriggerFor maps a stat intent onto the shot-clock table.
func shotClockTriggerFor(intent StatIntent, eventTeam, possessionHolder string) (domain.ShotClockTrigger, bool) {
	switch intent.Type {
	case domain.StatFieldGoal, domain.StatThreePointer:
		if intent.Modifier == domain.ModifierMade {
			return domain.TriggerPossessionChange, true
		}
	case domain.StatRebound:
		if intent.Modifier == domain.ModifierOffensive {
			return domain.TriggerOffensiveRebound, true
		}
		return domain.TriggerPossessionChange, true
	case domain.StatSteal, domain.StatTurnover:
		return domain.TriggerPossessionChange, true
	case domain.StatFoul:
		if intent.Backcourt {
			return domain.TriggerBackcourtFoul, true
		}
		if eventTeam != possessionHolder {
			return domain.TriggerDefensiveFoul, true
		}
	case domain.StatFreeThrow, domain.StatAssist, domain.StatBlock:
	}
	return 0, false
}

// Substitute validates and optimistically applies a substitution, dispatching
// the remote write with rollback on failure.
func (e *Engine) Substitute(intent SubstitutionIntent) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	if !e.teamKnown(intent.TeamID) {
		return nil, ErrUnknownTeam
	}
	if e.fouls.IsFouledOut(intent.PlayerIn) {
		return nil, domain.ErrPlayerFouledOut
	}

	roster := e.rosters[intent.TeamID]
	if err := roster.Swap(intent.PlayerOut, intent.PlayerIn); err != nil {
		return nil, err
	}

	inverse := &RosterSwapInverse{TeamID: intent.TeamID, PlayerOut: intent.PlayerIn, PlayerIn: intent.PlayerOut}
	entry := CommandLogEntry{
		ID:           uuid.NewString(),
		Label:        "substitution",
		AppliedAt:    e.now(),
		Inverse:      Inverse{RestoreRoster: inverse},
		Substitution: inverse,
	}
	e.log.Push(entry)

	events := []Event{{Kind: EventSubApplied, Payload: SubAppliedPayload{TeamID: intent.TeamID, PlayerOut: intent.PlayerOut, PlayerIn: intent.PlayerIn}}}

	record := ports.SubstitutionRecord{
		GameID:       e.gameID,
		TeamID:       intent.TeamID,
		PlayerOutID:  intent.PlayerOut,
		PlayerInID:   intent.PlayerIn,
		Quarter:      e.clock.Quarter,
		ClockSeconds: e.clock.SecondsRemaining,
	}
	e.inflight[entry.ID] = true
	e.dispatch(func() {
		err := e.store.RecordSubstitution(e.ctx, record)
		e.mu.Lock()
		defer e.mu.Unlock()
		wasUndone := e.undone[entry.ID]
		delete(e.undone, entry.ID)
		delete(e.inflight, entry.ID)
		if err != nil {
			if wasUndone {
				return
			}
			e.log.Take(entry.ID)
			e.applyInverse(Inverse{RestoreRoster: inverse})
			e.asyncEvents = append(e.asyncEvents, Event{
				Kind:    EventSubWriteFailed,
				Payload: SubWriteFailedPayload{Intent: intent, Err: err.Error()},
			})
			return
		}
		if wasUndone {
			e.dispatchMirrorLocked(inverse)
			return
		}
		e.asyncEvents = append(e.asyncEvents, Event{
			Kind:    EventSubPersisted,
			Payload: SubAppliedPayload{TeamID: intent.TeamID, PlayerOut: intent.PlayerOut, PlayerIn: intent.PlayerIn},
		})
	})

	return events, nil
}

// Tick advances the game and shot clocks by delta seconds. It is driven by
// the host's periodic timer; ticks on inactive games are ignored.
func (e *Engine) Tick(delta int) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active() != nil {
		return nil, nil
	}
	if delta <= 0 {
		return nil, domain.ErrNegativeDelta
	}

	var events []Event
	if e.violation != nil && e.now().After(e.violation.deadline) {
		events = append(events, Event{Kind: EventAlertDismissed, Payload: ShotClockAlertPayload{TeamID: e.violation.teamID}})
		e.violation = nil
	}
	if !e.clock.Running {
		return events, nil
	}

	if err := e.clock.Tick(delta); err != nil {
		return events, err
	}
	if e.shotClock.Tick(delta) {
		e.violation = &violationPrompt{
			teamID:   e.possession.Holder(),
			deadline: e.now().Add(e.cfg.ViolationDismissAfter),
		}
		events = append(events, Event{Kind: EventShotClockAlert, Payload: ShotClockAlertPayload{TeamID: e.violation.teamID}})
	}
	if e.clock.SecondsRemaining == 0 {
		e.clock.Stop()
		events = append(events, Event{Kind: EventClockExpired, Payload: e.clockPayload()})
	}

	e.syncClockLocked()
	return events, nil
}

// StartClock sets the game clock running.
func (e *Engine) StartClock() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return nil, err
	}
	if e.clock.Running {
		return nil, nil
	}
	e.clock.Start()
	e.syncClockLocked()
	return []Event{{Kind: EventClockStarted, Payload: e.clockPayload()}}, nil
}

// StopClock halts the game clock.
func (e *Engine) StopClock() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return nil, err
	}
	if !e.clock.Running {
		return nil, nil
	}
	e.clock.Stop()
	e.syncClockLocked()
	return []Event{{Kind: EventClockStopped, Payload: e.clockPayload()}}, nil
}

// ResetClock restores the full period length. Rejected while running.
func (e *Engine) ResetClock() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.active(); err != nil {
		return nil, err
	}
	if e.clock.Running {
		return nil, ErrStateConflict
	}
	e.clock.Reset(e.rules)
	e.syncClockLocked()
	return []Event{{Kind: EventClockReset, Payload: e.clockPayload()}}, nil
}

// AdvanceIfNeeded applies the period-transition decision: advance the
// quarter, start (another) overtime on a tie, or complete the game. The
// lifecycle transition is pushed to the record store.
func (e *Engine) AdvanceIfNeeded() (AdvanceResult, []Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return AdvanceResult{}, nil, err
	}

	home, away := e.ledger.Scores(e.homeTeamID, e.awayTeamID)
	decision := domain.DecideAdvance(e.clock.Quarter, e.clock.SecondsRemaining, e.rules, home, away)
	result := AdvanceResult{Outcome: decision.Outcome, Quarter: decision.Quarter, OvertimePeriod: decision.OvertimePeriod}

	switch decision.Outcome {
	case domain.AdvanceNone:
		return result, nil, nil

	case domain.AdvanceNextQuarter:
		events := e.beginPeriodLocked(decision)
		events = append([]Event{{Kind: EventQuarterAdvanced, Payload: QuarterAdvancedPayload{Quarter: decision.Quarter, ClockSeconds: decision.ClockSeconds}}}, events...)
		return result, events, nil

	case domain.AdvanceOvertime:
		events := e.beginPeriodLocked(decision)
		events = append([]Event{{Kind: EventOvertimeStarted, Payload: OvertimeStartedPayload{Period: decision.OvertimePeriod, Quarter: decision.Quarter, ClockSeconds: decision.ClockSeconds}}}, events...)
		if e.status != ports.StatusOvertime {
			e.status = ports.StatusOvertime
			e.syncStatusLocked(ports.StatusOvertime)
		}
		return result, events, nil

	case domain.AdvanceComplete:
		e.status = ports.StatusCompleted
		e.clock.Stop()
		e.syncStatusLocked(ports.StatusCompleted)
		e.syncClockLocked()
		events := []Event{{Kind: EventGameCompleted, Payload: GameCompletedPayload{HomeScore: home, AwayScore: away}}}
		return result, events, nil
	}
	return result, nil, nil
}

// beginPeriodLocked moves the clock into the decided period and resets the
// period-scoped state: team fouls, shot clock, and possession by the
// alternating arrow.
func (e *Engine) beginPeriodLocked(decision domain.AdvanceDecision) []Event {
	e.clock.Quarter = decision.Quarter
	e.clock.SecondsRemaining = decision.ClockSeconds
	e.clock.Stop()
	e.fouls.AdvancePeriod(decision.Quarter)
	e.shotClock.Apply(domain.TriggerPossessionChange)
	holder := e.possession.JumpBall()
	e.syncClockLocked()
	return []Event{{Kind: EventPossessionFlip, Payload: PossessionPayload{TeamID: holder}}}
}

// CallTimeout charges a timeout against the team's ruleset allotment and
// stops the clock.
func (e *Engine) CallTimeout(teamID string) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	if !e.teamKnown(teamID) {
		return nil, ErrUnknownTeam
	}
	if e.timeouts[teamID] <= 0 {
		return nil, ErrNoTimeoutsRemaining
	}

	e.timeouts[teamID]--
	wasRunning := e.clock.Running
	e.clock.Stop()

	e.log.Push(CommandLogEntry{
		ID:        uuid.NewString(),
		Label:     "timeout",
		AppliedAt: e.now(),
		Inverse: Inverse{
			RefundTimeoutTeam:   teamID,
			RestoreClockRunning: &wasRunning,
		},
	})
	e.syncClockLocked()

	events := []Event{{Kind: EventTimeoutCalled, Payload: TimeoutCalledPayload{TeamID: teamID, Remaining: e.timeouts[teamID]}}}
	if wasRunning {
		events = append(events, Event{Kind: EventClockStopped, Payload: e.clockPayload()})
	}
	return events, nil
}

// OutOfBounds awards the inbound to a team and stops the clock. Retained
// possession runs the out-of-bounds shot-clock rule; a change of possession
// grants a full reset.
func (e *Engine) OutOfBounds(awardedTeamID string) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	if !e.teamKnown(awardedTeamID) {
		return nil, ErrUnknownTeam
	}

	prevHolder := e.possession.Holder()
	prevShot := ShotClockInverse{Seconds: e.shotClock.Seconds(), Frozen: e.shotClock.Frozen()}
	wasRunning := e.clock.Running

	e.clock.Stop()
	var events []Event
	if awardedTeamID == prevHolder {
		e.shotClock.Apply(domain.TriggerOutOfBounds)
	} else {
		e.possession.Set(awardedTeamID)
		e.shotClock.Apply(domain.TriggerPossessionChange)
		events = append(events, Event{Kind: EventPossessionFlip, Payload: PossessionPayload{TeamID: awardedTeamID}})
	}
	if wasRunning {
		events = append(events, Event{Kind: EventClockStopped, Payload: e.clockPayload()})
	}

	e.log.Push(CommandLogEntry{
		ID:        uuid.NewString(),
		Label:     "out_of_bounds",
		AppliedAt: e.now(),
		Inverse: Inverse{
			RestorePossession:   &prevHolder,
			RestoreShotClock:    &prevShot,
			RestoreClockRunning: &wasRunning,
		},
	})
	e.syncClockLocked()
	return events, nil
}

// JumpBall resolves a held ball via the alternating-possession arrow.
func (e *Engine) JumpBall() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	prevHolder := e.possession.Holder()
	prevArrow := e.possession.Arrow()
	holder := e.possession.JumpBall()
	e.log.Push(CommandLogEntry{
		ID:        uuid.NewString(),
		Label:     "jump_ball",
		AppliedAt: e.now(),
		Inverse: Inverse{
			RestorePossession: &prevHolder,
			RestoreArrow:      &prevArrow,
		},
	})
	return []Event{{Kind: EventPossessionFlip, Payload: PossessionPayload{TeamID: holder}}}, nil
}

// ResolveSequence closes a pending attribution slot with the chosen player,
// or records an explicit skip when playerID is empty.
func (e *Engine) ResolveSequence(slotID, playerID string) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	slot, err := e.sequences.Resolve(slotID, playerID)
	if err != nil {
		return nil, err
	}
	e.log.Push(CommandLogEntry{
		ID:        uuid.NewString(),
		Label:     "sequence:" + slot.Kind.String(),
		AppliedAt: e.now(),
		Inverse:   Inverse{ReopenSlotID: slot.ID},
	})
	return []Event{{Kind: EventSequenceClosed, Payload: SequenceSlotPayload{Slot: *slot}}}, nil
}

// ConfirmShotClockViolation acknowledges the surfaced violation and returns
// the offending team so the caller can record the turnover explicitly.
func (e *Engine) ConfirmShotClockViolation() (string, []Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return "", nil, err
	}
	if e.violation == nil {
		return "", nil, ErrNoViolationPending
	}
	team := e.violation.teamID
	e.violation = nil
	return team, []Event{{Kind: EventAlertConfirmed, Payload: ShotClockAlertPayload{TeamID: team}}}, nil
}

// Undo reverses the most recent mutation and issues its compensating write:
// a tombstone for stats, the mirror substitution for roster swaps.
func (e *Engine) Undo() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	entry, ok := e.log.Pop()
	if !ok {
		return nil, ErrNothingToUndo
	}

	// Resolve the storage id before the inverse removes the ledger entry.
	voidID := ""
	if entry.StatEventID != "" {
		voidID = entry.StatEventID
		if ev, ok := e.ledger.Get(entry.StatEventID); ok && ev.PersistedID != "" {
			voidID = ev.PersistedID
		}
	}

	e.applyInverse(entry.Inverse)

	switch {
	case e.inflight[entry.ID]:
		// The write has not completed; its callback issues the
		// compensating write with the store-assigned id, or nothing at
		// all when the write fails.
		e.undone[entry.ID] = true
	case voidID != "":
		id := voidID
		e.dispatch(func() {
			_ = e.store.VoidRecord(e.ctx, e.gameID, id)
		})
	case entry.Substitution != nil:
		e.dispatchMirrorLocked(entry.Substitution)
	}

	return []Event{{Kind: EventUndoApplied, Payload: UndoAppliedPayload{Label: entry.Label}}}, nil
}

// dispatchMirrorLocked records the reversing substitution as the compensating
// write for an undone roster swap.
func (e *Engine) dispatchMirrorLocked(mirror *RosterSwapInverse) {
	rec := ports.SubstitutionRecord{
		GameID:       e.gameID,
		TeamID:       mirror.TeamID,
		PlayerOutID:  mirror.PlayerOut,
		PlayerInID:   mirror.PlayerIn,
		Quarter:      e.clock.Quarter,
		ClockSeconds: e.clock.SecondsRemaining,
	}
	e.dispatch(func() {
		_ = e.store.RecordSubstitution(e.ctx, rec)
	})
}

// Cancel freezes the game; all further mutations are rejected.
func (e *Engine) Cancel() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.active(); err != nil {
		return nil, err
	}
	e.status = ports.StatusCancelled
	e.clock.Stop()
	e.syncStatusLocked(ports.StatusCancelled)
	return []Event{{Kind: EventGameCancelled}}, nil
}

// DrainEvents returns and clears events produced by asynchronous write
// completions. The host calls this once per loop tick.
func (e *Engine) DrainEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.asyncEvents
	e.asyncEvents = nil
	return out
}

func (e *Engine) applyInverse(inv Inverse) {
	if inv.RemoveEventID != "" {
		e.ledger.Remove(inv.RemoveEventID)
	}
	if inv.RestoreRoster != nil {
		if roster, ok := e.rosters[inv.RestoreRoster.TeamID]; ok {
			_ = roster.Swap(inv.RestoreRoster.PlayerOut, inv.RestoreRoster.PlayerIn)
		}
	}
	if inv.RemoveFoul != nil {
		e.fouls.RemoveFoul(inv.RemoveFoul.TeamID, inv.RemoveFoul.PlayerID, inv.RemoveFoul.Technical)
	}
	if inv.RestorePossession != nil {
		e.possession.Set(*inv.RestorePossession)
	}
	if inv.RestoreArrow != nil {
		e.possession.SetArrow(*inv.RestoreArrow)
	}
	if inv.RestoreShotClock != nil {
		e.shotClock.Set(inv.RestoreShotClock.Seconds, inv.RestoreShotClock.Frozen)
	}
	if inv.RestoreClockRunning != nil && *inv.RestoreClockRunning {
		e.clock.Start()
	}
	if len(inv.RemoveSlotIDs) > 0 {
		e.sequences.Remove(inv.RemoveSlotIDs)
	}
	if inv.ReopenSlotID != "" {
		e.sequences.Reopen(inv.ReopenSlotID)
	}
	if inv.RefundTimeoutTeam != "" {
		e.timeouts[inv.RefundTimeoutTeam]++
	}
}

func (e *Engine) clockPayload() ClockPayload {
	return ClockPayload{
		Quarter:          e.clock.Quarter,
		SecondsRemaining: e.clock.SecondsRemaining,
		Running:          e.clock.Running,
	}
}

// syncClockLocked pushes the clock to the record store. Best-effort: the
// local clock stays authoritative, so failures are not rolled back.
func (e *Engine) syncClockLocked() {
	state := ports.ClockState{
		GameID:           e.gameID,
		Quarter:          e.clock.Quarter,
		MinutesRemaining: e.clock.SecondsRemaining / 60,
		SecondsRemaining: e.clock.SecondsRemaining % 60,
		Running:          e.clock.Running,
	}
	e.dispatch(func() {
		_ = e.store.UpdateClockState(e.ctx, state)
	})
}

func (e *Engine) syncStatusLocked(status ports.GameStatus) {
	e.dispatch(func() {
		_ = e.store.UpdateGameStatus(e.ctx, e.gameID, status)
	})
}
