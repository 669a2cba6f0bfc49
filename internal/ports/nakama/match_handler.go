package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"courtside/internal/app"
	"courtside/internal/config"
	"courtside/internal/domain"
	"courtside/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_Open = "open" // Key for spectator availability in the match label
)

// matchLabel is the JSON label indexed by Nakama's match listing.
type matchLabel struct {
	Open   int    `json:"open"`
	Game   string `json:"game"`
	Status string `json:"status"`
}

// MatchSetup is the creation payload passed through MatchCreate params under
// the "setup" key.
type MatchSetup struct {
	GameID       string   `json:"game_id"`
	Ruleset      string   `json:"ruleset"`
	ScorerUserID string   `json:"scorer_user_id"`
	SingleTeam   bool     `json:"single_team"`
	HomeTeamID   string   `json:"home_team_id"`
	HomeOnCourt  []string `json:"home_on_court"`
	HomeBench    []string `json:"home_bench"`
	AwayTeamID   string   `json:"away_team_id"`
	AwayOnCourt  []string `json:"away_on_court"`
	AwayBench    []string `json:"away_bench"`
}

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The engine owns all game state; the handler translates messages
// and broadcasts events.
type MatchState struct {
	GameID    string                      `json:"game_id"`
	Scorer    string                      `json:"scorer"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`
	Engine    *app.Engine                 `json:"-"`
	Store     *GameRecordStoreAdapter     `json:"-"`
	Status    ports.GameStatus            `json:"status"`
}

// Client command payloads.

type recordStatCommand struct {
	TeamID        string `json:"team_id"`
	PlayerID      string `json:"player_id"`
	Opponent      bool   `json:"opponent"`
	StatType      string `json:"stat_type"`
	Modifier      string `json:"modifier"`
	Backcourt     bool   `json:"backcourt"`
	Shooting      bool   `json:"shooting"`
	LinkedEventID string `json:"linked_event_id"`
}

type substituteCommand struct {
	TeamID    string `json:"team_id"`
	PlayerOut string `json:"player_out"`
	PlayerIn  string `json:"player_in"`
}

type clockControlCommand struct {
	Action string `json:"action"` // start, stop, reset
}

type resolveSequenceCommand struct {
	SlotID   string `json:"slot_id"`
	PlayerID string `json:"player_id"`
}

type teamCommand struct {
	TeamID string `json:"team_id"`
}

type commandError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing scoreboard match.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	setup := parseSetup(params)
	if setup.GameID == "" {
		setup.GameID = uuid.NewString()
	}
	if setup.Ruleset == "" {
		setup.Ruleset = config.GetDefaultRuleset()
	}

	gameCfg := config.GetGameConfig()
	engineCfg := app.Config{
		SingleTeamMode:        setup.SingleTeam,
		ViolationDismissAfter: config.GetViolationDismiss(),
	}
	if gameCfg != nil {
		engineCfg.AllowStatsWhileStopped = gameCfg.AllowStatsWhileStopped
		engineCfg.AutoPossessionFlip = gameCfg.AutoPossessionFlip
		engineCfg.MaxHistorySize = gameCfg.MaxHistorySize
	}

	// Environment variables override the config file.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["courtside_default_ruleset"]; ok && setup.Ruleset == config.GetDefaultRuleset() {
		setup.Ruleset = val
	}
	if val, ok := env["courtside_allow_stats_while_stopped"]; ok {
		engineCfg.AllowStatsWhileStopped = val == "true"
	}
	if val, ok := env["courtside_auto_possession_flip"]; ok {
		engineCfg.AutoPossessionFlip = val == "true"
	}
	if val, ok := env["courtside_max_history_size"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			engineCfg.MaxHistorySize = i
		}
	}
	if val, ok := env["courtside_violation_dismiss_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			engineCfg.ViolationDismissAfter = time.Duration(i) * time.Second
		}
	}

	rules, ok := domain.RulesetByID(setup.Ruleset)
	if !ok {
		logger.Error("MatchInit: Unknown ruleset %q", setup.Ruleset)
		return nil, 0, ""
	}

	store := NewGameRecordStoreAdapter(nk, logger, config.GetClockFlushInterval(), config.GetClockFlushMaxBatch())

	home := app.TeamSetup{TeamID: setup.HomeTeamID, OnCourt: setup.HomeOnCourt, Bench: setup.HomeBench}
	away := app.TeamSetup{TeamID: setup.AwayTeamID, OnCourt: setup.AwayOnCourt, Bench: setup.AwayBench}
	engine, err := app.NewEngine(context.Background(), setup.GameID, rules, home, away, store, engineCfg, nil)
	if err != nil {
		logger.Error("MatchInit: Failed to build engine: %v", err)
		store.Close()
		return nil, 0, ""
	}

	state := &MatchState{
		GameID:    setup.GameID,
		Scorer:    setup.ScorerUserID,
		Presences: make(map[string]runtime.Presence),
		Engine:    engine,
		Store:     store,
		Status:    ports.StatusInProgress,
	}

	labelBytes, err := json.Marshal(matchLabel{Open: 1, Game: "courtside", Status: string(state.Status)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // engine ticks are whole seconds
	return state, tickRate, string(labelBytes)
}

func parseSetup(params map[string]interface{}) MatchSetup {
	var setup MatchSetup
	if raw, ok := params["setup"].(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &setup)
	}
	return setup
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	if _, ok := state.(*MatchState); !ok {
		return state, false, "state not found"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// First joiner becomes the scorer when none was named at creation.
		if matchState.Scorer == "" {
			matchState.Scorer = p.GetUserId()
			logger.Info("MatchJoin: %s is the scorer for game %s", p.GetUserId(), matchState.GameID)
		}
	}

	// Send the full snapshot to the new presences so they can render
	// without replaying history.
	snapshot := matchState.Engine.Snapshot()
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("MatchJoin: Failed to marshal snapshot: %v", err)
		return matchState
	}
	dispatcher.BroadcastMessage(OpStateSnapshot, bytes, presences, nil, true)

	return matchState
}

// MatchLeave is called when one or more presences leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty scoreboard for game %s", matchState.GameID)
		matchState.Store.Close()
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleCommand(ctx, matchState, dispatcher, logger, msg)
	}

	// One loop iteration per second at tickRate 1.
	events, err := matchState.Engine.Tick(1)
	if err != nil {
		logger.Error("MatchLoop: Tick failed: %v", err)
	}
	mh.broadcastEvents(matchState, dispatcher, logger, events)

	// Surface results of asynchronous storage writes.
	mh.broadcastEvents(matchState, dispatcher, logger, matchState.Engine.DrainEvents())

	return matchState
}

func (mh *matchHandler) handleCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.Scorer {
		logger.Warn("handleCommand: %s sent opcode %d but is not the scorer", senderID, msg.GetOpCode())
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the scorer can send commands")
		return
	}

	var (
		events []app.Event
		err    error
	)

	switch msg.GetOpCode() {
	case OpRecordStat:
		events, err = mh.handleRecordStat(state, msg)
	case OpSubstitute:
		var cmd substituteCommand
		if err = json.Unmarshal(msg.GetData(), &cmd); err == nil {
			events, err = state.Engine.Substitute(app.SubstitutionIntent{
				TeamID:    cmd.TeamID,
				PlayerOut: cmd.PlayerOut,
				PlayerIn:  cmd.PlayerIn,
			})
		}
	case OpClockControl:
		events, err = mh.handleClockControl(state, msg)
	case OpAdvancePeriod:
		var result app.AdvanceResult
		result, events, err = state.Engine.AdvanceIfNeeded()
		if err == nil && result.Outcome != domain.AdvanceNone {
			mh.updateLabel(state, dispatcher, logger)
		}
	case OpUndo:
		events, err = state.Engine.Undo()
	case OpResolveSequence:
		var cmd resolveSequenceCommand
		if err = json.Unmarshal(msg.GetData(), &cmd); err == nil {
			events, err = state.Engine.ResolveSequence(cmd.SlotID, cmd.PlayerID)
		}
	case OpCallTimeout:
		var cmd teamCommand
		if err = json.Unmarshal(msg.GetData(), &cmd); err == nil {
			events, err = state.Engine.CallTimeout(cmd.TeamID)
		}
	case OpConfirmViolation:
		_, events, err = state.Engine.ConfirmShotClockViolation()
	case OpOutOfBounds:
		var cmd teamCommand
		if err = json.Unmarshal(msg.GetData(), &cmd); err == nil {
			events, err = state.Engine.OutOfBounds(cmd.TeamID)
		}
	case OpJumpBall:
		events, err = state.Engine.JumpBall()
	case OpCancelGame:
		events, err = state.Engine.Cancel()
		if err == nil {
			mh.updateLabel(state, dispatcher, logger)
		}
	default:
		logger.Warn("handleCommand: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("handleCommand: opcode %d from %s failed: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleRecordStat(state *MatchState, msg runtime.MatchData) ([]app.Event, error) {
	var cmd recordStatCommand
	if err := json.Unmarshal(msg.GetData(), &cmd); err != nil {
		return nil, err
	}

	statType, ok := domain.StatTypeFromString(cmd.StatType)
	if !ok {
		return nil, fmt.Errorf("unknown stat type: %s", cmd.StatType)
	}
	modifierName := cmd.Modifier
	if modifierName == "" {
		modifierName = "none"
	}
	modifier, ok := domain.ModifierFromString(modifierName)
	if !ok {
		return nil, fmt.Errorf("unknown modifier: %s", cmd.Modifier)
	}

	return state.Engine.RecordStat(app.StatIntent{
		TeamID:        cmd.TeamID,
		PlayerID:      cmd.PlayerID,
		IsOpponent:    cmd.Opponent,
		Type:          statType,
		Modifier:      modifier,
		Backcourt:     cmd.Backcourt,
		Shooting:      cmd.Shooting,
		LinkedEventID: cmd.LinkedEventID,
	})
}

func (mh *matchHandler) handleClockControl(state *MatchState, msg runtime.MatchData) ([]app.Event, error) {
	var cmd clockControlCommand
	if err := json.Unmarshal(msg.GetData(), &cmd); err != nil {
		return nil, err
	}

	switch cmd.Action {
	case "start":
		return state.Engine.StartClock()
	case "stop":
		return state.Engine.StopClock()
	case "reset":
		return state.Engine.ResetClock()
	default:
		return nil, fmt.Errorf("unknown clock action: %s", cmd.Action)
	}
}

// opCodeForEvent maps engine event kinds to wire op codes.
func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventClockStarted, app.EventClockStopped, app.EventClockReset, app.EventClockExpired:
		return OpClockUpdate, true
	case app.EventStatRecorded:
		return OpStatRecorded, true
	case app.EventStatPersisted:
		return OpStatPersisted, true
	case app.EventStatWriteFailed:
		return OpStatWriteFailed, true
	case app.EventSubApplied, app.EventSubPersisted:
		return OpSubApplied, true
	case app.EventSubWriteFailed:
		return OpSubWriteFailed, true
	case app.EventQuarterAdvanced:
		return OpQuarterAdvanced, true
	case app.EventOvertimeStarted:
		return OpOvertimeStarted, true
	case app.EventGameCompleted:
		return OpGameCompleted, true
	case app.EventGameCancelled:
		return OpGameCancelled, true
	case app.EventShotClockAlert, app.EventAlertConfirmed, app.EventAlertDismissed:
		return OpShotClockAlert, true
	case app.EventSequenceOpened:
		return OpSequenceOpened, true
	case app.EventSequenceClosed:
		return OpSequenceClosed, true
	case app.EventBonusActivated:
		return OpBonusActivated, true
	case app.EventPlayerFouledOut, app.EventPlayerEjected:
		return OpFoulTrouble, true
	case app.EventTimeoutCalled:
		return OpTimeoutCalled, true
	case app.EventPossessionFlip:
		return OpPossessionChange, true
	case app.EventUndoApplied:
		return OpUndoApplied, true
	}
	return 0, false
}

// eventEnvelope is the wire shape of one broadcast event.
type eventEnvelope struct {
	Kind    app.EventKind `json:"kind"`
	Payload interface{}   `json:"payload,omitempty"`
}

// broadcastEvents converts engine events to wire messages. Events with
// explicit recipients go only to those presences.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := opCodeForEvent(ev.Kind)
		if !ok {
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}

		bytes, err := json.Marshal(eventEnvelope{Kind: ev.Kind, Payload: ev.Payload})
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Targeted events with no connected recipients must not leak
			// to everyone else.
			if len(recipients) == 0 {
				continue
			}
		}

		dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
	}
}

// sendError sends a command error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(commandError{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal command error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpCommandError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snapshot := state.Engine.Snapshot()
	state.Status = snapshot.Status

	open := 1
	if snapshot.Status == ports.StatusCompleted || snapshot.Status == ports.StatusCancelled {
		open = 0
	}
	labelBytes, err := json.Marshal(matchLabel{Open: open, Game: "courtside", Status: string(snapshot.Status)})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok {
		matchState.Store.Close()
	}
	return state
}

// MatchSignal answers out-of-band queries; "snapshot" returns the full game
// state as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if data == "snapshot" {
		bytes, err := json.Marshal(matchState.Engine.Snapshot())
		if err != nil {
			logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
			return matchState, ""
		}
		return matchState, string(bytes)
	}
	return matchState, ""
}
