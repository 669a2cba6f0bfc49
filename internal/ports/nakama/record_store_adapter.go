package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"courtside/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statEventsCollection    = "stat_events"
	substitutionsCollection = "substitutions"
	gameStatusCollection    = "game_status"
	clockStateCollection    = "clock_state"
	voidedCollection        = "voided_records"
)

// storageWriter is the slice of runtime.NakamaModule the adapter needs.
type storageWriter interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// GameRecordStoreAdapter persists game records to Nakama storage. Clock
// writes are coalesced: callers enqueue and a background flusher pushes the
// most recent state on an interval, or sooner when enough updates pile up.
type GameRecordStoreAdapter struct {
	nk     storageWriter
	logger runtime.Logger

	clockCh   chan ports.ClockState
	maxBatch  int
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewGameRecordStoreAdapter builds an adapter and starts its clock flusher.
// Call Close when the match ends to flush and stop the flusher.
func NewGameRecordStoreAdapter(nk storageWriter, logger runtime.Logger, flushInterval time.Duration, maxBatch int) *GameRecordStoreAdapter {
	if flushInterval <= 0 {
		flushInterval = 3 * time.Second
	}
	if maxBatch < 1 {
		maxBatch = 16
	}
	a := &GameRecordStoreAdapter{
		nk:       nk,
		logger:   logger,
		clockCh:  make(chan ports.ClockState, maxBatch),
		maxBatch: maxBatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go a.flushClockLoop(flushInterval)
	return a
}

// RecordStat writes one stat event and returns its storage key.
func (a *GameRecordStoreAdapter) RecordStat(ctx context.Context, rec ports.StatRecord) (string, error) {
	key := uuid.NewString()
	value, err := json.Marshal(map[string]interface{}{
		"game_id":       rec.GameID,
		"team_id":       rec.TeamID,
		"player_id":     rec.PlayerID,
		"opponent":      rec.Opponent,
		"stat_type":     rec.StatType,
		"modifier":      rec.Modifier,
		"quarter":       rec.Quarter,
		"clock_seconds": rec.ClockSeconds,
		"recorded_at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal stat record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      statEventsCollection,
			Key:             key,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return "", fmt.Errorf("failed to write stat record: %w", err)
	}
	return key, nil
}

// RecordSubstitution writes one substitution row.
func (a *GameRecordStoreAdapter) RecordSubstitution(ctx context.Context, rec ports.SubstitutionRecord) error {
	value, err := json.Marshal(map[string]interface{}{
		"game_id":       rec.GameID,
		"team_id":       rec.TeamID,
		"player_out":    rec.PlayerOutID,
		"player_in":     rec.PlayerInID,
		"quarter":       rec.Quarter,
		"clock_seconds": rec.ClockSeconds,
		"recorded_at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal substitution record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      substitutionsCollection,
			Key:             uuid.NewString(),
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write substitution record: %w", err)
	}
	return nil
}

// UpdateGameStatus writes the game lifecycle state, keyed by game id.
func (a *GameRecordStoreAdapter) UpdateGameStatus(ctx context.Context, gameID string, status ports.GameStatus) error {
	value, err := json.Marshal(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal game status: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      gameStatusCollection,
			Key:             gameID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write game status: %w", err)
	}
	return nil
}

// UpdateClockState enqueues a clock write for the background flusher. When
// the queue is full the oldest pending state is discarded; the newest write
// supersedes it anyway.
func (a *GameRecordStoreAdapter) UpdateClockState(_ context.Context, state ports.ClockState) error {
	select {
	case a.clockCh <- state:
		return nil
	default:
	}
	select {
	case <-a.clockCh:
	default:
	}
	select {
	case a.clockCh <- state:
	default:
	}
	return nil
}

// VoidRecord writes an idempotent tombstone for a stat record. Voiding the
// same record twice overwrites the same key.
func (a *GameRecordStoreAdapter) VoidRecord(ctx context.Context, gameID, recordID string) error {
	value, err := json.Marshal(map[string]interface{}{
		"game_id":   gameID,
		"record_id": recordID,
		"voided_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal void marker: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      voidedCollection,
			Key:             recordID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write void marker: %w", err)
	}
	return nil
}

// Close flushes any pending clock state and stops the flusher. Safe to call
// more than once; returns after the final flush.
func (a *GameRecordStoreAdapter) Close() {
	a.closeOnce.Do(func() { close(a.done) })
	<-a.stopped
}

func (a *GameRecordStoreAdapter) flushClockLoop(interval time.Duration) {
	defer close(a.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var latest *ports.ClockState
	pending := 0

	flush := func() {
		if latest == nil {
			return
		}
		a.writeClockState(*latest)
		latest = nil
		pending = 0
	}

	for {
		select {
		case state := <-a.clockCh:
			latest = &state
			pending++
			if pending >= a.maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.done:
			// Drain whatever arrived before shutdown.
			for {
				select {
				case state := <-a.clockCh:
					latest = &state
				default:
					flush()
					return
				}
			}
		}
	}
}

func (a *GameRecordStoreAdapter) writeClockState(state ports.ClockState) {
	value, err := json.Marshal(map[string]interface{}{
		"quarter":           state.Quarter,
		"minutes_remaining": state.MinutesRemaining,
		"seconds_remaining": state.SecondsRemaining,
		"running":           state.Running,
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		a.logger.Error("Failed to marshal clock state: %v", err)
		return
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      clockStateCollection,
			Key:             state.GameID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(context.Background(), writes); err != nil {
		a.logger.Error("Failed to write clock state: %v", err)
	}
}

var _ ports.GameRecordStore = (*GameRecordStoreAdapter)(nil)
