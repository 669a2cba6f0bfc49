package nakama

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"courtside/internal/ports"
)

func TestRecordStatWritesStorageRow(t *testing.T) {
	storage := &mockStorage{}
	store := NewGameRecordStoreAdapter(storage, noopLogger{}, time.Hour, 4)
	defer store.Close()

	key, err := store.RecordStat(context.Background(), ports.StatRecord{
		GameID:       "game-1",
		TeamID:       "hawks",
		PlayerID:     "h1",
		StatType:     "field_goal",
		Modifier:     "made",
		Quarter:      2,
		ClockSeconds: 431,
	})
	if err != nil {
		t.Fatalf("record stat error: %v", err)
	}
	if key == "" {
		t.Fatalf("expected a storage key")
	}

	writes := storage.byCollection(statEventsCollection)
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	if writes[0].Key != key {
		t.Fatalf("write key = %s, want %s", writes[0].Key, key)
	}

	var row map[string]interface{}
	if err := json.Unmarshal([]byte(writes[0].Value), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row["stat_type"] != "field_goal" || row["team_id"] != "hawks" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestVoidRecordIsIdempotent(t *testing.T) {
	storage := &mockStorage{}
	store := NewGameRecordStoreAdapter(storage, noopLogger{}, time.Hour, 4)
	defer store.Close()

	if err := store.VoidRecord(context.Background(), "game-1", "row-9"); err != nil {
		t.Fatalf("void error: %v", err)
	}
	if err := store.VoidRecord(context.Background(), "game-1", "row-9"); err != nil {
		t.Fatalf("second void error: %v", err)
	}

	writes := storage.byCollection(voidedCollection)
	if len(writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(writes))
	}
	// Same key: the second write overwrites the first tombstone.
	if writes[0].Key != "row-9" || writes[1].Key != "row-9" {
		t.Fatalf("tombstone keys = %s/%s, want row-9", writes[0].Key, writes[1].Key)
	}
}

func TestClockWritesCoalesceToLatest(t *testing.T) {
	storage := &mockStorage{}
	store := NewGameRecordStoreAdapter(storage, noopLogger{}, time.Hour, 32)

	for i := 0; i < 5; i++ {
		err := store.UpdateClockState(context.Background(), ports.ClockState{
			GameID:           "game-1",
			Quarter:          1,
			SecondsRemaining: 50 - i,
			Running:          true,
		})
		if err != nil {
			t.Fatalf("enqueue error: %v", err)
		}
	}

	// Close flushes the pending state; only the newest survives.
	store.Close()

	writes := storage.byCollection(clockStateCollection)
	if len(writes) != 1 {
		t.Fatalf("clock writes = %d, want 1", len(writes))
	}
	var row map[string]interface{}
	if err := json.Unmarshal([]byte(writes[0].Value), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row["seconds_remaining"] != float64(46) {
		t.Fatalf("seconds_remaining = %v, want 46", row["seconds_remaining"])
	}
}

func TestClockQueueDropsOldestWhenFull(t *testing.T) {
	storage := &mockStorage{}
	store := NewGameRecordStoreAdapter(storage, noopLogger{}, time.Hour, 2)

	for i := 0; i < 6; i++ {
		_ = store.UpdateClockState(context.Background(), ports.ClockState{
			GameID:           "game-1",
			SecondsRemaining: i,
		})
	}
	store.Close()

	writes := storage.byCollection(clockStateCollection)
	if len(writes) == 0 {
		t.Fatalf("expected at least one clock write")
	}
	var row map[string]interface{}
	if err := json.Unmarshal([]byte(writes[len(writes)-1].Value), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row["seconds_remaining"] != float64(5) {
		t.Fatalf("last write seconds_remaining = %v, want 5", row["seconds_remaining"])
	}
}
