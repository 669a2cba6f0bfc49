package app

import (
	"fmt"
	"testing"
)

func logEntry(id string) CommandLogEntry {
	return CommandLogEntry{ID: id, Label: "stat:field_goal"}
}

func TestCommandLogPopIsLIFO(t *testing.T) {
	log := NewCommandLog(10)
	log.Push(logEntry("a"))
	log.Push(logEntry("b"))
	log.Push(logEntry("c"))

	for _, want := range []string{"c", "b", "a"} {
		entry, ok := log.Pop()
		if !ok {
			t.Fatalf("pop %s: log empty", want)
		}
		if entry.ID != want {
			t.Fatalf("pop = %s, want %s", entry.ID, want)
		}
	}
	if _, ok := log.Pop(); ok {
		t.Fatalf("pop on empty log should fail")
	}
}

func TestCommandLogEvictsOldest(t *testing.T) {
	log := NewCommandLog(3)
	for i := 0; i < 5; i++ {
		log.Push(logEntry(fmt.Sprintf("e%d", i)))
	}
	if log.Len() != 3 {
		t.Fatalf("len = %d, want 3", log.Len())
	}
	if _, ok := log.Take("e0"); ok {
		t.Fatalf("e0 should have been evicted")
	}
	if _, ok := log.Take("e4"); !ok {
		t.Fatalf("e4 should be present")
	}
}

func TestCommandLogTakeRemovesMidStack(t *testing.T) {
	log := NewCommandLog(10)
	log.Push(logEntry("a"))
	log.Push(logEntry("b"))
	log.Push(logEntry("c"))

	entry, ok := log.Take("b")
	if !ok || entry.ID != "b" {
		t.Fatalf("take b = (%v, %v)", entry.ID, ok)
	}
	if _, ok := log.Take("b"); ok {
		t.Fatalf("second take of b should miss")
	}

	top, _ := log.Pop()
	if top.ID != "c" {
		t.Fatalf("top = %s, want c", top.ID)
	}
	if log.Len() != 1 {
		t.Fatalf("len = %d, want 1", log.Len())
	}
}

func TestCommandLogMinimumCapacity(t *testing.T) {
	log := NewCommandLog(0)
	log.Push(logEntry("a"))
	log.Push(logEntry("b"))
	if log.Len() != 1 {
		t.Fatalf("len = %d, want 1", log.Len())
	}
	entry, _ := log.Pop()
	if entry.ID != "b" {
		t.Fatalf("kept = %s, want b", entry.ID)
	}
}
