package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerSingleEventPassesThrough(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: one transcript event is added
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpCreate, Timestamp: time.Now()})

	// Then: it comes out after the window
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "sess-a.jsonl", events[0].Path)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerModifyBurstCoalesces(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: a transcript is appended to repeatedly
	for i := 0; i < 5; i++ {
		d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: a single MODIFY survives
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "sess-a.jsonl", events[0].Path)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncerCreateThenModifyStaysCreate(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a new transcript is created and immediately written to
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpModify, Timestamp: time.Now()})

	// Then: the file is still reported as new
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerCreateThenDeleteCancels(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a transcript appears and disappears within the window
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpDelete, Timestamp: time.Now()})

	// Then: nothing is emitted
	select {
	case events := <-d.Output():
		t.Fatalf("expected no events, got %v", events)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncerDeleteThenCreateBecomesModify(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a transcript is replaced within the window
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpDelete, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpCreate, Timestamp: time.Now()})

	// Then: the replacement reads as a modification
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerMultipleFilesOneBatch(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: two different transcripts change in the same window
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpModify, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "sess-b.jsonl", Operation: OpModify, Timestamp: time.Now()})

	// Then: both arrive in a single batch
	select {
	case events := <-d.Output():
		require.Len(t, events, 2)
		paths := []string{events[0].Path, events[1].Path}
		assert.Contains(t, paths, "sess-a.jsonl")
		assert.Contains(t, paths, "sess-b.jsonl")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncerStopClosesOutput(t *testing.T) {
	// Given: a running debouncer
	d := NewDebouncer(50 * time.Millisecond)

	// When: stopping it twice
	d.Stop()
	d.Stop()

	// Then: the output channel is closed and Add is a no-op
	d.Add(FileEvent{Path: "sess-a.jsonl", Operation: OpCreate, Timestamp: time.Now()})
	_, open := <-d.Output()
	assert.False(t, open)
}
