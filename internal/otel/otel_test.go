package otel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer makes bytes.Buffer safe for the drain goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggerWritesJSONL(t *testing.T) {
	var buf syncBuffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSuggestLookup, Comp: "suggest", Instance: "term", Gen: 3, Query: "kinase"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}

	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if ev["kind"] != "suggest.lookup" {
		t.Errorf("kind = %v", ev["kind"])
	}
	if ev["gen"] != float64(3) {
		t.Errorf("gen = %v", ev["gen"])
	}
	if ev["session_id"] == "" || ev["session_id"] == nil {
		t.Error("session_id should be set")
	}
}

func TestLoggerDurSerializedAsMillis(t *testing.T) {
	var buf syncBuffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSuggestComplete, Dur: 250 * time.Millisecond})
	l.Close()

	var ev map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev["dur_ms"] != float64(250) {
		t.Errorf("dur_ms = %v, want 250", ev["dur_ms"])
	}
}

func TestLoggerEmitAfterCloseDrops(t *testing.T) {
	l := NewNullLogger()
	l.Close()

	l.Emit(Event{Kind: KindError})

	if l.Dropped() == 0 {
		t.Error("emit after close should count as dropped")
	}
}

func TestLoggerPushesToRingBuffer(t *testing.T) {
	l := NewNullLogger()
	rb := NewRingBuffer(8)
	l.SetRingBuffer(rb)

	l.Emit(Event{Kind: KindTableFilter, Count: 2})
	l.Close()

	events := rb.Last(1)
	if len(events) != 1 || events[0].Kind != KindTableFilter {
		t.Fatalf("ring buffer events = %+v", events)
	}
	if events[0].Count != 2 {
		t.Errorf("Count = %d, want 2", events[0].Count)
	}
}

func TestRingBufferWraparound(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 0; i < 10; i++ {
		rb.Push(Event{Kind: KindSuggestInput, Gen: i})
	}

	if rb.Len() != 4 {
		t.Fatalf("Len = %d, want 4", rb.Len())
	}

	last := rb.Last(4)
	for i, ev := range last {
		if want := 6 + i; ev.Gen != want {
			t.Errorf("last[%d].Gen = %d, want %d", i, ev.Gen, want)
		}
	}
}

func TestRingBufferStats(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Push(Event{Kind: KindSuggestLookup})
	rb.Push(Event{Kind: KindSuggestLookup})
	rb.Push(Event{Kind: KindTableFilter})

	stats := rb.Stats()
	if stats[KindSuggestLookup] != 2 {
		t.Errorf("lookup count = %d, want 2", stats[KindSuggestLookup])
	}
	if stats[KindTableFilter] != 1 {
		t.Errorf("filter count = %d, want 1", stats[KindTableFilter])
	}

	// wraparound evicts the oldest entries from the counts
	for i := 0; i < 8; i++ {
		rb.Push(Event{Kind: KindTableReset})
	}
	stats = rb.Stats()
	if stats[KindSuggestLookup] != 0 {
		t.Errorf("evicted kind still counted: %d", stats[KindSuggestLookup])
	}
	if stats[KindTableReset] != 8 {
		t.Errorf("reset count = %d, want 8", stats[KindTableReset])
	}
}

func TestRingBufferLastBounds(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Push(Event{Gen: 1})

	if got := rb.Last(0); got != nil {
		t.Errorf("Last(0) = %v, want nil", got)
	}
	if got := rb.Last(10); len(got) != 1 {
		t.Errorf("Last(10) returned %d events, want 1", len(got))
	}
}

func TestRingBufferConcurrentPush(t *testing.T) {
	rb := NewRingBuffer(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rb.Push(Event{Kind: KindSuggestInput})
			}
		}()
	}
	wg.Wait()

	if rb.Len() != rb.Cap() {
		t.Errorf("Len = %d, want %d", rb.Len(), rb.Cap())
	}
}

func TestLoggerConcurrentEmit(t *testing.T) {
	var buf syncBuffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Emit(Event{Kind: KindSuggestInput, Msg: fmt.Sprintf("g%d-%d", g, i)})
			}
		}(g)
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines)+int(l.Dropped()) != 200 {
		t.Errorf("lines=%d dropped=%d, want total 200", len(lines), l.Dropped())
	}
}
