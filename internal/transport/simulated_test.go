package transport

import (
	"strings"
	"testing"
	"time"
)

// collectStream runs one simulated send and returns the events in order.
func collectStream(t *testing.T, query string) []Event {
	t.Helper()

	tr := NewSimulated()
	tr.SetPacing(0, 0, 0)

	events := make(chan Event, 512)
	unsub := tr.OnMessage(func(ev Event) {
		events <- ev
	})
	defer unsub()

	tr.Connect("session_test")
	tr.SendMessage("session_test", query)

	var collected []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			collected = append(collected, ev)
			if ev.Type == EventEnd {
				return collected
			}
		case <-timeout:
			t.Fatalf("stream never completed, got %d events", len(collected))
		}
	}
}

func TestSimulatedStreamShape(t *testing.T) {
	events := collectStream(t, "latest tech news")

	if len(events) < 3 {
		t.Fatalf("Expected at least start, chunks and end, got %d events", len(events))
	}

	if events[0].Type != EventStart {
		t.Errorf("Expected first event to be start, got %s", events[0].Type)
	}
	if events[0].MessageID == "" {
		t.Error("Expected start event to carry a message id")
	}

	last := events[len(events)-1]
	if last.Type != EventEnd {
		t.Errorf("Expected last event to be end, got %s", last.Type)
	}

	starts, ends := 0, 0
	for _, ev := range events {
		switch ev.Type {
		case EventStart:
			starts++
		case EventEnd:
			ends++
		case EventChunk:
			if ev.MessageID != events[0].MessageID {
				t.Errorf("Chunk carries id %s, want %s", ev.MessageID, events[0].MessageID)
			}
			if ev.Content == "" {
				t.Error("Expected chunk content to be non-empty")
			}
		}
	}
	if starts != 1 {
		t.Errorf("Expected exactly 1 start event, got %d", starts)
	}
	if ends != 1 {
		t.Errorf("Expected exactly 1 end event, got %d", ends)
	}
}

func TestSimulatedChunksReassemble(t *testing.T) {
	events := collectStream(t, "market update")

	var b strings.Builder
	for _, ev := range events {
		if ev.Type == EventChunk {
			b.WriteString(ev.Content)
		}
	}
	text := strings.TrimRight(b.String(), " ")

	if !strings.Contains(text, "market update") {
		t.Errorf("Expected reassembled text to echo the query, got: %s", text)
	}
	if strings.Contains(text, "%s") {
		t.Error("Expected the response template to be fully substituted")
	}
}

func TestSimulatedEndCarriesMetadata(t *testing.T) {
	events := collectStream(t, "anything")

	end := events[len(events)-1]
	if end.Metadata == nil {
		t.Fatal("Expected end event to carry metadata")
	}
	if len(end.Metadata.Sources) == 0 {
		t.Error("Expected end metadata to list sources")
	}
	if end.Metadata.ProcessingTime <= 0 {
		t.Errorf("Expected positive processing time, got %f", end.Metadata.ProcessingTime)
	}
}

func TestSimulatedUnsubscribeStopsDelivery(t *testing.T) {
	tr := NewSimulated()
	tr.SetPacing(0, 0, 0)

	received := make(chan Event, 512)
	unsub := tr.OnMessage(func(ev Event) {
		received <- ev
	})
	unsub()

	tr.SendMessage("session_test", "query")

	select {
	case ev := <-received:
		t.Errorf("Expected no events after unsubscribe, got %s", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSimulatedIsConnected(t *testing.T) {
	tr := NewSimulated()
	if !tr.IsConnected() {
		t.Error("Expected simulated transport to always report connected")
	}
}
