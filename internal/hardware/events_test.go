package hardware

import (
	"testing"

	"timelapse/internal/models"
)

func TestEventQueue_FillsIDAndTime(t *testing.T) {
	q := NewEventQueue()
	q.Post(models.DeviceEvent{Kind: "error", Description: "sensor timeout"})

	ev, ok := q.NextEvent(models.EventError)
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.EventID == "" || ev.OccurredAt.IsZero() {
		t.Fatalf("id/time not filled: %+v", ev)
	}
	if ev.Kind != models.EventError {
		t.Fatalf("kind = %q, want ERROR", ev.Kind)
	}
}

func TestEventQueue_FIFOPerKind(t *testing.T) {
	q := NewEventQueue()
	q.Post(models.DeviceEvent{Kind: models.EventError, Description: "first"})
	q.Post(models.DeviceEvent{Kind: models.EventInfo, Description: "info"})
	q.Post(models.DeviceEvent{Kind: models.EventError, Description: "second"})

	var got []string
	for {
		ev, ok := q.NextEvent(models.EventError)
		if !ok {
			break
		}
		got = append(got, ev.Description)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("drained %v, want [first second]", got)
	}
	if q.Len() != 1 {
		t.Fatalf("info event should remain, len=%d", q.Len())
	}
	if _, ok := q.NextEvent(models.EventError); ok {
		t.Fatal("queue should have no more errors")
	}
}
