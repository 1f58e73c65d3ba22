package hardware

import (
	"strings"
	"sync"
	"time"

	"timelapse/internal/models"

	"github.com/google/uuid"
)

// EventQueue is a FIFO of device events. The hardware side posts, the
// scheduler drains. Safe for concurrent use.
type EventQueue struct {
	mu     sync.Mutex
	events []models.DeviceEvent
	now    func() time.Time
}

func NewEventQueue() *EventQueue {
	return &EventQueue{now: time.Now}
}

// Post appends an event. If EventID or OccurredAt are empty, they're set.
func (q *EventQueue) Post(e models.DeviceEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = q.now().UTC()
	}
	e.Kind = strings.ToUpper(strings.TrimSpace(e.Kind))

	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// NextEvent removes and returns the oldest event of the given kind.
func (q *EventQueue) NextEvent(kind string) (models.DeviceEvent, bool) {
	kind = strings.ToUpper(strings.TrimSpace(kind))

	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.events {
		if e.Kind == kind {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return e, true
		}
	}
	return models.DeviceEvent{}, false
}

// Len is the number of pending events of all kinds.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
