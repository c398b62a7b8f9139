package session

import (
	"time"

	"github.com/ayusman/drishti/internal/eye"
)

// EventKind names a discrete occurrence worth recording.
type EventKind string

const (
	EventBlink      EventKind = "blink"
	EventWinkLeft   EventKind = "wink_left"
	EventWinkRight  EventKind = "wink_right"
	EventYawn       EventKind = "yawn"
	EventHeadDroop  EventKind = "head_droop"
	EventSleepStart EventKind = "sleep_start"
	EventSleepEnd   EventKind = "sleep_end"
	EventGesture    EventKind = "gesture"
	EventBreakDue   EventKind = "break_due"
	EventBreakTaken EventKind = "break_taken"
)

// Event is a discrete occurrence extracted from one frame's detector output.
type Event struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`
	// Detail names the gesture for EventGesture and the level for EventBreakDue.
	Detail string `json:"detail,omitempty"`
	// Duration is the blink, wink or sleep episode length where one applies.
	Duration time.Duration `json:"duration,omitempty"`
	// Score is the fatigue score for EventBreakDue.
	Score int `json:"score,omitempty"`
}

func faceEvents(r *Result, now time.Time) []Event {
	var events []Event

	if r.Blink.Completed {
		events = append(events, Event{Kind: EventBlink, At: now, Duration: r.Blink.Duration})
	}
	switch r.Wink.Wink {
	case eye.SideLeft:
		events = append(events, Event{Kind: EventWinkLeft, At: now, Duration: r.Wink.WinkDuration})
	case eye.SideRight:
		events = append(events, Event{Kind: EventWinkRight, At: now, Duration: r.Wink.WinkDuration})
	}
	if r.Fatigue.Yawned {
		events = append(events, Event{Kind: EventYawn, At: now})
	}
	if r.Fatigue.Drooped {
		events = append(events, Event{Kind: EventHeadDroop, At: now})
	}
	if r.Sleep.Started {
		events = append(events, Event{Kind: EventSleepStart, At: now})
	}
	if r.Sleep.Ended {
		events = append(events, Event{Kind: EventSleepEnd, At: now, Duration: r.Sleep.Duration})
	}
	if r.Fatigue.BreakTriggered {
		events = append(events, Event{
			Kind:   EventBreakDue,
			At:     now,
			Detail: string(r.Fatigue.Level),
			Score:  r.Fatigue.Score,
		})
	}
	return events
}
