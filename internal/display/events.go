package display

import (
	"context"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// EventKind classifies window events the overlay cares about
type EventKind int

const (
	EventOther EventKind = iota
	EventExpose
	EventEnter
	EventLeave
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventExpose:
		return "expose"
	case EventEnter:
		return "enter"
	case EventLeave:
		return "leave"
	case EventError:
		return "error"
	default:
		return "other"
	}
}

// Event is a classified X event or protocol error
type Event struct {
	Kind EventKind
	// Last is false for expose events with more in the same series.
	Last bool
	Err  error
}

// Classify maps a raw X event onto an Event
func Classify(ev xgb.Event, xerr xgb.Error) Event {
	if xerr != nil {
		return Event{Kind: EventError, Err: xerr}
	}
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		return Event{Kind: EventExpose, Last: e.Count == 0}
	case xproto.EnterNotifyEvent:
		return Event{Kind: EventEnter}
	case xproto.LeaveNotifyEvent:
		return Event{Kind: EventLeave}
	default:
		return Event{Kind: EventOther}
	}
}

// Events pumps the connection's event queue into the returned channel
// until the connection closes. The channel is closed afterwards.
func (s *Surface) Events(ctx context.Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for {
			ev, xerr := s.conn.WaitForEvent()
			if ev == nil && xerr == nil {
				return
			}
			select {
			case out <- Classify(ev, xerr):
			case <-ctx.Done():
				// Keep draining until Close so WaitForEvent never blocks the
				// connection's reader.
			}
		}
	}()
	return out
}
