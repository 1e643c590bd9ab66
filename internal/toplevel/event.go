// Package toplevel tracks application windows and bridges them to a single
// consumer over channels.
//
// A backend (the Wayland Watcher in this package, or the X11 backend in
// internal/xwm) owns a Registry on its own goroutine, feeds it attribute
// changes, and forwards the resulting Event values. Consumers reply with
// Request values.
package toplevel

import "fmt"

const (
	// EventBuffer is the capacity of the event channel.
	EventBuffer = 32
	// RequestBuffer is the capacity of the request channel.
	RequestBuffer = 16
)

// NewChannels returns the event and request channels shared by a backend and
// its consumer.
func NewChannels() (chan Event, chan Request) {
	return make(chan Event, EventBuffer), make(chan Request, RequestBuffer)
}

// Info is the externally visible state of a toplevel.
type Info struct {
	ID         uint32
	AppID      string
	Title      string
	Focused    bool
	Maximized  bool
	Minimized  bool
	Fullscreen bool
}

func (i Info) String() string {
	return fmt.Sprintf("toplevel.Info(id=%d, app_id=%q, title=%q, focused=%t)", i.ID, i.AppID, i.Title, i.Focused)
}

// Event is sent from a backend to the consumer.
type Event interface {
	isEvent()
}

type (
	// EventNew announces a toplevel for the first time.
	EventNew struct {
		Info Info
	}
	// EventUpdate carries the latest state of an announced toplevel.
	EventUpdate struct {
		Info Info
	}
	// EventRemove reports that an announced toplevel was closed.
	EventRemove struct {
		ID uint32
	}
	// EventUnavailable reports that the backend cannot run. It is sent at
	// most once and is the last event of the backend.
	EventUnavailable struct {
		Reason string
	}
)

func (EventNew) isEvent()         {}
func (EventUpdate) isEvent()      {}
func (EventRemove) isEvent()      {}
func (EventUnavailable) isEvent() {}

// Request is sent from the consumer to a backend.
type Request interface {
	isRequest()
}

type (
	RequestActivate struct {
		ID uint32
	}
	RequestClose struct {
		ID uint32
	}
)

func (RequestActivate) isRequest() {}
func (RequestClose) isRequest()    {}
