// Package workspace tracks workspaces and workspace groups announced over
// ext_workspace_v1 and publishes ordered snapshots to a single consumer.
package workspace

import "fmt"

const (
	EventBuffer   = 8
	RequestBuffer = 8
)

// NewChannels returns the event and request channels shared by the watcher
// and its consumer.
func NewChannels() (chan Event, chan Request) {
	return make(chan Event, EventBuffer), make(chan Request, RequestBuffer)
}

// Info is one workspace in a snapshot.
type Info struct {
	ID     uint64
	Name   string
	Index  int
	Group  uint32
	Active bool
	Urgent bool
	Hidden bool
}

func (i Info) String() string {
	return fmt.Sprintf("workspace.Info(id=%d, name=%q, index=%d, group=%d, active=%t)", i.ID, i.Name, i.Index, i.Group, i.Active)
}

type Event interface {
	isEvent()
}

type (
	// EventSnapshot replaces every workspace the consumer knows about.
	EventSnapshot struct {
		Workspaces []Info
	}
	// EventUnavailable is sent at most once and ends the watcher.
	EventUnavailable struct {
		Reason string
	}
)

func (EventSnapshot) isEvent()    {}
func (EventUnavailable) isEvent() {}

type Request interface {
	isRequest()
}

type (
	RequestActivate struct {
		ID uint64
	}
	RequestDeactivate struct {
		ID uint64
	}
)

func (RequestActivate) isRequest()   {}
func (RequestDeactivate) isRequest() {}
