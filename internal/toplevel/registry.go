package toplevel

import (
	"log/slog"
	"slices"
)

// State bits of a toplevel.
const (
	StateMaximized uint32 = 1 << iota
	StateMinimized
	StateActivated
	StateFullscreen
)

// Capability bits of a toplevel.
const (
	CapActivate uint32 = 1 << iota
	CapClose
)

// Change is a single attribute update for one handle.
type Change interface {
	isChange()
}

type (
	Title struct {
		Title string
	}
	AppID struct {
		AppID string
	}
	// StateChange replaces the whole state bitmask.
	StateChange struct {
		State uint32
	}
	OutputEnter struct {
		Output uint32
	}
	OutputLeave struct {
		Output uint32
	}
	Parent struct {
		Handle uint32
	}
	Done   struct{}
	Closed struct{}
	// Unknown is an event the bindings do not decode.
	Unknown struct {
		Opcode uint32
	}
)

func (Title) isChange()       {}
func (AppID) isChange()       {}
func (StateChange) isChange() {}
func (OutputEnter) isChange() {}
func (OutputLeave) isChange() {}
func (Parent) isChange()      {}
func (Done) isChange()        {}
func (Closed) isChange()      {}
func (Unknown) isChange()     {}

// Entry is the registry's record of one toplevel.
type Entry struct {
	ID           uint32
	Handle       uint32
	Title        string
	AppID        string
	State        uint32
	Capabilities uint32
	Outputs      []uint32
	Parent       uint32
	InitialDone  bool
	Removed      bool
}

// Info returns the externally visible copy of the entry.
func (e *Entry) Info() Info {
	return Info{
		ID:         e.ID,
		AppID:      e.AppID,
		Title:      e.Title,
		Focused:    e.State&StateActivated != 0,
		Maximized:  e.State&StateMaximized != 0,
		Minimized:  e.State&StateMinimized != 0,
		Fullscreen: e.State&StateFullscreen != 0,
	}
}

// Registry accumulates attribute changes per handle and turns done markers
// into events. It is owned by a single goroutine.
type Registry struct {
	// Capabilities is given to every entry created from now on.
	Capabilities uint32

	entries []*Entry
	lastID  uint32
	log     *slog.Logger
}

func NewRegistry(capabilities uint32) *Registry {
	return &Registry{
		Capabilities: capabilities,
		log:          slog.With("package", "toplevel"),
	}
}

func (r *Registry) find(handle uint32) *Entry {
	for _, e := range r.entries {
		if e.Handle == handle && !e.Removed {
			return e
		}
	}
	return nil
}

func (r *Registry) ensure(handle uint32) *Entry {
	if e := r.find(handle); e != nil {
		return e
	}

	r.lastID++
	e := &Entry{
		ID:           r.lastID,
		Handle:       handle,
		Capabilities: r.Capabilities,
	}
	r.entries = append(r.entries, e)
	return e
}

// Apply records c for handle. It returns an event when c completes a batch
// that should be reported.
func (r *Registry) Apply(handle uint32, c Change) (Event, bool) {
	switch c := c.(type) {
	case Title:
		r.ensure(handle).Title = c.Title
	case AppID:
		r.ensure(handle).AppID = c.AppID
	case StateChange:
		r.ensure(handle).State = c.State
	case OutputEnter:
		e := r.ensure(handle)
		if !slices.Contains(e.Outputs, c.Output) {
			e.Outputs = append(e.Outputs, c.Output)
		}
	case OutputLeave:
		e := r.ensure(handle)
		e.Outputs = slices.DeleteFunc(e.Outputs, func(o uint32) bool { return o == c.Output })
	case Parent:
		r.ensure(handle).Parent = c.Handle
	case Done:
		return r.done(handle)
	case Closed:
		return r.closed(handle)
	default:
		r.log.Debug("Ignoring toplevel change", "handle", handle, "change", c)
	}

	return nil, false
}

func (r *Registry) done(handle uint32) (Event, bool) {
	e := r.find(handle)
	if e == nil {
		return nil, false
	}

	if e.InitialDone {
		return EventUpdate{Info: e.Info()}, true
	}

	// Surfaces without an app id are auxiliary windows, e.g. XWayland dialogs.
	if e.AppID == "" {
		return nil, false
	}

	e.InitialDone = true
	return EventNew{Info: e.Info()}, true
}

func (r *Registry) closed(handle uint32) (Event, bool) {
	e := r.find(handle)
	if e == nil {
		return nil, false
	}

	e.Removed = true
	if !e.InitialDone {
		return nil, false
	}
	return EventRemove{ID: e.ID}, true
}

// Purge deletes removed entries and returns their handles.
func (r *Registry) Purge() []uint32 {
	var handles []uint32
	r.entries = slices.DeleteFunc(r.entries, func(e *Entry) bool {
		if e.Removed {
			handles = append(handles, e.Handle)
			return true
		}
		return false
	})
	return handles
}

// Lookup returns the live entry with the given id.
func (r *Registry) Lookup(id uint32) (*Entry, bool) {
	for _, e := range r.entries {
		if e.ID == id && !e.Removed {
			return e, true
		}
	}
	return nil, false
}

// Resolve maps a request to the handle it targets. It fails when the id is
// unknown or the entry lacks the capability the request needs.
func (r *Registry) Resolve(req Request) (uint32, bool) {
	var id, capability uint32
	switch req := req.(type) {
	case RequestActivate:
		id, capability = req.ID, CapActivate
	case RequestClose:
		id, capability = req.ID, CapClose
	default:
		r.log.Debug("Ignoring unknown request", "request", req)
		return 0, false
	}

	e, ok := r.Lookup(id)
	if !ok || e.Capabilities&capability == 0 {
		return 0, false
	}
	return e.Handle, true
}

// Infos returns every announced toplevel in creation order.
func (r *Registry) Infos() []Info {
	var infos []Info
	for _, e := range r.entries {
		if e.InitialDone && !e.Removed {
			infos = append(infos, e.Info())
		}
	}
	return infos
}

// Len returns the number of entries, including removed ones not yet purged.
func (r *Registry) Len() int {
	return len(r.entries)
}
