package workspace

import (
	"cmp"
	"log/slog"
	"slices"
)

// Workspace state bits.
const (
	StateActive uint32 = 1 << iota
	StateUrgent
	StateHidden

	stateMask = StateActive | StateUrgent | StateHidden
)

// Workspace capability bits.
const (
	CapActivate uint32 = 1 << iota
	CapDeactivate
	CapRemove
	CapAssign
)

// Group capability bits.
const (
	GroupCapCreateWorkspace uint32 = 1 << iota
)

// Change is an attribute update for one workspace handle.
type Change interface {
	isChange()
}

type (
	WorkspaceID struct {
		ID string
	}
	Name struct {
		Name string
	}
	Coordinates struct {
		Coordinates []uint32
	}
	State struct {
		State uint32
	}
	Capabilities struct {
		Capabilities uint32
	}
	Removed struct{}
)

func (WorkspaceID) isChange()  {}
func (Name) isChange()         {}
func (Coordinates) isChange()  {}
func (State) isChange()        {}
func (Capabilities) isChange() {}
func (Removed) isChange()      {}

// GroupChange is an attribute update for one workspace group handle.
type GroupChange interface {
	isGroupChange()
}

type (
	GroupCapabilities struct {
		Capabilities uint32
	}
	OutputEnter struct {
		Output uint32
	}
	OutputLeave struct {
		Output uint32
	}
	WorkspaceEnter struct {
		Workspace uint32
	}
	WorkspaceLeave struct {
		Workspace uint32
	}
	GroupRemoved struct{}
)

func (GroupCapabilities) isGroupChange() {}
func (OutputEnter) isGroupChange()       {}
func (OutputLeave) isGroupChange()       {}
func (WorkspaceEnter) isGroupChange()    {}
func (WorkspaceLeave) isGroupChange()    {}
func (GroupRemoved) isGroupChange()      {}

// Unknown is an event the bindings do not decode.
type Unknown struct {
	Opcode uint32
}

func (Unknown) isChange()      {}
func (Unknown) isGroupChange() {}

type Entry struct {
	ID           uint64
	Handle       uint32
	WorkspaceID  string
	Name         string
	Coordinates  []uint32
	State        uint32
	Capabilities uint32
	// Group is 0 while the workspace is not in any group.
	Group   uint32
	Serial  uint64
	Removed bool
}

type Group struct {
	ID           uint32
	Handle       uint32
	Outputs      []uint32
	Capabilities uint32
	Removed      bool
}

// Registry holds every workspace and group of one connection. It is owned by
// a single goroutine.
type Registry struct {
	workspaces []*Entry
	groups     []*Group

	lastID      uint64
	lastGroupID uint32
	lastSerial  uint64

	log *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		log: slog.With("package", "workspace"),
	}
}

func (r *Registry) workspace(handle uint32) *Entry {
	for _, e := range r.workspaces {
		if e.Handle == handle {
			return e
		}
	}
	return nil
}

func (r *Registry) group(handle uint32) *Group {
	for _, g := range r.groups {
		if g.Handle == handle {
			return g
		}
	}
	return nil
}

// AddWorkspace registers a workspace announced by the manager.
func (r *Registry) AddWorkspace(handle uint32) *Entry {
	r.lastID++
	r.lastSerial++
	e := &Entry{
		ID:     r.lastID,
		Handle: handle,
		Serial: r.lastSerial,
	}
	r.workspaces = append(r.workspaces, e)
	return e
}

// AddGroup registers a workspace group announced by the manager.
func (r *Registry) AddGroup(handle uint32) *Group {
	r.lastGroupID++
	g := &Group{
		ID:     r.lastGroupID,
		Handle: handle,
	}
	r.groups = append(r.groups, g)
	return g
}

// Apply records c for the workspace handle, creating the entry if the handle
// was never announced.
func (r *Registry) Apply(handle uint32, c Change) {
	e := r.workspace(handle)
	if e == nil {
		e = r.AddWorkspace(handle)
	}

	switch c := c.(type) {
	case WorkspaceID:
		e.WorkspaceID = c.ID
	case Name:
		e.Name = c.Name
	case Coordinates:
		e.Coordinates = c.Coordinates
	case State:
		e.State = c.State & stateMask
	case Capabilities:
		e.Capabilities = c.Capabilities
	case Removed:
		e.Removed = true
	default:
		r.log.Debug("Ignoring workspace change", "handle", handle, "change", c)
	}
}

// ApplyGroup records c for the group handle, creating the group if the handle
// was never announced.
func (r *Registry) ApplyGroup(handle uint32, c GroupChange) {
	g := r.group(handle)
	if g == nil {
		g = r.AddGroup(handle)
	}

	switch c := c.(type) {
	case GroupCapabilities:
		g.Capabilities = c.Capabilities
	case OutputEnter:
		if !slices.Contains(g.Outputs, c.Output) {
			g.Outputs = append(g.Outputs, c.Output)
		}
	case OutputLeave:
		g.Outputs = slices.DeleteFunc(g.Outputs, func(o uint32) bool { return o == c.Output })
	case WorkspaceEnter:
		if e := r.workspace(c.Workspace); e != nil {
			e.Group = g.ID
		}
	case WorkspaceLeave:
		if e := r.workspace(c.Workspace); e != nil && e.Group == g.ID {
			e.Group = 0
		}
	case GroupRemoved:
		g.Removed = true
	default:
		r.log.Debug("Ignoring workspace group change", "handle", handle, "change", c)
	}
}

// Snapshot returns every live workspace ordered by group, then by
// coordinates, then by creation order. Indexes start at 1 in each group.
func (r *Registry) Snapshot() []Info {
	byGroup := make(map[uint32][]*Entry)
	for _, e := range r.workspaces {
		if e.Removed {
			continue
		}
		byGroup[e.Group] = append(byGroup[e.Group], e)
	}

	groups := make([]uint32, 0, len(byGroup))
	for id := range byGroup {
		groups = append(groups, id)
	}
	slices.Sort(groups)

	snapshot := make([]Info, 0, len(r.workspaces))
	for _, group := range groups {
		list := byGroup[group]
		slices.SortFunc(list, func(a, b *Entry) int {
			return cmp.Or(
				slices.Compare(a.Coordinates, b.Coordinates),
				cmp.Compare(a.Serial, b.Serial),
			)
		})

		for i, e := range list {
			snapshot = append(snapshot, Info{
				ID:     e.ID,
				Name:   e.Name,
				Index:  i + 1,
				Group:  group,
				Active: e.State&StateActive != 0,
				Urgent: e.State&StateUrgent != 0,
				Hidden: e.State&StateHidden != 0,
			})
		}
	}

	return snapshot
}

// Purge deletes removed workspaces and groups and returns their handles.
func (r *Registry) Purge() (workspaces []uint32, groups []uint32) {
	r.workspaces = slices.DeleteFunc(r.workspaces, func(e *Entry) bool {
		if e.Removed {
			workspaces = append(workspaces, e.Handle)
			return true
		}
		return false
	})

	r.groups = slices.DeleteFunc(r.groups, func(g *Group) bool {
		if !g.Removed {
			return false
		}
		groups = append(groups, g.Handle)
		for _, e := range r.workspaces {
			if e.Group == g.ID {
				e.Group = 0
			}
		}
		return true
	})

	return workspaces, groups
}

// Lookup returns the live workspace with the given id.
func (r *Registry) Lookup(id uint64) (*Entry, bool) {
	for _, e := range r.workspaces {
		if e.ID == id && !e.Removed {
			return e, true
		}
	}
	return nil, false
}

// Resolve maps a request to the workspace handle it targets. It fails when
// the id is unknown or the workspace lacks the needed capability.
func (r *Registry) Resolve(req Request) (uint32, bool) {
	var id uint64
	var capability uint32
	switch req := req.(type) {
	case RequestActivate:
		id, capability = req.ID, CapActivate
	case RequestDeactivate:
		id, capability = req.ID, CapDeactivate
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

// Groups returns the live groups in creation order.
func (r *Registry) Groups() []Group {
	var groups []Group
	for _, g := range r.groups {
		if !g.Removed {
			groups = append(groups, *g)
		}
	}
	return groups
}
