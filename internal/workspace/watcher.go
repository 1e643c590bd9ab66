package workspace

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/internal/proto/extworkspace"
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
)

const UnavailableReason = "ext_workspace_v1 not supported by compositor"

type Options struct {
	Display string
}

// Watcher tracks workspaces over ext_workspace_v1.
type Watcher struct {
	opts     Options
	events   chan<- Event
	requests <-chan Request
}

func NewWatcher(opts Options, events chan<- Event, requests <-chan Request) *Watcher {
	return &Watcher{
		opts:     opts,
		events:   events,
		requests: requests,
	}
}

func (*Watcher) String() string {
	return "workspace.Watcher"
}

// Serve runs the watcher until ctx is done, the compositor finishes the
// manager, or the connection fails.
func (w *Watcher) Serve(ctx context.Context) error {
	log := slog.With("package", "workspace")

	conn, err := wayland.Connect(w.opts.Display)
	if err != nil {
		log.Error("Failed to connect to compositor", "error", err)
		core.TrySend(w.events, Event(EventUnavailable{Reason: err.Error()}))
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	s, err := w.bind(conn, log)
	if !stop() {
		return ctx.Err()
	}
	if err != nil {
		if errors.Is(err, wayland.ErrGlobalNotFound) {
			log.Info("Workspaces unavailable", "reason", UnavailableReason)
			core.TrySend(w.events, Event(EventUnavailable{Reason: UnavailableReason}))
			return nil
		}
		log.Error("Failed to bind workspace manager", "error", err)
		core.TrySend(w.events, Event(EventUnavailable{Reason: err.Error()}))
		return err
	}

	err = s.run(ctx, w.requests)
	switch {
	case errors.Is(err, wayland.ErrFinished):
		log.Warn("Compositor finished workspace manager")
	case ctx.Err() != nil:
		log.Debug("Workspace watcher stopped")
	default:
		log.Error("Workspace watcher failed", "error", err)
	}
	return err
}

func (w *Watcher) bind(conn *wayland.Conn, log *slog.Logger) (*session, error) {
	globals, err := conn.Globals(wayland.DefaultRoundtripTimeout)
	if err != nil {
		return nil, err
	}

	if _, err := globals.Find(ManagerInterface); err != nil {
		return nil, err
	}

	s := &session{
		conn:       conn,
		events:     w.events,
		log:        log,
		registry:   NewRegistry(),
		workspaces: make(map[uint32]*extworkspace.ExtWorkspaceHandleV1),
		groups:     make(map[uint32]*extworkspace.ExtWorkspaceGroupHandleV1),
		changes:    make(chan change),
		quit:       make(chan struct{}),
	}

	s.manager = extworkspace.NewExtWorkspaceManagerV1(conn.Context())
	s.manager.SetWorkspaceGroupHandler(s.handleManagerGroup)
	s.manager.SetWorkspaceHandler(s.handleManagerWorkspace)
	s.manager.SetDoneHandler(func(extworkspace.ExtWorkspaceManagerV1DoneEvent) {
		s.post(change{done: true})
	})
	s.manager.SetFinishedHandler(func(extworkspace.ExtWorkspaceManagerV1FinishedEvent) {
		s.post(change{err: wayland.ErrFinished})
	})
	if _, err := globals.Bind(ManagerInterface, ManagerVersion, ManagerVersion, s.manager); err != nil {
		return nil, err
	}

	return s, nil
}

// change is a decoded event handed from the dispatch goroutine to the
// session goroutine: a workspace event, a group event, done or a fatal error.
type change struct {
	workspace   *extworkspace.ExtWorkspaceHandleV1
	change      Change
	group       *extworkspace.ExtWorkspaceGroupHandleV1
	groupChange GroupChange
	done        bool
	err         error
}

type session struct {
	conn       *wayland.Conn
	events     chan<- Event
	log        *slog.Logger
	registry   *Registry
	manager    *extworkspace.ExtWorkspaceManagerV1
	workspaces map[uint32]*extworkspace.ExtWorkspaceHandleV1
	groups     map[uint32]*extworkspace.ExtWorkspaceGroupHandleV1
	changes    chan change
	quit       chan struct{}
}

func (s *session) run(ctx context.Context, requests <-chan Request) error {
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		s.post(change{err: s.conn.Run()})
	}()
	defer func() {
		close(s.quit)
		s.conn.Close()
		<-dispatched
	}()

	for {
		select {
		case <-ctx.Done():
			wayland.Release(s.log, "ext_workspace_manager_v1.stop", s.manager.Stop)
			return ctx.Err()
		case req := <-requests:
			needsCommit := s.request(req)
			if s.drain(requests) {
				needsCommit = true
			}
			if needsCommit {
				if err := s.manager.Commit(); err != nil {
					return err
				}
			}
		case c := <-s.changes:
			if err := s.apply(c); err != nil {
				return err
			}
		}
	}
}

// post runs on the dispatch goroutine.
func (s *session) post(c change) {
	select {
	case s.changes <- c:
	case <-s.quit:
	}
}

func (s *session) apply(c change) error {
	switch {
	case c.err != nil:
		return c.err
	case c.done:
		s.done()
	case c.workspace != nil:
		handle := c.workspace.ID()
		if _, ok := s.workspaces[handle]; !ok {
			s.workspaces[handle] = c.workspace
			s.registry.AddWorkspace(handle)
		}
		if c.change != nil {
			s.registry.Apply(handle, c.change)
		}
	case c.group != nil:
		handle := c.group.ID()
		if _, ok := s.groups[handle]; !ok {
			s.groups[handle] = c.group
			s.registry.AddGroup(handle)
		}
		if c.groupChange != nil {
			s.registry.ApplyGroup(handle, c.groupChange)
		}
	}
	return nil
}

// drain applies every queued request and reports whether a commit is needed.
func (s *session) drain(requests <-chan Request) bool {
	needsCommit := false
	for {
		select {
		case req := <-requests:
			if s.request(req) {
				needsCommit = true
			}
		default:
			return needsCommit
		}
	}
}

func (s *session) request(req Request) bool {
	handle, ok := s.registry.Resolve(req)
	if !ok {
		s.log.Debug("Dropping workspace request", "request", req)
		return false
	}
	h, ok := s.workspaces[handle]
	if !ok {
		return false
	}

	var err error
	switch req.(type) {
	case RequestActivate:
		err = h.Activate()
	case RequestDeactivate:
		err = h.Deactivate()
	default:
		return false
	}
	if err != nil {
		s.log.Error("Failed to send workspace request", "request", req, "error", err)
		return false
	}
	return true
}

func (s *session) done() {
	ev := EventSnapshot{Workspaces: s.registry.Snapshot()}
	if !core.TrySend(s.events, Event(ev)) {
		s.log.Debug("Dropping workspace snapshot, channel is full", "workspaces", len(ev.Workspaces))
	}

	workspaces, groups := s.registry.Purge()
	for _, handle := range workspaces {
		if h, ok := s.workspaces[handle]; ok {
			wayland.Release(s.log, "ext_workspace_handle_v1.destroy", h.Destroy)
			delete(s.workspaces, handle)
		}
	}
	for _, handle := range groups {
		if g, ok := s.groups[handle]; ok {
			wayland.Release(s.log, "ext_workspace_group_handle_v1.destroy", g.Destroy)
			delete(s.groups, handle)
		}
	}
}

// handleManagerWorkspace runs on the dispatch goroutine and forwards every
// event of the new workspace.
func (s *session) handleManagerWorkspace(e extworkspace.ExtWorkspaceManagerV1WorkspaceEvent) {
	h := e.Workspace
	forward := func(c Change) { s.post(change{workspace: h, change: c}) }
	forward(nil)

	h.SetIdHandler(func(e extworkspace.ExtWorkspaceHandleV1IdEvent) {
		forward(WorkspaceID{ID: e.Id})
	})
	h.SetNameHandler(func(e extworkspace.ExtWorkspaceHandleV1NameEvent) {
		forward(Name{Name: e.Name})
	})
	h.SetCoordinatesHandler(func(e extworkspace.ExtWorkspaceHandleV1CoordinatesEvent) {
		forward(Coordinates{Coordinates: ParseCoordinates(e.Coordinates)})
	})
	h.SetStateHandler(func(e extworkspace.ExtWorkspaceHandleV1StateEvent) {
		forward(State{State: e.State})
	})
	h.SetCapabilitiesHandler(func(e extworkspace.ExtWorkspaceHandleV1CapabilitiesEvent) {
		forward(Capabilities{Capabilities: e.Capabilities})
	})
	h.SetUnknownHandler(func(opcode uint32) {
		forward(Unknown{Opcode: opcode})
	})
	h.SetRemovedHandler(func(extworkspace.ExtWorkspaceHandleV1RemovedEvent) {
		forward(Removed{})
		// No event follows removed.
		s.conn.Context().Unregister(h)
	})
}

// handleManagerGroup runs on the dispatch goroutine and forwards every event
// of the new group.
func (s *session) handleManagerGroup(e extworkspace.ExtWorkspaceManagerV1WorkspaceGroupEvent) {
	g := e.WorkspaceGroup
	forward := func(c GroupChange) { s.post(change{group: g, groupChange: c}) }
	forward(nil)

	g.SetCapabilitiesHandler(func(e extworkspace.ExtWorkspaceGroupHandleV1CapabilitiesEvent) {
		forward(GroupCapabilities{Capabilities: e.Capabilities})
	})
	g.SetOutputEnterHandler(func(e extworkspace.ExtWorkspaceGroupHandleV1OutputEnterEvent) {
		forward(OutputEnter{Output: e.Output})
	})
	g.SetOutputLeaveHandler(func(e extworkspace.ExtWorkspaceGroupHandleV1OutputLeaveEvent) {
		forward(OutputLeave{Output: e.Output})
	})
	g.SetWorkspaceEnterHandler(func(e extworkspace.ExtWorkspaceGroupHandleV1WorkspaceEnterEvent) {
		forward(WorkspaceEnter{Workspace: e.Workspace})
	})
	g.SetWorkspaceLeaveHandler(func(e extworkspace.ExtWorkspaceGroupHandleV1WorkspaceLeaveEvent) {
		forward(WorkspaceLeave{Workspace: e.Workspace})
	})
	g.SetUnknownHandler(func(opcode uint32) {
		forward(Unknown{Opcode: opcode})
	})
	g.SetRemovedHandler(func(extworkspace.ExtWorkspaceGroupHandleV1RemovedEvent) {
		forward(GroupRemoved{})
		s.conn.Context().Unregister(g)
	})
}
