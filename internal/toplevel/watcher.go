package toplevel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/internal/proto/wlrtoplevel"
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
	"github.com/yaslama/go-wayland/wayland/client"
)

// UnavailableReason is reported when the compositor lacks the manager global.
const UnavailableReason = ManagerInterface + " not supported by compositor"

type Options struct {
	// Display is passed to wayland.Connect.
	Display string
}

// Watcher tracks toplevels over zwlr_foreign_toplevel_management_unstable_v1.
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
	return "toplevel.Watcher"
}

// Serve runs the watcher until ctx is done, the compositor finishes the
// manager, or the connection fails. It never restarts itself.
func (w *Watcher) Serve(ctx context.Context) error {
	log := slog.With("package", "toplevel")

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
			log.Info("Toplevel tracking unavailable", "reason", UnavailableReason)
			core.TrySend(w.events, Event(EventUnavailable{Reason: UnavailableReason}))
			return nil
		}
		log.Error("Failed to bind toplevel manager", "error", err)
		core.TrySend(w.events, Event(EventUnavailable{Reason: err.Error()}))
		return err
	}

	err = s.run(ctx, w.requests)
	switch {
	case errors.Is(err, wayland.ErrFinished):
		log.Warn("Compositor finished toplevel manager")
	case ctx.Err() != nil:
		log.Debug("Toplevel watcher stopped")
	default:
		log.Error("Toplevel watcher failed", "error", err)
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
		conn:    conn,
		events:  w.events,
		log:     log,
		handles: make(map[uint32]*wlrtoplevel.ZwlrForeignToplevelHandleV1),
		changes: make(chan change),
		quit:    make(chan struct{}),
	}

	capabilities := CapClose
	if _, err := globals.Find(SeatInterface); err == nil {
		seat := client.NewSeat(conn.Context())
		if _, err := globals.Bind(SeatInterface, SeatVersion, SeatVersion, seat); err != nil {
			log.Warn("Failed to bind seat, activation is disabled", "error", err)
		} else {
			s.seat = seat
			capabilities |= CapActivate
		}
	}
	s.registry = NewRegistry(capabilities)

	s.manager = wlrtoplevel.NewZwlrForeignToplevelManagerV1(conn.Context())
	s.manager.SetToplevelHandler(s.handleManagerToplevel)
	s.manager.SetFinishedHandler(func(wlrtoplevel.ZwlrForeignToplevelManagerV1FinishedEvent) {
		s.post(change{err: wayland.ErrFinished})
	})
	version, err := globals.Bind(ManagerInterface, ManagerMinVersion, ManagerMaxVersion, s.manager)
	if err != nil {
		return nil, err
	}
	log.Debug("Bound toplevel manager", "version", version, "seat", s.seat != nil)

	return s, nil
}

// change is a decoded event handed from the dispatch goroutine to the
// session goroutine. A non-nil err ends the session.
type change struct {
	handle *wlrtoplevel.ZwlrForeignToplevelHandleV1
	change Change
	err    error
}

type session struct {
	conn     *wayland.Conn
	events   chan<- Event
	log      *slog.Logger
	registry *Registry
	manager  *wlrtoplevel.ZwlrForeignToplevelManagerV1
	seat     *client.Seat
	handles  map[uint32]*wlrtoplevel.ZwlrForeignToplevelHandleV1
	changes  chan change
	quit     chan struct{}
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
			wayland.Release(s.log, "zwlr_foreign_toplevel_manager_v1.stop", s.manager.Stop)
			return ctx.Err()
		case req := <-requests:
			s.request(req)
		case c := <-s.changes:
			if c.err != nil {
				return c.err
			}
			s.apply(c.handle, c.change)
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

func (s *session) request(req Request) {
	handle, ok := s.registry.Resolve(req)
	if !ok {
		s.log.Debug("Dropping toplevel request", "request", req)
		return
	}
	h, ok := s.handles[handle]
	if !ok {
		return
	}

	var err error
	switch req.(type) {
	case RequestActivate:
		err = h.Activate(s.seat)
	case RequestClose:
		err = h.Close()
	}
	if err != nil {
		s.log.Error("Failed to send toplevel request", "request", req, "error", err)
	}
}

func (s *session) send(ev Event) {
	if !core.TrySend(s.events, ev) {
		s.log.Debug("Dropping toplevel event, channel is full", "event", ev)
	}
}

func (s *session) apply(h *wlrtoplevel.ZwlrForeignToplevelHandleV1, c Change) {
	handle := h.ID()
	s.handles[handle] = h

	if ev, ok := s.registry.Apply(handle, c); ok {
		s.send(ev)
	}

	if _, ok := c.(Closed); ok {
		s.registry.Purge()
		wayland.Release(s.log, "zwlr_foreign_toplevel_handle_v1.destroy", h.Destroy)
		delete(s.handles, handle)
	}
}

// handleManagerToplevel runs on the dispatch goroutine and forwards every
// event of the new handle.
func (s *session) handleManagerToplevel(e wlrtoplevel.ZwlrForeignToplevelManagerV1ToplevelEvent) {
	h := e.Toplevel
	forward := func(c Change) { s.post(change{handle: h, change: c}) }

	h.SetTitleHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1TitleEvent) {
		forward(Title{Title: e.Title})
	})
	h.SetAppIdHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1AppIdEvent) {
		forward(AppID{AppID: e.AppId})
	})
	h.SetOutputEnterHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1OutputEnterEvent) {
		forward(OutputEnter{Output: e.Output})
	})
	h.SetOutputLeaveHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1OutputLeaveEvent) {
		forward(OutputLeave{Output: e.Output})
	})
	h.SetStateHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1StateEvent) {
		forward(StateChange{State: ParseState(e.State)})
	})
	h.SetDoneHandler(func(wlrtoplevel.ZwlrForeignToplevelHandleV1DoneEvent) {
		forward(Done{})
	})
	h.SetParentHandler(func(e wlrtoplevel.ZwlrForeignToplevelHandleV1ParentEvent) {
		forward(Parent{Handle: e.Parent})
	})
	h.SetUnknownHandler(func(opcode uint32) {
		forward(Unknown{Opcode: opcode})
	})
	h.SetClosedHandler(func(wlrtoplevel.ZwlrForeignToplevelHandleV1ClosedEvent) {
		forward(Closed{})
		// No event follows closed.
		s.conn.Context().Unregister(h)
	})
}
