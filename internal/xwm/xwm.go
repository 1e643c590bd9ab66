// Package xwm is the X11 taskbar backend. It follows EWMH root and client
// properties and reports windows through the same toplevel events as the
// Wayland watcher.
package xwm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var ErrConnectionClosed = errors.New("x11 connection closed")

type Taskbar struct {
	display  string
	events   chan<- toplevel.Event
	requests <-chan toplevel.Request
}

// NewTaskbar connects to display on Serve; an empty display uses $DISPLAY.
func NewTaskbar(display string, events chan<- toplevel.Event, requests <-chan toplevel.Request) *Taskbar {
	return &Taskbar{
		display:  display,
		events:   events,
		requests: requests,
	}
}

func (*Taskbar) String() string {
	return "xwm.Taskbar"
}

func (t *Taskbar) Serve(ctx context.Context) error {
	log := slog.With("package", "xwm")

	conn, err := xgb.NewConnDisplay(t.display)
	if err != nil {
		log.Error("Failed to connect to X server", "error", err)
		core.TrySend(t.events, toplevel.Event(toplevel.EventUnavailable{Reason: err.Error()}))
		return err
	}
	defer conn.Close()

	tr := newTracker(conn, t.events, log)
	if err := tr.init(); err != nil {
		log.Error("Failed to watch root window", "error", err)
		core.TrySend(t.events, toplevel.Event(toplevel.EventUnavailable{Reason: err.Error()}))
		return err
	}

	eventC := make(chan xgb.Event)
	go ReceiveEvents(ctx, conn, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-t.requests:
			tr.request(req)
		case ev, ok := <-eventC:
			if !ok {
				log.Error("X11 connection closed")
				return ErrConnectionClosed
			}
			tr.handle(ev)
		}
	}
}

// ReceiveEvents forwards X events until the connection closes. X protocol
// errors are logged and skipped.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- xgb.Event) {
	defer close(eventC)
	log := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			log.Debug("exit: no event or error")
			return
		}

		if err != nil {
			log.Debug("X error", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}

// tracker mirrors _NET_CLIENT_LIST into a toplevel.Registry.
type tracker struct {
	conn     *xgb.Conn
	root     xproto.Window
	atoms    *atoms
	registry *toplevel.Registry
	events   chan<- toplevel.Event
	log      *slog.Logger

	// windows holds every watched client. Skip-taskbar clients are watched
	// but not shown.
	windows map[xproto.Window]bool
	active  xproto.Window
}

func newTracker(conn *xgb.Conn, events chan<- toplevel.Event, log *slog.Logger) *tracker {
	return &tracker{
		conn:     conn,
		root:     xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:    newAtoms(conn),
		registry: toplevel.NewRegistry(toplevel.CapActivate | toplevel.CapClose),
		events:   events,
		log:      log,
		windows:  make(map[xproto.Window]bool),
	}
}

func (t *tracker) init() error {
	for _, name := range []string{
		atomNetClientList, atomNetActiveWindow, atomNetCloseWindow,
		atomNetWMName, atomNetWMState,
		atomNetWMStateMaxVert, atomNetWMStateMaxHorz, atomNetWMStateHidden,
		atomNetWMStateFullscreen, atomNetWMStateSkipTask,
		atomWMName, atomWMClass,
	} {
		if t.atoms.get(name) == xproto.AtomNone {
			return errors.New("failed to intern " + name)
		}
	}

	if err := xproto.ChangeWindowAttributesChecked(t.conn, t.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return err
	}

	t.active = t.activeWindow()
	t.syncClients()
	return nil
}

func (t *tracker) handle(ev xgb.Event) {
	switch ev := ev.(type) {
	case xproto.PropertyNotifyEvent:
		if ev.Window == t.root {
			switch {
			case t.atoms.is(ev.Atom, atomNetClientList):
				t.syncClients()
			case t.atoms.is(ev.Atom, atomNetActiveWindow):
				t.setActive(t.activeWindow())
			}
			return
		}

		shown, ok := t.windows[ev.Window]
		if !ok {
			return
		}
		switch {
		case t.atoms.is(ev.Atom, atomNetWMState):
			t.reconcile(ev.Window)
		case shown && t.atoms.is(ev.Atom, atomNetWMName, atomWMName, atomWMClass):
			t.refresh(ev.Window)
		}
	case xproto.DestroyNotifyEvent:
		t.untrack(ev.Window)
	default:
		t.log.Debug("Ignoring X event", "event", ev)
	}
}

func (t *tracker) request(req toplevel.Request) {
	handle, ok := t.registry.Resolve(req)
	if !ok {
		t.log.Debug("Dropping toplevel request", "request", req)
		return
	}
	win := xproto.Window(handle)

	var err error
	switch req.(type) {
	case toplevel.RequestActivate:
		err = sendClientMessage(t.conn, t.root, win, t.atoms.get(atomNetActiveWindow), sourcePager, xproto.TimeCurrentTime)
	case toplevel.RequestClose:
		err = sendClientMessage(t.conn, t.root, win, t.atoms.get(atomNetCloseWindow), xproto.TimeCurrentTime, sourcePager)
	}
	if err != nil {
		t.log.Error("Failed to send client message", "window", win, "error", err)
	}
}

func (t *tracker) send(ev toplevel.Event) {
	if !core.TrySend(t.events, ev) {
		t.log.Debug("Dropping toplevel event, channel is full", "event", ev)
	}
}

func (t *tracker) apply(win xproto.Window, changes ...toplevel.Change) {
	for _, c := range changes {
		if ev, ok := t.registry.Apply(uint32(win), c); ok {
			t.send(ev)
		}
	}
}

func (t *tracker) activeWindow() xproto.Window {
	b, err := getProperty(t.conn, t.root, t.atoms.get(atomNetActiveWindow))
	if err != nil {
		return xproto.WindowNone
	}
	if windows := ParseWindows(b); len(windows) > 0 {
		return windows[0]
	}
	return xproto.WindowNone
}

func (t *tracker) setActive(win xproto.Window) {
	if win == t.active {
		return
	}
	previous := t.active
	t.active = win

	for _, w := range []xproto.Window{previous, win} {
		if t.windows[w] {
			t.refresh(w)
		}
	}
}

func (t *tracker) syncClients() {
	b, err := getProperty(t.conn, t.root, t.atoms.get(atomNetClientList))
	if err != nil {
		t.log.Error("Failed to read client list", "error", err)
		return
	}

	seen := make(map[xproto.Window]struct{})
	for _, win := range ParseWindows(b) {
		seen[win] = struct{}{}
		if _, ok := t.windows[win]; !ok {
			t.track(win)
		}
	}

	for win := range t.windows {
		if _, ok := seen[win]; !ok {
			t.untrack(win)
		}
	}
}

func (t *tracker) track(win xproto.Window) {
	if err := xproto.ChangeWindowAttributesChecked(t.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}).Check(); err != nil {
		t.log.Debug("Failed to watch window", "window", win, "error", err)
		return
	}

	t.windows[win] = false
	t.reconcile(win)
}

func (t *tracker) untrack(win xproto.Window) {
	shown, ok := t.windows[win]
	if !ok {
		return
	}
	delete(t.windows, win)

	if shown {
		t.hide(win)
	}
}

func (t *tracker) hide(win xproto.Window) {
	t.apply(win, toplevel.Closed{})
	t.registry.Purge()
}

// reconcile rereads _NET_WM_STATE of a watched window and shows or hides it.
func (t *tracker) reconcile(win xproto.Window) {
	_, skip := t.state(win)
	switch nextVisibility(t.windows[win], skip) {
	case visibilityShow:
		t.windows[win] = true
		t.refresh(win)
	case visibilityHide:
		t.windows[win] = false
		t.hide(win)
	case visibilityRefresh:
		t.refresh(win)
	}
}

type visibility int

const (
	visibilityNone visibility = iota
	visibilityShow
	visibilityHide
	visibilityRefresh
)

// nextVisibility decides what a _NET_WM_STATE change means for a window that
// is currently shown or not.
func nextVisibility(shown, skip bool) visibility {
	switch {
	case shown && skip:
		return visibilityHide
	case shown:
		return visibilityRefresh
	case !skip:
		return visibilityShow
	default:
		return visibilityNone
	}
}

func (t *tracker) state(win xproto.Window) (uint32, bool) {
	b, err := getProperty(t.conn, win, t.atoms.get(atomNetWMState))
	if err != nil {
		return 0, false
	}
	return t.atoms.wmState(ParseAtoms(b))
}

func (t *tracker) title(win xproto.Window) string {
	for _, name := range []string{atomNetWMName, atomWMName} {
		b, err := getProperty(t.conn, win, t.atoms.get(name))
		if err == nil && len(b) > 0 {
			return string(b)
		}
	}
	return ""
}

func (t *tracker) class(win xproto.Window) string {
	b, err := getProperty(t.conn, win, t.atoms.get(atomWMClass))
	if err != nil {
		return ""
	}
	return ParseWMClass(b)
}

// refresh rereads every property of win and completes the batch.
func (t *tracker) refresh(win xproto.Window) {
	state, _ := t.state(win)
	if win == t.active {
		state |= toplevel.StateActivated
	}

	t.apply(win,
		toplevel.Title{Title: t.title(win)},
		toplevel.AppID{AppID: t.class(win)},
		toplevel.StateChange{State: state},
		toplevel.Done{},
	)
}
