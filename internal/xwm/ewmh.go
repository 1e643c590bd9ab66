package xwm

import (
	"strings"

	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	atomNetClientList        = "_NET_CLIENT_LIST"
	atomNetActiveWindow      = "_NET_ACTIVE_WINDOW"
	atomNetCloseWindow       = "_NET_CLOSE_WINDOW"
	atomNetWMName            = "_NET_WM_NAME"
	atomNetWMState           = "_NET_WM_STATE"
	atomNetWMStateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	atomNetWMStateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	atomNetWMStateHidden     = "_NET_WM_STATE_HIDDEN"
	atomNetWMStateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	atomNetWMStateSkipTask   = "_NET_WM_STATE_SKIP_TASKBAR"
	atomWMName               = "WM_NAME"
	atomWMClass              = "WM_CLASS"
)

// Source indication for client messages: 2 means a pager or taskbar.
const sourcePager = 2

// propertyLength is the maximum property size read, in 32-bit units.
const propertyLength = 1 << 16

// atoms interns atom names on first use.
type atoms struct {
	conn  *xgb.Conn
	cache map[string]xproto.Atom
}

func newAtoms(conn *xgb.Conn) *atoms {
	return &atoms{
		conn:  conn,
		cache: make(map[string]xproto.Atom),
	}
}

func (a *atoms) get(name string) xproto.Atom {
	if atom, ok := a.cache[name]; ok {
		return atom
	}

	reply, err := xproto.InternAtom(a.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone
	}
	a.cache[name] = reply.Atom
	return reply.Atom
}

// is reports whether atom was interned as name.
func (a *atoms) is(atom xproto.Atom, names ...string) bool {
	for _, name := range names {
		if cached, ok := a.cache[name]; ok && cached == atom {
			return true
		}
	}
	return false
}

func getProperty(conn *xgb.Conn, win xproto.Window, property xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(conn, false, win, property, xproto.GetPropertyTypeAny, 0, propertyLength).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// ParseWindows decodes a list of 32-bit window ids.
func ParseWindows(b []byte) []xproto.Window {
	windows := make([]xproto.Window, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		windows = append(windows, xproto.Window(xgb.Get32(b[i:])))
	}
	return windows
}

// ParseAtoms decodes a list of 32-bit atoms.
func ParseAtoms(b []byte) []xproto.Atom {
	atoms := make([]xproto.Atom, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(b[i:])))
	}
	return atoms
}

// ParseWMClass returns the class part of WM_CLASS, which holds two
// NUL-terminated strings: instance then class. The instance is returned when
// the class is missing.
func ParseWMClass(b []byte) string {
	parts := strings.Split(strings.TrimRight(string(b), "\x00"), "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

// wmState converts _NET_WM_STATE atoms into toplevel state bits and reports
// whether the window asked to be left out of taskbars.
func (a *atoms) wmState(list []xproto.Atom) (state uint32, skip bool) {
	for _, atom := range list {
		switch {
		case a.is(atom, atomNetWMStateMaxVert, atomNetWMStateMaxHorz):
			state |= toplevel.StateMaximized
		case a.is(atom, atomNetWMStateHidden):
			state |= toplevel.StateMinimized
		case a.is(atom, atomNetWMStateFullscreen):
			state |= toplevel.StateFullscreen
		case a.is(atom, atomNetWMStateSkipTask):
			skip = true
		}
	}
	return state, skip
}

func sendClientMessage(conn *xgb.Conn, root, win xproto.Window, typ xproto.Atom, data ...uint32) error {
	var d [5]uint32
	copy(d[:], data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(d[:]),
	}

	return xproto.SendEventChecked(conn, false, root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes())).Check()
}
