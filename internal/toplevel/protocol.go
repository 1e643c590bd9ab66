package toplevel

import (
	"github.com/ItsNotGoodName/wlbar/internal/proto/wlrtoplevel"
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
)

const (
	ManagerInterface = wlrtoplevel.ZwlrForeignToplevelManagerV1InterfaceName
	SeatInterface    = "wl_seat"

	ManagerMinVersion = 1
	ManagerMaxVersion = 3
	SeatVersion       = 1
)

var stateBits = map[uint32]uint32{
	uint32(wlrtoplevel.ZwlrForeignToplevelHandleV1StateMaximized):  StateMaximized,
	uint32(wlrtoplevel.ZwlrForeignToplevelHandleV1StateMinimized):  StateMinimized,
	uint32(wlrtoplevel.ZwlrForeignToplevelHandleV1StateActivated):  StateActivated,
	uint32(wlrtoplevel.ZwlrForeignToplevelHandleV1StateFullscreen): StateFullscreen,
}

// ParseState converts the state array into a bitmask. Malformed arrays yield
// zero.
func ParseState(b []byte) uint32 {
	return wayland.ArrayBitmask(b, stateBits)
}
