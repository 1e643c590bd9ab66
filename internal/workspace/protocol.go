package workspace

import (
	"github.com/ItsNotGoodName/wlbar/internal/proto/extworkspace"
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
)

const (
	ManagerInterface = extworkspace.ExtWorkspaceManagerV1InterfaceName
	ManagerVersion   = 1
)

// ParseCoordinates splits the coordinates array. A malformed length decodes
// as no coordinates.
func ParseCoordinates(b []byte) []uint32 {
	return wayland.Uint32s(b)
}
