package main

import (
	"errors"
	"os"

	"github.com/ItsNotGoodName/wlbar/internal/config"
	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/ItsNotGoodName/wlbar/internal/workspace"
	"github.com/ItsNotGoodName/wlbar/internal/xwm"
	"github.com/ItsNotGoodName/wlbar/pkg/sutureext"
)

// X11UnavailableReason is shown in place of workspaces under X11.
const X11UnavailableReason = "workspaces are not supported on X11"

var ErrNoDisplay = errors.New("no display: set WAYLAND_DISPLAY or DISPLAY")

type channels struct {
	toplevels         chan toplevel.Event
	toplevelRequests  chan toplevel.Request
	workspaces        chan workspace.Event
	workspaceRequests chan workspace.Request
}

func newChannels() channels {
	var c channels
	c.toplevels, c.toplevelRequests = toplevel.NewChannels()
	c.workspaces, c.workspaceRequests = workspace.NewChannels()
	return c
}

// newBackends returns the producers for the configured backend.
func newBackends(cfg config.Config, display string, c channels) ([]sutureext.Service, error) {
	switch config.ResolveBackend(cfg.Backend, os.Getenv) {
	case config.BackendWayland:
		return []sutureext.Service{
			toplevel.NewWatcher(toplevel.Options{Display: display}, c.toplevels, c.toplevelRequests),
			workspace.NewWatcher(workspace.Options{Display: display}, c.workspaces, c.workspaceRequests),
		}, nil
	case config.BackendX11:
		core.TrySend(c.workspaces, workspace.Event(workspace.EventUnavailable{Reason: X11UnavailableReason}))
		return []sutureext.Service{
			xwm.NewTaskbar(display, c.toplevels, c.toplevelRequests),
		}, nil
	default:
		return nil, ErrNoDisplay
	}
}
