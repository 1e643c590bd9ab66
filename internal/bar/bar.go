// Package bar is the consumer of the toplevel and workspace watchers. A single
// goroutine owns the Model; everything else talks to it over channels.
package bar

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/ItsNotGoodName/wlbar/internal/bus"
	"github.com/ItsNotGoodName/wlbar/internal/config"
	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/ItsNotGoodName/wlbar/internal/workspace"
)

type ConfigProvider interface {
	GetConfig() (config.Config, error)
}

type Channels struct {
	Toplevels         <-chan toplevel.Event
	ToplevelRequests  chan<- toplevel.Request
	Workspaces        <-chan workspace.Event
	WorkspaceRequests chan<- workspace.Request
	// Reload is flagged when the config should be read again.
	Reload <-chan struct{}
}

type (
	commandView struct {
		replyC chan View
	}
	commandScroll struct {
		direction int
		replyC    chan bool
	}
)

type Bar struct {
	provider ConfigProvider
	c        Channels
	commandC chan any
	hub      *bus.Hub[View]
}

func New(provider ConfigProvider, c Channels) *Bar {
	return &Bar{
		provider: provider,
		c:        c,
		commandC: make(chan any),
		hub:      bus.NewHub[View](),
	}
}

func (*Bar) String() string {
	return "bar.Bar"
}

func (b *Bar) Serve(ctx context.Context) error {
	log := slog.With("package", "bar")

	cfg, err := b.provider.GetConfig()
	if err != nil {
		return err
	}

	model := NewModel(cfg)
	model.Run = func(command string) { runCommand(ctx, command) }

	for {
		changed := true

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-b.c.Toplevels:
			log.Debug("Toplevel event", "event", ev)
			model.HandleToplevel(ev)
		case ev := <-b.c.Workspaces:
			log.Debug("Workspace event", "event", ev)
			model.HandleWorkspace(ev)
		case <-b.c.Reload:
			cfg, err := b.provider.GetConfig()
			if err != nil {
				log.Error("Failed to reload config", "error", err)
				changed = false
				break
			}
			model.SetConfig(cfg)
		case cmd := <-b.commandC:
			changed = false
			switch cmd := cmd.(type) {
			case commandView:
				cmd.replyC <- model.View()
			case commandScroll:
				id, ok := model.Scroll(cmd.direction)
				if ok {
					ok = core.TrySend(b.c.WorkspaceRequests, workspace.Request(workspace.RequestActivate{ID: id}))
				}
				cmd.replyC <- ok
			default:
				log.Warn("Unknown command", "command", cmd)
			}
		}

		if changed {
			b.hub.Broadcast(model.View())
		}
	}
}

// View returns the current rendering of the bar.
func (b *Bar) View(ctx context.Context) (View, error) {
	replyC := make(chan View, 1)
	select {
	case <-ctx.Done():
		return View{}, ctx.Err()
	case b.commandC <- commandView{replyC: replyC}:
		return <-replyC, nil
	}
}

// Scroll activates the next (direction > 0) or previous workspace. It reports
// whether a request was queued.
func (b *Bar) Scroll(ctx context.Context, direction int) (bool, error) {
	replyC := make(chan bool, 1)
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case b.commandC <- commandScroll{direction: direction, replyC: replyC}:
		return <-replyC, nil
	}
}

// ActivateToplevel queues an activate request. It never blocks.
func (b *Bar) ActivateToplevel(id uint32) bool {
	return core.TrySend(b.c.ToplevelRequests, toplevel.Request(toplevel.RequestActivate{ID: id}))
}

// CloseToplevel queues a close request. It never blocks.
func (b *Bar) CloseToplevel(id uint32) bool {
	return core.TrySend(b.c.ToplevelRequests, toplevel.Request(toplevel.RequestClose{ID: id}))
}

// ActivateWorkspace queues an activate request. It never blocks.
func (b *Bar) ActivateWorkspace(id uint64) bool {
	return core.TrySend(b.c.WorkspaceRequests, workspace.Request(workspace.RequestActivate{ID: id}))
}

// Subscribe receives every rendering after a change.
func (b *Bar) Subscribe() (<-chan View, func()) {
	return b.hub.Subscribe()
}

func runCommand(ctx context.Context, command string) {
	log := slog.With("package", "bar", "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-lc", command)
	if err := cmd.Start(); err != nil {
		log.Error("Failed to start sync command", "error", err)
		return
	}
	log.Debug("Started sync command", "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warn("Sync command failed", "error", err)
		}
	}()
}
