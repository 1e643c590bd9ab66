package bar

import (
	"slices"

	"github.com/ItsNotGoodName/wlbar/internal/config"
	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/ItsNotGoodName/wlbar/internal/workspace"
)

const (
	TaskbarFallback    = "Taskbar"
	WorkspacesFallback = "WS"
)

type View struct {
	Taskbar    TaskbarView    `json:"taskbar"`
	Workspaces WorkspacesView `json:"workspaces"`
}

type TaskbarView struct {
	Buttons []TaskbarButton `json:"buttons"`
	// Fallback is set when the taskbar backend is unavailable.
	Fallback string `json:"fallback,omitempty"`
	Tooltip  string `json:"tooltip,omitempty"`
}

type TaskbarButton struct {
	ID       uint32 `json:"id"`
	Icon     string `json:"icon,omitempty"`
	IconSize int    `json:"icon_size,omitempty"`
	Label    string `json:"label,omitempty"`
	Tooltip  string `json:"tooltip"`
	Active   bool   `json:"active"`
}

type WorkspacesView struct {
	Buttons []WorkspaceButton `json:"buttons"`
	Visible bool              `json:"visible"`
	// Fallback is set when workspaces are unavailable.
	Fallback string `json:"fallback,omitempty"`
	Tooltip  string `json:"tooltip,omitempty"`
}

type WorkspaceButton struct {
	ID     uint64 `json:"id"`
	Label  string `json:"label"`
	Index  int    `json:"index"`
	Group  uint32 `json:"group"`
	Active bool   `json:"active"`
	Urgent bool   `json:"urgent"`
	Hidden bool   `json:"hidden"`
}

// Model is the consumer side of both watchers. It is owned by one goroutine.
type Model struct {
	cfg config.Config

	toplevels          []toplevel.Info
	taskbarUnavailable string

	workspaces           []workspace.Info
	workspaceUnavailable string
	active               *State[uint64]

	// Run starts a sync command. It must not block.
	Run func(command string)
}

func NewModel(cfg config.Config) *Model {
	m := &Model{
		cfg:    cfg,
		active: NewState[uint64](0),
		Run:    func(string) {},
	}
	m.active.AddEffect(m.sync)
	return m
}

func (m *Model) Config() config.Config {
	return m.cfg
}

func (m *Model) SetConfig(cfg config.Config) {
	m.cfg = cfg
}

// HandleToplevel applies a toplevel event.
func (m *Model) HandleToplevel(ev toplevel.Event) {
	switch ev := ev.(type) {
	case toplevel.EventNew:
		m.putToplevel(ev.Info)
	case toplevel.EventUpdate:
		// The matching EventNew may have been dropped on a full channel.
		m.putToplevel(ev.Info)
	case toplevel.EventRemove:
		if i := m.toplevelIndex(ev.ID); i >= 0 {
			m.toplevels = slices.Delete(m.toplevels, i, i+1)
		}
	case toplevel.EventUnavailable:
		m.toplevels = nil
		m.taskbarUnavailable = ev.Reason
	}
}

func (m *Model) putToplevel(info toplevel.Info) {
	if i := m.toplevelIndex(info.ID); i >= 0 {
		m.toplevels[i] = info
		return
	}
	m.toplevels = append(m.toplevels, info)
}

func (m *Model) toplevelIndex(id uint32) int {
	return slices.IndexFunc(m.toplevels, func(info toplevel.Info) bool { return info.ID == id })
}

// HandleWorkspace applies a workspace event.
func (m *Model) HandleWorkspace(ev workspace.Event) {
	switch ev := ev.(type) {
	case workspace.EventSnapshot:
		m.workspaces = ev.Workspaces
		if m.cfg.Workspaces.SyncOnlyActive {
			if i := slices.IndexFunc(m.workspaces, func(info workspace.Info) bool { return info.Active }); i >= 0 {
				m.active.Update(m.workspaces[i].ID)
			}
		}
	case workspace.EventUnavailable:
		m.workspaces = nil
		m.workspaceUnavailable = ev.Reason
	}
}

func (m *Model) sync() {
	if m.cfg.Workspaces.SyncCommand == "" {
		return
	}
	for _, info := range m.workspaces {
		if info.ID == m.active.V {
			m.Run(FormatCommand(m.cfg.Workspaces.SyncCommand, info))
			return
		}
	}
}

// visibleWorkspaces returns the workspaces shown as buttons.
func (m *Model) visibleWorkspaces() []workspace.Info {
	if m.cfg.Workspaces.ShowHidden {
		return m.workspaces
	}
	return slices.DeleteFunc(slices.Clone(m.workspaces), func(info workspace.Info) bool { return info.Hidden })
}

// Scroll returns the workspace after (direction > 0) or before the active
// one, wrapping around.
func (m *Model) Scroll(direction int) (uint64, bool) {
	if !m.cfg.Workspaces.Scroll {
		return 0, false
	}

	visible := m.visibleWorkspaces()
	if len(visible) == 0 {
		return 0, false
	}

	i := max(slices.IndexFunc(visible, func(info workspace.Info) bool { return info.Active }), 0)
	if direction > 0 {
		i = (i + 1) % len(visible)
	} else {
		i = (i + len(visible) - 1) % len(visible)
	}
	return visible[i].ID, true
}

// View renders the current state.
func (m *Model) View() View {
	return View{
		Taskbar:    m.taskbarView(),
		Workspaces: m.workspacesView(),
	}
}

func (m *Model) taskbarView() TaskbarView {
	if m.taskbarUnavailable != "" {
		return TaskbarView{
			Buttons:  []TaskbarButton{},
			Fallback: TaskbarFallback,
			Tooltip:  m.taskbarUnavailable,
		}
	}

	cfg := m.cfg.Taskbar
	buttons := make([]TaskbarButton, 0, len(m.toplevels))
	for _, info := range m.toplevels {
		button := TaskbarButton{
			ID:      info.ID,
			Tooltip: info.AppID + " - " + info.Title,
			Active:  info.Focused,
		}
		if cfg.Display == config.DisplayIcon || cfg.Display == config.DisplayBoth {
			button.Icon = info.AppID
			button.IconSize = cfg.IconSize
		}
		if cfg.Display == config.DisplayTitle || cfg.Display == config.DisplayBoth {
			button.Label = Truncate(info.Title, cfg.MaxTitleLength)
		}
		buttons = append(buttons, button)
	}

	return TaskbarView{Buttons: buttons}
}

func (m *Model) workspacesView() WorkspacesView {
	if m.workspaceUnavailable != "" {
		return WorkspacesView{
			Buttons:  []WorkspaceButton{},
			Visible:  true,
			Fallback: WorkspacesFallback,
			Tooltip:  m.workspaceUnavailable,
		}
	}

	visible := m.visibleWorkspaces()
	buttons := make([]WorkspaceButton, 0, len(visible))
	for _, info := range visible {
		buttons = append(buttons, WorkspaceButton{
			ID:     info.ID,
			Label:  FormatLabel(m.cfg.Workspaces.Format, info),
			Index:  info.Index,
			Group:  info.Group,
			Active: info.Active,
			Urgent: info.Urgent,
			Hidden: info.Hidden,
		})
	}

	return WorkspacesView{
		Buttons: buttons,
		Visible: len(buttons) > 1,
	}
}
