package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/ItsNotGoodName/wlbar/internal/proto/extworkspace"
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
	"github.com/ItsNotGoodName/wlbar/internal/wayland/wltest"
	"github.com/ItsNotGoodName/wlbar/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, srv *wltest.Server) (<-chan workspace.Event, chan<- workspace.Request, <-chan error) {
	t.Helper()

	events, requests := workspace.NewChannels()
	w := workspace.NewWatcher(workspace.Options{Display: srv.Path}, events, requests)

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- w.Serve(ctx) }()
	t.Cleanup(cancel)

	return events, requests, errC
}

func next(t *testing.T, events <-chan workspace.Event) workspace.Event {
	t.Helper()

	select {
	case ev := <-events:
		return ev
	case <-time.After(wltest.Timeout):
		t.Fatal("no workspace event")
		return nil
	}
}

func snapshot(t *testing.T, events <-chan workspace.Event) []workspace.Info {
	t.Helper()

	ev := next(t, events)
	require.IsType(t, workspace.EventSnapshot{}, ev)
	return ev.(workspace.EventSnapshot).Workspaces
}

func wait(t *testing.T, errC <-chan error) error {
	t.Helper()

	select {
	case err := <-errC:
		return err
	case <-time.After(wltest.Timeout):
		t.Fatal("watcher did not stop")
		return nil
	}
}

type compositor struct {
	*wltest.Server
	manager uint32
}

func (c compositor) workspace(name string, coords ...uint32) uint32 {
	handle := c.NewID()
	c.Send(c.manager, extworkspace.ManagerWorkspaceEventOpcode, wltest.NewArgs().Uint(handle))
	c.Send(handle, extworkspace.HandleNameEventOpcode, wltest.NewArgs().String(name))
	if len(coords) > 0 {
		c.Send(handle, extworkspace.HandleCoordinatesEventOpcode, wltest.NewArgs().Uint32s(coords...))
	}
	return handle
}

func (c compositor) done() {
	c.Send(c.manager, extworkspace.ManagerDoneEventOpcode, nil)
}

func newCompositor(t *testing.T) (compositor, <-chan workspace.Event, chan<- workspace.Request, <-chan error) {
	srv := wltest.NewServer(t, wayland.Global{Interface: workspace.ManagerInterface, Version: 1})
	events, requests, errC := start(t, srv)
	manager := srv.WaitBind(workspace.ManagerInterface)
	return compositor{Server: srv, manager: manager.ID}, events, requests, errC
}

func TestWatcherSnapshotOrder(t *testing.T) {
	c, events, _, _ := newCompositor(t)

	c.workspace("right", 1, 0)
	c.workspace("left", 0, 0)
	c.done()

	infos := snapshot(t, events)
	require.Len(t, infos, 2)
	assert.Equal(t, "left", infos[0].Name)
	assert.Equal(t, 1, infos[0].Index)
	assert.Equal(t, "right", infos[1].Name)
	assert.Equal(t, 2, infos[1].Index)
}

func TestWatcherGroupsAndState(t *testing.T) {
	c, events, _, _ := newCompositor(t)

	group := c.NewID()
	c.Send(c.manager, extworkspace.ManagerWorkspaceGroupEventOpcode, wltest.NewArgs().Uint(group))
	one := c.workspace("1")
	c.workspace("scratch")
	c.Send(group, extworkspace.GroupWorkspaceEnterEventOpcode, wltest.NewArgs().Uint(one))
	c.Send(one, extworkspace.HandleStateEventOpcode, wltest.NewArgs().Uint(1|2))
	c.done()

	infos := snapshot(t, events)
	require.Len(t, infos, 2)
	assert.Equal(t, workspace.Info{ID: 2, Name: "scratch", Index: 1, Group: 0}, infos[0])
	assert.Equal(t, workspace.Info{ID: 1, Name: "1", Index: 1, Group: 1, Active: true, Urgent: true}, infos[1])
}

func TestWatcherRemoved(t *testing.T) {
	c, events, _, _ := newCompositor(t)

	a := c.workspace("a")
	c.workspace("b")
	c.done()
	require.Len(t, snapshot(t, events), 2)

	c.Send(a, extworkspace.HandleRemovedEventOpcode, nil)
	c.done()

	infos := snapshot(t, events)
	require.Len(t, infos, 1)
	assert.Equal(t, "b", infos[0].Name)
	c.WaitRequest(a, extworkspace.HandleDestroyOpcode)

	c.workspace("a")
	c.done()

	infos = snapshot(t, events)
	require.Len(t, infos, 2)
	assert.Equal(t, uint64(3), infos[1].ID, "ids are not reused")
}

func TestWatcherActivateCommits(t *testing.T) {
	c, events, requests, _ := newCompositor(t)

	a := c.workspace("a")
	c.workspace("b")
	c.Send(a, extworkspace.HandleCapabilitiesEventOpcode, wltest.NewArgs().Uint(workspace.CapActivate))
	c.done()
	require.Len(t, snapshot(t, events), 2)

	requests <- workspace.RequestActivate{ID: 2}
	c.NoRequest(c.manager, extworkspace.ManagerCommitOpcode, 100*time.Millisecond)

	requests <- workspace.RequestActivate{ID: 1}
	c.WaitRequest(a, extworkspace.HandleActivateOpcode)
	c.WaitRequest(c.manager, extworkspace.ManagerCommitOpcode)

	requests <- workspace.RequestDeactivate{ID: 1}
	c.NoRequest(a, extworkspace.HandleDeactivateOpcode, 100*time.Millisecond)
}

func TestWatcherUnavailable(t *testing.T) {
	srv := wltest.NewServer(t, wayland.Global{Interface: "wl_seat", Version: 7})
	events, _, errC := start(t, srv)

	assert.NoError(t, wait(t, errC))
	assert.Equal(t, workspace.EventUnavailable{Reason: "ext_workspace_v1 not supported by compositor"}, next(t, events))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event: %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherFinished(t *testing.T) {
	c, _, _, errC := newCompositor(t)

	c.Send(c.manager, extworkspace.ManagerFinishedEventOpcode, nil)
	assert.ErrorIs(t, wait(t, errC), wayland.ErrFinished)
}

func TestWatcherDropsSnapshotsWhenFull(t *testing.T) {
	c, events, _, _ := newCompositor(t)

	c.workspace("a")
	for range workspace.EventBuffer + 4 {
		c.done()
	}

	assert.Eventually(t, func() bool {
		return len(events) == workspace.EventBuffer
	}, wltest.Timeout, 10*time.Millisecond)

	for range workspace.EventBuffer {
		<-events
	}

	// Wait for the extra snapshots to be dropped before asking for another.
	time.Sleep(100 * time.Millisecond)
	for len(events) > 0 {
		<-events
	}

	c.workspace("b")
	c.done()
	assert.Len(t, snapshot(t, events), 2)
}

func TestWatcherHangup(t *testing.T) {
	srv := wltest.NewHangup(t)
	events, _, errC := start(t, srv)

	assert.Error(t, wait(t, errC))
	ev := next(t, events)
	require.IsType(t, workspace.EventUnavailable{}, ev)
	assert.NotEqual(t, workspace.UnavailableReason, ev.(workspace.EventUnavailable).Reason)
}

func TestWatcherStop(t *testing.T) {
	srv := wltest.NewServer(t, wayland.Global{Interface: workspace.ManagerInterface, Version: 1})

	events, requests := workspace.NewChannels()
	w := workspace.NewWatcher(workspace.Options{Display: srv.Path}, events, requests)

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- w.Serve(ctx) }()

	manager := srv.WaitBind(workspace.ManagerInterface)

	// A snapshot means the event loop is running.
	srv.Send(manager.ID, extworkspace.ManagerDoneEventOpcode, nil)
	snapshot(t, events)
	cancel()

	assert.ErrorIs(t, wait(t, errC), context.Canceled)
	srv.WaitRequest(manager.ID, extworkspace.ManagerStopOpcode)
}
