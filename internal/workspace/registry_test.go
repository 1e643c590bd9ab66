package workspace

import (
	"testing"

	"github.com/ItsNotGoodName/wlbar/internal/wayland/wltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(infos []Info) []string {
	var out []string
	for _, i := range infos {
		out = append(out, i.Name)
	}
	return out
}

func TestSnapshotOrdersByCoordinates(t *testing.T) {
	r := NewRegistry()
	r.AddWorkspace(10)
	r.AddWorkspace(11)
	r.Apply(10, Name{Name: "second"})
	r.Apply(10, Coordinates{Coordinates: []uint32{0, 1}})
	r.Apply(11, Name{Name: "first"})
	r.Apply(11, Coordinates{Coordinates: []uint32{0, 0}})

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, []string{"first", "second"}, names(snapshot))
	assert.Equal(t, 1, snapshot[0].Index)
	assert.Equal(t, 2, snapshot[1].Index)
}

func TestSnapshotOrdersBySerialWithoutCoordinates(t *testing.T) {
	r := NewRegistry()
	for i, name := range []string{"c", "a", "b"} {
		handle := uint32(100 + i)
		r.AddWorkspace(handle)
		r.Apply(handle, Name{Name: name})
	}

	assert.Equal(t, []string{"c", "a", "b"}, names(r.Snapshot()))
}

func TestSnapshotEqualCoordinatesFallBackToSerial(t *testing.T) {
	r := NewRegistry()
	r.AddWorkspace(1)
	r.AddWorkspace(2)
	r.AddWorkspace(3)
	r.Apply(1, Name{Name: "one"})
	r.Apply(2, Name{Name: "two"})
	r.Apply(3, Name{Name: "three"})
	r.Apply(2, Coordinates{Coordinates: []uint32{1}})
	r.Apply(3, Coordinates{Coordinates: []uint32{1}})

	assert.Equal(t, []string{"one", "two", "three"}, names(r.Snapshot()))
}

func TestSnapshotGroups(t *testing.T) {
	r := NewRegistry()
	r.AddGroup(50)
	r.AddGroup(51)
	for i, name := range []string{"a1", "b1", "loose", "a2"} {
		handle := uint32(i + 1)
		r.AddWorkspace(handle)
		r.Apply(handle, Name{Name: name})
	}
	r.ApplyGroup(51, WorkspaceEnter{Workspace: 2})
	r.ApplyGroup(50, WorkspaceEnter{Workspace: 1})
	r.ApplyGroup(50, WorkspaceEnter{Workspace: 4})

	snapshot := r.Snapshot()
	assert.Equal(t, []string{"loose", "a1", "a2", "b1"}, names(snapshot))
	assert.Equal(t, []uint32{0, 1, 1, 2}, []uint32{snapshot[0].Group, snapshot[1].Group, snapshot[2].Group, snapshot[3].Group})
	assert.Equal(t, []int{1, 1, 2, 1}, []int{snapshot[0].Index, snapshot[1].Index, snapshot[2].Index, snapshot[3].Index})

	r.ApplyGroup(50, WorkspaceLeave{Workspace: 4})
	r.ApplyGroup(51, WorkspaceLeave{Workspace: 1})
	snapshot = r.Snapshot()
	assert.Equal(t, []string{"loose", "a2", "a1", "b1"}, names(snapshot))
}

func TestSnapshotState(t *testing.T) {
	r := NewRegistry()
	r.AddWorkspace(1)
	r.Apply(1, State{State: StateActive | StateHidden | 1<<7})

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].Active)
	assert.False(t, snapshot[0].Urgent)
	assert.True(t, snapshot[0].Hidden)
}

func TestRemovedIsExcludedThenPurged(t *testing.T) {
	r := NewRegistry()
	r.AddGroup(20)
	r.AddWorkspace(1)
	r.AddWorkspace(2)
	r.ApplyGroup(20, WorkspaceEnter{Workspace: 2})
	r.Apply(1, Removed{})
	r.ApplyGroup(20, GroupRemoved{})

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, uint64(2), snapshot[0].ID)

	workspaces, groups := r.Purge()
	assert.Equal(t, []uint32{1}, workspaces)
	assert.Equal(t, []uint32{20}, groups)
	assert.Empty(t, r.Groups())

	snapshot = r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Zero(t, snapshot[0].Group, "workspaces of a purged group become unassigned")
}

func TestIDsAreNotReused(t *testing.T) {
	r := NewRegistry()
	first := r.AddWorkspace(1).ID
	r.Apply(1, Removed{})
	r.Purge()

	second := r.AddWorkspace(1).ID
	assert.Greater(t, second, first)
}

func TestApplyCreatesUnknownHandle(t *testing.T) {
	r := NewRegistry()
	r.Apply(7, Name{Name: "late"})
	r.ApplyGroup(8, OutputEnter{Output: 3})

	assert.Equal(t, []string{"late"}, names(r.Snapshot()))
	require.Len(t, r.Groups(), 1)
	assert.Equal(t, []uint32{3}, r.Groups()[0].Outputs)
}

func TestResolve(t *testing.T) {
	r := NewRegistry()
	r.AddWorkspace(1)
	r.AddWorkspace(2)
	r.Apply(1, Capabilities{Capabilities: CapActivate})
	r.Apply(2, Capabilities{Capabilities: CapDeactivate | CapRemove})

	handle, ok := r.Resolve(RequestActivate{ID: 1})
	assert.True(t, ok)
	assert.Equal(t, uint32(1), handle)

	_, ok = r.Resolve(RequestActivate{ID: 2})
	assert.False(t, ok)

	_, ok = r.Resolve(RequestDeactivate{ID: 2})
	assert.True(t, ok)

	_, ok = r.Resolve(RequestActivate{ID: 3})
	assert.False(t, ok)
}

func TestParseCoordinates(t *testing.T) {
	assert.Equal(t, []uint32{1, 2}, ParseCoordinates(wltest.NewArgs().Uint(1, 2).Bytes()))
	assert.Empty(t, ParseCoordinates([]byte{1, 2, 3}))
	assert.Empty(t, ParseCoordinates(nil))
}
