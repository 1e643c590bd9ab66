package extworkspace

import (
	"testing"

	"github.com/ItsNotGoodName/wlbar/internal/wayland/wltest"
	"github.com/stretchr/testify/assert"
)

func TestHandleDispatch(t *testing.T) {
	var (
		name        string
		coordinates []byte
		state       uint32
		removed     bool
	)
	h := &ExtWorkspaceHandleV1{}
	h.SetNameHandler(func(e ExtWorkspaceHandleV1NameEvent) { name = e.Name })
	h.SetCoordinatesHandler(func(e ExtWorkspaceHandleV1CoordinatesEvent) { coordinates = e.Coordinates })
	h.SetStateHandler(func(e ExtWorkspaceHandleV1StateEvent) { state = e.State })
	h.SetRemovedHandler(func(ExtWorkspaceHandleV1RemovedEvent) { removed = true })

	h.Dispatch(HandleNameEventOpcode, -1, wltest.NewArgs().String("web").Bytes())
	assert.Equal(t, "web", name)

	h.Dispatch(HandleCoordinatesEventOpcode, -1, wltest.NewArgs().Uint32s(1, 0).Bytes())
	assert.Equal(t, wltest.NewArgs().Uint(1, 0).Bytes(), coordinates)

	h.Dispatch(HandleStateEventOpcode, -1, wltest.NewArgs().Uint(1).Bytes())
	assert.Equal(t, uint32(1), state)

	h.Dispatch(HandleRemovedEventOpcode, -1, nil)
	assert.True(t, removed)
}

func TestGroupDispatch(t *testing.T) {
	var (
		entered uint32
		unknown uint32
	)
	g := &ExtWorkspaceGroupHandleV1{}
	g.SetWorkspaceEnterHandler(func(e ExtWorkspaceGroupHandleV1WorkspaceEnterEvent) { entered = e.Workspace })
	g.SetUnknownHandler(func(opcode uint32) { unknown = opcode })

	g.Dispatch(GroupWorkspaceEnterEventOpcode, -1, wltest.NewArgs().Uint(0xff000003).Bytes())
	assert.Equal(t, uint32(0xff000003), entered)

	g.Dispatch(9, -1, nil)
	assert.Equal(t, uint32(9), unknown)
}
