// Package extworkspace binds ext-workspace-v1 on top of go-wayland's client
// context.
//
// Destroy only sends the destructor. The proxy stays registered until the
// goroutine dispatching events unregisters it, which is safe once the handle
// has sent removed.
package extworkspace

import (
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
	"github.com/yaslama/go-wayland/wayland/client"
)

const (
	ExtWorkspaceManagerV1InterfaceName     = "ext_workspace_manager_v1"
	ExtWorkspaceGroupHandleV1InterfaceName = "ext_workspace_group_handle_v1"
	ExtWorkspaceHandleV1InterfaceName      = "ext_workspace_handle_v1"
)

// ext_workspace_manager_v1 opcodes.
const (
	ManagerCommitOpcode = 0
	ManagerStopOpcode   = 1

	ManagerWorkspaceGroupEventOpcode = 0
	ManagerWorkspaceEventOpcode      = 1
	ManagerDoneEventOpcode           = 2
	ManagerFinishedEventOpcode       = 3
)

// ext_workspace_group_handle_v1 opcodes.
const (
	GroupCreateWorkspaceOpcode = 0
	GroupDestroyOpcode         = 1

	GroupCapabilitiesEventOpcode   = 0
	GroupOutputEnterEventOpcode    = 1
	GroupOutputLeaveEventOpcode    = 2
	GroupWorkspaceEnterEventOpcode = 3
	GroupWorkspaceLeaveEventOpcode = 4
	GroupRemovedEventOpcode        = 5
)

// ext_workspace_handle_v1 opcodes.
const (
	HandleDestroyOpcode    = 0
	HandleActivateOpcode   = 1
	HandleDeactivateOpcode = 2
	HandleAssignOpcode     = 3
	HandleRemoveOpcode     = 4

	HandleIdEventOpcode           = 0
	HandleNameEventOpcode         = 1
	HandleCoordinatesEventOpcode  = 2
	HandleStateEventOpcode        = 3
	HandleCapabilitiesEventOpcode = 4
	HandleRemovedEventOpcode      = 5
)

// ExtWorkspaceManagerV1 : list and control workspaces
type ExtWorkspaceManagerV1 struct {
	client.BaseProxy
	workspaceGroupHandler ExtWorkspaceManagerV1WorkspaceGroupHandlerFunc
	workspaceHandler      ExtWorkspaceManagerV1WorkspaceHandlerFunc
	doneHandler           ExtWorkspaceManagerV1DoneHandlerFunc
	finishedHandler       ExtWorkspaceManagerV1FinishedHandlerFunc
}

// NewExtWorkspaceManagerV1 : list and control workspaces
func NewExtWorkspaceManagerV1(ctx *client.Context) *ExtWorkspaceManagerV1 {
	extWorkspaceManagerV1 := &ExtWorkspaceManagerV1{}
	ctx.Register(extWorkspaceManagerV1)
	return extWorkspaceManagerV1
}

// Commit : all requests about the workspaces have been sent
func (i *ExtWorkspaceManagerV1) Commit() error {
	return wayland.Request(i, ManagerCommitOpcode)
}

// Stop : stop sending events
func (i *ExtWorkspaceManagerV1) Stop() error {
	return wayland.Request(i, ManagerStopOpcode)
}

// ExtWorkspaceManagerV1WorkspaceGroupEvent : a workspace group has been created
type ExtWorkspaceManagerV1WorkspaceGroupEvent struct {
	WorkspaceGroup *ExtWorkspaceGroupHandleV1
}
type ExtWorkspaceManagerV1WorkspaceGroupHandlerFunc func(ExtWorkspaceManagerV1WorkspaceGroupEvent)

func (i *ExtWorkspaceManagerV1) SetWorkspaceGroupHandler(f ExtWorkspaceManagerV1WorkspaceGroupHandlerFunc) {
	i.workspaceGroupHandler = f
}

// ExtWorkspaceManagerV1WorkspaceEvent : workspace has been created
type ExtWorkspaceManagerV1WorkspaceEvent struct {
	Workspace *ExtWorkspaceHandleV1
}
type ExtWorkspaceManagerV1WorkspaceHandlerFunc func(ExtWorkspaceManagerV1WorkspaceEvent)

func (i *ExtWorkspaceManagerV1) SetWorkspaceHandler(f ExtWorkspaceManagerV1WorkspaceHandlerFunc) {
	i.workspaceHandler = f
}

// ExtWorkspaceManagerV1DoneEvent : all information about the workspaces and workspace groups has been sent
type ExtWorkspaceManagerV1DoneEvent struct{}
type ExtWorkspaceManagerV1DoneHandlerFunc func(ExtWorkspaceManagerV1DoneEvent)

func (i *ExtWorkspaceManagerV1) SetDoneHandler(f ExtWorkspaceManagerV1DoneHandlerFunc) {
	i.doneHandler = f
}

// ExtWorkspaceManagerV1FinishedEvent : the compositor has finished with the workspace_manager
type ExtWorkspaceManagerV1FinishedEvent struct{}
type ExtWorkspaceManagerV1FinishedHandlerFunc func(ExtWorkspaceManagerV1FinishedEvent)

func (i *ExtWorkspaceManagerV1) SetFinishedHandler(f ExtWorkspaceManagerV1FinishedHandlerFunc) {
	i.finishedHandler = f
}

func (i *ExtWorkspaceManagerV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case ManagerWorkspaceGroupEventOpcode:
		var e ExtWorkspaceManagerV1WorkspaceGroupEvent
		e.WorkspaceGroup = &ExtWorkspaceGroupHandleV1{}
		register(i.Context(), e.WorkspaceGroup, client.Uint32(data[0:4]))
		if i.workspaceGroupHandler != nil {
			i.workspaceGroupHandler(e)
		}
	case ManagerWorkspaceEventOpcode:
		var e ExtWorkspaceManagerV1WorkspaceEvent
		e.Workspace = &ExtWorkspaceHandleV1{}
		register(i.Context(), e.Workspace, client.Uint32(data[0:4]))
		if i.workspaceHandler != nil {
			i.workspaceHandler(e)
		}
	case ManagerDoneEventOpcode:
		if i.doneHandler != nil {
			i.doneHandler(ExtWorkspaceManagerV1DoneEvent{})
		}
	case ManagerFinishedEventOpcode:
		if i.finishedHandler != nil {
			i.finishedHandler(ExtWorkspaceManagerV1FinishedEvent{})
		}
	}
}

// register adds an object announced through a new_id event argument.
func register(ctx *client.Context, p client.Proxy, id uint32) {
	p.SetContext(ctx)
	p.SetID(id)
	ctx.RegisterWithID(p, id)
}

// ExtWorkspaceGroupHandleV1 : a workspace group assigned to a set of outputs
type ExtWorkspaceGroupHandleV1 struct {
	client.BaseProxy
	capabilitiesHandler   ExtWorkspaceGroupHandleV1CapabilitiesHandlerFunc
	outputEnterHandler    ExtWorkspaceGroupHandleV1OutputEnterHandlerFunc
	outputLeaveHandler    ExtWorkspaceGroupHandleV1OutputLeaveHandlerFunc
	workspaceEnterHandler ExtWorkspaceGroupHandleV1WorkspaceEnterHandlerFunc
	workspaceLeaveHandler ExtWorkspaceGroupHandleV1WorkspaceLeaveHandlerFunc
	removedHandler        ExtWorkspaceGroupHandleV1RemovedHandlerFunc
	unknownHandler        func(opcode uint32)
}

// Destroy : destroy the ext_workspace_group_handle_v1 object
func (i *ExtWorkspaceGroupHandleV1) Destroy() error {
	return wayland.Request(i, GroupDestroyOpcode)
}

// ExtWorkspaceGroupHandleV1CapabilitiesEvent : compositor capabilities
type ExtWorkspaceGroupHandleV1CapabilitiesEvent struct {
	Capabilities uint32
}
type ExtWorkspaceGroupHandleV1CapabilitiesHandlerFunc func(ExtWorkspaceGroupHandleV1CapabilitiesEvent)

func (i *ExtWorkspaceGroupHandleV1) SetCapabilitiesHandler(f ExtWorkspaceGroupHandleV1CapabilitiesHandlerFunc) {
	i.capabilitiesHandler = f
}

// ExtWorkspaceGroupHandleV1OutputEnterEvent : output assigned to workspace group
//
// Output is the wl_output object id.
type ExtWorkspaceGroupHandleV1OutputEnterEvent struct {
	Output uint32
}
type ExtWorkspaceGroupHandleV1OutputEnterHandlerFunc func(ExtWorkspaceGroupHandleV1OutputEnterEvent)

func (i *ExtWorkspaceGroupHandleV1) SetOutputEnterHandler(f ExtWorkspaceGroupHandleV1OutputEnterHandlerFunc) {
	i.outputEnterHandler = f
}

// ExtWorkspaceGroupHandleV1OutputLeaveEvent : output removed from workspace group
type ExtWorkspaceGroupHandleV1OutputLeaveEvent struct {
	Output uint32
}
type ExtWorkspaceGroupHandleV1OutputLeaveHandlerFunc func(ExtWorkspaceGroupHandleV1OutputLeaveEvent)

func (i *ExtWorkspaceGroupHandleV1) SetOutputLeaveHandler(f ExtWorkspaceGroupHandleV1OutputLeaveHandlerFunc) {
	i.outputLeaveHandler = f
}

// ExtWorkspaceGroupHandleV1WorkspaceEnterEvent : workspace added to workspace group
//
// Workspace is the ext_workspace_handle_v1 object id.
type ExtWorkspaceGroupHandleV1WorkspaceEnterEvent struct {
	Workspace uint32
}
type ExtWorkspaceGroupHandleV1WorkspaceEnterHandlerFunc func(ExtWorkspaceGroupHandleV1WorkspaceEnterEvent)

func (i *ExtWorkspaceGroupHandleV1) SetWorkspaceEnterHandler(f ExtWorkspaceGroupHandleV1WorkspaceEnterHandlerFunc) {
	i.workspaceEnterHandler = f
}

// ExtWorkspaceGroupHandleV1WorkspaceLeaveEvent : workspace removed from workspace group
type ExtWorkspaceGroupHandleV1WorkspaceLeaveEvent struct {
	Workspace uint32
}
type ExtWorkspaceGroupHandleV1WorkspaceLeaveHandlerFunc func(ExtWorkspaceGroupHandleV1WorkspaceLeaveEvent)

func (i *ExtWorkspaceGroupHandleV1) SetWorkspaceLeaveHandler(f ExtWorkspaceGroupHandleV1WorkspaceLeaveHandlerFunc) {
	i.workspaceLeaveHandler = f
}

// ExtWorkspaceGroupHandleV1RemovedEvent : this workspace group has been removed
type ExtWorkspaceGroupHandleV1RemovedEvent struct{}
type ExtWorkspaceGroupHandleV1RemovedHandlerFunc func(ExtWorkspaceGroupHandleV1RemovedEvent)

func (i *ExtWorkspaceGroupHandleV1) SetRemovedHandler(f ExtWorkspaceGroupHandleV1RemovedHandlerFunc) {
	i.removedHandler = f
}

// SetUnknownHandler sets the handler for events newer than these bindings.
func (i *ExtWorkspaceGroupHandleV1) SetUnknownHandler(f func(opcode uint32)) {
	i.unknownHandler = f
}

func (i *ExtWorkspaceGroupHandleV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case GroupCapabilitiesEventOpcode:
		if i.capabilitiesHandler != nil {
			i.capabilitiesHandler(ExtWorkspaceGroupHandleV1CapabilitiesEvent{Capabilities: client.Uint32(data[0:4])})
		}
	case GroupOutputEnterEventOpcode:
		if i.outputEnterHandler != nil {
			i.outputEnterHandler(ExtWorkspaceGroupHandleV1OutputEnterEvent{Output: client.Uint32(data[0:4])})
		}
	case GroupOutputLeaveEventOpcode:
		if i.outputLeaveHandler != nil {
			i.outputLeaveHandler(ExtWorkspaceGroupHandleV1OutputLeaveEvent{Output: client.Uint32(data[0:4])})
		}
	case GroupWorkspaceEnterEventOpcode:
		if i.workspaceEnterHandler != nil {
			i.workspaceEnterHandler(ExtWorkspaceGroupHandleV1WorkspaceEnterEvent{Workspace: client.Uint32(data[0:4])})
		}
	case GroupWorkspaceLeaveEventOpcode:
		if i.workspaceLeaveHandler != nil {
			i.workspaceLeaveHandler(ExtWorkspaceGroupHandleV1WorkspaceLeaveEvent{Workspace: client.Uint32(data[0:4])})
		}
	case GroupRemovedEventOpcode:
		if i.removedHandler != nil {
			i.removedHandler(ExtWorkspaceGroupHandleV1RemovedEvent{})
		}
	default:
		if i.unknownHandler != nil {
			i.unknownHandler(opcode)
		}
	}
}

// ExtWorkspaceHandleV1 : a workspace handing a group of surfaces
type ExtWorkspaceHandleV1 struct {
	client.BaseProxy
	idHandler           ExtWorkspaceHandleV1IdHandlerFunc
	nameHandler         ExtWorkspaceHandleV1NameHandlerFunc
	coordinatesHandler  ExtWorkspaceHandleV1CoordinatesHandlerFunc
	stateHandler        ExtWorkspaceHandleV1StateHandlerFunc
	capabilitiesHandler ExtWorkspaceHandleV1CapabilitiesHandlerFunc
	removedHandler      ExtWorkspaceHandleV1RemovedHandlerFunc
	unknownHandler      func(opcode uint32)
}

// Destroy : destroy the ext_workspace_handle_v1 object
func (i *ExtWorkspaceHandleV1) Destroy() error {
	return wayland.Request(i, HandleDestroyOpcode)
}

// Activate : activate the workspace
func (i *ExtWorkspaceHandleV1) Activate() error {
	return wayland.Request(i, HandleActivateOpcode)
}

// Deactivate : deactivate the workspace
func (i *ExtWorkspaceHandleV1) Deactivate() error {
	return wayland.Request(i, HandleDeactivateOpcode)
}

// ExtWorkspaceHandleV1IdEvent : workspace id
type ExtWorkspaceHandleV1IdEvent struct {
	Id string
}
type ExtWorkspaceHandleV1IdHandlerFunc func(ExtWorkspaceHandleV1IdEvent)

func (i *ExtWorkspaceHandleV1) SetIdHandler(f ExtWorkspaceHandleV1IdHandlerFunc) {
	i.idHandler = f
}

// ExtWorkspaceHandleV1NameEvent : workspace name changed
type ExtWorkspaceHandleV1NameEvent struct {
	Name string
}
type ExtWorkspaceHandleV1NameHandlerFunc func(ExtWorkspaceHandleV1NameEvent)

func (i *ExtWorkspaceHandleV1) SetNameHandler(f ExtWorkspaceHandleV1NameHandlerFunc) {
	i.nameHandler = f
}

// ExtWorkspaceHandleV1CoordinatesEvent : workspace coordinates changed
type ExtWorkspaceHandleV1CoordinatesEvent struct {
	Coordinates []byte
}
type ExtWorkspaceHandleV1CoordinatesHandlerFunc func(ExtWorkspaceHandleV1CoordinatesEvent)

func (i *ExtWorkspaceHandleV1) SetCoordinatesHandler(f ExtWorkspaceHandleV1CoordinatesHandlerFunc) {
	i.coordinatesHandler = f
}

// ExtWorkspaceHandleV1StateEvent : the state of the workspace changed
type ExtWorkspaceHandleV1StateEvent struct {
	State uint32
}
type ExtWorkspaceHandleV1StateHandlerFunc func(ExtWorkspaceHandleV1StateEvent)

func (i *ExtWorkspaceHandleV1) SetStateHandler(f ExtWorkspaceHandleV1StateHandlerFunc) {
	i.stateHandler = f
}

// ExtWorkspaceHandleV1CapabilitiesEvent : compositor capabilities
type ExtWorkspaceHandleV1CapabilitiesEvent struct {
	Capabilities uint32
}
type ExtWorkspaceHandleV1CapabilitiesHandlerFunc func(ExtWorkspaceHandleV1CapabilitiesEvent)

func (i *ExtWorkspaceHandleV1) SetCapabilitiesHandler(f ExtWorkspaceHandleV1CapabilitiesHandlerFunc) {
	i.capabilitiesHandler = f
}

// ExtWorkspaceHandleV1RemovedEvent : this workspace has been removed
type ExtWorkspaceHandleV1RemovedEvent struct{}
type ExtWorkspaceHandleV1RemovedHandlerFunc func(ExtWorkspaceHandleV1RemovedEvent)

func (i *ExtWorkspaceHandleV1) SetRemovedHandler(f ExtWorkspaceHandleV1RemovedHandlerFunc) {
	i.removedHandler = f
}

// SetUnknownHandler sets the handler for events newer than these bindings.
func (i *ExtWorkspaceHandleV1) SetUnknownHandler(f func(opcode uint32)) {
	i.unknownHandler = f
}

func (i *ExtWorkspaceHandleV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case HandleIdEventOpcode:
		if i.idHandler == nil {
			return
		}
		var e ExtWorkspaceHandleV1IdEvent
		l := 0
		idLen := client.PaddedLen(int(client.Uint32(data[l : l+4])))
		l += 4
		e.Id = client.String(data[l : l+idLen])
		i.idHandler(e)
	case HandleNameEventOpcode:
		if i.nameHandler == nil {
			return
		}
		var e ExtWorkspaceHandleV1NameEvent
		l := 0
		nameLen := client.PaddedLen(int(client.Uint32(data[l : l+4])))
		l += 4
		e.Name = client.String(data[l : l+nameLen])
		i.nameHandler(e)
	case HandleCoordinatesEventOpcode:
		if i.coordinatesHandler == nil {
			return
		}
		var e ExtWorkspaceHandleV1CoordinatesEvent
		l := 0
		coordinatesLen := int(client.Uint32(data[l : l+4]))
		l += 4
		e.Coordinates = make([]byte, coordinatesLen)
		copy(e.Coordinates, data[l:l+coordinatesLen])
		i.coordinatesHandler(e)
	case HandleStateEventOpcode:
		if i.stateHandler != nil {
			i.stateHandler(ExtWorkspaceHandleV1StateEvent{State: client.Uint32(data[0:4])})
		}
	case HandleCapabilitiesEventOpcode:
		if i.capabilitiesHandler != nil {
			i.capabilitiesHandler(ExtWorkspaceHandleV1CapabilitiesEvent{Capabilities: client.Uint32(data[0:4])})
		}
	case HandleRemovedEventOpcode:
		if i.removedHandler != nil {
			i.removedHandler(ExtWorkspaceHandleV1RemovedEvent{})
		}
	default:
		if i.unknownHandler != nil {
			i.unknownHandler(opcode)
		}
	}
}
