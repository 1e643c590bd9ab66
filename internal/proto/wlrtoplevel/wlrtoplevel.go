// Package wlrtoplevel binds wlr-foreign-toplevel-management-unstable-v1 on
// top of go-wayland's client context.
//
// Destroy only sends the destructor. The proxy stays registered until the
// goroutine dispatching events unregisters it, which is safe once the handle
// has sent closed.
package wlrtoplevel

import (
	"github.com/ItsNotGoodName/wlbar/internal/wayland"
	"github.com/yaslama/go-wayland/wayland/client"
)

const (
	ZwlrForeignToplevelManagerV1InterfaceName = "zwlr_foreign_toplevel_manager_v1"
	ZwlrForeignToplevelHandleV1InterfaceName  = "zwlr_foreign_toplevel_handle_v1"
)

// zwlr_foreign_toplevel_manager_v1 opcodes.
const (
	ManagerStopOpcode = 0

	ManagerToplevelEventOpcode = 0
	ManagerFinishedEventOpcode = 1
)

// zwlr_foreign_toplevel_handle_v1 opcodes.
const (
	HandleSetMaximizedOpcode    = 0
	HandleUnsetMaximizedOpcode  = 1
	HandleSetMinimizedOpcode    = 2
	HandleUnsetMinimizedOpcode  = 3
	HandleActivateOpcode        = 4
	HandleCloseOpcode           = 5
	HandleSetRectangleOpcode    = 6
	HandleDestroyOpcode         = 7
	HandleSetFullscreenOpcode   = 8
	HandleUnsetFullscreenOpcode = 9

	HandleTitleEventOpcode       = 0
	HandleAppIdEventOpcode       = 1
	HandleOutputEnterEventOpcode = 2
	HandleOutputLeaveEventOpcode = 3
	HandleStateEventOpcode       = 4
	HandleDoneEventOpcode        = 5
	HandleClosedEventOpcode      = 6
	HandleParentEventOpcode      = 7
)

// ZwlrForeignToplevelHandleV1State : types of states on the toplevel
type ZwlrForeignToplevelHandleV1State uint32

const (
	ZwlrForeignToplevelHandleV1StateMaximized  ZwlrForeignToplevelHandleV1State = 0
	ZwlrForeignToplevelHandleV1StateMinimized  ZwlrForeignToplevelHandleV1State = 1
	ZwlrForeignToplevelHandleV1StateActivated  ZwlrForeignToplevelHandleV1State = 2
	ZwlrForeignToplevelHandleV1StateFullscreen ZwlrForeignToplevelHandleV1State = 3
)

// ZwlrForeignToplevelManagerV1 : list and control opened apps
type ZwlrForeignToplevelManagerV1 struct {
	client.BaseProxy
	toplevelHandler ZwlrForeignToplevelManagerV1ToplevelHandlerFunc
	finishedHandler ZwlrForeignToplevelManagerV1FinishedHandlerFunc
}

// NewZwlrForeignToplevelManagerV1 : list and control opened apps
func NewZwlrForeignToplevelManagerV1(ctx *client.Context) *ZwlrForeignToplevelManagerV1 {
	zwlrForeignToplevelManagerV1 := &ZwlrForeignToplevelManagerV1{}
	ctx.Register(zwlrForeignToplevelManagerV1)
	return zwlrForeignToplevelManagerV1
}

// Stop : stop sending events
func (i *ZwlrForeignToplevelManagerV1) Stop() error {
	return wayland.Request(i, ManagerStopOpcode)
}

// ZwlrForeignToplevelManagerV1ToplevelEvent : a toplevel has been created
type ZwlrForeignToplevelManagerV1ToplevelEvent struct {
	Toplevel *ZwlrForeignToplevelHandleV1
}
type ZwlrForeignToplevelManagerV1ToplevelHandlerFunc func(ZwlrForeignToplevelManagerV1ToplevelEvent)

func (i *ZwlrForeignToplevelManagerV1) SetToplevelHandler(f ZwlrForeignToplevelManagerV1ToplevelHandlerFunc) {
	i.toplevelHandler = f
}

// ZwlrForeignToplevelManagerV1FinishedEvent : the compositor has finished with the toplevel manager
type ZwlrForeignToplevelManagerV1FinishedEvent struct{}
type ZwlrForeignToplevelManagerV1FinishedHandlerFunc func(ZwlrForeignToplevelManagerV1FinishedEvent)

func (i *ZwlrForeignToplevelManagerV1) SetFinishedHandler(f ZwlrForeignToplevelManagerV1FinishedHandlerFunc) {
	i.finishedHandler = f
}

func (i *ZwlrForeignToplevelManagerV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case ManagerToplevelEventOpcode:
		var e ZwlrForeignToplevelManagerV1ToplevelEvent
		e.Toplevel = &ZwlrForeignToplevelHandleV1{}
		id := client.Uint32(data[0:4])
		e.Toplevel.SetContext(i.Context())
		e.Toplevel.SetID(id)
		i.Context().RegisterWithID(e.Toplevel, id)
		if i.toplevelHandler != nil {
			i.toplevelHandler(e)
		}
	case ManagerFinishedEventOpcode:
		if i.finishedHandler != nil {
			i.finishedHandler(ZwlrForeignToplevelManagerV1FinishedEvent{})
		}
	}
}

// ZwlrForeignToplevelHandleV1 : an opened toplevel
type ZwlrForeignToplevelHandleV1 struct {
	client.BaseProxy
	titleHandler       ZwlrForeignToplevelHandleV1TitleHandlerFunc
	appIdHandler       ZwlrForeignToplevelHandleV1AppIdHandlerFunc
	outputEnterHandler ZwlrForeignToplevelHandleV1OutputEnterHandlerFunc
	outputLeaveHandler ZwlrForeignToplevelHandleV1OutputLeaveHandlerFunc
	stateHandler       ZwlrForeignToplevelHandleV1StateHandlerFunc
	doneHandler        ZwlrForeignToplevelHandleV1DoneHandlerFunc
	closedHandler      ZwlrForeignToplevelHandleV1ClosedHandlerFunc
	parentHandler      ZwlrForeignToplevelHandleV1ParentHandlerFunc
	unknownHandler     func(opcode uint32)
}

// Activate : activate the toplevel
func (i *ZwlrForeignToplevelHandleV1) Activate(seat *client.Seat) error {
	return wayland.Request(i, HandleActivateOpcode, seat.ID())
}

// Close : request that the toplevel be closed
func (i *ZwlrForeignToplevelHandleV1) Close() error {
	return wayland.Request(i, HandleCloseOpcode)
}

// Destroy : destroy the zwlr_foreign_toplevel_handle_v1 object
func (i *ZwlrForeignToplevelHandleV1) Destroy() error {
	return wayland.Request(i, HandleDestroyOpcode)
}

// ZwlrForeignToplevelHandleV1TitleEvent : title change
type ZwlrForeignToplevelHandleV1TitleEvent struct {
	Title string
}
type ZwlrForeignToplevelHandleV1TitleHandlerFunc func(ZwlrForeignToplevelHandleV1TitleEvent)

func (i *ZwlrForeignToplevelHandleV1) SetTitleHandler(f ZwlrForeignToplevelHandleV1TitleHandlerFunc) {
	i.titleHandler = f
}

// ZwlrForeignToplevelHandleV1AppIdEvent : app-id change
type ZwlrForeignToplevelHandleV1AppIdEvent struct {
	AppId string
}
type ZwlrForeignToplevelHandleV1AppIdHandlerFunc func(ZwlrForeignToplevelHandleV1AppIdEvent)

func (i *ZwlrForeignToplevelHandleV1) SetAppIdHandler(f ZwlrForeignToplevelHandleV1AppIdHandlerFunc) {
	i.appIdHandler = f
}

// ZwlrForeignToplevelHandleV1OutputEnterEvent : toplevel entered an output
//
// Output is the wl_output object id.
type ZwlrForeignToplevelHandleV1OutputEnterEvent struct {
	Output uint32
}
type ZwlrForeignToplevelHandleV1OutputEnterHandlerFunc func(ZwlrForeignToplevelHandleV1OutputEnterEvent)

func (i *ZwlrForeignToplevelHandleV1) SetOutputEnterHandler(f ZwlrForeignToplevelHandleV1OutputEnterHandlerFunc) {
	i.outputEnterHandler = f
}

// ZwlrForeignToplevelHandleV1OutputLeaveEvent : toplevel left an output
type ZwlrForeignToplevelHandleV1OutputLeaveEvent struct {
	Output uint32
}
type ZwlrForeignToplevelHandleV1OutputLeaveHandlerFunc func(ZwlrForeignToplevelHandleV1OutputLeaveEvent)

func (i *ZwlrForeignToplevelHandleV1) SetOutputLeaveHandler(f ZwlrForeignToplevelHandleV1OutputLeaveHandlerFunc) {
	i.outputLeaveHandler = f
}

// ZwlrForeignToplevelHandleV1StateEvent : the toplevel state changed
//
// State is an array of ZwlrForeignToplevelHandleV1State values.
type ZwlrForeignToplevelHandleV1StateEvent struct {
	State []byte
}
type ZwlrForeignToplevelHandleV1StateHandlerFunc func(ZwlrForeignToplevelHandleV1StateEvent)

func (i *ZwlrForeignToplevelHandleV1) SetStateHandler(f ZwlrForeignToplevelHandleV1StateHandlerFunc) {
	i.stateHandler = f
}

// ZwlrForeignToplevelHandleV1DoneEvent : all information about the toplevel has been sent
type ZwlrForeignToplevelHandleV1DoneEvent struct{}
type ZwlrForeignToplevelHandleV1DoneHandlerFunc func(ZwlrForeignToplevelHandleV1DoneEvent)

func (i *ZwlrForeignToplevelHandleV1) SetDoneHandler(f ZwlrForeignToplevelHandleV1DoneHandlerFunc) {
	i.doneHandler = f
}

// ZwlrForeignToplevelHandleV1ClosedEvent : this toplevel has been destroyed
type ZwlrForeignToplevelHandleV1ClosedEvent struct{}
type ZwlrForeignToplevelHandleV1ClosedHandlerFunc func(ZwlrForeignToplevelHandleV1ClosedEvent)

func (i *ZwlrForeignToplevelHandleV1) SetClosedHandler(f ZwlrForeignToplevelHandleV1ClosedHandlerFunc) {
	i.closedHandler = f
}

// ZwlrForeignToplevelHandleV1ParentEvent : parent change
//
// Parent is the handle id of the parent toplevel, or 0.
type ZwlrForeignToplevelHandleV1ParentEvent struct {
	Parent uint32
}
type ZwlrForeignToplevelHandleV1ParentHandlerFunc func(ZwlrForeignToplevelHandleV1ParentEvent)

func (i *ZwlrForeignToplevelHandleV1) SetParentHandler(f ZwlrForeignToplevelHandleV1ParentHandlerFunc) {
	i.parentHandler = f
}

// SetUnknownHandler sets the handler for events newer than these bindings.
func (i *ZwlrForeignToplevelHandleV1) SetUnknownHandler(f func(opcode uint32)) {
	i.unknownHandler = f
}

func (i *ZwlrForeignToplevelHandleV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case HandleTitleEventOpcode:
		if i.titleHandler == nil {
			return
		}
		var e ZwlrForeignToplevelHandleV1TitleEvent
		l := 0
		titleLen := client.PaddedLen(int(client.Uint32(data[l : l+4])))
		l += 4
		e.Title = client.String(data[l : l+titleLen])
		i.titleHandler(e)
	case HandleAppIdEventOpcode:
		if i.appIdHandler == nil {
			return
		}
		var e ZwlrForeignToplevelHandleV1AppIdEvent
		l := 0
		appIdLen := client.PaddedLen(int(client.Uint32(data[l : l+4])))
		l += 4
		e.AppId = client.String(data[l : l+appIdLen])
		i.appIdHandler(e)
	case HandleOutputEnterEventOpcode:
		if i.outputEnterHandler == nil {
			return
		}
		i.outputEnterHandler(ZwlrForeignToplevelHandleV1OutputEnterEvent{Output: client.Uint32(data[0:4])})
	case HandleOutputLeaveEventOpcode:
		if i.outputLeaveHandler == nil {
			return
		}
		i.outputLeaveHandler(ZwlrForeignToplevelHandleV1OutputLeaveEvent{Output: client.Uint32(data[0:4])})
	case HandleStateEventOpcode:
		if i.stateHandler == nil {
			return
		}
		var e ZwlrForeignToplevelHandleV1StateEvent
		l := 0
		stateLen := int(client.Uint32(data[l : l+4]))
		l += 4
		e.State = make([]byte, stateLen)
		copy(e.State, data[l:l+stateLen])
		i.stateHandler(e)
	case HandleDoneEventOpcode:
		if i.doneHandler == nil {
			return
		}
		i.doneHandler(ZwlrForeignToplevelHandleV1DoneEvent{})
	case HandleClosedEventOpcode:
		if i.closedHandler == nil {
			return
		}
		i.closedHandler(ZwlrForeignToplevelHandleV1ClosedEvent{})
	case HandleParentEventOpcode:
		if i.parentHandler == nil {
			return
		}
		i.parentHandler(ZwlrForeignToplevelHandleV1ParentEvent{Parent: client.Uint32(data[0:4])})
	default:
		if i.unknownHandler != nil {
			i.unknownHandler(opcode)
		}
	}
}
