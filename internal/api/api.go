// Package api exposes the bar over HTTP so any front end can render it.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ItsNotGoodName/wlbar/internal/bar"
	"github.com/ItsNotGoodName/wlbar/internal/build"
	"github.com/ItsNotGoodName/wlbar/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Controller is implemented by bar.Bar.
type Controller interface {
	View(ctx context.Context) (bar.View, error)
	Scroll(ctx context.Context, direction int) (bool, error)
	ActivateToplevel(id uint32) bool
	CloseToplevel(id uint32) bool
	ActivateWorkspace(id uint64) bool
	Subscribe() (<-chan bar.View, func())
}

// NewRouter returns the HTTP handler serving the control API and its docs.
func NewRouter(c Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("wlbar", build.Current.Version))
	Register(api, c)

	return r
}

type (
	TaskbarOutput struct {
		Body bar.TaskbarView
	}
	WorkspacesOutput struct {
		Body bar.WorkspacesView
	}
	ToplevelInput struct {
		ID uint32 `path:"id" doc:"Toplevel id"`
	}
	WorkspaceInput struct {
		ID uint64 `path:"id" doc:"Workspace id"`
	}
	ScrollInput struct {
		Body struct {
			Direction int `json:"direction" minimum:"-1" maximum:"1" doc:"1 for next, -1 for previous"`
		}
	}
	ScrollOutput struct {
		Body struct {
			Queued bool `json:"queued" doc:"Whether an activate request was queued"`
		}
	}
	BuildOutput struct {
		Body build.Build
	}
	// Subscribed is the first message of every event stream.
	Subscribed struct {
		ID string `json:"id" doc:"Subscriber id, unique per stream"`
	}
)

func Register(api huma.API, c Controller) {
	huma.Register(api, huma.Operation{
		OperationID: "get-build",
		Method:      http.MethodGet,
		Path:        "/api/build",
		Summary:     "Get build information",
	}, func(ctx context.Context, input *struct{}) (*BuildOutput, error) {
		return &BuildOutput{Body: build.Current}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-taskbar",
		Method:      http.MethodGet,
		Path:        "/api/taskbar",
		Summary:     "Get taskbar",
	}, func(ctx context.Context, input *struct{}) (*TaskbarOutput, error) {
		view, err := c.View(ctx)
		if err != nil {
			return nil, err
		}
		return &TaskbarOutput{Body: view.Taskbar}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-workspaces",
		Method:      http.MethodGet,
		Path:        "/api/workspaces",
		Summary:     "Get workspaces",
	}, func(ctx context.Context, input *struct{}) (*WorkspacesOutput, error) {
		view, err := c.View(ctx)
		if err != nil {
			return nil, err
		}
		return &WorkspacesOutput{Body: view.Workspaces}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "activate-toplevel",
		Method:        http.MethodPost,
		Path:          "/api/toplevels/{id}/activate",
		Summary:       "Activate toplevel",
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *ToplevelInput) (*struct{}, error) {
		return queued(c.ActivateToplevel(input.ID))
	})

	huma.Register(api, huma.Operation{
		OperationID:   "close-toplevel",
		Method:        http.MethodPost,
		Path:          "/api/toplevels/{id}/close",
		Summary:       "Close toplevel",
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *ToplevelInput) (*struct{}, error) {
		return queued(c.CloseToplevel(input.ID))
	})

	huma.Register(api, huma.Operation{
		OperationID:   "activate-workspace",
		Method:        http.MethodPost,
		Path:          "/api/workspaces/{id}/activate",
		Summary:       "Activate workspace",
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *WorkspaceInput) (*struct{}, error) {
		return queued(c.ActivateWorkspace(input.ID))
	})

	huma.Register(api, huma.Operation{
		OperationID: "scroll-workspaces",
		Method:      http.MethodPost,
		Path:        "/api/workspaces/scroll",
		Summary:     "Activate the next or previous workspace",
	}, func(ctx context.Context, input *ScrollInput) (*ScrollOutput, error) {
		ok, err := c.Scroll(ctx, input.Body.Direction)
		if err != nil {
			return nil, err
		}
		out := &ScrollOutput{}
		out.Body.Queued = ok
		return out, nil
	})

	sse.Register(api, huma.Operation{
		OperationID: "events",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Stream bar views",
	}, map[string]any{
		"subscribed": Subscribed{},
		"view":       bar.View{},
	}, func(ctx context.Context, input *struct{}, send sse.Sender) {
		Stream(ctx, c, send)
	})
}

// Stream sends the subscriber id, the current view and then every change
// until ctx is done or the client goes away.
func Stream(ctx context.Context, c Controller, send sse.Sender) {
	id := uuid.NewString()
	log := slog.With("package", "api", "subscriber", id)

	sub, unsub := c.Subscribe()
	defer unsub()
	log.Debug("Subscriber connected")
	defer log.Debug("Subscriber disconnected")

	if err := send.Data(Subscribed{ID: id}); err != nil {
		return
	}

	view, err := c.View(ctx)
	if err != nil {
		return
	}
	if err := send.Data(view); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-sub:
			if !ok {
				return
			}
			if err := send.Data(view); err != nil {
				return
			}
		}
	}
}

func queued(ok bool) (*struct{}, error) {
	if !ok {
		return nil, huma.Error503ServiceUnavailable("request queue is full")
	}
	return &struct{}{}, nil
}
