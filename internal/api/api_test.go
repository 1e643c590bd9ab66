package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ItsNotGoodName/wlbar/internal/bar"
	"github.com/ItsNotGoodName/wlbar/internal/build"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	view      bar.View
	full      bool
	scrolled  []int
	activated []uint32
	closed    []uint32
	workspace []uint64
	subC      chan bar.View
}

func (f *fakeController) View(ctx context.Context) (bar.View, error) {
	return f.view, ctx.Err()
}

func (f *fakeController) Scroll(ctx context.Context, direction int) (bool, error) {
	f.scrolled = append(f.scrolled, direction)
	return !f.full, nil
}

func (f *fakeController) ActivateToplevel(id uint32) bool {
	f.activated = append(f.activated, id)
	return !f.full
}

func (f *fakeController) CloseToplevel(id uint32) bool {
	f.closed = append(f.closed, id)
	return !f.full
}

func (f *fakeController) ActivateWorkspace(id uint64) bool {
	f.workspace = append(f.workspace, id)
	return !f.full
}

func (f *fakeController) Subscribe() (<-chan bar.View, func()) {
	return f.subC, func() {}
}

func testView() bar.View {
	return bar.View{
		Taskbar: bar.TaskbarView{Buttons: []bar.TaskbarButton{
			{ID: 1, Icon: "firefox", IconSize: 32, Tooltip: "firefox - Firefox", Active: true},
		}},
		Workspaces: bar.WorkspacesView{Buttons: []bar.WorkspaceButton{
			{ID: 1, Label: "1", Index: 1, Active: true},
			{ID: 2, Label: "2", Index: 2},
		}, Visible: true},
	}
}

func TestGetViews(t *testing.T) {
	_, api := humatest.New(t)
	c := &fakeController{view: testView()}
	Register(api, c)

	resp := api.Get("/api/taskbar")
	require.Equal(t, http.StatusOK, resp.Code)
	var taskbar bar.TaskbarView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &taskbar))
	assert.Equal(t, c.view.Taskbar, taskbar)

	resp = api.Get("/api/workspaces")
	require.Equal(t, http.StatusOK, resp.Code)
	var workspaces bar.WorkspacesView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &workspaces))
	assert.Equal(t, c.view.Workspaces, workspaces)
}

func TestActions(t *testing.T) {
	_, api := humatest.New(t)
	c := &fakeController{}
	Register(api, c)

	assert.Equal(t, http.StatusAccepted, api.Post("/api/toplevels/4/activate").Code)
	assert.Equal(t, http.StatusAccepted, api.Post("/api/toplevels/5/close").Code)
	assert.Equal(t, http.StatusAccepted, api.Post("/api/workspaces/6/activate").Code)
	assert.Equal(t, []uint32{4}, c.activated)
	assert.Equal(t, []uint32{5}, c.closed)
	assert.Equal(t, []uint64{6}, c.workspace)

	assert.Equal(t, http.StatusUnprocessableEntity, api.Post("/api/toplevels/abc/activate").Code)

	c.full = true
	assert.Equal(t, http.StatusServiceUnavailable, api.Post("/api/toplevels/4/close").Code)
}

func TestScroll(t *testing.T) {
	_, api := humatest.New(t)
	c := &fakeController{}
	Register(api, c)

	resp := api.Post("/api/workspaces/scroll", map[string]any{"direction": -1})
	require.Equal(t, http.StatusOK, resp.Code)
	var out struct {
		Queued bool `json:"queued"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Queued)
	assert.Equal(t, []int{-1}, c.scrolled)

	resp = api.Post("/api/workspaces/scroll", map[string]any{"direction": 5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Len(t, c.scrolled, 1)
}

func readData[T any](t *testing.T, scanner *bufio.Scanner) T {
	t.Helper()

	var v T
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			require.NoError(t, json.Unmarshal([]byte(data), &v))
			return v
		}
	}
	t.Fatal("stream ended", scanner.Err())
	return v
}

func openEvents(t *testing.T, ctx context.Context, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return resp
}

func TestEvents(t *testing.T) {
	c := &fakeController{view: testView(), subC: make(chan bar.View, 1)}
	srv := httptest.NewServer(NewRouter(c))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp := openEvents(t, ctx, srv.URL)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	subscribed := readData[Subscribed](t, scanner)
	_, err := uuid.Parse(subscribed.ID)
	assert.NoError(t, err, "subscriber id is a uuid")
	assert.Equal(t, c.view, readData[bar.View](t, scanner), "current view follows the subscriber id")

	next := bar.View{Workspaces: bar.WorkspacesView{Fallback: bar.WorkspacesFallback, Tooltip: "gone", Visible: true}}
	c.subC <- next
	assert.Equal(t, next, readData[bar.View](t, scanner))
}

func TestEventsSubscriberIDs(t *testing.T) {
	c := &fakeController{view: testView(), subC: make(chan bar.View)}
	srv := httptest.NewServer(NewRouter(c))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := readData[Subscribed](t, bufio.NewScanner(openEvents(t, ctx, srv.URL).Body))
	second := readData[Subscribed](t, bufio.NewScanner(openEvents(t, ctx, srv.URL).Body))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetBuild(t *testing.T) {
	_, api := humatest.New(t)
	Register(api, &fakeController{})

	resp := api.Get("/api/build")
	require.Equal(t, http.StatusOK, resp.Code)
	var info build.Build
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Equal(t, build.Current.Version, info.Version)
}
