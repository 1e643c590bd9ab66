// Package wayland wraps a go-wayland client connection with the pieces every
// watcher needs: socket resolution, a bounded roundtrip, the global list and
// fatal display errors.
//
// Handlers registered on proxies run on the goroutine that calls Dispatch.
// Once a watcher starts its event loop that goroutine owns the object table,
// and other goroutines only send requests.
package wayland

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/yaslama/go-wayland/wayland/client"
)

// DefaultRoundtripTimeout bounds the initial registry roundtrip.
const DefaultRoundtripTimeout = 5 * time.Second

var (
	ErrGlobalNotFound = errors.New("global not found")
	// ErrFinished is returned by watchers after the compositor sent the
	// manager's finished event.
	ErrFinished = errors.New("compositor finished the manager")
)

// SocketPath resolves the compositor socket the way libwayland does.
func SocketPath(display string) (string, error) {
	if display == "" {
		display = os.Getenv("WAYLAND_DISPLAY")
	}
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set in environment")
	}

	return filepath.Join(runtimeDir, display), nil
}

// Conn is a connection to a Wayland compositor.
type Conn struct {
	*client.Display
	log *slog.Logger
	err error
}

// Connect connects to the compositor named by display (see SocketPath).
func Connect(display string) (*Conn, error) {
	path, err := SocketPath(display)
	if err != nil {
		return nil, err
	}

	d, err := client.Connect(path)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to wayland server at (%s): %w", path, err)
	}

	c := &Conn{
		Display: d,
		log:     slog.With("package", "wayland"),
	}
	d.SetErrorHandler(c.handleError)
	d.SetDeleteIdHandler(c.handleDeleteID)

	return c, nil
}

// Close closes the socket. A goroutine blocked in Dispatch returns an error.
func (c *Conn) Close() error {
	return c.Context().Close()
}

func (c *Conn) handleError(e client.DisplayErrorEvent) {
	c.err = fmt.Errorf("code: %d -> %s", e.Code, e.Message)
}

func (c *Conn) handleDeleteID(e client.DisplayDeleteIdEvent) {
	if p := c.Context().GetProxy(e.Id); p != nil {
		c.Context().Unregister(p)
	}
}

// Dispatch blocks until one event has been read and dispatched. Display
// errors are fatal.
func (c *Conn) Dispatch() error {
	if err := c.Context().Dispatch(); err != nil {
		return err
	}
	return c.err
}

// Run dispatches events until the connection fails.
func (c *Conn) Run() error {
	for {
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
}

// Roundtrip blocks until the compositor has processed every request sent so
// far and the resulting events have been dispatched. The connection is
// closed when timeout expires first.
func (c *Conn) Roundtrip(timeout time.Duration) error {
	cb, err := c.Sync()
	if err != nil {
		return err
	}

	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		done = true
		c.Context().Unregister(cb)
	})

	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		c.Close()
	})
	defer timer.Stop()

	for !done {
		if err := c.Dispatch(); err != nil {
			if timedOut.Load() {
				return fmt.Errorf("roundtrip: timed out after %s", timeout)
			}
			return err
		}
	}

	return nil
}

// Request sends a request whose arguments are all 32-bit values (uint, int,
// object or new_id).
func Request(p client.Proxy, opcode uint32, args ...uint32) error {
	b := make([]byte, 8+4*len(args))
	client.PutUint32(b[0:4], p.ID())
	client.PutUint32(b[4:8], uint32(len(b))<<16|opcode&0x0000ffff)
	for i, arg := range args {
		client.PutUint32(b[8+4*i:12+4*i], arg)
	}
	return p.Context().WriteMsg(b, nil)
}

// Release sends a request on the way out. The compositor may already be gone
// so failures are only logged.
func Release(log *slog.Logger, request string, send func() error) {
	if err := send(); err != nil {
		log.Debug("Failed to send request", "request", request, "error", err)
	}
}
