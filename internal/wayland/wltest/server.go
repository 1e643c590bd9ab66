// Package wltest provides a scripted fake compositor for tests.
package wltest

import (
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ItsNotGoodName/wlbar/internal/wayland"
	"github.com/yaslama/go-wayland/wayland/client"
)

const displayID = 1

// ServerIDStart is the first object id allocated by the compositor.
const ServerIDStart = 0xff000000

// Timeout bounds every wait helper.
var Timeout = 2 * time.Second

// Bind is a wl_registry.bind request received from the client.
type Bind struct {
	Interface string
	Version   uint32
	ID        uint32
}

// Message is a request received from the client.
type Message struct {
	Sender uint32
	Opcode uint16
	Args   []byte
}

// Uint returns the i-th 32-bit argument.
func (m Message) Uint(i int) uint32 {
	return client.Uint32(m.Args[4*i : 4*i+4])
}

// Args encodes event arguments.
type Args struct {
	b []byte
}

func NewArgs() *Args {
	return &Args{}
}

// Uint appends uint, int, object and new_id arguments.
func (a *Args) Uint(vs ...uint32) *Args {
	for _, v := range vs {
		var b [4]byte
		client.PutUint32(b[:], v)
		a.b = append(a.b, b[:]...)
	}
	return a
}

func (a *Args) String(s string) *Args {
	return a.Array(append([]byte(s), 0))
}

func (a *Args) Array(data []byte) *Args {
	a.Uint(uint32(len(data)))
	padded := make([]byte, client.PaddedLen(len(data)))
	copy(padded, data)
	a.b = append(a.b, padded...)
	return a
}

// Uint32s appends an array of 32-bit words.
func (a *Args) Uint32s(vs ...uint32) *Args {
	return a.Array(NewArgs().Uint(vs...).b)
}

// Bytes returns the encoded arguments.
func (a *Args) Bytes() []byte {
	if a == nil {
		return nil
	}
	return a.b
}

func encode(sender uint32, opcode uint16, args []byte) []byte {
	b := make([]byte, 8+len(args))
	client.PutUint32(b[0:4], sender)
	client.PutUint32(b[4:8], uint32(len(b))<<16|uint32(opcode))
	copy(b[8:], args)
	return b
}

// Server accepts a single client and answers wl_display and wl_registry
// requests. Every other request is recorded for assertions.
type Server struct {
	t    testing.TB
	Path string

	ln       net.Listener
	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     net.Conn
	globals  []wayland.Global
	binds    []Bind
	requests chan Message
	registry uint32
	serverID uint32
	serial   uint32
}

// NewServer listens on a socket in a temporary directory and advertises the
// given globals.
func NewServer(t testing.TB, globals ...wayland.Global) *Server {
	t.Helper()

	s := listen(t)
	for i := range globals {
		globals[i].Name = uint32(i + 1)
	}
	s.globals = globals

	go s.serve()

	return s
}

// NewHangup listens like NewServer but closes every client connection as soon
// as it is accepted.
func NewHangup(t testing.TB) *Server {
	t.Helper()

	s := listen(t)
	go func() {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	return s
}

func listen(t testing.TB) *Server {
	path := filepath.Join(t.TempDir(), "wayland-test")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("wltest: listen: %v", err)
	}

	s := &Server{
		t:        t,
		Path:     path,
		ln:       ln,
		requests: make(chan Message, 256),
		serverID: ServerIDStart,
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// Close stops the listener and drops the client.
func (s *Server) Close() {
	s.ln.Close()
	s.Disconnect()
}

// Disconnect drops the client connection.
func (s *Server) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *Server) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}

		word := client.Uint32(header[4:8])
		size := int(word >> 16)
		if size < 8 {
			return
		}

		msg := Message{
			Sender: client.Uint32(header[0:4]),
			Opcode: uint16(word),
			Args:   make([]byte, size-8),
		}
		if _, err := io.ReadFull(conn, msg.Args); err != nil {
			return
		}

		s.handle(msg)
	}
}

func (s *Server) handle(msg Message) {
	switch {
	case msg.Sender == displayID && msg.Opcode == 0: // sync
		cb := msg.Uint(0)
		s.mu.Lock()
		s.serial++
		serial := s.serial
		s.mu.Unlock()
		s.Send(cb, 0, NewArgs().Uint(serial))
		s.Send(displayID, 1, NewArgs().Uint(cb))
	case msg.Sender == displayID && msg.Opcode == 1: // get_registry
		id := msg.Uint(0)
		s.mu.Lock()
		s.registry = id
		globals := append([]wayland.Global(nil), s.globals...)
		s.mu.Unlock()
		for _, g := range globals {
			s.Send(id, 0, NewArgs().Uint(g.Name).String(g.Interface).Uint(g.Version))
		}
	case msg.Sender == s.registryID() && msg.Opcode == 0: // bind
		n := client.PaddedLen(int(msg.Uint(1)))
		rest := Message{Args: msg.Args[8+n:]}
		b := Bind{
			Interface: client.String(msg.Args[8 : 8+n]),
			Version:   rest.Uint(0),
			ID:        rest.Uint(1),
		}
		s.mu.Lock()
		s.binds = append(s.binds, b)
		s.mu.Unlock()
	default:
		select {
		case s.requests <- msg:
		default:
		}
	}
}

func (s *Server) registryID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

// Send writes an event to the client.
func (s *Server) Send(sender uint32, opcode uint16, args *Args) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.t.Errorf("wltest: send before client connected")
		return
	}

	// The client may already be gone; the test observes that on its side.
	s.writeMu.Lock()
	_, _ = conn.Write(encode(sender, opcode, args.Bytes()))
	s.writeMu.Unlock()
}

// DisplayError sends a fatal wl_display.error.
func (s *Server) DisplayError(object, code uint32, message string) {
	s.Send(displayID, 0, NewArgs().Uint(object, code).String(message))
}

// NewID allocates a server-side object id.
func (s *Server) NewID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.serverID
	s.serverID++
	return id
}

// WaitBind waits for the client to bind iface and returns the bound object.
func (s *Server) WaitBind(iface string) Bind {
	s.t.Helper()

	deadline := time.Now().Add(Timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, b := range s.binds {
			if b.Interface == iface {
				s.mu.Unlock()
				return b
			}
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}

	s.t.Fatalf("wltest: %s was never bound", iface)
	return Bind{}
}

// WaitRequest waits for a request with the given sender and opcode, skipping
// any other request.
func (s *Server) WaitRequest(sender uint32, opcode uint16) Message {
	s.t.Helper()

	timeout := time.After(Timeout)
	for {
		select {
		case msg := <-s.requests:
			if msg.Sender == sender && msg.Opcode == opcode {
				return msg
			}
		case <-timeout:
			s.t.Fatalf("wltest: no request %d on object %d", opcode, sender)
			return Message{}
		}
	}
}

// NoRequest asserts that no request with the given sender and opcode arrives
// within wait.
func (s *Server) NoRequest(sender uint32, opcode uint16, wait time.Duration) {
	s.t.Helper()

	timeout := time.After(wait)
	for {
		select {
		case msg := <-s.requests:
			if msg.Sender == sender && msg.Opcode == opcode {
				s.t.Errorf("wltest: unexpected request %d on object %d", opcode, sender)
				return
			}
		case <-timeout:
			return
		}
	}
}
