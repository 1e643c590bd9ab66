package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr    string
	handler http.Handler
}

func NewServer(addr string, handler http.Handler) Server {
	return Server{
		addr:    addr,
		handler: handler,
	}
}

func (Server) String() string {
	return "api.Server"
}

func (s Server) Serve(ctx context.Context) error {
	log := slog.With("package", "api")

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
		// Streams end with the service.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()
	log.Info("Listening", "address", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown server", "error", err)
		}
		return ctx.Err()
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
