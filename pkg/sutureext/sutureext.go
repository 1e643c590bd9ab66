// Package sutureext adapts suture supervisors to slog and to services that
// must not be restarted.
package sutureext

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

func NewSimple(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: EventHook(),
	})
}

func EventHook() suture.EventHook {
	log := slog.With("package", "suture")

	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			log.Warn("Service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			log.Error("Caught a service panic", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			log.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			if err, ok := e.Err.(error); ok && errors.Is(err, suture.ErrDoNotRestart) {
				log.Info("Service stopped", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", err)
				return
			}
			log.Error("Service failed", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err, "restarting", e.Restarting)
		case suture.EventBackoff:
			log.Debug("Too many service failures, entering the backoff state", "supervisor", e.SupervisorName)
		case suture.EventResume:
			log.Debug("Exiting backoff state", "supervisor", e.SupervisorName)
		default:
			log.Warn("Unknown supervisor event", "type", int(e.Type()), "event", e.String())
		}
	}
}

// Service forces the use of the String method.
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a stale context error from being read as a shutdown,
// because suture stops a service for good when it sees one.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	errs := []error{errors.New(err.Error())}
	for _, sentinel := range []error{suture.ErrDoNotRestart, suture.ErrTerminateSupervisorTree} {
		if errors.Is(err, sentinel) {
			errs = append(errs, sentinel)
		}
	}
	return errors.Join(errs...)
}

// OneShot wraps a service that must not be restarted once it returns, for
// example a watcher whose compositor global went away.
func OneShot(service Service) Service {
	return oneShot{Service: service}
}

type oneShot struct {
	Service
}

func (s oneShot) Serve(ctx context.Context) error {
	err := s.Service.Serve(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return errors.Join(suture.ErrDoNotRestart, err)
}

type ServiceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewServiceFunc(name string, fn func(ctx context.Context) error) ServiceFunc {
	return ServiceFunc{
		name: name,
		fn:   fn,
	}
}

func (s ServiceFunc) String() string {
	return s.name
}

func (s ServiceFunc) Serve(ctx context.Context) error {
	return s.fn(ctx)
}
