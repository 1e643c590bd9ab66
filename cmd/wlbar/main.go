package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/wlbar/internal/api"
	"github.com/ItsNotGoodName/wlbar/internal/bar"
	"github.com/ItsNotGoodName/wlbar/internal/build"
	"github.com/ItsNotGoodName/wlbar/internal/config"
	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/ItsNotGoodName/wlbar/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug   bool   `doc:"enable debug"`
	Host    string `doc:"host to listen on"`
	Port    int    `doc:"port to listen on" default:"8080"`
	Config  string `doc:"config file" default:".wlbar.yaml"`
	Display string `doc:"display to connect to, defaults to WAYLAND_DISPLAY or DISPLAY"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			return serve(ctx, options)
		})
	})

	cli.Root().Use = "wlbar"
	cli.Root().Short = "Taskbar and workspace state for Wayland and X11 bars"
	cli.Root().Version = build.Current.Version
	cli.Root().AddCommand(newDumpCmd())

	cli.Run()
}

func serve(ctx context.Context, options *Options) error {
	configFilePath, err := filepath.Abs(options.Config)
	if err != nil {
		return err
	}

	store, err := config.NewStore(config.NewDriver(configFilePath))
	if err != nil {
		return err
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}

	c := newChannels()
	backends, err := newBackends(cfg, options.Display, c)
	if err != nil {
		return err
	}

	super := sutureext.NewSimple("root")
	for _, backend := range backends {
		sutureext.Add(super, sutureext.OneShot(backend))
	}

	configWatcher := config.NewWatcher(configFilePath, config.DefaultDebounce)
	sutureext.Add(super, configWatcher)

	b := bar.New(store, bar.Channels{
		Toplevels:         c.toplevels,
		ToplevelRequests:  c.toplevelRequests,
		Workspaces:        c.workspaces,
		WorkspaceRequests: c.workspaceRequests,
		Reload:            configWatcher.Changed(),
	})
	sutureext.Add(super, b)

	sutureext.Add(super, api.NewServer(core.Address(options.Host, options.Port), api.NewRouter(b)))

	return super.Serve(ctx)
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
