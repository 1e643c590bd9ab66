package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ItsNotGoodName/wlbar/internal/config"
	"github.com/ItsNotGoodName/wlbar/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print toplevel and workspace events as they arrive",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := dump(ctx, options); err != nil && ctx.Err() == nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}
		}),
	}
}

func dump(ctx context.Context, options *Options) error {
	configFilePath, err := filepath.Abs(options.Config)
	if err != nil {
		return err
	}

	// The file is read but never created here.
	cfg := config.Default()
	driver := config.NewDriver(configFilePath)
	if ok, _ := driver.Exists(); ok {
		if cfg, err = driver.Read(); err != nil {
			return err
		}
		cfg = cfg.Normalize()
	}

	c := newChannels()
	backends, err := newBackends(cfg, options.Display, c)
	if err != nil {
		return err
	}

	super := sutureext.NewSimple("dump")
	for _, backend := range backends {
		sutureext.Add(super, sutureext.OneShot(backend))
	}
	sutureext.Add(super, sutureext.NewServiceFunc("dump.Printer", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-c.toplevels:
				pp.Println(ev)
			case ev := <-c.workspaces:
				pp.Println(ev)
			}
		}
	}))

	return super.Serve(ctx)
}
