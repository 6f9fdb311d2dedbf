package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/pierregondois/lisa/internal/bridge"
	"github.com/pierregondois/lisa/internal/mcpserver"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Run serves until a termination signal or a subsystem failure. The bridge
// and the MCP stdio server run as configured; systemd gets readiness and
// stopping notifications when the daemon is supervised.
func (a *App) Run(ctx context.Context, version string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if a.Config.Bridge.Enabled {
		br, err := bridge.New(a.FS, a.Config.Bridge.Root,
			time.Duration(a.Config.Bridge.DebounceMs)*time.Millisecond)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return br.Start(ctx)
		})
	}

	if a.Config.MCP.Enabled {
		srv := mcpserver.NewServer(version)
		g.Go(func() error {
			return srv.Listen(ctx)
		})
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("Bootstrap", "systemd notify failed: %v", err)
	} else if sent {
		logging.Debug("Bootstrap", "Notified systemd readiness")
	}
	logging.Info("Bootstrap", "Daemon running")

	err := g.Wait()
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	if errors.Is(err, context.Canceled) {
		logging.Info("Bootstrap", "Daemon shutting down")
		return nil
	}
	return err
}
