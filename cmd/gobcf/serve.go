package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/internal/bridge"
	"github.com/philipparndt/gobcf/internal/dispatch"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/watcher"
)

var serveAddr string

const sourceInbox = "inbox"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP bridge and the viewpoint inbox",
	Long: `Run the document mutation loop and accept viewpoints from the HTTP bridge and
from the inbox directory. Only the newest pending viewpoint is applied. The scene is
saved on shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	loop := dispatch.NewLoop()
	// the memory host renders as soon as the loop is idle
	loop.SetIdle(s.doc.Idle)

	// bridge and inbox share one mailbox so only the newest viewpoint is applied
	apply := dispatch.NewEvent(loop, "apply", func(ctx context.Context, req *bridge.ApplyRequest) error {
		return s.apply(ctx, req.Source, req.Viewpoint)
	})
	// only the bridge asks for exports while serving
	export := dispatch.NewEvent(loop, "export", func(ctx context.Context, req *bridge.ExportRequest) error {
		vp, err := s.export(ctx, bridge.Source)
		req.Viewpoint = vp
		return err
	})

	if cfg.Inbox.Dir != "" {
		inbox, err := watcher.NewInbox(cfg.Inbox.Dir, cfg.Inbox.Debounce, func(path string, vp *bcf.Viewpoint) {
			go func() {
				if err := <-apply.Raise(&bridge.ApplyRequest{Source: sourceInbox, Viewpoint: vp}); err != nil && !errors.Is(err, dispatch.ErrClosed) {
					logging.Logger().Warn("Inbox viewpoint not applied", "path", path, "error", err)
				}
			}()
		})
		if err != nil {
			return err
		}
		defer inbox.Close()
		inbox.Start()
		logging.Logger().Info("Watching inbox", "dir", inbox.Dir())
	}

	server := bridge.New(apply, export, bridge.Config{
		ReadTimeout:   cfg.Bridge.ReadTimeout,
		WriteTimeout:  cfg.Bridge.WriteTimeout,
		ExportTimeout: cfg.Bridge.ExportTimeout,
	})

	addr := cfg.Bridge.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	loopDone := make(chan error, 1)
	listenDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()
	go func() { listenDone <- server.Listen(addr) }()

	select {
	case <-ctx.Done():
	case err := <-listenDone:
		if err != nil {
			logging.Logger().Error("Bridge stopped", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Warn("Bridge shutdown", "error", err)
	}

	// the scene is only saved once no handler can touch it anymore
	<-loopDone
	return s.save()
}
