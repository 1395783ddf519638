package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/config"
	"github.com/GriffinCanCode/facekiosk/internal/health"
	"github.com/GriffinCanCode/facekiosk/internal/kiosk"
	"github.com/GriffinCanCode/facekiosk/internal/preview"
	"github.com/GriffinCanCode/facekiosk/internal/recognize"
	"github.com/GriffinCanCode/facekiosk/internal/server"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCmd(o *options) *cobra.Command {
	var autostart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the kiosk daemon (page, camera actions, live preview, health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := newDevice(o.cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), o.cfg, dev, autostart)
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", "", "HTTP listen address (default from HTTP_ADDR)")
	cmd.Flags().BoolVar(&autostart, "autostart", false, "start the camera as soon as the daemon is up")
	return cmd
}

// serve runs the HTTP server, and the health server when configured, until
// ctx is cancelled or a listener fails.
func serve(ctx context.Context, cfg *config.Config, dev camera.Device, autostart bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := server.NewHub()
	pv := preview.New(hub, cfg.Preview.Rate, cfg.Preview.MaxHashDistance)

	opts := []kiosk.Option{
		kiosk.WithQuality(cfg.Camera.JPEGQuality),
		kiosk.WithFacingMode(cfg.Camera.FacingMode),
		kiosk.OnStream(pv.Attach),
		kiosk.OnStream(hub.StreamChanged),
	}
	var hs *health.Service
	if cfg.HealthAddr != "" {
		hs = health.New()
		opts = append(opts, kiosk.OnStream(hs.StreamChanged))
	}

	ctrl := kiosk.New(dev,
		recognize.New(cfg.RecognizeURL, cfg.RequestTimeout),
		kiosk.Displays{hub, kiosk.LogDisplay{}},
		opts...,
	)
	defer ctrl.Close()

	srv := server.New(ctrl, hub, cfg)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("kiosk server starting", "http", cfg.HTTPAddr, "recognize", cfg.RecognizeURL, "camera", cfg.Camera.Backend)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if hs != nil {
		go func() {
			if err := hs.ListenAndServe(ctx, cfg.HealthAddr); err != nil {
				errCh <- err
			}
		}()
	}

	if autostart {
		if err := ctrl.Start(ctx); err != nil {
			slog.Warn("camera autostart failed", "error", err)
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		slog.Error("server error", "error", runErr)
	}

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	_ = ctrl.Close()
	pv.Detach()
	slog.Info("shutdown complete")
	return runErr
}
