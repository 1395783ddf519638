package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/config"
	"github.com/GriffinCanCode/facekiosk/internal/kiosk"
	"github.com/GriffinCanCode/facekiosk/internal/recognize"
	"github.com/GriffinCanCode/facekiosk/internal/render"
	"github.com/GriffinCanCode/facekiosk/internal/terminal"
)

const defaultFrameWait = 5 * time.Second

// Exit codes for snap, one per outcome.
var snapExitCodes = map[render.Kind]int{
	render.Success:       0,
	render.NoMatch:       2,
	render.ServerError:   3,
	render.RequestFailed: 4,
	render.NotReady:      5,
	render.CameraError:   6,
}

func newSnapCmd(o *options) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Start the camera, capture one frame and print the recognition result",
		Long: `Start the camera, wait for its first frame, send it for recognition and
print the outcome. Exit status: 0 recognised, 2 no match, 3 server error,
4 request failed, 5 no frame, 6 camera error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := newDevice(o.cfg)
			if err != nil {
				return err
			}
			out := snap(cmd.Context(), o.cfg, dev, wait, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code := snapExitCodes[out.Kind]; code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", defaultFrameWait, "how long to wait for the camera's first frame")
	return cmd
}

// snap runs one Start + Snap cycle against dev and returns the final outcome.
func snap(ctx context.Context, cfg *config.Config, dev camera.Device, wait time.Duration, out, status io.Writer) render.Outcome {
	disp := terminal.New(out, status)
	defer disp.Close()

	ctrl := kiosk.New(dev,
		recognize.New(cfg.RecognizeURL, cfg.RequestTimeout),
		disp,
		kiosk.WithQuality(cfg.Camera.JPEGQuality),
		kiosk.WithFacingMode(cfg.Camera.FacingMode),
	)
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		return disp.Last()
	}

	wctx, cancel := context.WithTimeout(ctx, wait)
	_, err := camera.WaitFrame(wctx, ctrl.Stream())
	cancel()
	if err != nil {
		// Snap shows the not-ready warning itself.
		slog.Debug("no frame before snap", "error", err, "wait", wait)
	}

	res, err := ctrl.Snap(ctx)
	if err != nil {
		return render.RequestError(err)
	}
	return res
}
