package cli

import (
	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/config"
	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

// backends maps config.Camera.Backend to a device constructor. The opencv
// backend registers itself when built with -tags opencv.
var backends = map[string]func(device string) camera.Device{
	"ffmpeg": func(device string) camera.Device { return camera.NewFFmpeg(device) },
}

func newDevice(cfg *config.Config) (camera.Device, error) {
	open, ok := backends[cfg.Camera.Backend]
	if !ok {
		return nil, apperrors.Newf(apperrors.ConfigInvalid,
			"camera backend %q is not available in this build", cfg.Camera.Backend)
	}
	return open(cfg.Camera.Device), nil
}
