//go:build opencv

package cli

import (
	"github.com/GriffinCanCode/facekiosk/internal/camera"
	"github.com/GriffinCanCode/facekiosk/internal/camera/opencv"
)

func init() {
	backends["opencv"] = func(device string) camera.Device { return opencv.New(device) }
}
