//go:build windows

package camera

import "strings"

// DefaultDevice is the usual name of a laptop's built-in webcam.
const DefaultDevice = "video=Integrated Camera"

func inputArgs(device string, c Constraints) []string {
	if device == "" {
		device = DefaultDevice
	}
	if !strings.HasPrefix(device, "video=") {
		device = "video=" + device
	}
	args := []string{"-f", "dshow"}
	args = append(args, videoSize(c)...)
	return append(args, "-i", device)
}
