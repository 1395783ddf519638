//go:build darwin

package camera

import "strings"

// DefaultDevice is the first AVFoundation video device.
const DefaultDevice = "0"

func inputArgs(device string, c Constraints) []string {
	if device == "" {
		device = DefaultDevice
	}
	// "<video>:none" keeps AVFoundation from opening a microphone.
	if !strings.Contains(device, ":") {
		device += ":none"
	}
	args := []string{"-f", "avfoundation", "-framerate", "30"}
	args = append(args, videoSize(c)...)
	return append(args, "-i", device)
}
