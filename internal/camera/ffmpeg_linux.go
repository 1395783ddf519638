//go:build linux

package camera

// DefaultDevice is the first V4L2 capture node.
const DefaultDevice = "/dev/video0"

func inputArgs(device string, c Constraints) []string {
	if device == "" {
		device = DefaultDevice
	}
	args := []string{"-f", "v4l2"}
	args = append(args, videoSize(c)...)
	return append(args, "-i", device)
}
