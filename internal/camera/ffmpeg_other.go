//go:build !linux && !darwin && !windows

package camera

// DefaultDevice is empty where ffmpeg has no known camera input; set one explicitly.
const DefaultDevice = ""

func inputArgs(device string, c Constraints) []string {
	args := []string{"-f", "video4linux2"}
	args = append(args, videoSize(c)...)
	return append(args, "-i", device)
}
