package camera

import "time"

const (
	// FacingUser is the front (selfie) camera.
	FacingUser = "user"

	// OpenProbeTimeout bounds how long Open waits for the device to either
	// deliver a first frame or fail.
	OpenProbeTimeout = 3 * time.Second

	scanInitialBuffer = 1 << 20
	scanMaxBuffer     = 64 << 20
	stderrTail        = 512
)

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)
