package preview

// Preview defaults
const (
	// Frames per second sent to the page
	DefaultRate = 5.0

	// Hamming distance at or below which two frames count as the same picture
	DefaultMaxHashDistance = 2

	// JPEG quality for frames the device did not deliver pre-encoded
	EncodeQuality = 70
)
