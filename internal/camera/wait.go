package camera

import (
	"context"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

// WaitFrame blocks until s has a frame with non-zero dimensions.
func WaitFrame(ctx context.Context, s Stream) (Frame, error) {
	if fr, ok := s.Frame(); ok {
		return fr, nil
	}
	ch, cancel := s.Subscribe()
	defer cancel()

	// A frame may have landed between the check and the subscription.
	if fr, ok := s.Frame(); ok {
		return fr, nil
	}
	for {
		select {
		case <-ctx.Done():
			return Frame{}, apperrors.Wrap(ctx.Err(), apperrors.FrameNotReady, "no frame from camera")
		case fr, ok := <-ch:
			if !ok {
				return Frame{}, apperrors.New(apperrors.Closed, "camera stream stopped")
			}
			if !fr.Empty() {
				return fr, nil
			}
		}
	}
}
