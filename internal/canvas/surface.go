// Package canvas holds the drawing surface a frame is copied into before
// it is serialized for recognition.
package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

// DataURLPrefix prefixes every JPEG data URL produced by a Surface.
const DataURLPrefix = "data:image/jpeg;base64,"

// DefaultQuality is used when a requested quality falls outside (0, 1].
const DefaultQuality = 0.92

// Surface is a resizable RGBA bitmap.
type Surface struct {
	img *image.RGBA
}

// New returns an empty 0x0 surface.
func New() *Surface {
	return &Surface{img: image.NewRGBA(image.Rectangle{})}
}

// Resize sets the surface to exactly w x h, clearing its contents.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Size returns the surface dimensions.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Draw copies src onto the surface at the origin, clipped to the surface.
func (s *Surface) Draw(src image.Image) {
	draw.Draw(s.img, s.img.Bounds(), src, src.Bounds().Min, draw.Src)
}

// Image exposes the surface bitmap.
func (s *Surface) Image() image.Image { return s.img }

// EncodeJPEG serializes the surface. quality is on the 0..1 scale.
func (s *Surface) EncodeJPEG(quality float64) ([]byte, error) {
	if w, h := s.Size(); w == 0 || h == 0 {
		return nil, apperrors.New(apperrors.EncodeFailed, "surface is empty")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.EncodeFailed, "encode jpeg")
	}
	return buf.Bytes(), nil
}

// EncodeDataURL serializes the surface as a base64 JPEG data URL.
func (s *Surface) EncodeDataURL(quality float64) (string, error) {
	data, err := s.EncodeJPEG(quality)
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// jpegQuality maps 0..1 onto image/jpeg's 1..100.
func jpegQuality(q float64) int {
	if q <= 0 || q > 1 || math.IsNaN(q) {
		q = DefaultQuality
	}
	n := int(math.Round(q * 100))
	return max(n, 1)
}

// DecodeDataURL returns the JPEG bytes carried by a data URL.
func DecodeDataURL(url string) ([]byte, error) {
	if len(url) < len(DataURLPrefix) || url[:len(DataURLPrefix)] != DataURLPrefix {
		return nil, apperrors.New(apperrors.Decode, "not a jpeg data url")
	}
	data, err := base64.StdEncoding.DecodeString(url[len(DataURLPrefix):])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Decode, "decode data url")
	}
	return data, nil
}
