// Package frame produces the single still image a session runs on. A Frame
// comes from either a webcam grab or an image file and is immutable once
// built: starting a new capture always builds a fresh Frame. A mirrored grab
// keeps its sensor-view pixels; mirroring is applied at presentation time.
package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Frame is one captured still image plus its mirror flag.
type Frame struct {
	// ID identifies the capture in logs and output filenames.
	ID string

	// Image is the decoded bitmap in sensor view, exactly as captured. This
	// is what gets encoded for the AI service, so label coordinates come
	// back in this orientation.
	Image image.Image

	// Mirrored records whether the user watched this capture through a
	// mirrored live preview. Presentation flips label x-coordinates and the
	// annotated artifact based on this flag; the stored bitmap is untouched.
	Mirrored bool

	// CapturedAt is the capture time, or the EXIF timestamp for file loads
	// that carry one.
	CapturedAt time.Time
}

// FromImage builds a Frame from a decoded bitmap. The bitmap must have known
// non-zero dimensions.
func FromImage(img image.Image, mirrored bool) (*Frame, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image has zero dimensions (%dx%d)", b.Dx(), b.Dy())
	}

	f := &Frame{
		ID:         uuid.NewString(),
		Image:      img,
		Mirrored:   mirrored,
		CapturedAt: time.Now(),
	}

	log.Debug().
		Str("frame_id", f.ID).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Bool("mirrored", mirrored).
		Msg("Frame created")
	return f, nil
}

// EncodeJPEG serializes the frame for transport to the AI service. Returns
// the compressed bytes and the MIME type. Quality is left to the encoder's
// default.
func (f *Frame) EncodeJPEG() ([]byte, string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, nil); err != nil {
		return nil, "", fmt.Errorf("encode frame: %w", err)
	}

	log.Debug().
		Str("frame_id", f.ID).
		Int("bytes", buf.Len()).
		Msg("Frame encoded for transport")
	return buf.Bytes(), "image/jpeg", nil
}

// DisplayImage returns the bitmap as the user saw it: flipped horizontally
// for mirrored captures, the stored bitmap otherwise.
func (f *Frame) DisplayImage() image.Image {
	if f.Mirrored {
		return flipHorizontal(f.Image)
	}
	return f.Image
}

// flipHorizontal returns a copy of img mirrored around its vertical axis.
func flipHorizontal(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	w := out.Bounds().Dx()
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < w/2; x++ {
			left := out.RGBAAt(x, y)
			right := out.RGBAAt(w-1-x, y)
			out.SetRGBA(x, y, right)
			out.SetRGBA(w-1-x, y, left)
		}
	}
	return out
}
