package frame

import (
	"fmt"
	"image"
	"io"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// LoadFile decodes an image file into a Frame. File loads are never mirrored:
// the user picked the file, there was no mirrored preview to match. When the
// file carries an EXIF timestamp it replaces the wall-clock capture time.
//
// Supported formats: JPEG, PNG, GIF, WebP.
func LoadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	// EXIF first; imagemeta only reads the metadata bytes, then we rewind
	// for the pixel decode. Missing or unreadable metadata is fine.
	taken := exifTimestamp(file, path)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind image: %w", err)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	f, err := FromImage(img, false)
	if err != nil {
		return nil, err
	}
	if !taken.IsZero() {
		f.CapturedAt = taken
	}

	log.Debug().
		Str("frame_id", f.ID).
		Str("path", path).
		Str("format", format).
		Bool("has_exif_date", !taken.IsZero()).
		Msg("Frame loaded from file")
	return f, nil
}

// exifTimestamp extracts the best available EXIF date from an open image
// file. Returns the zero time when no usable date is present.
func exifTimestamp(file *os.File, path string) (taken time.Time) {
	exifData, err := imagemeta.Decode(file)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata")
		return taken
	}

	// Priority: DateTimeOriginal > CreateDate > ModifyDate.
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		taken = exifData.DateTimeOriginal()
	case !exifData.CreateDate().IsZero():
		taken = exifData.CreateDate()
	case !exifData.ModifyDate().IsZero():
		taken = exifData.ModifyDate()
	}
	return taken
}
