package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"os"
	"time"

	"github.com/fpang/storycam/internal/chat"
	"github.com/fpang/storycam/internal/frame"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// defaultRevealDelay staggers the terminal reveal of successive labels to
// give a perceptible "scanning" feel. Cosmetic only; any fixed, monotonically
// increasing per-label delay reproduces it.
const defaultRevealDelay = 350 * time.Millisecond

// Overlay presents a frame's label set: a staggered terminal reveal plus an
// annotated copy of the frame on disk.
type Overlay struct {
	out   io.Writer
	delay time.Duration
	sleep func(time.Duration)
}

// NewOverlay builds an overlay writing to out with the default reveal delay.
func NewOverlay(out io.Writer) *Overlay {
	return &Overlay{out: out, delay: defaultRevealDelay, sleep: time.Sleep}
}

// DisplayPercent converts a label's normalized position into the percentage
// coordinates it should be displayed at. The x-axis is flipped (x' = 1-x)
// when the frame was mirrored, so labels land on the object the user saw,
// not its mirror image. Non-mirrored captures pass through unchanged.
func DisplayPercent(p chat.Position, mirrored bool) (x, y float64) {
	x = p.X
	if mirrored {
		x = 1 - x
	}
	return x * 100, p.Y * 100
}

// Reveal prints the labels one at a time with a fixed per-index delay.
func (o *Overlay) Reveal(labels []chat.Label, mirrored bool) {
	if len(labels) == 0 {
		fmt.Fprintln(o.out, "   (no objects detected)")
		return
	}

	for i, l := range labels {
		if i > 0 {
			o.sleep(o.delay)
		}
		x, y := DisplayPercent(l.Position, mirrored)
		fmt.Fprintf(o.out, "   🔍 %s at (%.0f%%, %.0f%%)\n", l.Name, x, y)
	}
}

// WriteAnnotated draws the labels onto the frame as the user saw it and
// writes the result as a JPEG at path. Each label gets a crosshair at its
// display position with the name beside it. Both the bitmap and the
// coordinates are in display view, so markers land on the objects they name
// regardless of mirroring.
func WriteAnnotated(f *frame.Frame, labels []chat.Label, path string) error {
	src := f.DisplayImage()
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)

	marker := color.RGBA{R: 255, G: 215, B: 0, A: 255}
	for _, l := range labels {
		xPct, yPct := DisplayPercent(l.Position, f.Mirrored)
		x := int(math.Round(xPct / 100 * float64(b.Dx())))
		y := int(math.Round(yPct / 100 * float64(b.Dy())))
		drawCrosshair(out, x, y, marker)
		drawName(out, x, y, l.Name, marker)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create annotated image: %w", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, out, nil); err != nil {
		return fmt.Errorf("encode annotated image: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("labels", len(labels)).
		Msg("Annotated frame written")
	return nil
}

// drawCrosshair paints a small cross centered at (x, y), clipped to the image.
func drawCrosshair(img *image.RGBA, x, y int, c color.RGBA) {
	const arm = 8
	b := img.Bounds()
	for d := -arm; d <= arm; d++ {
		if px := x + d; px >= b.Min.X && px < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
			img.SetRGBA(px, y, c)
		}
		if py := y + d; py >= b.Min.Y && py < b.Max.Y && x >= b.Min.X && x < b.Max.X {
			img.SetRGBA(x, py, c)
		}
	}
}

// drawName renders the label text just right of the crosshair.
func drawName(img *image.RGBA, x, y int, name string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+12, y+4),
	}
	d.DrawString(name)
}
