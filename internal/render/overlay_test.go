package render

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/storycam/internal/chat"
	"github.com/fpang/storycam/internal/frame"
)

func TestDisplayPercent(t *testing.T) {
	tests := []struct {
		name     string
		pos      chat.Position
		mirrored bool
		wantX    float64
		wantY    float64
	}{
		{"center is self-symmetric under mirror", chat.Position{X: 0.5, Y: 0.5}, true, 50, 50},
		{"mirrored flips x", chat.Position{X: 0.2, Y: 0.4}, true, 80, 40},
		{"not mirrored keeps x", chat.Position{X: 0.2, Y: 0.4}, false, 20, 40},
		{"left edge mirrors to right edge", chat.Position{X: 0, Y: 1}, true, 100, 100},
		{"edges unchanged without mirror", chat.Position{X: 0, Y: 1}, false, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := DisplayPercent(tt.pos, tt.mirrored)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("DisplayPercent(%+v, %v) = (%v, %v), want (%v, %v)",
					tt.pos, tt.mirrored, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRevealStaggersLabels(t *testing.T) {
	var out strings.Builder
	var slept []time.Duration
	o := &Overlay{
		out:   &out,
		delay: 100 * time.Millisecond,
		sleep: func(d time.Duration) { slept = append(slept, d) },
	}

	labels := []chat.Label{
		{Name: "cup", Position: chat.Position{X: 0.5, Y: 0.5}},
		{Name: "lamp", Position: chat.Position{X: 0.2, Y: 0.8}},
		{Name: "plant", Position: chat.Position{X: 0.9, Y: 0.1}},
	}
	o.Reveal(labels, false)

	// No delay before the first label, one fixed delay before each subsequent.
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(slept))
	}
	for i, d := range slept {
		if d != 100*time.Millisecond {
			t.Errorf("sleep %d = %v, want fixed 100ms", i, d)
		}
	}

	text := out.String()
	cupIdx := strings.Index(text, "cup")
	lampIdx := strings.Index(text, "lamp")
	plantIdx := strings.Index(text, "plant")
	if !(cupIdx < lampIdx && lampIdx < plantIdx) {
		t.Errorf("labels out of order in output: %q", text)
	}
}

func TestRevealAppliesMirrorFlip(t *testing.T) {
	var out strings.Builder
	o := &Overlay{out: &out, sleep: func(time.Duration) {}}

	o.Reveal([]chat.Label{{Name: "cup", Position: chat.Position{X: 0.2, Y: 0.5}}}, true)

	if !strings.Contains(out.String(), "(80%, 50%)") {
		t.Errorf("output = %q, want x rendered at 80%%", out.String())
	}
}

func TestRevealEmptySet(t *testing.T) {
	var out strings.Builder
	o := &Overlay{out: &out, sleep: func(time.Duration) {}}

	o.Reveal(nil, false)

	if !strings.Contains(out.String(), "no objects detected") {
		t.Errorf("output = %q, want empty-set notice", out.String())
	}
}

func TestWriteAnnotated(t *testing.T) {
	f, err := frame.FromImage(image.NewRGBA(image.Rect(0, 0, 64, 48)), false)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "annotated.jpg")

	labels := []chat.Label{{Name: "cup", Position: chat.Position{X: 0.5, Y: 0.5}}}
	if err := WriteAnnotated(f, labels, path); err != nil {
		t.Fatalf("WriteAnnotated() error = %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("annotated file missing: %v", err)
	}
	defer file.Close()

	img, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("annotated file not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("annotated dimensions = %v, want 64x48", img.Bounds())
	}
}
