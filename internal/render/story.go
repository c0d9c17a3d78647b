// Package render is the presentation layer: the incrementally re-rendered
// markdown story and the label overlay. Both are side effects against an
// output surface; neither returns data the pipeline depends on.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// clearScreen repositions the cursor and wipes the terminal so each repaint
// replaces the previous one.
const clearScreen = "\x1b[2J\x1b[H"

// StoryView accumulates streamed story fragments and re-renders the FULL
// markdown text on every append. Re-render-whole-text is deliberate:
// stories are short, and correctness beats diffing.
//
// Pinned lines (the label reveal) are painted below the story on every
// repaint, so a label that resolved mid-stream is not wiped by the next
// fragment. Safe for concurrent use: fragments and pins arrive from
// different goroutines.
type StoryView struct {
	out     io.Writer
	render  func(markdown string) (string, error)
	repaint bool

	mu   sync.Mutex
	sb   strings.Builder
	pins []string
}

// NewStoryView builds a view that renders markdown with glamour at the given
// word-wrap width and repaints the terminal on each fragment.
func NewStoryView(out io.Writer, wrap int) (*StoryView, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &StoryView{out: out, render: r.Render, repaint: true}, nil
}

// Append adds one streamed fragment and repaints the whole accumulated text.
func (v *StoryView) Append(fragment string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sb.WriteString(fragment)
	v.paint(v.sb.String())
}

// Text returns the raw accumulated markdown, exactly the concatenation of
// every appended fragment in arrival order.
func (v *StoryView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sb.String()
}

// Pin adds a line that stays below the story across repaints.
func (v *StoryView) Pin(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pins = append(v.pins, line)
	v.paint(v.sb.String())
}

// PinWriter adapts Pin to an io.Writer: every line written becomes a pinned
// line. The label overlay writes here so its reveal shares the screen with
// the story instead of being wiped by the next fragment repaint.
func (v *StoryView) PinWriter() io.Writer {
	return pinWriter{v: v}
}

type pinWriter struct{ v *StoryView }

func (w pinWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		w.v.Pin(line)
	}
	return len(p), nil
}

// Fail discards any partial story and pinned labels and shows the given
// message in their place.
func (v *StoryView) Fail(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sb.Reset()
	v.sb.WriteString(message)
	v.pins = nil
	v.paint(message)
}

// Reset discards the accumulated text and pinned lines without painting,
// ready for the next capture.
func (v *StoryView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sb.Reset()
	v.pins = nil
}

// paint renders and writes the whole screen: story first, pinned lines
// below. Callers hold v.mu.
func (v *StoryView) paint(markdown string) {
	rendered, err := v.render(markdown)
	if err != nil {
		// Rendering trouble must not lose the story; fall back to raw text.
		log.Warn().Err(err).Msg("Markdown rendering failed, painting raw text")
		rendered = markdown
	}

	if v.repaint {
		fmt.Fprint(v.out, clearScreen)
	}
	fmt.Fprint(v.out, rendered)

	if len(v.pins) > 0 {
		fmt.Fprintln(v.out)
		for _, line := range v.pins {
			fmt.Fprintln(v.out, line)
		}
	}
}
