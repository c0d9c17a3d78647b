package render

import (
	"strings"
	"testing"
	"time"

	"github.com/fpang/storycam/internal/chat"
)

// testView returns a StoryView whose renderer records every markdown payload
// it is asked to paint, without touching the terminal.
func testView(t *testing.T) (*StoryView, *[]string) {
	t.Helper()
	var calls []string
	var out strings.Builder
	v := &StoryView{
		out: &out,
		render: func(md string) (string, error) {
			calls = append(calls, md)
			return md, nil
		},
	}
	return v, &calls
}

func TestAppendRerendersFullText(t *testing.T) {
	v, calls := testView(t)

	v.Append("Once upon ")
	v.Append("a *time*, ")
	v.Append("the end.")

	want := []string{
		"Once upon ",
		"Once upon a *time*, ",
		"Once upon a *time*, the end.",
	}
	if len(*calls) != len(want) {
		t.Fatalf("renderer called %d times, want %d", len(*calls), len(want))
	}
	for i := range want {
		if (*calls)[i] != want[i] {
			t.Errorf("render call %d = %q, want full accumulated text %q", i, (*calls)[i], want[i])
		}
	}
}

func TestTextIsFragmentConcatenation(t *testing.T) {
	v, _ := testView(t)

	fragments := []string{"a", "b", "c d", " e"}
	for _, f := range fragments {
		v.Append(f)
	}

	if got := v.Text(); got != strings.Join(fragments, "") {
		t.Errorf("Text() = %q, want exact concatenation", got)
	}
}

func TestFailReplacesPartialText(t *testing.T) {
	v, calls := testView(t)

	v.Append("half a sto")
	v.Fail("Sorry, the storyteller lost the thread. Try another capture.")

	if got := v.Text(); !strings.Contains(got, "lost the thread") {
		t.Errorf("Text() after Fail = %q, want apology", got)
	}
	if strings.Contains(v.Text(), "half a sto") {
		t.Error("partial story should be discarded on failure")
	}
	last := (*calls)[len(*calls)-1]
	if !strings.Contains(last, "lost the thread") {
		t.Errorf("last paint = %q, want apology", last)
	}
}

func TestResetClearsText(t *testing.T) {
	v, _ := testView(t)

	v.Append("leftovers")
	v.Pin("   🔍 cup at (50%, 50%)")
	v.Reset()

	if v.Text() != "" {
		t.Errorf("Text() after Reset = %q, want empty", v.Text())
	}

	var out strings.Builder
	v.out = &out
	v.Append("fresh start")
	if strings.Contains(out.String(), "cup") {
		t.Errorf("output = %q, pinned lines should not survive Reset", out.String())
	}
}

func TestPinnedLinesSurviveRepaint(t *testing.T) {
	// Labels resolving mid-stream must still be on screen once the story
	// finishes: the reveal is painted below the story on every repaint
	// instead of being wiped by the next clear-screen.
	var out strings.Builder
	v := &StoryView{
		out:     &out,
		render:  func(md string) (string, error) { return md, nil },
		repaint: true,
	}
	o := &Overlay{out: v.PinWriter(), sleep: func(time.Duration) {}}

	v.Append("Once upon a time, ")
	o.Reveal([]chat.Label{{Name: "cup", Position: chat.Position{X: 0.5, Y: 0.5}}}, false)
	v.Append("the end.")

	screens := strings.Split(out.String(), clearScreen)
	last := screens[len(screens)-1]
	if !strings.Contains(last, "Once upon a time, the end.") {
		t.Errorf("final screen = %q, want the full story", last)
	}
	if !strings.Contains(last, "cup") {
		t.Errorf("final screen = %q, want the revealed label still visible", last)
	}
}

func TestFailClearsPinnedLines(t *testing.T) {
	v, _ := testView(t)

	v.Pin("   🔍 cup at (50%, 50%)")
	v.Fail("Sorry, the storyteller lost the thread. Try another capture.")

	var out strings.Builder
	v.out = &out
	v.Append(" again")
	if strings.Contains(out.String(), "cup") {
		t.Errorf("output = %q, labels of a failed capture should be discarded", out.String())
	}
}

func TestPaintFallsBackOnRenderError(t *testing.T) {
	var out strings.Builder
	v := &StoryView{
		out: &out,
		render: func(md string) (string, error) {
			return "", errTest
		},
	}

	v.Append("raw markdown survives")

	if !strings.Contains(out.String(), "raw markdown survives") {
		t.Errorf("output = %q, want raw fallback", out.String())
	}
}

var errTest = errorString("render blew up")

type errorString string

func (e errorString) Error() string { return string(e) }
