package narrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fpang/storycam/internal/prefs"
)

func TestStripEmphasis(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a *dramatic* pause", "a dramatic pause"},
		{"**bold** and *italic*", "bold and italic"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripEmphasis(tt.in); got != tt.want {
			t.Errorf("StripEmphasis(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelectVoiceFallbackOrder(t *testing.T) {
	voices := []Voice{
		{Name: "Anna", Language: "de-DE"},
		{Name: "Serena", Language: "en-GB"},
		{Name: "Samantha", Language: "en-US"},
		{Name: "Daniel", Language: "en-GB"},
	}

	tests := []struct {
		name  string
		saved string
		avail []Voice
		want  string
	}{
		{"saved voice matched exactly", "Daniel", voices, "Daniel"},
		{"missing saved falls back to en-US", "Ghost", voices, "Samantha"},
		{"no en-US falls back to any English", "Ghost", []Voice{{Name: "Anna", Language: "de-DE"}, {Name: "Serena", Language: "en-GB"}}, "Serena"},
		{"no English falls back to engine default", "Ghost", []Voice{{Name: "Anna", Language: "de-DE"}}, ""},
		{"empty list falls back to engine default", "Ghost", nil, ""},
		{"no saved preference goes straight to en-US", "", voices, "Samantha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectVoice(tt.avail, tt.saved); got != tt.want {
				t.Errorf("SelectVoice() = %q, want %q", got, tt.want)
			}
		})
	}
}

// fakeEngine records utterances and blocks each Speak until its context is
// cancelled or the release channel is closed.
type fakeEngine struct {
	mu        sync.Mutex
	voices    []Voice
	voiceErrs []error
	calls     int

	spoken    []Utterance
	cancelled []bool
	release   chan struct{}
}

func (f *fakeEngine) Voices(ctx context.Context) ([]Voice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.voiceErrs) > 0 {
		err := f.voiceErrs[0]
		f.voiceErrs = f.voiceErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.voices, nil
}

func (f *fakeEngine) Speak(ctx context.Context, u Utterance) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, u)
	idx := len(f.spoken) - 1
	f.cancelled = append(f.cancelled, false)
	release := f.release
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelled[idx] = true
		f.mu.Unlock()
		return ctx.Err()
	case <-release:
		return nil
	}
}

func newFakeEngine(voices ...Voice) *fakeEngine {
	return &fakeEngine{voices: voices, release: make(chan struct{})}
}

func testNarrator(t *testing.T, engine Engine, savedVoice string, rate float64) *Narrator {
	t.Helper()
	p := &prefs.Prefs{VoiceName: savedVoice, SpeechRate: rate}
	n := New(engine, p)
	n.retryWait = time.Millisecond
	return n
}

func TestSpeakCancelsPreviousNarration(t *testing.T) {
	engine := newFakeEngine(Voice{Name: "Samantha", Language: "en-US"})
	n := testNarrator(t, engine, "", 0)

	n.Speak(context.Background(), "story A")
	n.Speak(context.Background(), "story B")

	close(engine.release)
	n.Wait()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.spoken) != 2 {
		t.Fatalf("engine spoke %d times, want 2", len(engine.spoken))
	}
	if !engine.cancelled[0] {
		t.Error("first narration should have been cancelled")
	}
	if engine.cancelled[1] {
		t.Error("second narration should have completed")
	}
	if engine.spoken[0].Text != "story A" || engine.spoken[1].Text != "story B" {
		t.Errorf("utterances = %+v", engine.spoken)
	}
}

func TestSpeakStripsEmphasisAndAppliesPrefs(t *testing.T) {
	engine := newFakeEngine(Voice{Name: "Daniel", Language: "en-GB"})
	n := testNarrator(t, engine, "Daniel", 1.5)

	n.Speak(context.Background(), "a *very* good story")
	close(engine.release)
	n.Wait()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	u := engine.spoken[0]
	if u.Text != "a very good story" {
		t.Errorf("Text = %q, want emphasis stripped", u.Text)
	}
	if u.Voice != "Daniel" {
		t.Errorf("Voice = %q, want saved preference", u.Voice)
	}
	if u.Rate != 1.5 {
		t.Errorf("Rate = %v, want 1.5", u.Rate)
	}
	if u.Pitch != loweredPitch {
		t.Errorf("Pitch = %v, want fixed lowered pitch %v", u.Pitch, loweredPitch)
	}
}

func TestStopCancelsNarration(t *testing.T) {
	engine := newFakeEngine()
	n := testNarrator(t, engine, "", 0)

	n.Speak(context.Background(), "endless story")
	n.Stop()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.spoken) != 1 || !engine.cancelled[0] {
		t.Errorf("Stop() did not cancel the narration: %+v", engine.cancelled)
	}
}

func TestListVoicesRetriesOnceWhenEmpty(t *testing.T) {
	engine := newFakeEngine()
	n := testNarrator(t, engine, "", 0)

	// First call returns no voices, the retry still returns none; narration
	// proceeds with the engine default instead of failing.
	n.Speak(context.Background(), "quiet room")
	n.Stop()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.calls != 2 {
		t.Errorf("Voices() called %d times, want 2 (initial + one retry)", engine.calls)
	}
	if engine.spoken[0].Voice != "" {
		t.Errorf("Voice = %q, want engine default", engine.spoken[0].Voice)
	}
}
