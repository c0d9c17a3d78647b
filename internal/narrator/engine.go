// Package narrator turns the finished story into audible speech through a
// pluggable speech engine, with a small synthesized chime as the lead-in.
// The engine itself is an external collaborator; this package owns the
// policy around it: voice selection, rate and pitch, markdown stripping, and
// the one-utterance-at-a-time rule.
package narrator

import "context"

// Voice is one voice offered by a speech engine.
type Voice struct {
	// Name is the engine's identifier for the voice, matched exactly
	// against the saved preference.
	Name string

	// Language is a BCP 47 style tag, e.g. "en-US".
	Language string
}

// Utterance is a single narration request.
type Utterance struct {
	Text string

	// Voice is the engine voice name; empty selects the engine default.
	Voice string

	// Rate is the speech rate multiplier; zero means engine default.
	Rate float64

	// Pitch is the pitch multiplier; zero means engine default.
	Pitch float64
}

// Engine is the contract a speech backend fulfils. Speak blocks until the
// utterance finishes or ctx is cancelled; cancellation must stop the audio.
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}
