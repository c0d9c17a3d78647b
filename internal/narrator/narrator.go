package narrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fpang/storycam/internal/prefs"
	"github.com/rs/zerolog/log"
)

// loweredPitch is the fixed storyteller pitch: a touch below the engine
// default on every narration.
const loweredPitch = 0.8

// voiceListRetryWait is how long to wait before the single retry when the
// engine reports no voices. Engines that load voices asynchronously can
// legitimately return an empty list right after startup.
const voiceListRetryWait = 500 * time.Millisecond

// Narrator speaks story text aloud. Starting a new narration always cancels
// the one in progress: at most one utterance is ever audible.
type Narrator struct {
	engine    Engine
	prefs     *prefs.Prefs
	retryWait time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Narrator using the saved voice and rate preferences.
func New(engine Engine, p *prefs.Prefs) *Narrator {
	return &Narrator{engine: engine, prefs: p, retryWait: voiceListRetryWait}
}

// StripEmphasis removes markdown emphasis markers so the raw syntax is not
// read aloud.
func StripEmphasis(text string) string {
	return strings.ReplaceAll(text, "*", "")
}

// SelectVoice picks a voice name from the available list. Priority order:
//  1. the saved voice, matched by exact name
//  2. any en-US voice
//  3. any English voice
//  4. empty string, meaning the engine default
func SelectVoice(voices []Voice, saved string) string {
	if saved != "" {
		for _, v := range voices {
			if v.Name == saved {
				return v.Name
			}
		}
	}
	for _, v := range voices {
		if strings.EqualFold(v.Language, "en-US") {
			return v.Name
		}
	}
	for _, v := range voices {
		if len(v.Language) >= 2 && strings.EqualFold(v.Language[:2], "en") {
			return v.Name
		}
	}
	return ""
}

// Speak starts narrating text, cancelling any narration already in progress.
// It returns immediately; use Wait to block until the utterance finishes.
func (n *Narrator) Speak(ctx context.Context, text string) {
	text = StripEmphasis(text)

	n.mu.Lock()
	defer n.mu.Unlock()

	// Only one utterance audible at a time.
	if n.cancel != nil {
		n.cancel()
		<-n.done
	}

	voice := SelectVoice(n.listVoices(ctx), n.prefs.VoiceName)
	u := Utterance{
		Text:  text,
		Voice: voice,
		Rate:  n.prefs.SpeechRate,
		Pitch: loweredPitch,
	}

	speakCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	n.cancel = cancel
	n.done = done

	log.Info().
		Str("voice", voice).
		Float64("rate", u.Rate).
		Int("text_length", len(text)).
		Msg("Narration starting")

	go func() {
		defer close(done)
		if err := n.engine.Speak(speakCtx, u); err != nil && speakCtx.Err() == nil {
			log.Warn().Err(err).Msg("Narration failed")
		}
	}()
}

// Wait blocks until the current narration finishes or is cancelled.
func (n *Narrator) Wait() {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop cancels any narration in progress and waits for the engine to let go.
func (n *Narrator) Stop() {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel, n.done = nil, nil
	n.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		log.Debug().Msg("Narration cancelled")
	}
}

// listVoices fetches the engine's voice list, tolerating an empty first
// answer with a single delayed retry.
func (n *Narrator) listVoices(ctx context.Context) []Voice {
	voices, err := n.engine.Voices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Voice listing failed, using engine default")
		return nil
	}
	if len(voices) > 0 {
		return voices
	}

	time.Sleep(n.retryWait)
	voices, err = n.engine.Voices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Voice listing retry failed, using engine default")
		return nil
	}
	return voices
}
