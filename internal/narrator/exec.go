package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
)

// ExecEngine drives an external speech program. The speak command receives a
// JSON request on stdin:
//
//	{"text": "...", "voice": "...", "rate": 1.0, "pitch": 0.8}
//
// and plays the audio itself. The optional list command prints one voice per
// line as "name<TAB>language".
type ExecEngine struct {
	speakCmd []string
	listCmd  []string
}

type execSpeakRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// NewExecEngine parses the speak and voice-list command templates. The list
// command may be empty; Voices then reports no voices and narration uses the
// engine default.
func NewExecEngine(speakCommand, listCommand string) (*ExecEngine, error) {
	parser := shellwords.NewParser()

	speak, err := parser.Parse(speakCommand)
	if err != nil {
		return nil, fmt.Errorf("parse speak command: %w", err)
	}
	if len(speak) == 0 {
		return nil, fmt.Errorf("speak command empty")
	}

	var list []string
	if listCommand != "" {
		list, err = parser.Parse(listCommand)
		if err != nil {
			return nil, fmt.Errorf("parse voice list command: %w", err)
		}
	}

	return &ExecEngine{speakCmd: speak, listCmd: list}, nil
}

// Voices runs the list command and parses its output.
func (e *ExecEngine) Voices(ctx context.Context) ([]Voice, error) {
	if len(e.listCmd) == 0 {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, e.listCmd[0], e.listCmd[1:]...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	var voices []Voice
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, lang, _ := strings.Cut(line, "\t")
		voices = append(voices, Voice{Name: name, Language: lang})
	}

	log.Debug().Int("count", len(voices)).Msg("Engine voices listed")
	return voices, nil
}

// Speak pipes the utterance to the speak command and waits for it to finish.
func (e *ExecEngine) Speak(ctx context.Context, u Utterance) error {
	payload, err := json.Marshal(execSpeakRequest{
		Text:  u.Text,
		Voice: u.Voice,
		Rate:  u.Rate,
		Pitch: u.Pitch,
	})
	if err != nil {
		return fmt.Errorf("marshal speak request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.speakCmd[0], e.speakCmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	log.Debug().
		Str("voice", u.Voice).
		Int("text_length", len(u.Text)).
		Msg("Speaking via external engine")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Cancelled narrations are expected when a new one starts.
			return ctx.Err()
		}
		return fmt.Errorf("speak command: %w", err)
	}
	return nil
}
