package narrator

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
)

const (
	chimeSampleRate = 44100
	chimeBitDepth   = 16
)

// Chime is the small synthesized lead-in played before narration starts: two
// rising sine tones, generated on the fly and handed to an external audio
// player. With no player configured it is a no-op.
type Chime struct {
	playCmd []string
}

// NewChime parses the player command template. The chime WAV path is
// appended as the final argument, e.g. "aplay -q" or "afplay".
func NewChime(playCommand string) (*Chime, error) {
	if playCommand == "" {
		return &Chime{}, nil
	}
	args, err := shellwords.NewParser().Parse(playCommand)
	if err != nil {
		return nil, fmt.Errorf("parse player command: %w", err)
	}
	return &Chime{playCmd: args}, nil
}

// Play synthesizes the chime into a fresh temp WAV and plays it, blocking
// until the player exits. The file is removed afterwards; concurrent runs
// never share a path. Failures are logged and swallowed; a missing chime
// never blocks narration.
func (c *Chime) Play(ctx context.Context) {
	if len(c.playCmd) == 0 {
		return
	}

	tmp, err := os.CreateTemp("", "storycam-chime-*.wav")
	if err != nil {
		log.Warn().Err(err).Msg("Chime temp file creation failed")
		return
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := writeChimeWAV(path); err != nil {
		log.Warn().Err(err).Msg("Chime synthesis failed")
		return
	}

	args := append(append([]string{}, c.playCmd[1:]...), path)
	cmd := exec.CommandContext(ctx, c.playCmd[0], args...)
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("Chime playback failed")
	}
}

// writeChimeWAV renders two short rising tones (A5 then E6) with a linear
// fade-out to avoid clicks.
func writeChimeWAV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chime file: %w", err)
	}
	defer file.Close()

	enc := wav.NewEncoder(file, chimeSampleRate, chimeBitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: chimeSampleRate},
		SourceBitDepth: chimeBitDepth,
	}
	buf.Data = append(buf.Data, toneSamples(880.0, 0.12)...)
	buf.Data = append(buf.Data, toneSamples(1318.5, 0.18)...)

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write chime samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize chime: %w", err)
	}
	return nil
}

// toneSamples synthesizes one sine tone of the given frequency and duration.
func toneSamples(freq, seconds float64) []int {
	n := int(chimeSampleRate * seconds)
	samples := make([]int, n)
	const amplitude = 0.4 * math.MaxInt16
	for i := range samples {
		fade := 1.0 - float64(i)/float64(n)
		v := amplitude * fade * math.Sin(2*math.Pi*freq*float64(i)/chimeSampleRate)
		samples[i] = int(v)
	}
	return samples
}
