package frame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
)

// ErrCameraUnavailable reports that the capture command is missing or the
// camera could not be opened. Callers downgrade to the file path on this
// error instead of aborting: the capture source failing must not take the
// upload path down with it.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Grabber captures a single still frame by exec'ing an external capture
// command that writes one encoded image to stdout, e.g.
//
//	ffmpeg -f v4l2 -i /dev/video0 -frames:v 1 -f image2 -
//
// The camera driver stays someone else's problem; the Grabber only decodes
// what the command emits.
type Grabber struct {
	cmd []string
}

// NewGrabber parses the capture command template.
func NewGrabber(command string) (*Grabber, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("capture command empty")
	}
	return &Grabber{cmd: args}, nil
}

// Grab runs the capture command and builds a Frame from its output. When
// mirror is true the frame is marked as coming from a mirrored preview, so
// presentation flips label positions to match what the user saw.
func (g *Grabber) Grab(ctx context.Context, mirror bool) (*Frame, error) {
	log.Debug().Strs("cmd", g.cmd).Msg("Grabbing webcam frame")

	cmd := exec.CommandContext(ctx, g.cmd[0], g.cmd[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Warn().
			Err(err).
			Str("stderr", stderr.String()).
			Msg("Capture command failed")
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: capture command not found: %s", ErrCameraUnavailable, g.cmd[0])
		}
		return nil, fmt.Errorf("%w: %s", ErrCameraUnavailable, firstLine(stderr.String()))
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: capture output not a decodable image: %s", ErrCameraUnavailable, err)
	}

	return FromImage(img, mirror)
}

// firstLine trims command stderr down to something fit for an error message.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	if s == "" {
		return "capture command exited with an error"
	}
	return s
}
