package session

import (
	"context"
	"fmt"

	"github.com/fpang/storycam/internal/chat"
	"github.com/fpang/storycam/internal/frame"
	"github.com/rs/zerolog/log"
)

// ApologyMessage replaces any partial story output when the stream fails.
const ApologyMessage = "**Well, this is awkward.** The storyteller walked off stage mid-sentence. Capture again and they'll pretend it never happened."

// Labeler asks for object labels. By contract it cannot fail: every error
// degrades to an empty set inside the implementation.
type Labeler interface {
	DetectLabels(ctx context.Context, imageData []byte, mimeType string) []chat.Label
}

// Storyteller streams the story, invoking onFragment per fragment in arrival
// order and returning the full text once the stream is exhausted.
type Storyteller interface {
	StreamStory(ctx context.Context, imageData []byte, mimeType string, onFragment func(string)) (string, error)
}

// StoryView is the incremental markdown surface for the story.
type StoryView interface {
	Append(fragment string)
	Text() string
	Fail(message string)
	Reset()
}

// LabelView presents a resolved label set over the frame.
type LabelView interface {
	Reveal(labels []chat.Label, mirrored bool)
}

// Speaker narrates the finished story. Speak is fire-and-forget and cancels
// any narration already in progress; Wait blocks until the current one ends.
type Speaker interface {
	Speak(ctx context.Context, text string)
	Wait()
	Stop()
}

// Controller drives the capture pipeline and owns all session state: the
// current State, the live Frame, and the resolved label set. Single-threaded
// by construction: the one goroutine it spawns per capture only touches the
// label channel and the LabelView.
type Controller struct {
	labeler     Labeler
	storyteller Storyteller
	view        StoryView
	labelView   LabelView
	speaker     Speaker

	state    State
	frame    *frame.Frame
	labelSet []chat.Label
}

// New builds a Controller in the live state.
func New(labeler Labeler, storyteller Storyteller, view StoryView, labelView LabelView, speaker Speaker) *Controller {
	return &Controller{
		labeler:     labeler,
		storyteller: storyteller,
		view:        view,
		labelView:   labelView,
		speaker:     speaker,
		state:       StateLive,
	}
}

// State returns the current application state.
func (c *Controller) State() State {
	return c.state
}

// Labels returns the label set of the current result, if any.
func (c *Controller) Labels() []chat.Label {
	return c.labelSet
}

// Capture runs the full pipeline for one frame. It is rejected unless the
// controller is live, so a second capture during processing is a no-op
// error. On story failure the apology replaces any partial output, all
// session artifacts are discarded, and the controller returns to live with
// the error; labeling failure alone never aborts the pipeline.
func (c *Controller) Capture(ctx context.Context, f *frame.Frame) error {
	if !canTransition(c.state, StateProcessing) {
		return fmt.Errorf("capture rejected in state %q", c.state)
	}

	// Starting a new capture invalidates everything from the previous one.
	c.frame = f
	c.labelSet = nil
	c.view.Reset()
	c.setState(StateProcessing)

	data, mimeType, err := f.EncodeJPEG()
	if err != nil {
		c.frame = nil
		c.setState(StateLive)
		return fmt.Errorf("encode capture: %w", err)
	}

	// Labeling and story generation are independent and launched together.
	// Labels are revealed the moment the request resolves, without waiting
	// on the story stream.
	labelCh := make(chan []chat.Label, 1)
	go func() {
		labels := c.labeler.DetectLabels(ctx, data, mimeType)
		c.labelView.Reveal(labels, f.Mirrored)
		labelCh <- labels
	}()

	story, err := c.storyteller.StreamStory(ctx, data, mimeType, c.view.Append)
	if err != nil {
		log.Error().Err(err).Str("frame_id", f.ID).Msg("Story generation failed")
		c.view.Fail(ApologyMessage)
		<-labelCh // let labeling settle; its result is discarded with the rest
		c.frame = nil
		c.labelSet = nil
		c.setState(StateLive)
		return fmt.Errorf("story generation: %w", err)
	}

	c.labelSet = <-labelCh

	// Narration begins only once the story has been received in full.
	c.speaker.Speak(ctx, story)
	c.speaker.Wait()

	c.setState(StateResult)
	log.Info().
		Str("frame_id", f.ID).
		Int("labels", len(c.labelSet)).
		Int("story_length", len(story)).
		Msg("Capture complete")
	return nil
}

// Reset returns from result to live: discards the frame, story text, and
// labels, cancels any narration still playing, and re-arms capture. Calling
// it while already live is a harmless no-op.
func (c *Controller) Reset() error {
	if c.state == StateLive {
		return nil
	}
	if !canTransition(c.state, StateLive) {
		return fmt.Errorf("reset rejected in state %q", c.state)
	}

	c.speaker.Stop()
	c.frame = nil
	c.labelSet = nil
	c.view.Reset()
	c.setState(StateLive)
	return nil
}

func (c *Controller) setState(to State) {
	log.Debug().
		Stringer("from", c.state).
		Stringer("to", to).
		Msg("State transition")
	c.state = to
}
