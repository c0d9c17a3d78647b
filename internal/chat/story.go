package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/storycam/internal/assets"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// StreamStory asks Gemini to improvise a short story about the encoded frame
// and streams the result. Fragments arrive in generation order; onFragment
// is called once per fragment before the next one is awaited, so the caller
// can render incrementally. The full concatenated text is returned after the
// stream is exhausted.
//
// Unlike labeling, a stream error here aborts and is returned: the story is
// the primary deliverable and its failure must reach the state machine.
func StreamStory(
	ctx context.Context,
	client *genai.Client,
	model string,
	imageData []byte,
	mimeType string,
	hint string,
	onFragment func(fragment string),
) (string, error) {
	log.Debug().
		Str("model", model).
		Int("image_bytes", len(imageData)).
		Bool("has_hint", hint != "").
		Msg("Starting story stream")

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.StorySystemPrompt}},
		},
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			{Text: assets.RenderStoryInstruction(hint)},
		},
	}}

	var story string
	fragments := 0
	start := time.Now()

	for resp, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			log.Error().
				Err(err).
				Int("fragments", fragments).
				Dur("duration", time.Since(start)).
				Msg("Story stream failed")
			return "", fmt.Errorf("story stream: %w", err)
		}

		fragment := resp.Text()
		if fragment == "" {
			continue
		}
		story += fragment
		fragments++
		if onFragment != nil {
			onFragment(fragment)
		}
	}

	if story == "" {
		return "", fmt.Errorf("story stream produced no text")
	}

	log.Debug().
		Int("fragments", fragments).
		Int("length", len(story)).
		Dur("duration", time.Since(start)).
		Msg("Story stream complete")
	return story, nil
}
