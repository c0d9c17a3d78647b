package chat

import (
	"context"
	"math"
	"time"

	"github.com/fpang/storycam/internal/assets"
	"github.com/fpang/storycam/internal/jsonutil"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Position is a point in normalized fractional coordinates: x and y are in
// [0.0, 1.0] relative to the frame, independent of on-screen pixel size.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is a named point of interest within a frame.
type Label struct {
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// labelSchema declares the expected response shape so the model returns a
// clean JSON array instead of prose.
var labelSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name": {Type: genai.TypeString},
			"position": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"x": {Type: genai.TypeNumber},
					"y": {Type: genai.TypeNumber},
				},
				Required: []string{"x", "y"},
			},
		},
		Required: []string{"name", "position"},
	},
}

// DetectLabels asks Gemini for the objects visible in the encoded frame and
// their normalized center coordinates.
//
// Every failure (transport, empty response, unparseable JSON) degrades to an
// empty label set and is logged, never propagated. The story must still be
// tellable when labeling falls over, so this call has no error return.
func DetectLabels(ctx context.Context, client *genai.Client, model string, imageData []byte, mimeType string) []Label {
	log.Debug().
		Str("model", model).
		Int("image_bytes", len(imageData)).
		Msg("Requesting object labels")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   labelSchema,
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			{Text: assets.LabelingInstruction},
		},
	}}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Labeling request failed, continuing without labels")
		return nil
	}
	if resp == nil {
		log.Warn().Msg("Labeling returned nil response, continuing without labels")
		return nil
	}

	labels, err := parseLabels(resp.Text())
	if err != nil {
		log.Warn().Err(err).Msg("Labeling response unparseable, continuing without labels")
		return nil
	}

	log.Debug().
		Int("count", len(labels)).
		Dur("duration", time.Since(start)).
		Msg("Labels received")
	return labels
}

// parseLabels decodes the model's JSON array, drops unnamed entries, and
// clamps coordinates into [0,1].
func parseLabels(raw string) ([]Label, error) {
	parsed, err := jsonutil.Parse[[]Label](raw)
	if err != nil {
		return nil, err
	}

	labels := parsed[:0]
	for _, l := range parsed {
		if l.Name == "" {
			continue
		}
		l.Position.X = clamp01(l.Position.X)
		l.Position.Y = clamp01(l.Position.Y)
		labels = append(labels, l)
	}
	return labels, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
