// Package chat talks to the Gemini API. A single capture issues two
// independent requests against the same client: a structured labeling call
// whose failures degrade to an empty result, and a streaming story call
// whose failures are loud: labels are decorative, the story is the product.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// NewGeminiClient creates a Gemini API client authenticated with the given
// API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}
