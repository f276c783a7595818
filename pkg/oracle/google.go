package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleOracle implements the Oracle interface for Gemini models.
type GoogleOracle struct {
	client *genai.Client
}

// NewGoogleOracle creates a new Google Gemini oracle.
func NewGoogleOracle(apiKey string) (*GoogleOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleOracle{client: client}, nil
}

// Name returns the oracle identifier.
func (o *GoogleOracle) Name() string {
	return "google"
}

// Models returns the list of supported Gemini models.
func (o *GoogleOracle) Models() []string {
	return []string{
		"gemini-2.0-pro",
	}
}

// Complete sends a scoring prompt to Gemini and returns the response text.
func (o *GoogleOracle) Complete(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := o.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("google API error: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("google returned no candidates")
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	return content, nil
}
