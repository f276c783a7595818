package oracle

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicOracle implements the Oracle interface for Claude models.
type AnthropicOracle struct {
	client anthropic.Client
}

// NewAnthropicOracle creates a new Anthropic oracle.
func NewAnthropicOracle(apiKey string) (*AnthropicOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicOracle{client: client}, nil
}

// Name returns the oracle identifier.
func (o *AnthropicOracle) Name() string {
	return "anthropic"
}

// Models returns the list of supported Claude models.
func (o *AnthropicOracle) Models() []string {
	return []string{
		"claude-sonnet-4-20250514",
		"claude-opus-4-20250514",
	}
}

// Complete sends a scoring prompt to Claude and returns the response text.
func (o *AnthropicOracle) Complete(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, nil
}
