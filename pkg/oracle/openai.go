package oracle

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIOracle implements the Oracle interface for OpenAI models.
type OpenAIOracle struct {
	client openai.Client
}

// NewOpenAIOracle creates a new OpenAI oracle.
func NewOpenAIOracle(apiKey string) (*OpenAIOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIOracle{client: client}, nil
}

// Name returns the oracle identifier.
func (o *OpenAIOracle) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (o *OpenAIOracle) Models() []string {
	return []string{
		"gpt-5.2-instant",
		"gpt-5.2-thinking",
		"gpt-5.2-pro",
	}
}

// Complete sends a scoring prompt to OpenAI and returns the response text.
func (o *OpenAIOracle) Complete(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(4096),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
