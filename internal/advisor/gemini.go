package advisor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Completer is the completion backend: prompt in, text out. It is advisory
// only — nothing downstream of it may touch the roster grid.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gemini is the Google GenAI completion backend.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed completer.
func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty completion from %s", g.model)
	}
	return text, nil
}
