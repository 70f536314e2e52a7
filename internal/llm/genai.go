package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Client against the Gemini API. Sampling is
// pinned to the same deterministic settings the gateway uses.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates a Gemini-backed client. The API key is
// required.
func NewGenAIClient(apiKey, model string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, model: model}, nil
}

// Complete sends the stage prompt and returns the trimmed response
// text.
func (c *GenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		TopP:            genai.Ptr[float32](1),
		PresencePenalty: genai.Ptr[float32](0),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("genai request failed: %w", err)
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return nil, fmt.Errorf("no completion returned")
	}
	return &Response{Content: content}, nil
}

// Close closes the genai client. genai.Client exposes no Close method
// in any released version, so this closes it only if one appears.
func (c *GenAIClient) Close() error {
	if closer, ok := any(c.client).(io.Closer); ok && c.client != nil {
		return closer.Close()
	}
	return nil
}
