package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const scenarioHeader = "X-Scenario-Guid"

// GatewayConfig holds connection settings for the chat-completions
// gateway.
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	ModelPrefix string
	Timeout     time.Duration
	MaxRetries  int
}

// GatewayClient calls a chat-completions gateway over HTTP. Models are
// addressed on the path as <prefix><model>/chat/completions and the
// scenario GUID rides in the X-Scenario-Guid header.
type GatewayClient struct {
	cfg        GatewayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// GatewayOption configures a GatewayClient.
type GatewayOption func(*GatewayClient)

// WithLogger sets the logger for the gateway client.
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(c *GatewayClient) {
		c.logger = logger
	}
}

// NewGatewayClient creates a gateway client. BaseURL is required.
func NewGatewayClient(cfg GatewayConfig, opts ...GatewayOption) (*GatewayClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	c := &GatewayClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete sends the stage payload and returns the trimmed response
// text.
func (c *GatewayClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	payload := NewChatPayload(req.System, req.Prompt, req.MaxTokens)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.post(ctx, c.modelURL(req.Model, "/chat/completions"), req.ScenarioGUID, body)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gateway error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}
	return &Response{Content: strings.TrimSpace(parsed.Choices[0].Message.Content)}, nil
}

// Query sends an ad-hoc completions-mode request and returns the raw
// text of the first choice.
func (c *GatewayClient) Query(ctx context.Context, q string) (string, error) {
	body, err := json.Marshal(NewCompletionPayload(q))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.post(ctx, c.modelURL("", "/completions"), "", body)
	if err != nil {
		return "", err
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return strings.TrimSpace(parsed.Choices[0].Text), nil
}

// Close is a no-op for the gateway client.
func (c *GatewayClient) Close() error {
	return nil
}

func (c *GatewayClient) modelURL(model, suffix string) string {
	if model == "" {
		model = c.cfg.Model
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.ModelPrefix + model + suffix
}

// post sends the body with bounded retries. Rate limiting and
// transport errors retry with exponential backoff (1s, 2s, 4s); other
// non-200 statuses fail immediately.
func (c *GatewayClient) post(ctx context.Context, url, scenarioGUID string, body []byte) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if i > 0 {
			if c.logger != nil {
				c.logger.Debug("retrying gateway request", zap.Int("attempt", i), zap.Error(lastErr))
			}
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		if scenarioGUID != "" {
			httpReq.Header.Set(scenarioHeader, scenarioGUID)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gateway request failed with status %d: %s", resp.StatusCode, string(raw))
		}
		return raw, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
