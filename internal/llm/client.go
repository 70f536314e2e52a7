// Package llm sends rendered stage prompts to an LLM backend and
// returns the plain-text response.
package llm

import "context"

// Client is implemented by every backend.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// Request is one stage call: the rendered prompts plus routing info.
// Model and ScenarioGUID override the client's defaults when set.
type Request struct {
	Stage        string
	System       string
	Prompt       string
	Model        string
	ScenarioGUID string
	MaxTokens    int
}

// Response carries the model's text.
type Response struct {
	Content string
}

// Message is one chat message in the wire payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatPayload is the chat-completions request body. Temperature, top-p
// and presence penalty are pinned to deterministic settings and always
// serialized; max_tokens carries the per-stage response budget.
type ChatPayload struct {
	Messages        []Message `json:"messages"`
	Temperature     float64   `json:"temperature"`
	TopP            float64   `json:"top_p"`
	PresencePenalty float64   `json:"presence_penalty"`
	MaxTokens       int       `json:"max_tokens,omitempty"`
}

// NewChatPayload builds the stage payload: a system message when one
// is set, then the user message.
func NewChatPayload(system, user string, maxTokens int) *ChatPayload {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: user})
	return &ChatPayload{
		Messages:        messages,
		Temperature:     0,
		TopP:            1,
		PresencePenalty: 0,
		MaxTokens:       maxTokens,
	}
}

// CompletionPayload is the completions-mode body used for ad-hoc
// queries against the gateway.
type CompletionPayload struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	N           int     `json:"n"`
	Stop        string  `json:"stop"`
}

// NewCompletionPayload builds the ad-hoc query body. The prompt is
// newline-terminated and generation stops at "##".
func NewCompletionPayload(q string) *CompletionPayload {
	return &CompletionPayload{
		Prompt:      q + "\n",
		MaxTokens:   500,
		Temperature: 0,
		TopP:        1,
		N:           1,
		Stop:        "##",
	}
}
