package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewChatPayload(t *testing.T) {
	p := NewChatPayload("be terse", "list keywords", 1000)
	if len(p.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(p.Messages))
	}
	if p.Messages[0].Role != "system" || p.Messages[0].Content != "be terse" {
		t.Errorf("system message wrong: %+v", p.Messages[0])
	}
	if p.Messages[1].Role != "user" || p.Messages[1].Content != "list keywords" {
		t.Errorf("user message wrong: %+v", p.Messages[1])
	}
	if p.Temperature != 0 || p.TopP != 1 || p.PresencePenalty != 0 {
		t.Errorf("sampling settings wrong: %+v", p)
	}
	if p.MaxTokens != 1000 {
		t.Errorf("max tokens = %d, want 1000", p.MaxTokens)
	}
}

func TestNewChatPayload_noSystem(t *testing.T) {
	p := NewChatPayload("", "hello", 0)
	if len(p.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(p.Messages))
	}
	if p.Messages[0].Role != "user" {
		t.Errorf("role = %s, want user", p.Messages[0].Role)
	}
}

// The deterministic sampling fields must serialize even at their zero
// values; the gateway treats an absent temperature as a different
// setting than temperature 0.
func TestChatPayload_serializesZeroSampling(t *testing.T) {
	data, err := json.Marshal(NewChatPayload("s", "u", 500))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"temperature":0`, `"top_p":1`, `"presence_penalty":0`, `"max_tokens":500`} {
		if !strings.Contains(s, want) {
			t.Errorf("payload %s missing %s", s, want)
		}
	}
}

func TestChatPayload_omitsZeroMaxTokens(t *testing.T) {
	data, err := json.Marshal(NewChatPayload("s", "u", 0))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "max_tokens") {
		t.Errorf("zero max_tokens should be omitted: %s", data)
	}
}

func TestNewCompletionPayload(t *testing.T) {
	p := NewCompletionPayload("what changed")
	if p.Prompt != "what changed\n" {
		t.Errorf("prompt = %q, want trailing newline", p.Prompt)
	}
	if p.MaxTokens != 500 || p.Temperature != 0 || p.TopP != 1 || p.N != 1 || p.Stop != "##" {
		t.Errorf("completion payload wrong: %+v", p)
	}
}
