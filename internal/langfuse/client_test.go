package langfuse

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNewClientDisabledWithoutConfig(t *testing.T) {
	c := NewClient(Config{})
	if c.IsEnabled() {
		t.Fatal("client should be disabled without config")
	}

	// Disabled client is a no-op, not an error.
	traceID, err := c.CreateTrace(context.Background(), TraceInput{Name: "analysis-insight"})
	if err != nil {
		t.Fatalf("disabled CreateTrace returned error: %v", err)
	}
	if traceID != "" {
		t.Fatalf("disabled CreateTrace returned trace ID %q", traceID)
	}

	if err := c.CreateScore(context.Background(), ScoreInput{TraceID: "t", Name: "user_rating", Value: 4}); err != nil {
		t.Fatalf("disabled CreateScore returned error: %v", err)
	}
}

func TestParsePromptPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "text prompt", raw: `"You are an assistant."`, want: "You are an assistant."},
		{
			name: "chat prompt",
			raw:  `[{"role":"system","content":"first"},{"role":"user","content":"second"}]`,
			want: "first\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePromptPayload(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("parsePromptPayload: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := parsePromptPayload(json.RawMessage(`{"bad":"shape"}`)); err == nil {
		t.Fatal("expected error for unsupported payload")
	}
}

func TestReadPromptFromFileMissing(t *testing.T) {
	got, err := readPromptFromFile("/nonexistent/prompt.txt")
	if err != nil || got != "" {
		t.Fatalf("missing file should yield empty prompt, got %q err %v", got, err)
	}
}
