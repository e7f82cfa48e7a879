package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured or unavailable.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an error parsing the OpenAI response.
	ErrOpenAIResponse = errors.New("failed to parse OpenAI response")
)

const defaultSystemPrompt = `You are a non-medical sleep analysis assistant.

You receive the metric report derived from one night's classified sleep stages (hypnogram). You must base your conclusions only on the provided data.

Metric conventions:
- Durations and latencies are in seconds; counts are plain integers.
- "sleepEfficiency" is a ratio in [0,1].
- Null-valued metrics mean the subject never fell asleep that night.
- "WASO" is wake time between sleep onset and sleep offset.

Your goals:
- Describe the night in clear, neutral language.
- Highlight sleep latency, efficiency, fragmentation (awakenings, stage shifts), and stage distribution.
- Give practical, behavioral suggestions to improve sleep habits.

Rules:
- Do NOT provide medical advice or diagnoses.
- Do NOT mention diseases, disorders, doctors, or treatment.
- Focus only on behavior and routines (bedtime regularity, wind-down habits, etc.).
- If the subject never slept, say so plainly and keep suggestions gentle.
- Be concise and concrete.

You must respond as strict JSON with exactly this shape:

{
  "summary": "2-3 sentences summarizing the night.",
  "observations": [
    "3-6 bullet points about latency, efficiency, fragmentation, and stage distribution."
  ],
  "guidance": [
    "3-5 concrete, non-medical suggestions tailored to these numbers."
  ]
}

No extra fields. No comments. No backticks.`

const userPromptTemplate = `Here is JSON describing one analyzed night.

- "report" is the flat metric mapping for the night.
- "epoch_duration" is the scoring interval in seconds.
- "epoch_count" is the number of scored epochs.

JSON:

%s

Based on this data, respond in the required JSON format.`

// InsightLLM is the interface for generating a night insight using an LLM.
type InsightLLM interface {
	// GenerateInsight takes the context of one analysis and returns the
	// LLM-generated narrative.
	GenerateInsight(ctx context.Context, insightCtx *domain.InsightContext) (*domain.LLMInsightOutput, error)
}

// OpenAIClient implements InsightLLM using the OpenAI API.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIClient creates a new OpenAI client for generating insights.
// Returns nil if apiKey is empty. An empty systemPrompt falls back to the
// built-in default.
func NewOpenAIClient(apiKey, model, systemPrompt string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}

	if model == "" {
		model = "gpt-4o-mini"
	}
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIClient{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// GenerateInsight calls OpenAI to narrate a single night's report.
func (c *OpenAIClient) GenerateInsight(ctx context.Context, insightCtx *domain.InsightContext) (*domain.LLMInsightOutput, error) {
	if c == nil {
		return nil, ErrOpenAIUnavailable
	}

	// Serialize context to JSON
	contextJSON, err := json.MarshalIndent(insightCtx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize context: %v", ErrOpenAIRequest, err)
	}

	userPrompt := fmt.Sprintf(userPromptTemplate, string(contextJSON))

	// Call OpenAI
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}

	content := resp.Choices[0].Message.Content

	// Parse the JSON response
	var output domain.LLMInsightOutput
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIResponse, err)
	}

	return &output, nil
}
