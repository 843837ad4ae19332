package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrDisabled is returned when no API key is configured
var ErrDisabled = errors.New("ai scoring is not configured")

const scoringSystemPrompt = `You are an experienced IELTS examiner. Score the candidate's response
to the given task using the official band descriptors. Respond with a JSON
object only, shaped exactly like:
{"band": 6.5, "criteria": {"taskAchievement": 6.0, "coherence": 7.0, "lexicalResource": 6.5, "grammaticalRange": 6.5}, "feedback": "..."}
Bands are in half-point steps from 0 to 9. Feedback is two to four
sentences of concrete, actionable advice.`

// Evaluation is the structured result of scoring one answer
type Evaluation struct {
	Band     float64            `json:"band"`
	Criteria map[string]float64 `json:"criteria"`
	Feedback string             `json:"feedback"`
}

// Client scores free-form answers against a task prompt using an
// OpenAI-compatible chat API
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a scoring client. An empty apiKey yields a nil client;
// callers treat that as scoring being unavailable.
func NewClient(apiKey, baseURL, model string) *Client {
	if apiKey == "" {
		return nil
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Evaluate scores one answer against its task prompt
func (c *Client) Evaluate(ctx context.Context, taskPrompt, answer string) (*Evaluation, error) {
	if c == nil {
		return nil, ErrDisabled
	}

	userPrompt := fmt.Sprintf("Task:\n%s\n\nCandidate response:\n%s", taskPrompt, answer)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in completion response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var eval Evaluation
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	if eval.Band < 0 || eval.Band > 9 {
		return nil, fmt.Errorf("evaluation band %.1f out of range", eval.Band)
	}
	return &eval, nil
}
