package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mtapang/tosforge/internal/llm/prompts"
	"github.com/mtapang/tosforge/internal/model"
)

// Generator writes question text for assigned slots. The blueprint core
// treats question generation as an external collaborator; this interface is
// its boundary.
type Generator interface {
	GenerateQuestion(ctx context.Context, course model.Course, slot model.AssignedSlot) (*model.GeneratedQuestion, error)
}

// questionResponse is the JSON shape the model is instructed to return.
type questionResponse struct {
	Text      string `json:"text"`
	AnswerKey string `json:"answer_key"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.Variant(variant),
	}, nil
}

// Ping verifies the endpoint is reachable and serves the configured model.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			return nil
		}
	}
	slog.Warn("configured model not advertised by endpoint", "model", c.model)
	return nil
}

// GenerateQuestion produces question text for one assigned slot. The
// returned question carries the slot's level, format, and points verbatim;
// only the text and answer key come from the model.
func (c *Client) GenerateQuestion(ctx context.Context, course model.Course, slot model.AssignedSlot) (*model.GeneratedQuestion, error) {
	systemPrompt, err := prompts.BuildQuestionPrompt(c.variant, course.Title, slot)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Write the question now."},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var parsed questionResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return nil, fmt.Errorf("LLM returned empty question text (raw: %s)", raw)
	}

	return &model.GeneratedQuestion{
		OutcomeID: slot.OutcomeID,
		Level:     slot.Level,
		Format:    slot.Format,
		Points:    slot.Points,
		Text:      strings.TrimSpace(parsed.Text),
		AnswerKey: strings.TrimSpace(parsed.AnswerKey),
	}, nil
}

// GenerateAll writes question text for every slot of a blueprint, in slot
// order. It fails on the first generation error; partially generated
// questions are returned so callers can resume.
func GenerateAll(ctx context.Context, g Generator, course model.Course, slots []model.AssignedSlot) ([]model.GeneratedQuestion, error) {
	questions := make([]model.GeneratedQuestion, 0, len(slots))
	for i, slot := range slots {
		q, err := g.GenerateQuestion(ctx, course, slot)
		if err != nil {
			return questions, fmt.Errorf("slot %d (%s/%s): %w", i, slot.Level, slot.Format, err)
		}
		q.Position = i
		questions = append(questions, *q)
		slog.Info("question generated", "position", i, "level", slot.Level, "format", slot.Format)
	}
	return questions, nil
}
