package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"

	"timewise-backend/internal/interval"
	"timewise-backend/internal/roadmaps"
	"timewise-backend/internal/schedule"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

// Client is the Gemini-backed recommender. It implements
// schedule.Recommender and roadmaps.Generator.
//
// Every failure mode of the external model — unreachable, timed out, or a
// response that does not survive schema validation — is converted to an error
// wrapping schedule.ErrRecommendationUnavailable at this boundary, so
// malformed output never propagates further.
type Client struct {
	llm   llms.Model
	model string
}

// New builds a client against the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{llm: llm, model: model}, nil
}

// NewFromModel builds a client over an existing model. Used by tests.
func NewFromModel(m llms.Model) *Client {
	return &Client{llm: m}
}

// SuggestTimeSlots asks the model for the top candidate slots for one task.
func (c *Client) SuggestTimeSlots(ctx context.Context, events []schedule.Event, pool []interval.FreeSlot, taskType string, durationMinutes int, prefs users.Preferences) ([]schedule.SlotSuggestion, error) {
	prompt := BuildSuggestSlotsPrompt(events, pool, taskType, durationMinutes, prefs)

	var resp struct {
		OptimalSlots []schedule.SlotSuggestion `json:"optimal_slots"`
	}
	if err := c.chatJSON(ctx, prompt, 1024, 0.2, &resp); err != nil {
		return nil, err
	}
	return validateSuggestions(resp.OptimalSlots)
}

// PrioritizeTasks asks the model to score and order the given tasks.
func (c *Client) PrioritizeTasks(ctx context.Context, ts []tasks.Task, goals []string, deadlines []schedule.Deadline) ([]schedule.PrioritizedTask, error) {
	prompt := BuildPrioritizePrompt(ts, goals, deadlines)

	var resp struct {
		PrioritizedTasks []schedule.PrioritizedTask `json:"prioritized_tasks"`
	}
	if err := c.chatJSON(ctx, prompt, 1024, 0.2, &resp); err != nil {
		return nil, err
	}
	if err := validatePrioritized(resp.PrioritizedTasks); err != nil {
		return nil, err
	}
	return resp.PrioritizedTasks, nil
}

// AnalyzeSchedule asks the model for a whole-schedule review.
func (c *Client) AnalyzeSchedule(ctx context.Context, snap schedule.Snapshot) (schedule.Analysis, error) {
	prompt := BuildAnalyzePrompt(snap)

	raw, err := c.chatRaw(ctx, prompt, 1024, 0.2)
	if err != nil {
		return schedule.Analysis{}, err
	}
	return parseAnalysis(raw)
}

// GenerateRoadmap asks the model for a 30-day work-life balance plan.
func (c *Client) GenerateRoadmap(ctx context.Context, profile roadmaps.Profile, history roadmaps.History, goals []string) (roadmaps.Content, error) {
	prompt := BuildRoadmapPrompt(profile, history, goals)

	raw, err := c.chatRaw(ctx, prompt, 2048, 0.4)
	if err != nil {
		return roadmaps.Content{}, err
	}
	return parseRoadmap(raw)
}

// chatRaw runs one JSON-mode completion and returns the extracted JSON text.
func (c *Client) chatRaw(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)},
		llms.WithJSONMode(),
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", schedule.ErrRecommendationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: gemini returned no choices", schedule.ErrRecommendationUnavailable)
	}
	return extractJSON(resp.Choices[0].Content), nil
}

func (c *Client) chatJSON(ctx context.Context, prompt string, maxTokens int, temperature float64, out any) error {
	raw, err := c.chatRaw(ctx, prompt, maxTokens, temperature)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: parsing response: %v", schedule.ErrRecommendationUnavailable, err)
	}
	return nil
}
