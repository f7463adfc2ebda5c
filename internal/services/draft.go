package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrDraftUnavailable is returned when no AI backend is configured.
var ErrDraftUnavailable = errors.New("ai drafting not configured")

// DraftItem is one proposed invoice line.
type DraftItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// InvoiceDraft is the AI proposal for a new invoice. It is returned to
// the client for review and never persisted directly.
type InvoiceDraft struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Items       []DraftItem `json:"items"`
	Notes       string      `json:"notes,omitempty"`
}

// DraftConfig configures the drafting service.
type DraftConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
}

// DraftService turns a free-text prompt into a structured invoice draft.
type DraftService interface {
	Draft(ctx context.Context, prompt string) (*InvoiceDraft, error)
}

type openAIDraftService struct {
	client *openai.Client
	cfg    DraftConfig
	log    zerolog.Logger
}

// NewDraftService builds the OpenAI-backed drafting service. A missing
// API key yields a service whose Draft always returns
// ErrDraftUnavailable, so callers need no configuration awareness.
func NewDraftService(cfg DraftConfig, log zerolog.Logger) DraftService {
	if cfg.APIKey == "" {
		return unavailableDraftService{}
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	return &openAIDraftService{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		log:    log.With().Str("component", "draft").Logger(),
	}
}

type unavailableDraftService struct{}

func (unavailableDraftService) Draft(context.Context, string) (*InvoiceDraft, error) {
	return nil, ErrDraftUnavailable
}

const draftSystemPrompt = `You turn a short description of work into invoice content.
Respond with ONLY a JSON object, no prose, in this exact shape:
{"title": string, "description": string, "items": [{"description": string, "quantity": number, "rate": number}], "notes": string}
Write the title, descriptions and notes in the same language as the user's prompt.
Quantities and rates are plain numbers. Use reasonable market rates when the prompt gives none.`

func (s *openAIDraftService) Draft(ctx context.Context, prompt string) (*InvoiceDraft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("empty prompt")
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		draft, err := s.complete(ctx, prompt)
		if err == nil {
			return draft, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("draft completion failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("draft invoice: %w", lastErr)
}

func (s *openAIDraftService) complete(ctx context.Context, prompt string) (*InvoiceDraft, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion choices")
	}
	return parseDraft(resp.Choices[0].Message.Content)
}

// parseDraft decodes a completion payload into a sanitized draft.
func parseDraft(content string) (*InvoiceDraft, error) {
	content = strings.TrimSpace(content)
	// some models still wrap JSON in a code fence
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var draft InvoiceDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &draft); err != nil {
		return nil, fmt.Errorf("parse draft response: %w", err)
	}
	if len(draft.Items) == 0 {
		return nil, errors.New("draft contains no items")
	}
	for i := range draft.Items {
		if draft.Items[i].Quantity <= 0 {
			draft.Items[i].Quantity = 1
		}
		if draft.Items[i].Rate < 0 {
			draft.Items[i].Rate = 0
		}
	}
	return &draft, nil
}
