package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"insightvector/internal/insight"
	"insightvector/internal/logging"

	"google.golang.org/genai"
)

// Models used when none are configured.
const (
	DefaultPrimaryModel  = "gemini-3-pro-preview"
	DefaultFallbackModel = "gemini-3-flash-preview"

	DefaultPrimaryThinkingBudget = 20000
)

// contentGenerator is the slice of *genai.Models the provider needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures one Gemini model.
type GeminiConfig struct {
	APIKey         string
	Model          string
	ThinkingBudget int32 // zero disables thinking
	Timeout        time.Duration
}

// Gemini is a provider backed by one Gemini model.
type Gemini struct {
	models  contentGenerator
	model   string
	budget  int32
	timeout time.Duration
}

// NewGemini creates a Gemini provider with its own client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGemini(client.Models, cfg), nil
}

func newGemini(models contentGenerator, cfg GeminiConfig) *Gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultPrimaryModel
	}
	return &Gemini{models: models, model: model, budget: cfg.ThinkingBudget, timeout: cfg.Timeout}
}

// Name returns "gemini:<model>".
func (g *Gemini) Name() string { return "gemini:" + g.model }

// Model returns the model id.
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) generationConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
	if g.budget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.budget)}
	}
	return cfg
}

// FetchInsight asks the model for a decomposition and validates the answer.
func (g *Gemini) FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(problem, scope)
	timer := logging.StartTimer(logging.CategoryAPI, g.Name())
	logging.API("request model=%s problem=%q scope=%q prompt_len=%d", g.model, problem, scope, len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.generationConfig())
	timer.StopWithThreshold(30 * time.Second)
	if err != nil {
		return nil, g.fail(fmt.Errorf("generate content: %w", err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, g.fail(ErrEmptyResponse)
	}
	logging.API("response model=%s len=%d", g.model, len(text))

	result, err := DecodeResult(text)
	if err != nil {
		return nil, g.fail(err)
	}
	return result, nil
}

func (g *Gemini) fail(err error) error {
	return &FetchError{Provider: "gemini", Model: g.model, Err: err}
}

// DecodeResult parses a JSON answer, tolerating a fenced code block, and
// normalizes it.
func DecodeResult(text string) (*insight.Result, error) {
	text = stripFence(text)
	var result insight.Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrUnusableResult, err)
	}
	warnings, err := insight.Normalize(&result)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logging.ProviderWarn("normalize: %s", w)
	}
	return &result, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
