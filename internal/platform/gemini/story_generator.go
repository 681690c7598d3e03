// Package gemini implements the generation boundary on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/smashenglish/review-api/internal/config"
	"github.com/smashenglish/review-api/internal/generation"
)

// GeminiStoryGenerator implements generation.StoryGenerator using the
// Gemini API.
type GeminiStoryGenerator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// Ensure GeminiStoryGenerator implements the StoryGenerator interface
var _ generation.StoryGenerator = (*GeminiStoryGenerator)(nil)

// NewStoryGenerator creates a new Gemini-backed story generator.
// Returns generation.ErrInvalidConfig if the API key or model name is missing.
func NewStoryGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiStoryGenerator, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiStoryGenerator{
		logger: logger.With(slog.String("component", "story_generator")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateStory implements generation.StoryGenerator.GenerateStory.
func (g *GeminiStoryGenerator) GenerateStory(ctx context.Context, terms []string) (string, error) {
	if len(terms) == 0 {
		return "", fmt.Errorf("%w: no terms provided", generation.ErrGenerationFailed)
	}

	prompt := buildStoryPrompt(terms)
	story, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	g.logger.InfoContext(ctx, "story generated",
		slog.Int("term_count", len(terms)),
		slog.Int("story_length", len(story)))
	return story, nil
}

// buildStoryPrompt assembles the instruction for the model. Prompt
// quality is explicitly out of scope; this only needs to carry the terms.
func buildStoryPrompt(terms []string) string {
	var b strings.Builder
	b.WriteString("Write a short, coherent story in simple English (under 150 words) ")
	b.WriteString("that naturally uses each of the following vocabulary words at least once. ")
	b.WriteString("Return only the story text.\n\nWords: ")
	b.WriteString(strings.Join(terms, ", "))
	return b.String()
}

// callGeminiWithRetry makes a call to the Gemini API with exponential
// backoff retry logic. Transient API errors are retried up to
// config.MaxRetries times; empty or blocked responses are permanent and
// returned immediately.
func (g *GeminiStoryGenerator) callGeminiWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		isTransient := true

		if err == nil {
			text, extractErr := extractText(resp)
			if extractErr == nil {
				return text, nil
			}
			err = extractErr
			isTransient = false
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if !isTransient || attempt >= maxRetries {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoffSeconds * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// extractText pulls the plain text out of a Gemini response, classifying
// empty and safety-blocked responses.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response finished for safety reasons", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	story := strings.TrimSpace(text.String())
	if story == "" {
		return "", fmt.Errorf("%w: no text parts in response", generation.ErrInvalidResponse)
	}

	return story, nil
}
