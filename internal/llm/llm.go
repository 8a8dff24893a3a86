// Package llm wraps the Gemini API for summaries, digests and embeddings
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"newsdesk/internal/logger"
)

const (
	// DefaultModel is the default Gemini model for summaries and digests.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultEmbeddingModel is the default model for generating embeddings
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for embeddings (Matryoshka)
	DefaultEmbeddingDimensions = int32(768)
	// DefaultSummaryMaxTokens caps generated article summaries.
	DefaultSummaryMaxTokens = int32(500)
	// DefaultDigestMaxTokens caps generated daily digests.
	DefaultDigestMaxTokens = int32(4000)
)

// Config holds client settings
type Config struct {
	APIKey              string
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int32
	SummaryMaxTokens    int32
	DigestMaxTokens     int32
	Timeout             time.Duration
}

// models is the subset of the genai Models service the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Client represents a client for interacting with Gemini.
// Every error it returns wraps one of ErrRateLimited, ErrConnectivity, ErrService or ErrNotConfigured.
type Client struct {
	models models
	cfg    Config
	log    *slog.Logger
}

// NewClient creates a new Gemini client. A missing API key yields ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or ai.gemini.api_key in config file", ErrNotConfigured)
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newClient(gClient.Models, cfg, logger.Get()), nil
}

func newClient(m models, cfg Config, log *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if cfg.SummaryMaxTokens <= 0 {
		cfg.SummaryMaxTokens = DefaultSummaryMaxTokens
	}
	if cfg.DigestMaxTokens <= 0 {
		cfg.DigestMaxTokens = DefaultDigestMaxTokens
	}
	return &Client{models: m, cfg: cfg, log: log}
}

// ModelName returns the generation model used by this client
func (c *Client) ModelName() string {
	return c.cfg.Model
}

// Generate returns generated text for prompt, bounded by maxTokens when positive.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrService)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var config *genai.GenerateContentConfig
	if maxTokens > 0 {
		config = &genai.GenerateContentConfig{MaxOutputTokens: maxTokens}
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return "", classify(fmt.Errorf("failed to generate text: %w", err))
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrService)
	}

	return text, nil
}

// Embed returns the embedding vector for text. Empty text yields a nil vector
// without calling the provider.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	dims := c.cfg.EmbeddingDimensions
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	}

	resp, err := c.models.EmbedContent(ctx, c.cfg.EmbeddingModel, contents, config)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to generate embedding: %w", err))
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding values returned from API", ErrService)
	}

	// Convert float32 to float64
	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, val := range values {
		embedding[i] = float64(val)
	}

	c.log.Debug("Generated embedding", "chars", len(text), "dimensions", len(embedding))
	return embedding, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
