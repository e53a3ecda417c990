package adaptation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-flash-preview"

// Generator sends one prompt to a text-generation service and returns the raw
// reply, which is expected to be JSON matching schema.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GeneratorConfig configures the Gemini-backed generator.
type GeneratorConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // Optional endpoint override
	Timeout time.Duration // Zero leaves timing to the transport

	HTTPClient *http.Client // Optional; the SDK's default client when nil
}

// GeminiGenerator calls Gemini through google.golang.org/genai.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenerator builds a Gemini generator. Without an API key it returns a
// generator that fails every call, so requests fall through to the fallback plan.
func NewGenerator(ctx context.Context, cfg GeneratorConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return unavailableGenerator{err: ErrMissingCredential}, nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// GenerateJSON asks the model for a JSON reply constrained by schema.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Model reports the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

type unavailableGenerator struct {
	err error
}

func (u unavailableGenerator) GenerateJSON(context.Context, string, *genai.Schema) (string, error) {
	return "", u.err
}
