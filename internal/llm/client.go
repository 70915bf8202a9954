package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the model name configured for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient returns the Client for config.Provider. A nil config uses
// DefaultConfig.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for the Google generative-language API.
// Models are configured once per name and reused across requests.
type GeminiClient struct {
	client *genai.Client
	config *Config

	mu     sync.Mutex
	models map[string]*genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &Error{Kind: KindAuth, Message: "API key is required"}
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
		models: make(map[string]*genai.GenerativeModel),
	}, nil
}

// model returns the configured handle for name, creating it on first use.
func (c *GeminiClient) model(name string) *genai.GenerativeModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		return m
	}
	m := c.client.GenerativeModel(name)
	gen := c.config.Generation
	m.SetTemperature(gen.Temperature)
	if gen.TopK > 0 {
		m.SetTopK(gen.TopK)
	}
	if gen.TopP > 0 {
		m.SetTopP(gen.TopP)
	}
	if gen.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(gen.MaxOutputTokens)
	}
	c.models[name] = m
	return m
}

// GenerateContent sends prompt to the tier's model and returns the first
// candidate's text. Failures are returned as *Error.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	resp, err := c.model(name).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		classified := classifyError("failed to generate content", err)
		log.Printf("[LLM] %s request failed (%s): %v", name, classified.Kind, err)
		return "", classified
	}

	text, err := responseText(resp)
	if err != nil {
		return "", &Error{Kind: KindProvider, Message: "unrecognized response format", Cause: err}
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("first candidate has no content")
	}

	var sb strings.Builder
	found := false
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("first candidate has no text parts")
	}
	return sb.String(), nil
}
