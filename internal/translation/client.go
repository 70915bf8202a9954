package translation

import (
	"context"
	"fmt"
	"log"

	"github.com/yusuf-polat/AI-Translate/internal/llm"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Limiter gates outgoing requests.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Translator issues one translation request and returns the raw model text.
type Translator interface {
	Translate(ctx context.Context, req types.TranslationRequest) (string, error)
}

// Client sends translation prompts to the generative API.
type Client struct {
	generator llm.Client
	limiter   Limiter
	settings  types.ToolSettings
	tier      llm.ModelTier
	verbose   bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTier selects the model tier used for translations.
func WithTier(tier llm.ModelTier) ClientOption {
	return func(c *Client) { c.tier = tier }
}

// WithVerbose logs prompt and response sizes.
func WithVerbose(verbose bool) ClientOption {
	return func(c *Client) { c.verbose = verbose }
}

// NewClient creates a Client. A nil generator means no API key is configured;
// every request then fails with KindAuth.
func NewClient(generator llm.Client, limiter Limiter, settings types.ToolSettings, opts ...ClientOption) *Client {
	c := &Client{
		generator: generator,
		limiter:   limiter,
		settings:  settings.WithDefaults(),
		tier:      llm.TierStandard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the tool settings prompts are built from.
func (c *Client) Settings() types.ToolSettings {
	return c.settings
}

// Translate builds the prompt for req, waits for a rate-limit permit and
// returns the first candidate's text unparsed.
func (c *Client) Translate(ctx context.Context, req types.TranslationRequest) (string, error) {
	if c.generator == nil {
		return "", &Error{Kind: KindAuth, Message: "cannot translate", Cause: ErrMissingAPIKey}
	}

	if req.TargetLanguage == "" {
		req.TargetLanguage = c.settings.TargetLanguage
	}
	if err := req.Validate(); err != nil {
		return "", &Error{Kind: KindProvider, Message: "invalid translation request", Cause: err}
	}

	settings := c.settings
	if req.Purpose != "" {
		settings.Purpose = req.Purpose
	}
	prompt, err := BuildPrompt(req.SourceText, settings, req.TargetLanguage)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return "", wrap("rate limit reached", err)
		}
	}

	if c.verbose {
		log.Printf("[TRANSLATE] %s request to %s: %d prompt chars", settings.Purpose.Normalize(), req.TargetLanguage, len(prompt))
	}

	text, err := c.generator.GenerateContent(ctx, prompt, c.tier)
	if err != nil {
		return "", wrap("provider request failed", err)
	}

	if c.verbose {
		log.Printf("[TRANSLATE] response from %s: %d chars", c.generator.GetModel(c.tier), len(text))
	}
	return text, nil
}

// TranslateText translates a single piece of text and unwraps the reply.
func (c *Client) TranslateText(ctx context.Context, req types.TranslationRequest) (string, error) {
	raw, err := c.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	return ParseSingle(raw), nil
}
