package llm

import (
	"context"
	"strings"
)

// probePrompt is a one-word greeting; any non-empty reply proves the key works.
const probePrompt = "Merhaba"

// Probe sends a short request through client and reports whether a usable
// reply came back.
func Probe(ctx context.Context, client Client) (bool, error) {
	text, err := client.GenerateContent(ctx, probePrompt, TierLite)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(text) != "", nil
}

// TestAPIKey checks apiKey against the provider with a lite-tier probe.
// An invalid key yields false together with the classified error.
func TestAPIKey(ctx context.Context, config *Config, apiKey string) (bool, error) {
	client, err := NewClient(ctx, config, apiKey)
	if err != nil {
		return false, err
	}
	defer func() { _ = client.Close() }()

	return Probe(ctx, client)
}
