package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/yusuf-polat/AI-Translate/internal/config"
	"github.com/yusuf-polat/AI-Translate/internal/llm"
	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/translation"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// app holds the collaborators every command shares.
type app struct {
	cfg        config.Config
	store      settings.Store
	closeStore func()
	limiter    *ratelimit.Limiter
	translator *reloadableTranslator
	aggregator *translation.Aggregator
}

// newApp opens the settings store and builds the translation pipeline. A
// missing API key is not an error here; translation calls report it.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, closeStore, err := settings.Open(ctx, cfg.DatabaseURL, cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	a := &app{
		cfg:        cfg,
		store:      store,
		closeStore: closeStore,
		limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig(), ratelimit.NewState(), nil),
	}
	a.translator = &reloadableTranslator{build: a.buildClient}
	if err := a.translator.Reload(ctx); err != nil {
		closeStore()
		return nil, err
	}

	a.aggregator = translation.NewAggregator(a.translator, nil)
	a.aggregator.FieldDelay = runnerOptions(cfg).FieldDelay
	return a, nil
}

func (a *app) Close() {
	a.translator.close()
	a.closeStore()
}

// translationTier is the model tier translations run on. The config's "model" replaces its model.
const translationTier = llm.TierStandard

func (a *app) llmConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if a.cfg.Model != "" {
		cfg = cfg.WithModel(translationTier, a.cfg.Model)
	}
	return cfg
}

// buildClient reads the current key and tool settings and creates a
// translation client for them.
func (a *app) buildClient(ctx context.Context) (*translation.Client, llm.Client, error) {
	key, err := settings.ResolveAPIKey(ctx, a.cfg.APIKey, a.store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read API key: %w", err)
	}
	toolSettings, err := a.store.ToolSettings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tool settings: %w", err)
	}
	if a.cfg.TargetLanguage != "" && toolSettings.TargetLanguage == types.DefaultTargetLanguage {
		toolSettings.TargetLanguage = a.cfg.TargetLanguage
	}

	var generator llm.Client
	if key != "" {
		generator, err = llm.NewClient(ctx, a.llmConfig(), key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else {
		log.Printf("[TRANSLATE] No API key configured; translations will fail until one is saved")
	}

	client := translation.NewClient(generator, a.limiter, toolSettings,
		translation.WithTier(translationTier), translation.WithVerbose(a.cfg.Verbose))
	return client, generator, nil
}

// testAPIKey probes key with the configured model family.
func (a *app) testAPIKey(ctx context.Context, key string) (bool, error) {
	return llm.TestAPIKey(ctx, a.llmConfig(), key)
}

// reloadableTranslator swaps its translation client when settings change,
// so a running server picks up a new key or prompt without restarting.
type reloadableTranslator struct {
	build func(ctx context.Context) (*translation.Client, llm.Client, error)

	mu        sync.RWMutex
	client    *translation.Client
	generator llm.Client
}

// Reload rebuilds the client from the current settings.
func (t *reloadableTranslator) Reload(ctx context.Context) error {
	client, generator, err := t.build(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	old := t.generator
	t.client, t.generator = client, generator
	t.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (t *reloadableTranslator) current() *translation.Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

// Translate implements translation.Translator.
func (t *reloadableTranslator) Translate(ctx context.Context, req types.TranslationRequest) (string, error) {
	return t.current().Translate(ctx, req)
}

// TranslateText translates one text and unwraps the reply.
func (t *reloadableTranslator) TranslateText(ctx context.Context, req types.TranslationRequest) (string, error) {
	return t.current().TranslateText(ctx, req)
}

func (t *reloadableTranslator) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generator != nil {
		_ = t.generator.Close()
		t.generator = nil
	}
}
