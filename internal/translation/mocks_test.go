package translation

import (
	"context"
	"sync"

	"github.com/yusuf-polat/AI-Translate/internal/llm"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	Prompts             []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return `{"translation": "mock"}`, nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	return nil
}

type mockLimiter struct {
	calls int
	err   error
}

func (m *mockLimiter) Acquire(ctx context.Context) error {
	m.calls++
	return m.err
}

type reply struct {
	text string
	err  error
}

// scriptedTranslator answers requests from a queue and records them.
type scriptedTranslator struct {
	mu       sync.Mutex
	replies  []reply
	requests []types.TranslationRequest
}

func (s *scriptedTranslator) Translate(ctx context.Context, req types.TranslationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", &Error{Kind: KindProvider, Message: "unexpected request"}
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}
