package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusuf-polat/AI-Translate/internal/console"
	"github.com/yusuf-polat/AI-Translate/internal/llm"
	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
	"github.com/yusuf-polat/AI-Translate/internal/translation"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) AfterFunc(time.Duration, func()) ratelimit.Timer {
	return stopTimer{}
}

func (c *fakeClock) count(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

type stopTimer struct{}

func (stopTimer) Stop() bool { return true }

type fakeInput struct {
	value  string
	filled bool
}

func (i *fakeInput) Fill(_ context.Context, text string) error {
	i.value = text
	i.filled = true
	return nil
}

type fakeButton struct{ clicks int }

func (b *fakeButton) Click(context.Context) error {
	b.clicks++
	return nil
}

type fakeModal struct {
	inputs  []*fakeInput
	apply   *fakeButton
	noApply bool
}

func newFakeModal(inputs int) *fakeModal {
	m := &fakeModal{apply: &fakeButton{}}
	for i := 0; i < inputs; i++ {
		m.inputs = append(m.inputs, &fakeInput{})
	}
	return m
}

func (m *fakeModal) Inputs(context.Context) ([]console.Input, error) {
	out := make([]console.Input, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in
	}
	return out, nil
}

func (m *fakeModal) Confirm(context.Context) (console.Button, bool, error) {
	if m.noApply {
		return nil, false, nil
	}
	return m.apply, true, nil
}

type fakeSurface struct {
	controls   []console.Control
	modals     map[string]*fakeModal
	opened     []string
	closeCalls int
}

func newFakeSurface(languages ...string) *fakeSurface {
	s := &fakeSurface{modals: make(map[string]*fakeModal)}
	for i, lang := range languages {
		s.controls = append(s.controls, console.Control{Index: i, Label: lang})
		s.modals[lang] = newFakeModal(console.MinInputs)
	}
	return s
}

func (s *fakeSurface) FindLanguageControls(context.Context) ([]console.Control, error) {
	return s.controls, nil
}

func (s *fakeSurface) OpenModalFor(_ context.Context, c console.Control) (console.Modal, bool, error) {
	s.opened = append(s.opened, c.Label)
	m, ok := s.modals[c.Label]
	if !ok {
		return nil, false, nil
	}
	return m, true, nil
}

func (s *fakeSurface) CloseAnyOpenModal(context.Context) error {
	s.closeCalls++
	return nil
}

type staticSource struct {
	data *types.AppData
	err  error
}

func (s staticSource) AppData(context.Context) (*types.AppData, error) {
	return s.data, s.err
}

// translatorFunc adapts a function to Translator.
type translatorFunc func(ctx context.Context, data types.AppData, lang string) (types.TranslationResult, error)

func (f translatorFunc) TranslateAppData(ctx context.Context, data types.AppData, lang string) (types.TranslationResult, error) {
	return f(ctx, data, lang)
}

// scriptedLLM answers GenerateContent calls from a list of replies in order.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

type reply struct {
	text string
	err  error
}

func (s *scriptedLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scriptedLLM) GetModel(llm.ModelTier) string { return "test-model" }
func (s *scriptedLLM) Close() error                  { return nil }

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	onEmit func(Event)
}

func (s *recordingSink) Emit(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	if s.onEmit != nil {
		s.onEmit(e)
	}
}

func (s *recordingSink) ofType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var listing = &types.AppData{AppName: "Foo", ShortDescription: "Bar", FullDescription: "Baz"}

func fixedTranslation(context.Context, types.AppData, string) (types.TranslationResult, error) {
	return types.TranslationResult{AppName: "Le Foo", ShortDescription: "Le Bar", FullDescription: "Le Baz"}, nil
}

func newTestRunner(surface console.Surface, tr Translator, sink Sink, clock *fakeClock) *Runner {
	return New(surface, tr, staticSource{data: listing}, sink, clock, DefaultOptions())
}

func newPipeline(gen llm.Client, clock *fakeClock) *translation.Aggregator {
	client := translation.NewClient(gen, nil, types.DefaultToolSettings())
	agg := translation.NewAggregator(client, clock)
	agg.FieldDelay = 500 * time.Millisecond
	return agg
}

// ---------------------------------------------------------------------------
// End-to-end flows through the real translation pipeline
// ---------------------------------------------------------------------------

func TestRunner_CombinedResponseFillsAllFields(t *testing.T) {
	clock := newFakeClock()
	gen := &scriptedLLM{replies: []reply{{
		text: "```json\n{\"translation\": {\"appName\": \"Le Foo\", \"shortDescription\": \"Le Bar\", \"fullDescription\": \"Le Baz\"}}\n```",
	}}}
	surface := newFakeSurface("French")
	r := newTestRunner(surface, newPipeline(gen, clock), &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Len(t, gen.prompts, 1, "one combined request")
	modal := surface.modals["French"]
	assert.Equal(t, "Le Foo", modal.inputs[0].value)
	assert.Equal(t, "Le Bar", modal.inputs[1].value)
	assert.Equal(t, "Le Baz", modal.inputs[2].value)
	assert.Equal(t, 1, modal.apply.clicks)

	assert.Equal(t, PhaseCompleted, report.Phase)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, StatusSuccess, report.Tasks[0].Status)
	assert.False(t, r.Running())
}

func TestRunner_ProseResponseFallsBackPerField(t *testing.T) {
	clock := newFakeClock()
	gen := &scriptedLLM{replies: []reply{
		{text: "I am sorry, I could not produce a translation for this request."},
		{text: "Le Foo"},
		{text: "Le Bar"},
		{text: "Le Baz"},
	}}
	surface := newFakeSurface("French")
	r := newTestRunner(surface, newPipeline(gen, clock), &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Len(t, gen.prompts, 4, "combined request plus one per field")
	modal := surface.modals["French"]
	assert.Equal(t, "Le Foo", modal.inputs[0].value)
	assert.Equal(t, "Le Bar", modal.inputs[1].value)
	assert.Equal(t, "Le Baz", modal.inputs[2].value)
	assert.Equal(t, StatusSuccess, report.Tasks[0].Status)
}

func TestRunner_FallbackFailureMarksLanguageAndContinues(t *testing.T) {
	clock := newFakeClock()
	gen := &scriptedLLM{replies: []reply{
		{text: "no structure here"},
		{text: "Le Foo"},
		{err: errors.New("internal server error")},
		// German
		{text: `{"appName": "Das Foo", "shortDescription": "Das Bar", "fullDescription": "Das Baz"}`},
	}}
	surface := newFakeSurface("French", "German")
	r := newTestRunner(surface, newPipeline(gen, clock), &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Tasks, 2)
	assert.Equal(t, StatusError, report.Tasks[0].Status)
	assert.Contains(t, report.Tasks[0].Error, "internal server error")
	assert.Equal(t, StatusSuccess, report.Tasks[1].Status)
	assert.Equal(t, 0, surface.modals["French"].apply.clicks)
	assert.Equal(t, "Das Foo", surface.modals["German"].inputs[0].value)

	succeeded, failed, skipped := report.Counts()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, skipped)
}

func TestRunner_NoLanguagesFound(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	r := newTestRunner(newFakeSurface(), translatorFunc(fixedTranslation), sink, clock)

	report, err := r.Start(context.Background())
	require.ErrorIs(t, err, ErrNoLanguagesFound)
	assert.Equal(t, PhaseFailed, report.Phase)
	assert.Empty(t, report.Tasks)

	state := r.State()
	assert.False(t, state.Running)
	assert.Empty(t, state.Tasks)
	assert.Len(t, sink.ofType(EventError), 1)
}

// ---------------------------------------------------------------------------
// Retry and failure handling
// ---------------------------------------------------------------------------

func TestRunner_ThrottledLanguageRetriesOnceAfterCooldown(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	tr := translatorFunc(func(ctx context.Context, data types.AppData, lang string) (types.TranslationResult, error) {
		calls++
		if calls == 1 {
			return types.TranslationResult{}, &translation.Error{Kind: translation.KindRateExceeded, Message: "rate limit reached"}
		}
		return fixedTranslation(ctx, data, lang)
	})
	surface := newFakeSurface("French")
	r := newTestRunner(surface, tr, &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, clock.count(30*time.Second))
	assert.Equal(t, StatusSuccessRetry, report.Tasks[0].Status)
	assert.Equal(t, 1, surface.modals["French"].apply.clicks)
}

func TestRunner_ThrottledRetryFailureIsRecorded(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	tr := translatorFunc(func(context.Context, types.AppData, string) (types.TranslationResult, error) {
		calls++
		return types.TranslationResult{}, &translation.Error{Kind: translation.KindRateExceeded, Message: "rate limit reached"}
	})
	r := newTestRunner(newFakeSurface("French"), tr, &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "exactly one retry")
	assert.Equal(t, StatusError, report.Tasks[0].Status)
	assert.Contains(t, report.Tasks[0].Error, "rate limit")
}

func TestRunner_ProviderErrorIsNotRetried(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	tr := translatorFunc(func(context.Context, types.AppData, string) (types.TranslationResult, error) {
		calls++
		return types.TranslationResult{}, &translation.Error{Kind: translation.KindProvider, Message: "bad response"}
	})
	r := newTestRunner(newFakeSurface("French"), tr, &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, clock.count(30*time.Second))
	assert.Equal(t, StatusError, report.Tasks[0].Status)
}

func TestRunner_AuthErrorEndsRun(t *testing.T) {
	clock := newFakeClock()
	tr := translatorFunc(func(context.Context, types.AppData, string) (types.TranslationResult, error) {
		return types.TranslationResult{}, &translation.Error{Kind: translation.KindAuth, Message: "cannot translate", Cause: translation.ErrMissingAPIKey}
	})
	surface := newFakeSurface("French", "German")
	r := newTestRunner(surface, tr, &recordingSink{}, clock)

	report, err := r.Start(context.Background())
	require.Error(t, err)
	assert.True(t, translation.IsAuth(err))
	assert.Equal(t, PhaseFailed, report.Phase)
	assert.Equal(t, StatusError, report.Tasks[0].Status)
	assert.Equal(t, StatusPending, report.Tasks[1].Status)
	assert.Equal(t, []string{"French"}, surface.opened)
}

func TestRunner_MissingModalAndControls(t *testing.T) {
	clock := newFakeClock()
	surface := newFakeSurface("French", "German", "Italian")
	delete(surface.modals, "French")
	surface.modals["German"] = newFakeModal(2)
	surface.modals["Italian"].noApply = true

	r := newTestRunner(surface, translatorFunc(fixedTranslation), &recordingSink{}, clock)
	report, err := r.Start(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Tasks, 3)
	for _, task := range report.Tasks {
		assert.Equal(t, StatusError, task.Status, task.Language)
	}
	assert.Contains(t, report.Tasks[0].Error, "French")
	assert.Contains(t, report.Tasks[1].Error, "2")
	assert.Equal(t, 3, surface.closeCalls)
	assert.Equal(t, 2, clock.count(3*time.Second), "inter-language delay between three languages")
}

// ---------------------------------------------------------------------------
// Field handling
// ---------------------------------------------------------------------------

func TestRunner_TruncatesAndSkipsEmptyFields(t *testing.T) {
	clock := newFakeClock()
	tr := translatorFunc(func(context.Context, types.AppData, string) (types.TranslationResult, error) {
		return types.TranslationResult{
			AppName:         strings.Repeat("ş", 45),
			FullDescription: "Tam açıklama",
		}, nil
	})
	surface := newFakeSurface("Turkish")
	r := newTestRunner(surface, tr, &recordingSink{}, clock)

	_, err := r.Start(context.Background())
	require.NoError(t, err)

	modal := surface.modals["Turkish"]
	assert.Equal(t, strings.Repeat("ş", types.MaxAppNameLength), modal.inputs[0].value)
	assert.False(t, modal.inputs[1].filled)
	assert.Equal(t, "Tam açıklama", modal.inputs[2].value)
	assert.Equal(t, 2, clock.count(DefaultOptions().FieldDelay), "no field delay after a skipped field")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestRunner_StopEndsBeforeNextLanguage(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	surface := newFakeSurface("French", "German", "Italian")
	r := newTestRunner(surface, translatorFunc(fixedTranslation), sink, clock)
	sink.onEmit = func(e Event) {
		if e.Type == EventLanguage && e.Status == StatusSuccess {
			r.Stop()
		}
	}

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PhaseStopped, report.Phase)
	assert.Equal(t, []string{"French"}, surface.opened)
	assert.Equal(t, StatusSuccess, report.Tasks[0].Status)
	assert.Equal(t, StatusPending, report.Tasks[1].Status)

	completed := sink.ofType(EventCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, PhaseStopped, completed[0].Report.Phase)
}

func TestRunner_AlreadyRunning(t *testing.T) {
	r := newTestRunner(newFakeSurface("French"), translatorFunc(fixedTranslation), &recordingSink{}, newFakeClock())

	id, err := r.Begin()
	require.NoError(t, err)
	assert.True(t, r.Running())

	report, err := r.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, report)
	assert.Equal(t, id, r.State().RunID)
}

func TestRunner_NoAppData(t *testing.T) {
	sink := &recordingSink{}
	r := New(newFakeSurface("French"), translatorFunc(fixedTranslation), staticSource{data: &types.AppData{}}, sink, newFakeClock(), DefaultOptions())

	report, err := r.Start(context.Background())
	require.ErrorIs(t, err, ErrNoAppData)
	assert.Equal(t, PhaseIdle, report.Phase)
	assert.False(t, r.Running())
	assert.Len(t, sink.ofType(EventError), 1)
}

func TestRunner_CachedAppDataSkipsSource(t *testing.T) {
	source := staticSource{err: errors.New("source unavailable")}
	surface := newFakeSurface("French")
	r := New(surface, translatorFunc(fixedTranslation), source, &recordingSink{}, newFakeClock(), DefaultOptions())
	r.SetAppData(listing)

	report, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, report.Phase)
}

func TestRunner_ProgressEvents(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRunner(newFakeSurface("French", "German"), translatorFunc(fixedTranslation), sink, newFakeClock())

	report, err := r.Start(context.Background())
	require.NoError(t, err)

	var percents []float64
	for _, e := range sink.ofType(EventStatus) {
		if e.Percent > 0 {
			percents = append(percents, e.Percent)
		}
	}
	assert.Equal(t, []float64{50, 100}, percents)

	completed := sink.ofType(EventCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, report.RunID, completed[0].RunID)
	assert.Equal(t, 2, len(completed[0].Report.Tasks))
}

func TestRunner_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	surface := newFakeSurface("French")
	r := newTestRunner(surface, translatorFunc(fixedTranslation), &recordingSink{}, newFakeClock())

	report, err := r.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseStopped, report.Phase)
	assert.Empty(t, surface.opened)
}
