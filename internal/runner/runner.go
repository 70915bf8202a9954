// Package runner sequences the per-language translation of a store listing:
// it walks the discovered language controls, opens each dialog, translates
// the listing, fills the fields and confirms, retrying once after throttling.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yusuf-polat/AI-Translate/internal/console"
	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
	"github.com/yusuf-polat/AI-Translate/internal/translation"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Run-level errors. Each one ends the run.
var (
	ErrAlreadyRunning   = errors.New("a run is already in progress")
	ErrNoAppData        = errors.New("no listing data found, save the app name and descriptions first")
	ErrNoLanguagesFound = errors.New("no translation controls found, reload the page and try again")
)

// AppDataSource supplies the source-language listing.
type AppDataSource interface {
	AppData(ctx context.Context) (*types.AppData, error)
}

// Translator translates a whole listing into one language.
type Translator interface {
	TranslateAppData(ctx context.Context, data types.AppData, targetLanguage string) (types.TranslationResult, error)
}

// Options holds the runner's waits.
type Options struct {
	// Cooldown is waited before the single retry of a throttled language.
	Cooldown time.Duration
	// InterLanguageDelay separates consecutive languages.
	InterLanguageDelay time.Duration
	// FieldDelay separates filling consecutive fields.
	FieldDelay time.Duration
	// ApplySettle is waited after confirming a dialog.
	ApplySettle time.Duration
	Verbose     bool
}

// DefaultOptions returns the waits the console and the API budget need.
func DefaultOptions() Options {
	return Options{
		Cooldown:           30 * time.Second,
		InterLanguageDelay: 3 * time.Second,
		FieldDelay:         500 * time.Millisecond,
		ApplySettle:        3 * time.Second,
	}
}

// Runner drives one run at a time over a console Surface.
type Runner struct {
	surface    console.Surface
	translator Translator
	source     AppDataSource
	sink       Sink
	clock      ratelimit.Clock
	opts       Options

	mu      sync.Mutex
	state   RunState
	stop    bool
	appData *types.AppData
}

// New creates a Runner. A nil sink logs events; a nil clock uses the wall clock.
func New(surface console.Surface, translator Translator, source AppDataSource, sink Sink, clock ratelimit.Clock, opts Options) *Runner {
	if sink == nil {
		sink = LogSink{}
	}
	if clock == nil {
		clock = ratelimit.RealClock{}
	}
	return &Runner{
		surface:    surface,
		translator: translator,
		source:     source,
		sink:       sink,
		clock:      clock,
		opts:       opts,
		state:      RunState{Phase: PhaseIdle},
	}
}

// State returns a copy of the current or most recent run state.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Running reports whether a run is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Running
}

// Stop asks the active run to stop before its next language.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running {
		r.stop = true
	}
}

// SetAppData replaces the cached listing. Nil forces a reload on next start.
func (r *Runner) SetAppData(data *types.AppData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appData = data
}

// Begin reserves the runner for a new run and returns its id. Run must
// follow. It lets callers learn the run id before the run starts.
func (r *Runner) Begin() (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running {
		return uuid.Nil, ErrAlreadyRunning
	}
	r.stop = false
	r.state = RunState{
		RunID:     uuid.New(),
		Running:   true,
		Phase:     PhaseRunning,
		StartedAt: r.clock.Now(),
	}
	return r.state.RunID, nil
}

// Start runs every discovered language to completion, until stopped or
// until a run-level error. It always returns a report once the run began.
func (r *Runner) Start(ctx context.Context) (*Report, error) {
	if _, err := r.Begin(); err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

// Run executes a run reserved with Begin.
func (r *Runner) Run(ctx context.Context) (report *Report, err error) {
	runID := r.State().RunID
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("run aborted: %v", p)
			report = r.finish(PhaseFailed, err.Error())
			r.emit(Event{Type: EventError, Message: report.Message})
		}
	}()

	data, err := r.loadAppData(ctx)
	if err != nil {
		report = r.finish(PhaseIdle, err.Error())
		r.emit(Event{Type: EventError, Message: report.Message})
		return report, err
	}

	r.emit(Event{Type: EventStatus, Message: "Starting run..."})

	controls, err := r.surface.FindLanguageControls(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("language discovery failed: %w", err))
	}
	if len(controls) == 0 {
		return r.fail(ErrNoLanguagesFound)
	}

	r.mu.Lock()
	r.state.Total = len(controls)
	r.state.Tasks = make([]LanguageTask, len(controls))
	for i, c := range controls {
		r.state.Tasks[i] = LanguageTask{Language: c.Label, Status: StatusPending}
	}
	r.mu.Unlock()

	total := len(controls)
	log.Printf("[RUNNER] Run %s: %d languages found", runID, total)
	r.emit(Event{Type: EventStatus, Message: fmt.Sprintf("%d languages found, starting...", total)})

	for i, control := range controls {
		if r.stopRequested() || ctx.Err() != nil {
			return r.stopped(i), nil
		}

		percent := float64(i+1) / float64(total) * 100
		r.setTask(i, StatusProcessing, "")
		r.emit(Event{Type: EventStatus, Message: fmt.Sprintf("Processing %s (%d/%d)", control.Label, i+1, total), Percent: percent})
		r.emit(Event{Type: EventLanguage, Language: control.Label, Status: StatusProcessing})

		status, langErr := r.processWithRetry(ctx, control, data, i, total, percent)
		if langErr != nil && translation.IsAuth(langErr) {
			r.setTask(i, StatusError, langErr.Error())
			r.emit(Event{Type: EventLanguage, Language: control.Label, Status: StatusError, Message: langErr.Error()})
			return r.fail(langErr)
		}

		message := ""
		if langErr != nil {
			message = langErr.Error()
		}
		r.setTask(i, status, message)
		r.emit(Event{Type: EventLanguage, Language: control.Label, Status: status, Message: message})

		if ctx.Err() != nil {
			return r.stopped(i + 1), nil
		}
		if i < total-1 {
			if err := r.clock.Sleep(ctx, r.opts.InterLanguageDelay); err != nil {
				return r.stopped(i + 1), nil
			}
		}
	}

	succeeded, failed, _ := r.countTasks()
	report = r.finish(PhaseCompleted, fmt.Sprintf("All languages processed: %d succeeded, %d failed", succeeded, failed))
	r.emit(Event{Type: EventCompleted, Message: report.Message, Percent: 100, Report: report})
	return report, nil
}

// processWithRetry processes one language, waiting out a throttling failure
// and retrying exactly once.
func (r *Runner) processWithRetry(ctx context.Context, control console.Control, data types.AppData, i, total int, percent float64) (LanguageStatus, error) {
	err := r.processLanguage(ctx, control, data)
	if err == nil {
		return StatusSuccess, nil
	}
	if !translation.IsRateLimited(err) || ctx.Err() != nil {
		return StatusError, err
	}

	log.Printf("[RUNNER] %s throttled, waiting %s before retrying: %v", control.Label, r.opts.Cooldown, err)
	r.emit(Event{Type: EventStatus, Message: fmt.Sprintf("Rate limited, waiting %s... (%d/%d)", r.opts.Cooldown, i+1, total), Percent: percent})
	if sleepErr := r.clock.Sleep(ctx, r.opts.Cooldown); sleepErr != nil {
		return StatusError, err
	}

	r.emit(Event{Type: EventStatus, Message: fmt.Sprintf("Retrying %s (%d/%d)", control.Label, i+1, total), Percent: percent})
	if err := r.processLanguage(ctx, control, data); err != nil {
		return StatusError, err
	}
	return StatusSuccessRetry, nil
}

// processLanguage performs one attempt: close leftovers, open the dialog,
// translate, fill and confirm.
func (r *Runner) processLanguage(ctx context.Context, control console.Control, data types.AppData) error {
	if err := r.surface.CloseAnyOpenModal(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[RUNNER] Could not close open dialog before %s: %v", control.Label, err)
	}

	modal, ok, err := r.surface.OpenModalFor(ctx, control)
	if err != nil {
		return err
	}
	if !ok {
		return console.ModalNotFound(control.Label)
	}

	inputs, err := modal.Inputs(ctx)
	if err != nil {
		return err
	}
	if len(inputs) < console.MinInputs {
		return console.InsufficientInputs(len(inputs))
	}

	result, err := r.translator.TranslateAppData(ctx, data, control.Label)
	if err != nil {
		return err
	}

	for i, field := range types.Fields {
		if text := result.Get(field); text != "" {
			if err := inputs[i].Fill(ctx, field.Truncate(text)); err != nil {
				return err
			}
			if r.opts.Verbose {
				log.Printf("[RUNNER] %s %s filled (%d chars)", control.Label, field, len([]rune(field.Truncate(text))))
			}
			if err := r.clock.Sleep(ctx, r.opts.FieldDelay); err != nil {
				return err
			}
		}
	}

	apply, ok, err := modal.Confirm(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return console.ApplyNotFound()
	}
	if err := apply.Click(ctx); err != nil {
		return err
	}
	return r.clock.Sleep(ctx, r.opts.ApplySettle)
}

func (r *Runner) loadAppData(ctx context.Context) (types.AppData, error) {
	r.mu.Lock()
	cached := r.appData
	r.mu.Unlock()
	if !cached.IsEmpty() {
		return *cached, nil
	}

	if r.source == nil {
		return types.AppData{}, ErrNoAppData
	}
	data, err := r.source.AppData(ctx)
	if err != nil {
		return types.AppData{}, fmt.Errorf("%w: %v", ErrNoAppData, err)
	}
	if data.IsEmpty() {
		return types.AppData{}, ErrNoAppData
	}

	r.mu.Lock()
	r.appData = data
	r.mu.Unlock()
	return *data, nil
}

func (r *Runner) stopRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop
}

func (r *Runner) setTask(i int, status LanguageStatus, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.CurrentIndex = i
	r.state.Tasks[i].Status = status
	r.state.Tasks[i].Error = message
}

func (r *Runner) countTasks() (succeeded, failed, skipped int) {
	r.mu.Lock()
	report := Report{Tasks: r.state.Tasks}
	r.mu.Unlock()
	return report.Counts()
}

func (r *Runner) fail(err error) (*Report, error) {
	report := r.finish(PhaseFailed, err.Error())
	r.emit(Event{Type: EventError, Message: report.Message})
	return report, err
}

func (r *Runner) stopped(processed int) *Report {
	r.mu.Lock()
	total := r.state.Total
	r.mu.Unlock()
	report := r.finish(PhaseStopped, fmt.Sprintf("Run stopped after %d of %d languages", processed, total))
	r.emit(Event{Type: EventStatus, Message: "Run stopped."})
	r.emit(Event{Type: EventCompleted, Message: report.Message, Report: report})
	return report
}

// finish moves the run into a terminal phase and builds its report.
func (r *Runner) finish(phase Phase, message string) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Running = false
	r.state.Phase = phase
	r.state.Message = message
	r.state.FinishedAt = r.clock.Now()
	r.stop = false

	snapshot := r.state.clone()
	return &Report{
		RunID:      snapshot.RunID,
		Phase:      phase,
		Tasks:      snapshot.Tasks,
		Message:    message,
		StartedAt:  snapshot.StartedAt,
		FinishedAt: snapshot.FinishedAt,
	}
}

func (r *Runner) emit(event Event) {
	r.mu.Lock()
	event.RunID = r.state.RunID
	r.mu.Unlock()
	r.sink.Emit(event)
}
