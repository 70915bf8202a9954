package runner

import (
	"time"

	"github.com/google/uuid"
)

// LanguageStatus is the processing state of one language.
type LanguageStatus string

// LanguageStatus constants
const (
	StatusPending      LanguageStatus = "pending"
	StatusProcessing   LanguageStatus = "processing"
	StatusSuccess      LanguageStatus = "success"
	StatusSuccessRetry LanguageStatus = "success_retry"
	StatusError        LanguageStatus = "error"
)

// IsFinished reports whether the status is terminal.
func (s LanguageStatus) IsFinished() bool {
	return s == StatusSuccess || s == StatusSuccessRetry || s == StatusError
}

// IsSuccess reports whether the language was applied, with or without a retry.
func (s LanguageStatus) IsSuccess() bool {
	return s == StatusSuccess || s == StatusSuccessRetry
}

// LanguageTask tracks one discovered language control.
type LanguageTask struct {
	Language string         `json:"language"`
	Status   LanguageStatus `json:"status"`
	Error    string         `json:"error,omitempty"`
}

// Phase is the runner's lifecycle state.
type Phase string

// Phase constants
const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseStopped   Phase = "stopped"
	PhaseFailed    Phase = "failed"
)

// RunState is a snapshot of the current or most recent run.
type RunState struct {
	RunID        uuid.UUID      `json:"run_id"`
	Total        int            `json:"total_languages"`
	CurrentIndex int            `json:"current_index"`
	Running      bool           `json:"running"`
	Phase        Phase          `json:"phase"`
	Tasks        []LanguageTask `json:"tasks"`
	Message      string         `json:"message,omitempty"`
	StartedAt    time.Time      `json:"started_at,omitempty"`
	FinishedAt   time.Time      `json:"finished_at,omitempty"`
}

func (s RunState) clone() RunState {
	s.Tasks = append([]LanguageTask(nil), s.Tasks...)
	return s
}

// Report summarizes a finished run.
type Report struct {
	RunID      uuid.UUID      `json:"run_id"`
	Phase      Phase          `json:"phase"`
	Tasks      []LanguageTask `json:"tasks"`
	Message    string         `json:"message"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Counts returns how many languages succeeded (including retries), failed,
// and were never reached.
func (r *Report) Counts() (succeeded, failed, skipped int) {
	for _, t := range r.Tasks {
		switch {
		case t.Status.IsSuccess():
			succeeded++
		case t.Status == StatusError:
			failed++
		default:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
