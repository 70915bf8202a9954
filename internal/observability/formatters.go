// Package observability provides formatted terminal output for CLI runs.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewLength bounds how much of a long field is shown
	previewLength = 120
)

// Printer handles formatted output for CLI runs. It is a runner.Sink.
type Printer struct {
	out     io.Writer
	mu      sync.Mutex
	verbose bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// SetVerbose enables per-status progress lines in Emit.
func (p *Printer) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// truncate cuts s to n characters, marking the cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// Emit prints language results as they arrive and the summary box when the
// run ends.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Emit(event runner.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Type {
	case runner.EventStatus:
		if p.verbose {
			fmt.Fprintf(p.out, "  %s\n", event.Message)
		}
	case runner.EventLanguage:
		switch {
		case event.Status == runner.StatusProcessing:
			if p.verbose {
				fmt.Fprintf(p.out, "→ %s\n", event.Language)
			}
		case event.Status.IsSuccess():
			fmt.Fprintf(p.out, "✓ %s (%s)\n", event.Language, event.Status)
		default:
			fmt.Fprintf(p.out, "✗ %s: %s\n", event.Language, event.Message)
		}
	case runner.EventCompleted:
		p.printRunReport(event.Report)
	case runner.EventError:
		fmt.Fprintf(p.out, "Run failed: %s\n", event.Message)
	}
}

// PrintRunReport outputs the per-language outcome of a run.
func (p *Printer) PrintRunReport(report *runner.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printRunReport(report)
}

func (p *Printer) printRunReport(report *runner.Report) {
	if report == nil {
		return
	}

	succeeded, failed, skipped := report.Counts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Outcome:   %s\n", report.Phase))
	sb.WriteString(fmt.Sprintf("Languages: %d ok, %d failed, %d not reached\n", succeeded, failed, skipped))
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.Duration().Round(time.Second)))
	}
	if report.Message != "" {
		sb.WriteString(fmt.Sprintf("%s\n", report.Message))
	}

	if len(report.Tasks) > 0 {
		sb.WriteString("\n")
		for _, task := range report.Tasks {
			mark := "·"
			switch {
			case task.Status == runner.StatusSuccessRetry:
				mark = "↻"
			case task.Status.IsSuccess():
				mark = "✓"
			case task.Status == runner.StatusError:
				mark = "✗"
			}
			line := fmt.Sprintf("%s %s", mark, task.Language)
			if task.Error != "" {
				line += ": " + task.Error
			}
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("TRANSLATION RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTranslation outputs the translated listing for one language.
func (p *Printer) PrintTranslation(language string, result types.TranslationResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	for _, f := range types.Fields {
		value := result.Get(f)
		if value == "" {
			value = "(empty)"
		}
		sb.WriteString(fmt.Sprintf("%s (%d/%d):\n", f, utf8.RuneCountInString(result.Get(f)), f.Limit()))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(strings.ReplaceAll(value, "\n", " "), previewLength)))
	}

	p.printBox(strings.ToUpper(language), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAppData outputs the saved source listing.
func (p *Printer) PrintAppData(data *types.AppData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if data.IsEmpty() {
		p.printBox("SOURCE LISTING", "(not saved)")
		return
	}

	var sb strings.Builder
	for _, f := range types.Fields {
		value := data.Get(f)
		sb.WriteString(fmt.Sprintf("%s (%d/%d): %s\n", f, utf8.RuneCountInString(value), f.Limit(), strings.ReplaceAll(value, "\n", " ")))
	}
	p.printBox("SOURCE LISTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSettings outputs tool settings and whether an API key is configured.
func (p *Printer) PrintSettings(settings types.ToolSettings, apiKey string, location string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stored in: %s\n", location))
	sb.WriteString(fmt.Sprintf("API key:   %s\n", MaskKey(apiKey)))
	sb.WriteString(fmt.Sprintf("Purpose:   %s\n", settings.Purpose))
	sb.WriteString(fmt.Sprintf("Language:  %s\n", settings.TargetLanguage))
	if settings.CustomPrompt != "" {
		sb.WriteString(fmt.Sprintf("Prompt:    %s\n", strings.ReplaceAll(settings.CustomPrompt, "\n", " ")))
	}
	p.printBox("SETTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRateLimit outputs the limiter's usage in the current window.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRateLimit(info ratelimit.Info) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "API budget: %d/%d used, %d remaining\n", info.Used, info.Limit, info.Remaining)
}

// MaskKey shows only the last four characters of a key.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
