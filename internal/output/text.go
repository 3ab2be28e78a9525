package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gauntlet/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.RunReport) error {
	ew := &errWriter{w: w}

	ew.printf("Gauntlet Design Review — run %s\n", report.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Stages evaluated: %d\n", len(report.Stages))
	ew.println(strings.Repeat("─", 60))

	for _, s := range report.Stages {
		ew.printf("\n%s %s\n", statusIcon(s.Verdict.Status), s.Label)
		for _, line := range wrapText(s.Verdict.Feedback, 70) {
			ew.printf("    %s\n", line)
		}
	}

	if report.AggregateSummary != "" {
		ew.println("\nAggregate Recommendation")
		ew.println(strings.Repeat("─", 40))
		for _, line := range wrapText(report.AggregateSummary, 70) {
			ew.printf("  %s\n", line)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Outcome: %s\n", outcomeLine(report))
	if report.StorageNotice != "" {
		ew.printf("Warning: %s\n", report.StorageNotice)
	}
	ew.printf("Completed in %dms (LLM: %dms)\n",
		report.Timing.TotalMs, report.Timing.LLMMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func statusIcon(s review.Status) string {
	switch s {
	case review.StatusPass:
		return "[PASS]"
	case review.StatusFail:
		return "[FAIL]"
	default:
		return "[?]"
	}
}

func outcomeLine(report *review.RunReport) string {
	switch report.Outcome {
	case review.OutcomeFailedAtStage:
		return fmt.Sprintf("failed at stage %q — review halted, nothing persisted", report.FailedStage)
	case review.OutcomeRejected:
		return "completed — not approved, nothing persisted"
	case review.OutcomeApproved:
		return "completed — approved and recorded as passed"
	default:
		return string(report.Outcome)
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
