package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gauntlet/internal/review"
)

// MarkdownWriter outputs a shareable markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.RunReport) error {
	fmt.Fprintf(w, "## Gauntlet Design Review\n\n")

	fmt.Fprintf(w, "| Stage | Status |\n")
	fmt.Fprintf(w, "|-------|--------|\n")
	for _, s := range report.Stages {
		fmt.Fprintf(w, "| %s | %s |\n", s.Label, s.Verdict.Status)
	}
	fmt.Fprintln(w)

	for _, s := range report.Stages {
		fmt.Fprintf(w, "<details>\n<summary>%s %s — %s</summary>\n\n",
			mdStatusIcon(s.Verdict.Status), s.Label, s.Verdict.Status)
		fmt.Fprintf(w, "%s\n\n", s.Verdict.Feedback)
		fmt.Fprintf(w, "</details>\n\n")
	}

	if report.AggregateSummary != "" {
		fmt.Fprintf(w, "### Aggregate Recommendation\n\n")
		fmt.Fprintf(w, "> %s\n\n", strings.ReplaceAll(report.AggregateSummary, "\n", "\n> "))
	}

	fmt.Fprintf(w, "**Outcome:** %s\n\n", outcomeLine(report))
	if report.StorageNotice != "" {
		fmt.Fprintf(w, "**Warning:** %s\n\n", report.StorageNotice)
	}

	fmt.Fprintf(w, "*Reviewed in %dms (LLM: %dms)*\n",
		report.Timing.TotalMs, report.Timing.LLMMs)

	return nil
}

func mdStatusIcon(s review.Status) string {
	switch s {
	case review.StatusPass:
		return ":white_check_mark:"
	case review.StatusFail:
		return ":red_circle:"
	default:
		return ":white_circle:"
	}
}
