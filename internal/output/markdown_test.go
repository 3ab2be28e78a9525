package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/gauntlet/internal/review"
)

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "## Gauntlet Design Review") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "| Security Architect | PASS |") {
		t.Error("missing stage table row")
	}
	if !strings.Contains(out, "<details>") {
		t.Error("missing collapsible stage details")
	}
	if !strings.Contains(out, "### Aggregate Recommendation") {
		t.Error("missing recommendation section")
	}
	if !strings.Contains(out, "> Approved with minor revisions.") {
		t.Error("recommendation should be blockquoted")
	}
	if !strings.Contains(out, "**Outcome:**") {
		t.Error("missing outcome line")
	}
}

func TestMarkdownWriter_MultilineSummaryQuoted(t *testing.T) {
	report := sampleReport()
	report.AggregateSummary = "Line one.\nLine two."

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "> Line one.\n> Line two.") {
		t.Error("every summary line should carry the blockquote prefix")
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestMdStatusIcon(t *testing.T) {
	if mdStatusIcon(review.StatusPass) != ":white_check_mark:" {
		t.Error("unexpected PASS icon")
	}
	if mdStatusIcon(review.StatusFail) != ":red_circle:" {
		t.Error("unexpected FAIL icon")
	}
}
