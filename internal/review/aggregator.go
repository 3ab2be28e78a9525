package review

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/gauntlet/internal/providers"
)

// AggregateFailurePrefix marks a summary produced by a failed aggregation
// call rather than by the generator. Callers that need to tell the two apart
// must check for it explicitly.
const AggregateFailurePrefix = "[aggregation failed] "

// documentPreviewLimit caps how much of the document is resent for context
// in the aggregation prompt.
const documentPreviewLimit = 500

const aggregatorSystemPrompt = `You are the aggregator for a multi-stage design review. You are given the individual reviewer verdicts for a design document. Synthesize them into a single consolidated report.

Rules:
1. Identify common themes across the individual reviews.
2. Surface the most critical issues first.
3. Flag any contradictions between reviewers.
4. End with a final recommendation, e.g. "Ready for next stage", "Approved with minor revisions", "Requires major revisions", or "Rejected due to critical flaws".

Respond with plain text. Do not return JSON.`

// BuildAggregatePrompt constructs the aggregation prompt. Only verdicts with
// non-empty feedback are included, each labeled with its capitalized
// specialization label and its status. The document is truncated to its
// first 500 characters.
func BuildAggregatePrompt(stages []StageResult, document string) string {
	var b strings.Builder

	b.WriteString("Synthesize the following reviews into a consolidated report with a final recommendation.\n")

	preview := document
	if len(preview) > documentPreviewLimit {
		preview = preview[:documentPreviewLimit]
	}
	b.WriteString("\n--- DOCUMENT (excerpt) ---\n")
	b.WriteString(preview)
	b.WriteString("\n--- END EXCERPT ---\n")

	b.WriteString("\n--- INDIVIDUAL REVIEWS ---\n")
	for _, s := range stages {
		if strings.TrimSpace(s.Verdict.Feedback) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%s):\n%s\n", capitalize(s.Label), s.Verdict.Status, s.Verdict.Feedback)
	}
	b.WriteString("--- END REVIEWS ---\n")

	return b.String()
}

// Aggregate produces the consolidated recommendation for a fully passed run.
// On any failure from the external call it returns a diagnostic string
// carrying AggregateFailurePrefix instead of an error.
func Aggregate(ctx context.Context, gen providers.Generator, stages []StageResult, document string, maxTokens int) string {
	req := providers.GenerateRequest{
		SystemPrompt: aggregatorSystemPrompt,
		UserPrompt:   BuildAggregatePrompt(stages, document),
		MaxTokens:    maxTokens,
	}

	resp, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Sprintf("%scould not produce a consolidated recommendation: %v", AggregateFailurePrefix, err)
	}
	return resp.Content
}

// Approved implements the approval heuristic: a completed run is treated as
// approved if and only if the aggregate summary contains the
// case-insensitive substring "approved".
func Approved(summary string) bool {
	return strings.Contains(strings.ToLower(summary), "approved")
}

// AggregationFailed reports whether a summary is a failure diagnostic from
// Aggregate rather than a generator recommendation.
func AggregationFailed(summary string) bool {
	return strings.HasPrefix(summary, AggregateFailurePrefix)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
