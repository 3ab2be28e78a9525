package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/gauntlet/internal/providers"
)

// GeneralCategory marks reference documents that apply to every
// specialization.
const GeneralCategory = "general"

const reviewerSystemPromptFormat = `You are a %s performing a stage of a design review gauntlet. Your job is to review a design document against general industry best practices and against the reference documents provided, and to return a single structured verdict in JSON format.

%s

Rules:
1. PASS means the document meets standards or has only minor, addressable issues.
2. FAIL means the document has critical, show-stopping flaws requiring major rework.
3. Be concise and actionable. Feedback must explain the verdict and name the specific issues.
4. Compare the document against the reference documents where they apply; they represent the standard the document is held to.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble. Just the JSON object.

The verdict must have this exact structure:
{
  "status": "PASS|FAIL",
  "feedback": "Your review feedback"
}`

// rawVerdict is the JSON structure returned by the LLM. Pointer fields
// distinguish a missing field from an empty one.
type rawVerdict struct {
	Status   *string `json:"status"`
	Feedback *string `json:"feedback"`
}

// FilterReferences returns the reference documents visible to a
// specialization: those whose category matches the specialization id or label
// (case-insensitive) plus all general documents. Order is preserved.
func FilterReferences(refs []ReferenceDocument, spec Specialization) []ReferenceDocument {
	var matched []ReferenceDocument
	for _, ref := range refs {
		cat := strings.TrimSpace(ref.Category)
		if strings.EqualFold(cat, GeneralCategory) ||
			strings.EqualFold(cat, spec.ID) ||
			strings.EqualFold(cat, spec.Label) {
			matched = append(matched, ref)
		}
	}
	return matched
}

// ReviewerSystemPrompt builds the role-establishing system prompt for a
// specialization.
func ReviewerSystemPrompt(spec Specialization) string {
	return fmt.Sprintf(reviewerSystemPromptFormat, spec.Label, spec.Prompt)
}

// BuildReviewerPrompt constructs the user prompt from the full document and
// the already-filtered reference documents, each labeled with its category.
func BuildReviewerPrompt(document string, refs []ReferenceDocument) string {
	var b strings.Builder

	b.WriteString("Review the following design document and return your verdict.\n")

	if len(refs) > 0 {
		b.WriteString("\n--- BEGIN REFERENCE DOCUMENTS ---\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "[%s]\n%s\n\n", ref.Category, ref.Text)
		}
		b.WriteString("--- END REFERENCE DOCUMENTS ---\n")
	}

	b.WriteString("\n--- BEGIN DOCUMENT ---\n")
	b.WriteString(document)
	b.WriteString("\n--- END DOCUMENT ---\n")

	return b.String()
}

// ReviewStage runs one reviewer stage. It always returns a Verdict: transport
// failures and malformed responses are mapped to FAIL verdicts carrying
// diagnostic feedback, so the caller never has to distinguish them from a
// legitimate quality failure.
func ReviewStage(ctx context.Context, gen providers.Generator, spec Specialization, document string, refs []ReferenceDocument, maxTokens int) Verdict {
	matched := FilterReferences(refs, spec)

	req := providers.GenerateRequest{
		SystemPrompt: ReviewerSystemPrompt(spec),
		UserPrompt:   BuildReviewerPrompt(document, matched),
		MaxTokens:    maxTokens,
		JSONOnly:     true,
	}

	resp, err := gen.Generate(ctx, req)
	if err != nil {
		return Verdict{
			Status:   StatusFail,
			Feedback: fmt.Sprintf("Reviewer call failed before a verdict was produced: %v", err),
		}
	}

	verdict, err := parseVerdict(resp.Content)
	if err != nil {
		return Verdict{
			Status:   StatusFail,
			Feedback: fmt.Sprintf("Reviewer returned a malformed verdict: %v\n\nRaw response:\n%s", err, resp.Content),
		}
	}
	return verdict
}

func parseVerdict(content string) (Verdict, error) {
	content = stripFences(content)

	var raw rawVerdict
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Verdict{}, fmt.Errorf("invalid JSON object: %w", err)
	}
	if raw.Status == nil {
		return Verdict{}, fmt.Errorf("missing required field %q", "status")
	}
	if raw.Feedback == nil {
		return Verdict{}, fmt.Errorf("missing required field %q", "feedback")
	}

	status := Status(strings.ToUpper(strings.TrimSpace(*raw.Status)))
	if !ValidStatus(status) {
		return Verdict{}, fmt.Errorf("status %q is not PASS or FAIL", *raw.Status)
	}

	return Verdict{Status: status, Feedback: *raw.Feedback}, nil
}

// stripFences removes markdown code fences around a JSON payload. Providers
// routinely wrap JSON in fences even when told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	start := 1
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end = end - 1
	}
	return strings.Join(lines[start:end], "\n")
}
