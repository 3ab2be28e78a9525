package review

import "time"

// Status is the outcome of a single reviewer stage.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// ValidStatus reports whether s is one of the two literal verdict statuses.
func ValidStatus(s Status) bool {
	return s == StatusPass || s == StatusFail
}

// Verdict is the structured result of one specialization's review.
type Verdict struct {
	Status   Status `json:"status"`
	Feedback string `json:"feedback"`
}

// Specialization is a named reviewer role with its own evaluation prompt.
// The list of specializations is data, not code; it is loaded once per run.
type Specialization struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// ReferenceDocument is a stored exemplar used to ground a specialization's
// review. Category is either "general" (applies to all specializations) or
// names one specific specialization.
type ReferenceDocument struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// StageResult records the verdict produced by one stage of a run.
type StageResult struct {
	Specialization string  `json:"specialization"`
	Label          string  `json:"label"`
	Verdict        Verdict `json:"verdict"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

// Outcome is the state of a workflow run.
type Outcome string

const (
	OutcomeInProgress    Outcome = "in-progress"
	OutcomeFailedAtStage Outcome = "failed-at-stage"
	OutcomeRejected      Outcome = "completed-rejected"
	OutcomeApproved      Outcome = "completed-approved"
)

// Timing contains performance metrics for a run.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// RunReport is the top-level result of one workflow run. Stages holds one
// entry per evaluated specialization, in configured order: for a completed
// run that is the prefix of the configured list up to and including the
// first FAIL, or the entire list when every stage passed.
type RunReport struct {
	Tool             string        `json:"tool"`
	Version          string        `json:"version"`
	RunID            string        `json:"runId"`
	Document         string        `json:"document"`
	Owner            string        `json:"owner"`
	Stages           []StageResult `json:"stages"`
	AggregateSummary string        `json:"aggregateSummary,omitempty"`
	Outcome          Outcome       `json:"outcome"`
	FailedStage      string        `json:"failedStage,omitempty"`
	StorageNotice    string        `json:"storageNotice,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	Timing           Timing        `json:"timing"`
}

// Passed reports whether the run recorded at least one stage and every
// recorded stage returned PASS.
func (r *RunReport) Passed() bool {
	if len(r.Stages) == 0 {
		return false
	}
	for _, s := range r.Stages {
		if s.Verdict.Status != StatusPass {
			return false
		}
	}
	return true
}

// Record is the write-once persisted form of an approved run.
type Record struct {
	ID               string        `json:"id"`
	Document         string        `json:"document"`
	Verdicts         []StageResult `json:"verdicts"`
	AggregateSummary string        `json:"aggregateSummary"`
	Owner            string        `json:"owner"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// RecordStatusPassed is the only status ever written to a Record.
const RecordStatusPassed = "passed"
