package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gauntlet/internal/providers"
	"github.com/dshills/gauntlet/internal/redact"
)

const (
	toolName    = "gauntlet"
	toolVersion = "1.0"
)

// Entry-guard errors. A rejected start creates no run state.
var (
	ErrEmptyDocument     = errors.New("provide a document to review")
	ErrNoSpecializations = errors.New("select at least one reviewer")
	ErrIdentityNotReady  = errors.New("user identity is not ready")
	ErrGatewayNotReady   = errors.New("persistence gateway is not ready")
	ErrRunInProgress     = errors.New("a review run is already in progress")
)

// Gateway is the persistence collaborator the orchestrator writes through.
type Gateway interface {
	// ReferenceDocuments returns a snapshot of all stored reference
	// documents. The orchestrator reads it once at workflow start.
	ReferenceDocuments(ctx context.Context) ([]ReferenceDocument, error)
	// SaveRecord persists an approved run. Write-once.
	SaveRecord(ctx context.Context, rec Record) error
}

// Options configures an Orchestrator.
type Options struct {
	// Specializations is the ordered run list. Immutable for the run.
	Specializations []Specialization
	// Owner is the opaque per-user identity attached to persisted records.
	Owner string
	// MaxTokens is passed through to every generator call.
	MaxTokens int
	// StageTimeout bounds each reviewer or aggregator call. A timed-out
	// reviewer call becomes a FAIL verdict; a timed-out aggregation becomes
	// a failure-marker summary. Zero disables the bound.
	StageTimeout time.Duration
	// RedactSecrets scrubs secrets from the document before any provider
	// call.
	RedactSecrets bool
}

// Orchestrator drives the review workflow: sequential reviewer stages over
// the configured specializations, short-circuit on the first FAIL, one
// aggregation call when every stage passes, and persistence gating on the
// approval heuristic.
type Orchestrator struct {
	gen  providers.Generator
	gw   Gateway
	opts Options

	mu   sync.Mutex
	busy bool
}

// NewOrchestrator creates an orchestrator bound to a generator and a
// persistence gateway.
func NewOrchestrator(gen providers.Generator, gw Gateway, opts Options) *Orchestrator {
	return &Orchestrator{gen: gen, gw: gw, opts: opts}
}

// Run executes one workflow run over the document and returns its report.
// Reviewer and aggregation failures never surface as errors; they are folded
// into the report. An error return means the run was refused and no stage
// was executed.
//
// Only one run may be active at a time; a concurrent Run is rejected with
// ErrRunInProgress rather than queued.
func (o *Orchestrator) Run(ctx context.Context, document string) (*RunReport, error) {
	if strings.TrimSpace(document) == "" {
		return nil, ErrEmptyDocument
	}
	if len(o.opts.Specializations) == 0 {
		return nil, ErrNoSpecializations
	}
	if o.opts.Owner == "" {
		return nil, ErrIdentityNotReady
	}
	if o.gen == nil || o.gw == nil {
		return nil, ErrGatewayNotReady
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrRunInProgress
	}
	o.busy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	start := time.Now()

	if o.opts.RedactSecrets {
		document = redact.Secrets(document)
	}

	// One snapshot for the whole run; stages never re-fetch.
	refs, err := o.gw.ReferenceDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference documents: %w", err)
	}

	report := &RunReport{
		Tool:      toolName,
		Version:   toolVersion,
		RunID:     uuid.NewString(),
		Document:  document,
		Owner:     o.opts.Owner,
		Outcome:   OutcomeInProgress,
		CreatedAt: start.UTC(),
	}

	for _, spec := range o.opts.Specializations {
		verdict, elapsed := o.runStage(ctx, spec, document, refs)
		report.Timing.LLMMs += elapsed
		report.Stages = append(report.Stages, StageResult{
			Specialization: spec.ID,
			Label:          spec.Label,
			Verdict:        verdict,
			ElapsedMs:      elapsed,
		})

		if verdict.Status != StatusPass {
			report.Outcome = OutcomeFailedAtStage
			report.FailedStage = spec.ID
			report.Timing.TotalMs = time.Since(start).Milliseconds()
			return report, nil
		}
	}

	summary, elapsed := o.runAggregation(ctx, report.Stages, document)
	report.Timing.LLMMs += elapsed
	report.AggregateSummary = summary

	switch {
	case AggregationFailed(summary):
		report.Outcome = OutcomeRejected
	case Approved(summary):
		report.Outcome = OutcomeApproved
		if err := o.persist(ctx, report); err != nil {
			// Approval is not reverted; the storage failure rides along.
			report.StorageNotice = fmt.Sprintf("approved result could not be persisted: %v", err)
		}
	default:
		report.Outcome = OutcomeRejected
	}

	report.Timing.TotalMs = time.Since(start).Milliseconds()
	return report, nil
}

func (o *Orchestrator) runStage(ctx context.Context, spec Specialization, document string, refs []ReferenceDocument) (Verdict, int64) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()

	start := time.Now()
	verdict := ReviewStage(stageCtx, o.gen, spec, document, refs, o.opts.MaxTokens)
	return verdict, time.Since(start).Milliseconds()
}

func (o *Orchestrator) runAggregation(ctx context.Context, stages []StageResult, document string) (string, int64) {
	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()

	start := time.Now()
	summary := Aggregate(stageCtx, o.gen, stages, document, o.opts.MaxTokens)
	return summary, time.Since(start).Milliseconds()
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.opts.StageTimeout)
}

func (o *Orchestrator) persist(ctx context.Context, report *RunReport) error {
	rec := Record{
		ID:               uuid.NewString(),
		Document:         report.Document,
		Verdicts:         report.Stages,
		AggregateSummary: report.AggregateSummary,
		Owner:            report.Owner,
		Status:           RecordStatusPassed,
		CreatedAt:        time.Now().UTC(),
	}
	return o.gw.SaveRecord(ctx, rec)
}
