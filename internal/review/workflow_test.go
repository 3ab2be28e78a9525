package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dshills/gauntlet/internal/providers"
)

// scriptGenerator serves queued verdict payloads to reviewer calls and a
// fixed summary to the aggregation call. Reviewer calls are identified by
// JSONOnly.
type scriptGenerator struct {
	verdicts []string // JSON payloads served in order
	summary  string
	aggErr   error

	reviewerCalls int
	aggCalls      int
	aggReq        providers.GenerateRequest
}

func (g *scriptGenerator) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
	if req.JSONOnly {
		if g.reviewerCalls >= len(g.verdicts) {
			return providers.GenerateResponse{}, fmt.Errorf("unexpected reviewer call %d", g.reviewerCalls)
		}
		content := g.verdicts[g.reviewerCalls]
		g.reviewerCalls++
		return providers.GenerateResponse{Content: content}, nil
	}
	g.aggCalls++
	g.aggReq = req
	if g.aggErr != nil {
		return providers.GenerateResponse{}, g.aggErr
	}
	return providers.GenerateResponse{Content: g.summary}, nil
}

func (g *scriptGenerator) Name() string { return "script" }

// fakeGateway records persistence calls.
type fakeGateway struct {
	refs    []ReferenceDocument
	refsErr error
	saveErr error

	refCalls int
	saved    []Record
}

func (g *fakeGateway) ReferenceDocuments(_ context.Context) ([]ReferenceDocument, error) {
	g.refCalls++
	if g.refsErr != nil {
		return nil, g.refsErr
	}
	return g.refs, nil
}

func (g *fakeGateway) SaveRecord(_ context.Context, rec Record) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append(g.saved, rec)
	return nil
}

func passVerdict(feedback string) string {
	return fmt.Sprintf(`{"status":"PASS","feedback":%q}`, feedback)
}

func failVerdict(feedback string) string {
	return fmt.Sprintf(`{"status":"FAIL","feedback":%q}`, feedback)
}

func testSpecs(ids ...string) []Specialization {
	specs := make([]Specialization, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, Specialization{ID: id, Label: id + " architect", Prompt: "Evaluate " + id + "."})
	}
	return specs
}

func testOptions(specs []Specialization) Options {
	return Options{
		Specializations: specs,
		Owner:           "user-1",
		MaxTokens:       512,
	}
}

func TestRun_EntryGuards(t *testing.T) {
	gen := &scriptGenerator{}
	gw := &fakeGateway{}
	specs := testSpecs("security")

	tests := []struct {
		name    string
		orch    *Orchestrator
		doc     string
		wantErr error
	}{
		{
			name:    "empty document",
			orch:    NewOrchestrator(gen, gw, testOptions(specs)),
			doc:     "   \n\t ",
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "no specializations",
			orch:    NewOrchestrator(gen, gw, testOptions(nil)),
			doc:     "doc",
			wantErr: ErrNoSpecializations,
		},
		{
			name: "missing owner",
			orch: NewOrchestrator(gen, gw, Options{Specializations: specs}),
			doc:  "doc",
			wantErr: ErrIdentityNotReady,
		},
		{
			name:    "nil gateway",
			orch:    NewOrchestrator(gen, nil, testOptions(specs)),
			doc:     "doc",
			wantErr: ErrGatewayNotReady,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.orch.Run(context.Background(), tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if gen.reviewerCalls != 0 || gen.aggCalls != 0 {
		t.Error("a refused run must not call the generator")
	}
}

func TestRun_ShortCircuitsOnFirstFail(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{
			passVerdict("Auth is fine."),
			failVerdict("No migration plan for the schema change."),
			passVerdict("should never be served"),
		},
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security", "data", "scalability")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeFailedAtStage {
		t.Errorf("Outcome = %q, want %q", report.Outcome, OutcomeFailedAtStage)
	}
	if report.FailedStage != "data" {
		t.Errorf("FailedStage = %q, want %q", report.FailedStage, "data")
	}
	if len(report.Stages) != 2 {
		t.Fatalf("got %d stage results, want 2 (no stage after the FAIL)", len(report.Stages))
	}
	if report.Stages[0].Specialization != "security" || report.Stages[1].Specialization != "data" {
		t.Errorf("stage order = %s,%s", report.Stages[0].Specialization, report.Stages[1].Specialization)
	}
	if gen.reviewerCalls != 2 {
		t.Errorf("reviewer calls = %d, want 2", gen.reviewerCalls)
	}
	if gen.aggCalls != 0 {
		t.Error("aggregation must not run after a stage FAIL")
	}
	if len(gw.saved) != 0 {
		t.Error("a failed run must not be persisted")
	}
	if report.AggregateSummary != "" {
		t.Errorf("AggregateSummary = %q, want empty", report.AggregateSummary)
	}
}

func TestRun_AllPassApprovedPersists(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{
			passVerdict("Auth is fine."),
			passVerdict("Schema is sound."),
		},
		summary: "Both reviewers are satisfied. Approved with minor revisions.",
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security", "data")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeApproved {
		t.Fatalf("Outcome = %q, want %q", report.Outcome, OutcomeApproved)
	}
	if !report.Passed() {
		t.Error("Passed() should be true when every stage passed")
	}
	if report.AggregateSummary != gen.summary {
		t.Errorf("AggregateSummary = %q", report.AggregateSummary)
	}
	if gen.aggCalls != 1 {
		t.Errorf("aggregation calls = %d, want exactly 1", gen.aggCalls)
	}
	if report.StorageNotice != "" {
		t.Errorf("StorageNotice = %q, want empty", report.StorageNotice)
	}

	if len(gw.saved) != 1 {
		t.Fatalf("saved records = %d, want 1", len(gw.saved))
	}
	rec := gw.saved[0]
	if rec.Status != RecordStatusPassed {
		t.Errorf("record Status = %q, want %q", rec.Status, RecordStatusPassed)
	}
	if rec.Owner != "user-1" {
		t.Errorf("record Owner = %q", rec.Owner)
	}
	if len(rec.Verdicts) != 2 {
		t.Errorf("record has %d verdicts, want 2", len(rec.Verdicts))
	}
	if rec.AggregateSummary != gen.summary {
		t.Errorf("record AggregateSummary = %q", rec.AggregateSummary)
	}
	if rec.ID == "" {
		t.Error("record ID should be generated")
	}
}

func TestRun_AllPassNotApprovedRejects(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{passVerdict("ok"), passVerdict("ok")},
		summary:  "Requires major revisions before this can move forward.",
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security", "data")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeRejected {
		t.Errorf("Outcome = %q, want %q", report.Outcome, OutcomeRejected)
	}
	if !report.Passed() {
		t.Error("Passed() should still be true: every stage passed even though the run was rejected")
	}
	if len(gw.saved) != 0 {
		t.Error("a rejected run must not be persisted")
	}
}

func TestRun_AggregationFailureRejects(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{passVerdict("ok")},
		aggErr:   errors.New("upstream timeout"),
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeRejected {
		t.Errorf("Outcome = %q, want %q", report.Outcome, OutcomeRejected)
	}
	if !AggregationFailed(report.AggregateSummary) {
		t.Errorf("AggregateSummary %q should carry the failure prefix", report.AggregateSummary)
	}
	if len(gw.saved) != 0 {
		t.Error("an aggregation failure must not be persisted")
	}
}

func TestRun_StorageFailureKeepsApproval(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{passVerdict("ok")},
		summary:  "Approved.",
	}
	gw := &fakeGateway{saveErr: errors.New("disk full")}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeApproved {
		t.Errorf("Outcome = %q, want approval kept despite storage failure", report.Outcome)
	}
	if !strings.Contains(report.StorageNotice, "disk full") {
		t.Errorf("StorageNotice = %q, want the storage error", report.StorageNotice)
	}
}

func TestRun_ReferenceSnapshotReadOnce(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{passVerdict("a"), passVerdict("b"), passVerdict("c")},
		summary:  "Approved.",
	}
	gw := &fakeGateway{
		refs: []ReferenceDocument{{ID: "1", Category: "general", Text: "style"}},
	}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security", "data", "scalability")))

	if _, err := orch.Run(context.Background(), "my design"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if gw.refCalls != 1 {
		t.Errorf("ReferenceDocuments calls = %d, want 1 snapshot per run", gw.refCalls)
	}
}

func TestRun_ReferenceLoadFailureRefusesRun(t *testing.T) {
	gen := &scriptGenerator{verdicts: []string{passVerdict("ok")}}
	gw := &fakeGateway{refsErr: errors.New("database is locked")}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security")))

	_, err := orch.Run(context.Background(), "my design")
	if err == nil {
		t.Fatal("expected error when the reference snapshot cannot be read")
	}
	if gen.reviewerCalls != 0 {
		t.Error("no stage should run when the snapshot fails")
	}
}

func TestRun_AggregatorSeesAllVerdictsInOrder(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{
			passVerdict("first feedback"),
			passVerdict("second feedback"),
		},
		summary: "Approved.",
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security", "data")))

	if _, err := orch.Run(context.Background(), "my design"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	prompt := gen.aggReq.UserPrompt
	first := strings.Index(prompt, "first feedback")
	second := strings.Index(prompt, "second feedback")
	if first == -1 || second == -1 {
		t.Fatalf("aggregation prompt missing verdict feedback:\n%s", prompt)
	}
	if first > second {
		t.Error("aggregation prompt should present verdicts in stage order")
	}
}

// blockingGenerator blocks until its context is done, then fails with the
// context error.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, _ providers.GenerateRequest) (providers.GenerateResponse, error) {
	if g.started != nil {
		g.started <- struct{}{}
	}
	select {
	case <-ctx.Done():
		return providers.GenerateResponse{}, ctx.Err()
	case <-g.release:
		return providers.GenerateResponse{Content: `{"status":"PASS","feedback":"ok"}`}, nil
	}
}

func (g *blockingGenerator) Name() string { return "blocking" }

func TestRun_StageTimeoutBecomesFail(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	gw := &fakeGateway{}
	opts := testOptions(testSpecs("security"))
	opts.StageTimeout = 10 * time.Millisecond
	orch := NewOrchestrator(gen, gw, opts)

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Outcome != OutcomeFailedAtStage {
		t.Errorf("Outcome = %q, want %q", report.Outcome, OutcomeFailedAtStage)
	}
	if len(report.Stages) != 1 {
		t.Fatalf("got %d stage results, want 1", len(report.Stages))
	}
	if report.Stages[0].Verdict.Status != StatusFail {
		t.Errorf("timed-out stage verdict = %q, want FAIL", report.Stages[0].Verdict.Status)
	}
}

func TestRun_ConcurrentStartRejected(t *testing.T) {
	// Buffered so the aggregation call after release does not block on it.
	gen := &blockingGenerator{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security")))

	done := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background(), "my design")
		done <- err
	}()

	<-gen.started // first run is inside its stage

	_, err := orch.Run(context.Background(), "another design")
	if !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent Run() error = %v, want ErrRunInProgress", err)
	}

	close(gen.release)
	if err := <-done; err != nil {
		t.Fatalf("first Run() error: %v", err)
	}

	// The orchestrator is reusable once the run finishes.
	gen2 := &scriptGenerator{verdicts: []string{passVerdict("ok")}, summary: "Approved."}
	orch2 := NewOrchestrator(gen2, gw, testOptions(testSpecs("security")))
	if _, err := orch2.Run(context.Background(), "my design"); err != nil {
		t.Fatalf("fresh Run() error: %v", err)
	}
}

func TestRun_ReportMetadata(t *testing.T) {
	gen := &scriptGenerator{
		verdicts: []string{passVerdict("ok")},
		summary:  "Approved.",
	}
	gw := &fakeGateway{}
	orch := NewOrchestrator(gen, gw, testOptions(testSpecs("security")))

	report, err := orch.Run(context.Background(), "my design")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Tool != "gauntlet" {
		t.Errorf("Tool = %q, want %q", report.Tool, "gauntlet")
	}
	if report.RunID == "" {
		t.Error("RunID should be generated")
	}
	if report.Owner != "user-1" {
		t.Errorf("Owner = %q", report.Owner)
	}
	if report.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}
