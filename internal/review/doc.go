// Package review contains the core types and workflow for persona-based
// design document review.
//
// A run sends the document through an ordered gauntlet of reviewer
// specializations. Each stage asks an LLM provider for a structured
// {status, feedback} verdict, where status is strictly PASS or FAIL;
// malformed responses and transport failures are folded into FAIL verdicts
// carrying diagnostic feedback, so a stage always yields a verdict. The
// first FAIL short-circuits the run.
//
// When every stage passes, a single aggregation call synthesizes the
// verdicts into a consolidated recommendation. The run is approved, and
// persisted through the Gateway, exactly when the recommendation contains
// the case-insensitive substring "approved".
//
// Stages run strictly sequentially with one outstanding provider call at a
// time, and an Orchestrator allows only one active run; concurrent starts
// are rejected with ErrRunInProgress.
package review
