// Gauntlet is a local-first CLI that runs design documents through an
// ordered sequence of LLM reviewer personas.
//
// Each reviewer returns a PASS or FAIL verdict with feedback; the run stops
// at the first FAIL. When every reviewer passes, an aggregation step
// consolidates the feedback into a final recommendation, and documents whose
// recommendation approves them are recorded for later browsing.
//
// Usage:
//
//	gauntlet review design.md             # review a design document
//	cat design.md | gauntlet review       # review from stdin
//	gauntlet docs add guidelines.md       # store a reference document
//	gauntlet records list                 # browse passed reviews
//	gauntlet personas list                # list reviewer personas
//
// See https://github.com/dshills/gauntlet for full documentation.
package main
