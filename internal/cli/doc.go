// Package cli wires together the Cobra command tree for the gauntlet binary.
//
// It defines the root command and all subcommands (review, docs, records,
// personas, config, models, version), binds flags, reads configuration,
// invokes the review orchestrator, and returns deterministic exit codes for
// CI gating.
package cli
