// Package output formats run reports for display or machine consumption.
//
// Three formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON report
//   - markdown — shareable report with collapsible per-stage feedback
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.RunReport].
// [WriteReport] is a convenience helper that handles destination selection.
package output
