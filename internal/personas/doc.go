// Package personas defines the reviewer specializations as data.
//
// Four personas ship built in (security, integration, data, scalability). A
// YAML personas file can override any of them or add new ones without code
// changes; the orchestrator only ever sees the resolved ordered list for a
// run.
package personas
