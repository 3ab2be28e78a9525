// Package document loads design documents for review from files or stdin.
//
// Only plain-text formats (.txt, .md, .markdown) are accepted; anything else
// is rejected by name. Content must be valid UTF-8 and non-empty after
// trimming.
package document
