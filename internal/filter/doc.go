// Package filter decides whether a canonical posting belongs in a scan's result set.
//
// The predicates are heuristics over free-text titles and locations. They do no I/O and keep no
// state between calls, so the same posting and criteria always produce the same decision.
package filter
