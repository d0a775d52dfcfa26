// Package state persists the correlation document that links workflow
// stages across process runs: which instances were last seen failing,
// which recovery jobs their resubmission produced, and the summary of the
// last resubmission.
//
// The document is deliberately small and is always read and written whole.
// Merges are last-writer-wins at document granularity; there is no
// per-field locking because a single operator drives the workflow at a
// time.
package state
