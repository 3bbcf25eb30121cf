// Package gonerr implements the single error taxonomy shared by every compiler stage: lexical, syntactic, name
// and type errors are all reported through one Reporter so that a run can surface multiple diagnostics instead
// of aborting at the first one.
package gonerr

import (
	"fmt"

	"gone/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Reporter collects diagnostics produced during a single compilation and maintains the monotonic error count
// the pipeline checks between stages. It wraps util.Perror so that the checker's optional parallel pass
// (SPEC_FULL.md §5) can report from multiple worker goroutines without a data race.
type Reporter struct {
	pe *util.Perror
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewReporter returns a Reporter ready to accept diagnostics.
func NewReporter() *Reporter {
	return &Reporter{pe: util.NewPerror(16)}
}

// Report records a diagnostic attributed to the given source line.
func (r *Reporter) Report(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.pe.Append(fmt.Errorf("line %d: %s", line, msg))
}

// Count returns the number of diagnostics reported so far.
func (r *Reporter) Count() int {
	return r.pe.Len()
}

// HasErrors reports whether any diagnostic has been recorded.
func (r *Reporter) HasErrors() bool {
	return r.Count() > 0
}

// Errors returns every diagnostic reported so far, in the order they were reported. The diagnostics stay
// recorded: Count is unchanged by this call.
func (r *Reporter) Errors() []error {
	out := make([]error, 0, r.Count())
	for e := range r.pe.Errors() {
		out = append(out, e)
	}
	return out
}

// Close stops the underlying error listener. Must be called exactly once, after the reporter is no longer
// needed.
func (r *Reporter) Close() {
	r.pe.Stop()
}
