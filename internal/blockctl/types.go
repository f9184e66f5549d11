// Package blockctl implements the block-control state machine that
// drives if/elseif/else/endif branch selection while invocations
// stream in one at a time from an outer parser.
package blockctl

import "github.com/outpost-build/condeval/internal/ifexpr"

// Invocation is a parsed call of a script-level command: a name plus
// raw arguments and the source location they came from.
type Invocation struct {
	Name     string
	Args     []ifexpr.Arg
	Location string
}

// nameEquals compares names case-insensitively without allocating via
// strings.ToLower, matching the comparison ifexpr.Invocation uses.
func nameEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// ControlSignal is the outcome of replaying a dispatched invocation.
type ControlSignal int

const (
	SignalContinue ControlSignal = iota
	SignalBreak
	SignalReturn
)

// ExecutionStatus is what the external command executor reports back
// for one dispatched invocation.
type ExecutionStatus interface {
	ReturnInvoked() bool
	BreakInvoked() bool
}

// CommandExecutor dispatches a non-control invocation during replay.
type CommandExecutor interface {
	Execute(inv Invocation) (ExecutionStatus, error)
}

// Outcome is returned by Finish once the machine has recorded a
// matching top-level endif and replayed the body (or stopped early on
// a fatal diagnostic from the opening header).
type Outcome struct {
	// Signal reports whether a dispatched command invoked break or
	// return; replay stops immediately when it is not SignalContinue.
	Signal ControlSignal
	// Fatal is set if an if/elseif header produced a fatal diagnostic,
	// or if a dispatched command returned an error.
	Fatal *ifexpr.Diagnostic
	// Warnings collects every author-warning surfaced while replaying.
	Warnings []ifexpr.Diagnostic
}
