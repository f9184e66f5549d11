package main

import (
	"fmt"

	"github.com/outpost-build/condeval/internal/blockctl"
	"github.com/outpost-build/condeval/internal/dispatch"
	"github.com/outpost-build/condeval/internal/fsprobe"
	"github.com/outpost-build/condeval/internal/ifexpr"
	"github.com/outpost-build/condeval/internal/policystore"
	"github.com/outpost-build/condeval/internal/registries"
	"github.com/outpost-build/condeval/internal/varstore"
)

// runResult is the outcome of running one script end to end.
type runResult struct {
	Fatal    *ifexpr.Diagnostic
	Warnings []ifexpr.Diagnostic
	Signal   blockctl.ControlSignal
}

// collaborators bundles the external stores a run needs, built from
// flags/config once per script run (check builds one set per script).
type collaborators struct {
	vars   *varstore.Store
	policy *policystore.Store
	fs     fsprobe.Probe
	reg    *registries.Registries
	exec   *dispatch.Dispatcher
}

func newCollaborators(varsPath, factsPath string, defs policystore.Defaults) (*collaborators, error) {
	vars := varstore.New()
	if varsPath != "" {
		loaded, err := varstore.Load(varsPath)
		if err != nil {
			return nil, fmt.Errorf("loading variable fixture: %w", err)
		}
		vars = loaded
	}

	pol, err := policystore.New(factsPath, defs)
	if err != nil {
		return nil, fmt.Errorf("loading policy facts: %w", err)
	}

	return &collaborators{
		vars:   vars,
		policy: pol,
		fs:     fsprobe.New(),
		reg:    registries.New(),
		exec:   dispatch.New(vars),
	}, nil
}

// run drives invs through the block-control machine, installing a
// Machine whenever a top-level "if" is seen and dispatching directly
// otherwise.
func run(invs []blockctl.Invocation, c *collaborators) runResult {
	var active *blockctl.Machine
	var warnings []ifexpr.Diagnostic

	for _, inv := range invs {
		if active == nil {
			if nameIs(inv.Name, "if") {
				active = blockctl.New(inv.Args, inv.Location, c.vars, c.policy, c.fs, c.reg, c.exec)
				continue
			}
			status, err := c.exec.Execute(inv)
			if err != nil {
				return runResult{Fatal: &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Location: inv.Location, Message: err.Error()}, Warnings: warnings}
			}
			if status.BreakInvoked() {
				return runResult{Signal: blockctl.SignalBreak, Warnings: warnings}
			}
			if status.ReturnInvoked() {
				return runResult{Signal: blockctl.SignalReturn, Warnings: warnings}
			}
			continue
		}

		if !active.Feed(inv) {
			continue
		}
		out := active.Finish()
		active = nil
		warnings = append(warnings, out.Warnings...)
		if out.Fatal != nil {
			return runResult{Fatal: out.Fatal, Warnings: warnings}
		}
		if out.Signal != blockctl.SignalContinue {
			return runResult{Signal: out.Signal, Warnings: warnings}
		}
	}
	return runResult{Warnings: warnings}
}

func nameIs(a, b string) bool {
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
