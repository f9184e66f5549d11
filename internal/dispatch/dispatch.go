// Package dispatch implements blockctl.CommandExecutor with a
// handful of built-in commands (message, set, unset, break, return),
// good enough to drive condeval's CLI and tests. Anything else is a
// no-op, since full command dispatch (function/macro definitions,
// the real build-system command set) is out of scope.
package dispatch

import (
	"strings"

	"github.com/outpost-build/condeval/internal/blockctl"
	"github.com/outpost-build/condeval/internal/ifexpr"
	"github.com/outpost-build/condeval/internal/logging"
	"github.com/outpost-build/condeval/internal/varstore"
)

// Status is the blockctl.ExecutionStatus for a dispatched command.
type Status struct {
	brk bool
	ret bool
}

// BreakInvoked implements blockctl.ExecutionStatus.
func (s Status) BreakInvoked() bool { return s.brk }

// ReturnInvoked implements blockctl.ExecutionStatus.
func (s Status) ReturnInvoked() bool { return s.ret }

// Dispatcher executes invocations against a variable store.
type Dispatcher struct {
	vars *varstore.Store
}

// New returns a Dispatcher writing to vars.
func New(vars *varstore.Store) *Dispatcher {
	return &Dispatcher{vars: vars}
}

// Execute implements blockctl.CommandExecutor.
func (d *Dispatcher) Execute(inv blockctl.Invocation) (blockctl.ExecutionStatus, error) {
	log := logging.Get(logging.CategoryCLI)
	switch strings.ToLower(inv.Name) {
	case "break":
		return Status{brk: true}, nil
	case "return":
		return Status{ret: true}, nil
	case "message":
		log.Info("%s", joinArgs(inv.Args))
		return Status{}, nil
	case "set":
		switch {
		case len(inv.Args) >= 2:
			d.vars.Set(inv.Args[0].Value, inv.Args[1].Value)
		case len(inv.Args) == 1:
			d.vars.Unset(inv.Args[0].Value)
		}
		return Status{}, nil
	case "unset":
		if len(inv.Args) >= 1 {
			d.vars.Unset(inv.Args[0].Value)
		}
		return Status{}, nil
	default:
		return Status{}, nil
	}
}

func joinArgs(args []ifexpr.Arg) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Value)
	}
	return b.String()
}
