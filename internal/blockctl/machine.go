package blockctl

import "github.com/outpost-build/condeval/internal/ifexpr"

// Machine is one installed if/elseif/else/endif block-control
// instance. It is fed invocations one at a time during recording;
// once the matching top-level endif arrives it replays the recorded
// body and reports an Outcome.
type Machine struct {
	openArgs     []ifexpr.Arg
	openLocation string

	scopeDepth int
	isBlocking bool
	hasRun     bool
	body       []Invocation

	fatalFromOpen    *ifexpr.Diagnostic
	warningsFromOpen []ifexpr.Diagnostic

	vars   ifexpr.VariableStore
	policy ifexpr.PolicyStore
	fs     ifexpr.FilesystemProbe
	reg    ifexpr.Registries
	exec   CommandExecutor
}

// New installs a machine for an if(...) header just seen at top
// level, evaluating its arguments immediately.
func New(openArgs []ifexpr.Arg, openLocation string, vars ifexpr.VariableStore, policy ifexpr.PolicyStore, fs ifexpr.FilesystemProbe, reg ifexpr.Registries, exec CommandExecutor) *Machine {
	m := &Machine{
		openArgs:     openArgs,
		openLocation: openLocation,
		scopeDepth:   1,
		vars:         vars,
		policy:       policy,
		fs:           fs,
		reg:          reg,
		exec:         exec,
	}
	r := ifexpr.Evaluate(openArgs, openLocation, vars, policy, fs, reg)
	m.isBlocking = !r.Value
	m.hasRun = !m.isBlocking
	m.fatalFromOpen = r.Fatal
	m.warningsFromOpen = r.Warnings
	return m
}

// Feed intercepts one invocation during the recording phase. It
// returns true once the top-level endif has been recorded and
// validated, meaning Finish is ready to be called.
func (m *Machine) Feed(inv Invocation) bool {
	switch {
	case nameEquals(inv.Name, "if"):
		m.scopeDepth++
		m.body = append(m.body, inv)
		return false
	case nameEquals(inv.Name, "endif"):
		m.scopeDepth--
		m.body = append(m.body, inv)
		if m.scopeDepth == 0 {
			return m.endifArgsMatch(inv.Args)
		}
		return false
	default:
		m.body = append(m.body, inv)
		return false
	}
}

// endifArgsMatch reports whether a closing endif's arguments terminate
// this machine's if header: empty arguments always match, otherwise
// every token (value and quoted flag) must equal the opening if
// header's arguments exactly. A mismatch leaves the machine installed
// and still recording (see DESIGN.md for the resolved open question on
// this rule).
func (m *Machine) endifArgsMatch(closing []ifexpr.Arg) bool {
	if len(closing) == 0 {
		return true
	}
	if len(closing) != len(m.openArgs) {
		return false
	}
	for i := range closing {
		if closing[i].Value != m.openArgs[i].Value || closing[i].WasQuoted != m.openArgs[i].WasQuoted {
			return false
		}
	}
	return true
}

// Finish replays the recorded body and reports the outcome. Call it
// only after Feed has returned true.
func (m *Machine) Finish() Outcome {
	out := Outcome{Fatal: m.fatalFromOpen, Warnings: append([]ifexpr.Diagnostic{}, m.warningsFromOpen...)}
	if out.Fatal != nil {
		return out
	}

	signal, fatal, warnings := m.replayBody(m.body, &m.isBlocking, &m.hasRun)
	out.Signal = signal
	out.Fatal = fatal
	out.Warnings = append(out.Warnings, warnings...)
	return out
}

// replayBody walks one flat span of a recorded body, dispatching
// non-control invocations while isBlocking is false and resolving
// else/elseif against hasRun/isBlocking. A nested if header is
// resolved recursively against the sub-span up to its matching endif:
// a pure inner scope-depth count never evaluates a nested header's own
// condition, which only happens to give the right answer in scenario 6
// because the nested condition there is false. A nested if whose own
// condition is true would be wrongly skipped by a pure depth count, so
// this recurses and combines the outer and nested blocking state
// instead (outer blocking always forces the nested span blocking too;
// see DESIGN.md).
func (m *Machine) replayBody(body []Invocation, isBlocking, hasRun *bool) (ControlSignal, *ifexpr.Diagnostic, []ifexpr.Diagnostic) {
	var warnings []ifexpr.Diagnostic
	seenElse := false
	i := 0
	for i < len(body) {
		inv := body[i]
		switch {
		case nameEquals(inv.Name, "if"):
			j := matchingEndif(body, i)
			nested := body[i+1 : j]

			r := ifexpr.Evaluate(inv.Args, inv.Location, m.vars, m.policy, m.fs, m.reg)
			warnings = append(warnings, r.Warnings...)
			if r.Fatal != nil {
				return SignalContinue, r.Fatal, warnings
			}

			nestedBlocking, nestedHasRun := true, true
			if !*isBlocking {
				nestedBlocking = !r.Value
				nestedHasRun = r.Value
			}
			sig, fatal, w := m.replayBody(nested, &nestedBlocking, &nestedHasRun)
			warnings = append(warnings, w...)
			if fatal != nil {
				return SignalContinue, fatal, warnings
			}
			if sig != SignalContinue {
				return sig, nil, warnings
			}
			i = j + 1

		case nameEquals(inv.Name, "endif"):
			i++

		case nameEquals(inv.Name, "else"):
			if seenElse {
				return SignalContinue, &ifexpr.Diagnostic{
					Severity: ifexpr.SeverityFatal,
					Location: inv.Location,
					Message:  "unreachable else: a second else() in this if/endif block can never run",
				}, warnings
			}
			seenElse = true
			*isBlocking = *hasRun
			*hasRun = true
			i++

		case nameEquals(inv.Name, "elseif"):
			if *hasRun {
				*isBlocking = true
			} else {
				r := ifexpr.Evaluate(inv.Args, inv.Location, m.vars, m.policy, m.fs, m.reg)
				warnings = append(warnings, r.Warnings...)
				if r.Fatal != nil {
					return SignalContinue, r.Fatal, warnings
				}
				if r.Value {
					*isBlocking = false
					*hasRun = true
				} else {
					*isBlocking = true
				}
			}
			i++

		default:
			if !*isBlocking {
				status, err := m.exec.Execute(inv)
				if err != nil {
					return SignalContinue, &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Location: inv.Location, Message: err.Error()}, warnings
				}
				if status.BreakInvoked() {
					return SignalBreak, nil, warnings
				}
				if status.ReturnInvoked() {
					return SignalReturn, nil, warnings
				}
			}
			i++
		}
	}
	return SignalContinue, nil, warnings
}

// matchingEndif returns the index within body of the endif matching
// the if header at index open, tracking nested depth.
func matchingEndif(body []Invocation, open int) int {
	depth := 1
	for j := open + 1; j < len(body); j++ {
		switch {
		case nameEquals(body[j].Name, "if"):
			depth++
		case nameEquals(body[j].Name, "endif"):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(body) - 1
}
