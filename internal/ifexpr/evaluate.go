package ifexpr

import "fmt"

// evalContext holds everything one Evaluate call needs: the external
// collaborators, a policy gate scoped to this call, and the
// accumulated diagnostics. One evaluator call frame owns its expanded
// arguments for the duration of one evaluation; nothing here outlives
// the call.
type evalContext struct {
	vars   VariableStore
	policy PolicyStore
	fs     FilesystemProbe
	reg    Registries
	gate   *policyGate

	location string
	fatal    *Diagnostic
	warnings []Diagnostic

	trace       *Trace
	reduceDepth int
}

func newEvalContext(location string, vars VariableStore, policy PolicyStore, fs FilesystemProbe, reg Registries) *evalContext {
	return &evalContext{
		vars:     vars,
		policy:   policy,
		fs:       fs,
		reg:      reg,
		gate:     newPolicyGate(policy),
		location: location,
	}
}

// Evaluate reduces an if/elseif header's expanded arguments to a
// boolean, returning the value plus any diagnostics. It is invoked
// once per `if(...)` header and once per `elseif(...)` header inside a
// pending conditional scope.
func Evaluate(args []Arg, location string, vars VariableStore, policy PolicyStore, fs FilesystemProbe, reg Registries) Result {
	r, _ := evaluate(args, location, vars, policy, fs, reg, nil)
	return r
}

// EvaluateTraced runs the same reduction as Evaluate but also records
// the input tokens and the token list remaining after each of the five
// passes, for condeval explain's debugging output.
func EvaluateTraced(args []Arg, location string, vars VariableStore, policy PolicyStore, fs FilesystemProbe, reg Registries) (Result, Trace) {
	trace := &Trace{}
	r, _ := evaluate(args, location, vars, policy, fs, reg, trace)
	return r, *trace
}

func evaluate(args []Arg, location string, vars VariableStore, policy PolicyStore, fs FilesystemProbe, reg Registries, trace *Trace) (Result, *Trace) {
	e := newEvalContext(location, vars, policy, fs, reg)
	e.trace = trace

	toks := make([]token, len(args))
	for i, a := range args {
		toks[i] = fromArg(a)
	}

	val, err := e.reduceToBool(toks)
	if err != nil {
		e.fail("%s", err.Error())
		val = false
	}

	return Result{Value: val, Fatal: e.fatal, Warnings: e.warnings}, trace
}

func (e *evalContext) fail(format string, args ...interface{}) {
	if e.fatal == nil {
		e.fatal = &Diagnostic{Severity: SeverityFatal, Location: e.location, Message: fmt.Sprintf(format, args...)}
	}
}

// warnOnce records an author-warning for policyID unless this source
// location has already warned once.
func (e *evalContext) warnOnce(policyID string) {
	if e.policy.HasWarnedHere(e.location) {
		return
	}
	e.policy.MarkWarnedHere(e.location)
	e.warnings = append(e.warnings, Diagnostic{
		Severity: SeverityAuthorWarning,
		Location: e.location,
		Message:  e.policy.WarningText(policyID),
	})
}
