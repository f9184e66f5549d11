package ifexpr

// resolveVariable maps t to the value of the variable it names,
// honoring the "quoted string never dereferences" policy unless
// policy-quoted-demote says otherwise. Synthesized literals never
// resolve.
func (e *evalContext) resolveVariable(t token) (string, bool) {
	if t.synthesized {
		return "", false
	}
	if !t.wasQuoted {
		return e.vars.Get(t.value)
	}
	switch e.gate.quotedDemote() {
	case PolicyOld:
		return e.vars.Get(t.value)
	case PolicyWarn:
		e.warnOnce("policy-quoted-demote")
		return e.vars.Get(t.value)
	default: // NEW, REQUIRED_IF_USED, REQUIRED_ALWAYS
		return "", false
	}
}

// asVariableOrString returns the resolved variable value if present,
// otherwise the token's own text.
func (e *evalContext) asVariableOrString(t token) string {
	if v, ok := e.resolveVariable(t); ok {
		return v
	}
	return t.value
}
