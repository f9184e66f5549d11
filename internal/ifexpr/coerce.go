package ifexpr

import (
	"strconv"
	"strings"
)

// isFalsyConstant tests v against CMake's falsy set. "0" is included
// here (not just as the literal-token fast path in coerceNew/coerceOld)
// because a *resolved variable value* of "0" must test falsy too: a
// variable B holding "0" must make `if(A AND B)` false, which only
// holds if the falsy-set test applied to a resolved value treats "0"
// the same way the literal-token fast path does.
func isFalsyConstant(v string) bool {
	switch v {
	case "0", "OFF", "NO", "FALSE", "N", "IGNORE", "NOTFOUND", "":
		return true
	}
	return strings.HasSuffix(v, "-NOTFOUND")
}

func isTruthyConstant(v string) bool {
	switch v {
	case "ON", "YES", "TRUE", "Y":
		return true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return false
}

// coerceNew is CMake's "new" (post-policy) boolean coercion.
func (e *evalContext) coerceNew(t token) bool {
	switch t.value {
	case "0":
		return false
	case "1":
		return true
	}
	if isTruthyConstant(t.value) {
		return true
	}
	if isFalsyConstant(t.value) {
		return false
	}
	resolved, ok := e.resolveVariable(t)
	if !ok {
		// An undefined name behaves like the empty string: falsy,
		// so the coercion (the negation of "is falsy") is false.
		return false
	}
	return !isFalsyConstant(resolved)
}

// coerceOld is CMake's legacy boolean coercion, used for
// policy-auto-deref OLD and to detect old/new disagreement. singleton
// selects the "exactly one argument remains" form.
func (e *evalContext) coerceOld(t token, singleton bool) bool {
	if singleton {
		switch t.value {
		case "0":
			return false
		case "1":
			return true
		}
		resolved, ok := e.resolveVariable(t)
		if !ok {
			return false
		}
		return !isFalsyConstant(resolved)
	}

	resolved, ok := e.resolveVariable(t)
	if !ok {
		if n, err := strconv.ParseInt(t.value, 10, 64); err == nil {
			return n != 0
		}
		if f, err := strconv.ParseFloat(t.value, 64); err == nil {
			return f != 0
		}
		return false
	}
	return !isFalsyConstant(resolved)
}

// coerce applies the old/new boolean-coercion compatibility pair
// through the policy-auto-deref gate. When the two modes agree there
// is nothing to gate; when they disagree, resolution follows the
// policy status. The
// WARN and REQUIRED_* cases keep an observable fall-through instead of
// the naive reading of the policy table; see DESIGN.md "Open Question
// decisions", "Auto-deref WARN/REQUIRED_* fallthrough".
func (e *evalContext) coerce(t token, singleton bool) bool {
	newResult := e.coerceNew(t)
	oldResult := e.coerceOld(t, singleton)
	if newResult == oldResult {
		return newResult
	}

	switch e.gate.autoDeref() {
	case PolicyNew:
		return newResult
	case PolicyOld:
		return oldResult
	case PolicyWarn:
		e.warnOnce("policy-auto-deref")
		return oldResult
	default: // PolicyRequiredIfUsed, PolicyRequiredAlways
		e.fail("%s", e.policy.WarningText("policy-auto-deref"))
		return newResult
	}
}
