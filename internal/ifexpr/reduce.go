package ifexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// passFunc rewrites toks by at most one contiguous span; changed is
// false once no further rewrite applies, per the fixed-point-per-pass
// rule each of the five precedence passes follows.
type passFunc func([]token) ([]token, bool, error)

// TraceStep is the token list remaining after one named stage of the
// reduction (the initial "input" stage, then one stage per pass).
type TraceStep struct {
	Stage  string
	Tokens []string
}

// Trace is the full reduction trace for one Evaluate call, recorded
// only by EvaluateTraced. The outermost reduction is recorded; nested
// reductions inside a parenthesized span are not, since those are
// themselves visible as the literal the parens pass collapses them to.
type Trace struct {
	Steps []TraceStep
}

func (t *Trace) record(stage string, toks []token) {
	if t == nil {
		return
	}
	strs := make([]string, len(toks))
	for i, tok := range toks {
		strs[i] = tok.value
	}
	t.Steps = append(t.Steps, TraceStep{Stage: stage, Tokens: strs})
}

func (e *evalContext) fixpoint(toks []token, pass passFunc) ([]token, error) {
	for {
		next, changed, err := pass(toks)
		if err != nil {
			return nil, err
		}
		if !changed {
			return next, nil
		}
		toks = next
	}
}

// reduceToBool runs the five precedence passes to a fixed point and
// coerces whatever single token remains. It recurses into itself for
// the contents of each parenthesized span; only the outermost call
// records a trace (e.reduceDepth tracks nesting).
func (e *evalContext) reduceToBool(toks []token) (bool, error) {
	e.reduceDepth++
	defer func() { e.reduceDepth-- }()
	tracing := e.trace != nil && e.reduceDepth == 1
	if tracing {
		e.trace.record("input", toks)
	}

	named := []struct {
		stage string
		fn    passFunc
	}{
		{"parens", e.passParens},
		{"unary", e.passUnary},
		{"binary", e.passBinary},
		{"not", e.passNot},
		{"and_or", e.passAndOr},
	}

	var err error
	for _, pass := range named {
		toks, err = e.fixpoint(toks, pass.fn)
		if err != nil {
			return false, err
		}
		if tracing {
			e.trace.record(pass.stage, toks)
		}
	}

	var val bool
	switch len(toks) {
	case 0:
		val = false
	case 1:
		val = e.coerce(toks[0], true)
	default:
		return false, fmt.Errorf("Unknown arguments specified")
	}
	if tracing {
		e.trace.record("coercion", []token{literal(val)})
	}
	return val, nil
}

// passParens runs first: find the first "(", locate its
// matching ")", recursively reduce the span strictly between them, and
// replace the whole bracketed span with a single literal token.
func (e *evalContext) passParens(toks []token) ([]token, bool, error) {
	for i, t := range toks {
		if e.keywordAt(t) != "(" {
			continue
		}
		depth := 1
		j := i + 1
		for ; j < len(toks); j++ {
			switch e.keywordAt(toks[j]) {
			case "(":
				depth++
			case ")":
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			return nil, false, fmt.Errorf("mismatched parenthesis in condition")
		}

		inner := append([]token{}, toks[i+1:j]...)
		val, err := e.reduceToBool(inner)
		if err != nil {
			return nil, false, err
		}

		out := append(append([]token{}, toks[:i]...), literal(val))
		out = append(out, toks[j+1:]...)
		return out, true, nil
	}
	return toks, false, nil
}

var unaryPredicates = map[string]bool{
	"EXISTS": true, "IS_DIRECTORY": true, "IS_SYMLINK": true, "IS_ABSOLUTE": true,
	"COMMAND": true, "POLICY": true, "TARGET": true, "DEFINED": true,
}

// passUnary resolves unary predicates (EXISTS, IS_DIRECTORY, COMMAND,
// POLICY, TARGET, DEFINED, ...) against their single right operand.
func (e *evalContext) passUnary(toks []token) ([]token, bool, error) {
	for i, t := range toks {
		kw := e.keywordAt(t)
		if !unaryPredicates[kw] || i+1 >= len(toks) {
			continue
		}
		val := e.evalUnary(kw, toks[i+1])
		out := append(append([]token{}, toks[:i]...), literal(val))
		out = append(out, toks[i+2:]...)
		return out, true, nil
	}
	return toks, false, nil
}

func (e *evalContext) evalUnary(kw string, r token) bool {
	switch kw {
	case "EXISTS":
		return e.fs.FileExists(r.value)
	case "IS_DIRECTORY":
		return e.fs.IsDirectory(r.value)
	case "IS_SYMLINK":
		return e.fs.IsSymlink(r.value)
	case "IS_ABSOLUTE":
		return e.fs.IsAbsolute(r.value)
	case "COMMAND":
		return e.reg.CommandExists(r.value)
	case "TARGET":
		return e.reg.TargetExists(r.value)
	case "POLICY":
		return e.policy.PolicyExists(r.value)
	case "DEFINED":
		if strings.HasPrefix(r.value, "ENV{") && strings.HasSuffix(r.value, "}") {
			name := r.value[len("ENV{") : len(r.value)-1]
			_, ok := e.vars.GetEnv(name)
			return ok
		}
		return e.vars.IsDefined(r.value)
	default:
		return false
	}
}

var binaryOperators = map[string]bool{
	"MATCHES": true, "LESS": true, "GREATER": true, "EQUAL": true,
	"STRLESS": true, "STRGREATER": true, "STREQUAL": true,
	"VERSION_LESS": true, "VERSION_GREATER": true, "VERSION_EQUAL": true,
	"IS_NEWER_THAN": true,
}

// passBinary resolves binary comparisons (MATCHES, LESS/GREATER/EQUAL,
// STRLESS/STRGREATER/STREQUAL, VERSION_*, IS_NEWER_THAN) against their
// left and right operands.
func (e *evalContext) passBinary(toks []token) ([]token, bool, error) {
	for i, t := range toks {
		kw := e.keywordAt(t)
		if !binaryOperators[kw] || i == 0 {
			continue
		}
		l := toks[i-1]

		if kw == "MATCHES" && i+1 >= len(toks) {
			// A left but no right operand collapses MATCHES to false.
			out := append(append([]token{}, toks[:i-1]...), literal(false))
			out = append(out, toks[i+1:]...)
			return out, true, nil
		}
		if i+1 >= len(toks) {
			continue
		}
		r := toks[i+1]

		val, err := e.evalBinary(kw, l, r)
		if err != nil {
			return nil, false, err
		}
		out := append(append([]token{}, toks[:i-1]...), literal(val))
		out = append(out, toks[i+2:]...)
		return out, true, nil
	}
	return toks, false, nil
}

func (e *evalContext) evalBinary(kw string, l, r token) (bool, error) {
	switch kw {
	case "MATCHES":
		return e.evalMatches(l, r)
	case "LESS", "GREATER", "EQUAL":
		lf, lok := parseNumber(e.asVariableOrString(l))
		rf, rok := parseNumber(e.asVariableOrString(r))
		if !lok || !rok {
			return false, nil
		}
		switch kw {
		case "LESS":
			return lf < rf, nil
		case "GREATER":
			return lf > rf, nil
		default:
			return lf == rf, nil
		}
	case "STRLESS", "STRGREATER", "STREQUAL":
		ls, rs := e.asVariableOrString(l), e.asVariableOrString(r)
		switch kw {
		case "STRLESS":
			return ls < rs, nil
		case "STRGREATER":
			return ls > rs, nil
		default:
			return ls == rs, nil
		}
	case "VERSION_LESS", "VERSION_GREATER", "VERSION_EQUAL":
		cmp := compareVersions(e.asVariableOrString(l), e.asVariableOrString(r))
		switch kw {
		case "VERSION_LESS":
			return cmp < 0, nil
		case "VERSION_GREATER":
			return cmp > 0, nil
		default:
			return cmp == 0, nil
		}
	case "IS_NEWER_THAN":
		ok, aNewerOrEqual := e.fs.MTimeCompare(l.value, r.value)
		if !ok {
			return true, nil
		}
		return aNewerOrEqual, nil
	default:
		return false, nil
	}
}

// evalMatches compiles r as a regex, tests it against l, and on match
// clears then repopulates the regex-capture variables.
func (e *evalContext) evalMatches(l, r token) (bool, error) {
	re, err := regexp.Compile(r.value)
	if err != nil {
		return false, fmt.Errorf("invalid regular expression %q: %w", r.value, err)
	}
	subject := e.asVariableOrString(l)
	idx := re.FindStringSubmatchIndex(subject)
	if idx == nil {
		return false, nil
	}

	groups := make([]string, 0, len(idx)/2-1)
	whole := ""
	for gi := 0; gi*2 < len(idx); gi++ {
		s, en := idx[gi*2], idx[gi*2+1]
		var g string
		if s >= 0 {
			g = subject[s:en]
		}
		if gi == 0 {
			whole = g
		} else {
			groups = append(groups, g)
		}
	}
	e.vars.ClearMatches()
	e.vars.StoreMatches(whole, groups)
	return true, nil
}

// passNot resolves NOT. It is a right-associative unary prefix, so a
// chain like "NOT NOT X" must collapse innermost-first:
// the rightmost NOT (the one whose right operand is not itself an
// unconsumed NOT) is rewritten before any NOT to its left, otherwise a
// naive left-to-right scan would feed one NOT token to another as its
// operand.
func (e *evalContext) passNot(toks []token) ([]token, bool, error) {
	for i := len(toks) - 1; i >= 0; i-- {
		if e.keywordAt(toks[i]) != "NOT" || i+1 >= len(toks) {
			continue
		}
		val := !e.coerce(toks[i+1], false)
		out := append(append([]token{}, toks[:i]...), literal(val))
		out = append(out, toks[i+2:]...)
		return out, true, nil
	}
	return toks, false, nil
}

// passAndOr resolves AND/OR, the lowest-precedence pass, left to
// right.
func (e *evalContext) passAndOr(toks []token) ([]token, bool, error) {
	for i, t := range toks {
		kw := e.keywordAt(t)
		if (kw != "AND" && kw != "OR") || i == 0 || i+1 >= len(toks) {
			continue
		}
		l := e.coerce(toks[i-1], false)
		r := e.coerce(toks[i+1], false)
		var val bool
		if kw == "AND" {
			val = l && r
		} else {
			val = l || r
		}
		out := append(append([]token{}, toks[:i-1]...), literal(val))
		out = append(out, toks[i+2:]...)
		return out, true, nil
	}
	return toks, false, nil
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// compareVersions performs a dotted-numeric version compare, returning
// <0, 0, >0 the way strings.Compare does. Missing or non-numeric
// components compare as 0.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int64
		if i < len(as) {
			av, _ = strconv.ParseInt(as[i], 10, 64)
		}
		if i < len(bs) {
			bv, _ = strconv.ParseInt(bs[i], 10, 64)
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
