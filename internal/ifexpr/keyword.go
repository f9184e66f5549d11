package ifexpr

// keywords is the fixed reserved-word set of the conditional grammar.
var keywords = map[string]bool{
	"(": true, ")": true,
	"NOT": true, "AND": true, "OR": true,
	"MATCHES":         true,
	"LESS":            true,
	"GREATER":         true,
	"EQUAL":           true,
	"STRLESS":         true,
	"STREQUAL":        true,
	"STRGREATER":      true,
	"VERSION_LESS":    true,
	"VERSION_GREATER": true,
	"VERSION_EQUAL":   true,
	"EXISTS":          true,
	"IS_DIRECTORY":    true,
	"IS_SYMLINK":      true,
	"IS_ABSOLUTE":     true,
	"IS_NEWER_THAN":   true,
	"DEFINED":         true,
	"COMMAND":         true,
	"POLICY":          true,
	"TARGET":          true,
}

// keywordAt returns the reserved word t represents under the current
// policy-quoted-demote status, or "" if t is an ordinary string value
// in this position. Synthesized tokens (pass results) are never
// keywords.
func (e *evalContext) keywordAt(t token) string {
	if t.synthesized || !keywords[t.value] {
		return ""
	}
	if !t.wasQuoted {
		return t.value
	}
	switch e.gate.quotedDemote() {
	case PolicyOld:
		return t.value
	case PolicyWarn:
		e.warnOnce("policy-quoted-demote")
		return t.value
	default: // NEW, REQUIRED_IF_USED, REQUIRED_ALWAYS
		return ""
	}
}
