package ifexpr

// policyGate caches the policy-auto-deref and policy-quoted-demote
// status for the lifetime of one if/elseif header evaluation: every
// coercion within one expression sees the same status even if the
// backing policy store mutates concurrently during replay.
type policyGate struct {
	store PolicyStore

	autoDerefCached    bool
	autoDerefStatus    PolicyStatus
	quotedDemoteCached bool
	quotedDemoteStatus PolicyStatus
}

func newPolicyGate(store PolicyStore) *policyGate {
	return &policyGate{store: store}
}

func (g *policyGate) autoDeref() PolicyStatus {
	if !g.autoDerefCached {
		g.autoDerefStatus = g.store.Status("policy-auto-deref")
		g.autoDerefCached = true
	}
	return g.autoDerefStatus
}

func (g *policyGate) quotedDemote() PolicyStatus {
	if !g.quotedDemoteCached {
		g.quotedDemoteStatus = g.store.Status("policy-quoted-demote")
		g.quotedDemoteCached = true
	}
	return g.quotedDemoteStatus
}
