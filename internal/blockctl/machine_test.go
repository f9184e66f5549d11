package blockctl

import (
	"testing"

	"github.com/outpost-build/condeval/internal/ifexpr"
	"github.com/stretchr/testify/require"
)

type fakeStatus struct {
	brk bool
	ret bool
}

func (s fakeStatus) BreakInvoked() bool  { return s.brk }
func (s fakeStatus) ReturnInvoked() bool { return s.ret }

type fakeExec struct {
	dispatched []string
	statuses   map[string]fakeStatus
}

func newFakeExec() *fakeExec {
	return &fakeExec{statuses: map[string]fakeStatus{}}
}

func (f *fakeExec) Execute(inv Invocation) (ExecutionStatus, error) {
	f.dispatched = append(f.dispatched, inv.Name)
	return f.statuses[inv.Name], nil
}

type fakeVars struct{ values map[string]string }

func (v *fakeVars) Get(name string) (string, bool)    { s, ok := v.values[name]; return s, ok }
func (v *fakeVars) IsDefined(name string) bool        { _, ok := v.values[name]; return ok }
func (v *fakeVars) GetEnv(name string) (string, bool) { return "", false }
func (v *fakeVars) ClearMatches()                     {}
func (v *fakeVars) StoreMatches(string, []string)     {}

type fakePolicy struct{}

func (fakePolicy) Status(string) ifexpr.PolicyStatus { return ifexpr.PolicyNew }
func (fakePolicy) HasWarnedHere(string) bool          { return false }
func (fakePolicy) MarkWarnedHere(string)              {}
func (fakePolicy) WarningText(string) string           { return "" }
func (fakePolicy) PolicyExists(string) bool            { return false }

type fakeFS struct{}

func (fakeFS) FileExists(string) bool               { return false }
func (fakeFS) IsDirectory(string) bool              { return false }
func (fakeFS) IsSymlink(string) bool                { return false }
func (fakeFS) IsAbsolute(string) bool               { return false }
func (fakeFS) MTimeCompare(a, b string) (bool, bool) { return false, false }

type fakeReg struct{}

func (fakeReg) CommandExists(string) bool { return false }
func (fakeReg) TargetExists(string) bool  { return false }

func argLit(v string) []ifexpr.Arg { return []ifexpr.Arg{{Value: v}} }

func inv(name string, argValues ...string) Invocation {
	args := make([]ifexpr.Arg, len(argValues))
	for i, v := range argValues {
		args[i] = ifexpr.Arg{Value: v}
	}
	return Invocation{Name: name, Args: args}
}

// Scenario 6: outer if(1) -> if(0), message(skip), endif(), message(run), endif().
// Only message(run) is dispatched.
func TestMachine_NestedRecordingDispatchesOnlyRunningBranch(t *testing.T) {
	exec := newFakeExec()
	m := New(argLit("1"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	feed := []Invocation{
		inv("if", "0"),
		inv("message", "skip"),
		inv("endif"),
		inv("message", "run"),
		inv("endif"),
	}
	var ready bool
	for _, i := range feed {
		ready = m.Feed(i)
		if ready {
			break
		}
	}
	require.True(t, ready)

	out := m.Finish()
	require.Nil(t, out.Fatal)
	require.Equal(t, []string{"message"}, exec.dispatched)
}

func TestMachine_ElseBranchExclusivity(t *testing.T) {
	exec := newFakeExec()
	m := New(argLit("0"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	feed := []Invocation{
		inv("message", "if-body"),
		inv("else"),
		inv("message", "else-body"),
		inv("endif"),
	}
	for _, i := range feed {
		m.Feed(i)
	}
	out := m.Finish()
	require.Nil(t, out.Fatal)
	require.Equal(t, []string{"message"}, exec.dispatched)
}

func TestMachine_ElseifChainPicksFirstTrue(t *testing.T) {
	exec := newFakeExec()
	vars := &fakeVars{values: map[string]string{"X": "1"}}
	m := New(argLit("0"), "loc:1", vars, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	feed := []Invocation{
		inv("elseif", "0"),
		inv("elseif", "X"),
		inv("message", "picked"),
		inv("else"),
		inv("message", "unreachable"),
		inv("endif"),
	}
	for _, i := range feed {
		m.Feed(i)
	}
	out := m.Finish()
	require.Nil(t, out.Fatal)
	require.Equal(t, []string{"message"}, exec.dispatched)
}

func TestMachine_BreakPropagatesAndStopsReplay(t *testing.T) {
	exec := newFakeExec()
	exec.statuses["break_command"] = fakeStatus{brk: true}
	m := New(argLit("1"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	feed := []Invocation{
		inv("break_command"),
		inv("message", "never"),
		inv("endif"),
	}
	for _, i := range feed {
		m.Feed(i)
	}
	out := m.Finish()
	require.Equal(t, SignalBreak, out.Signal)
	require.Equal(t, []string{"break_command"}, exec.dispatched)
}

func TestMachine_EndifArgMismatchStaysInstalled(t *testing.T) {
	exec := newFakeExec()
	m := New(argLit("A"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	ready := m.Feed(inv("endif", "B"))
	require.False(t, ready, "mismatched endif arguments must not terminate the machine")

	// Recording continues past the rejected endif; scope_depth only
	// returns to zero (and can close correctly) after a further if
	// pushes it back up.
	ready = m.Feed(inv("if", "A"))
	require.False(t, ready)

	ready = m.Feed(inv("endif", "A"))
	require.True(t, ready, "an endif whose arguments match the opening header closes the machine")
}

func TestMachine_DuplicateElseIsFatal(t *testing.T) {
	exec := newFakeExec()
	m := New(argLit("0"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)

	feed := []Invocation{
		inv("message", "first"),
		inv("else"),
		inv("message", "second"),
		inv("else"),
		inv("message", "third"),
		inv("endif"),
	}
	for _, i := range feed {
		m.Feed(i)
	}
	out := m.Finish()
	require.NotNil(t, out.Fatal)
	require.Equal(t, []string{"message"}, exec.dispatched, "replay stops at the duplicate else, never reaching the third branch")
}

func TestMachine_FatalOpenHeaderHaltsReplayWithoutDispatch(t *testing.T) {
	exec := newFakeExec()
	// The header itself is valid; a fatal diagnostic from the opening
	// header is injected directly to exercise Finish's early return.
	m := New(argLit("1"), "loc:1", &fakeVars{}, fakePolicy{}, fakeFS{}, fakeReg{}, exec)
	m.fatalFromOpen = &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Location: "loc:1", Message: "forced"}

	m.Feed(inv("message", "never"))
	m.Feed(inv("endif"))
	out := m.Finish()
	require.NotNil(t, out.Fatal)
	require.Empty(t, exec.dispatched)
}
