package style

import (
	"strings"
	"testing"

	"github.com/outpost-build/condeval/internal/ifexpr"
)

func TestDiagnostic_IncludesLocationAndMessage(t *testing.T) {
	d := ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Location: "CMakeLists.txt:3", Message: "mismatched parenthesis"}
	out := Diagnostic(d)
	if !strings.Contains(out, "CMakeLists.txt:3") {
		t.Errorf("expected location in output, got %q", out)
	}
	if !strings.Contains(out, "mismatched parenthesis") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestTrace_RendersStagesInOrder(t *testing.T) {
	tr := ifexpr.Trace{Steps: []ifexpr.TraceStep{
		{Stage: "input", Tokens: []string{"NOT", "1"}},
		{Stage: "coercion", Tokens: []string{"0"}},
	}}
	out := Trace(tr)
	if strings.Index(out, "input") > strings.Index(out, "coercion") {
		t.Errorf("expected input stage before coercion stage, got %q", out)
	}
	if !strings.Contains(out, "NOT 1") {
		t.Errorf("expected token list in output, got %q", out)
	}
}

func TestResult_FatalThenWarnings(t *testing.T) {
	r := ifexpr.Result{
		Fatal:    &ifexpr.Diagnostic{Severity: ifexpr.SeverityFatal, Location: "l1", Message: "boom"},
		Warnings: []ifexpr.Diagnostic{{Severity: ifexpr.SeverityAuthorWarning, Location: "l1", Message: "careful"}},
	}
	out := Result(r)
	if strings.Index(out, "boom") > strings.Index(out, "careful") {
		t.Errorf("expected fatal line before warning line, got %q", out)
	}
}
