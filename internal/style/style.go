// Package style renders ifexpr.Diagnostic values and reduction traces
// for a terminal using lipgloss-styled lines.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/outpost-build/condeval/internal/ifexpr"
)

var (
	fatalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	locStyle   = lipgloss.NewStyle().Faint(true)
	stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// Diagnostic renders one diagnostic as a single styled line.
func Diagnostic(d ifexpr.Diagnostic) string {
	loc := locStyle.Render(d.Location)
	switch d.Severity {
	case ifexpr.SeverityFatal:
		return fmt.Sprintf("%s %s: %s", fatalStyle.Render("error"), loc, d.Message)
	default:
		return fmt.Sprintf("%s %s: %s", warnStyle.Render("warning"), loc, d.Message)
	}
}

// Result renders an ifexpr.Result's diagnostics, fatal first.
func Result(r ifexpr.Result) string {
	var out string
	if r.Fatal != nil {
		out += Diagnostic(*r.Fatal) + "\n"
	}
	for _, w := range r.Warnings {
		out += Diagnostic(w) + "\n"
	}
	return out
}

// Trace renders a reduction trace: one stage name followed by its
// token list, in the order the passes ran.
func Trace(t ifexpr.Trace) string {
	var b strings.Builder
	for _, step := range t.Steps {
		fmt.Fprintf(&b, "%s %s\n", stageStyle.Render(step.Stage+":"), strings.Join(step.Tokens, " "))
	}
	return b.String()
}
