package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dydcheck/internal/core/ports"
	"dydcheck/internal/data/history"
	"dydcheck/internal/shared/util"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// renderSummary prints the outcome line, table sizes and a diagnostic
// breakdown by code.
func renderSummary(w io.Writer, r *ports.CheckReport) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("dydcheck " + r.Input))
	b.WriteByte('\n')

	if r.Failed() {
		b.WriteString(failureStyle.Render("Parsing failed"))
	} else {
		b.WriteString(successStyle.Render("Parsing successful"))
	}
	b.WriteByte('\n')

	res := r.Result
	fmt.Fprintf(&b, "  tokens: %d  lines: %d  procedures: %d  variables: %d  diagnostics: %d\n",
		res.TokenCount, res.Lines, len(res.Procedures), len(res.Variables), len(res.Diagnostics))

	if len(res.Diagnostics) > 0 {
		byCode := make(map[string]int)
		for _, d := range res.Diagnostics {
			byCode[string(d.Code)]++
		}
		for _, code := range util.SortedStringKeys(byCode) {
			fmt.Fprintf(&b, "  %-22s %d\n", code, byCode[code])
		}
	}

	b.WriteString(statusStyle.Render(fmt.Sprintf("wrote %s, %s, %s in %s",
		r.Artifacts.Procedures, r.Artifacts.Variables, r.Artifacts.Diagnostics, r.Duration.Round(time.Microsecond))))
	b.WriteByte('\n')

	fmt.Fprint(w, b.String())
}

func renderTrend(w io.Writer, trend history.TrendReport) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("history: %d runs, %d failed (window %s)",
		trend.RunCount, trend.FailureCount, trend.Window)))
	b.WriteByte('\n')
	for _, p := range trend.Points {
		outcome := successStyle.Render("ok  ")
		if !p.Success {
			outcome = failureStyle.Render("fail")
		}
		fmt.Fprintf(&b, "  %s %s %-24s diags=%d (%+d) avg=%.2f fail=%.0f%%\n",
			p.Timestamp.Format(time.RFC3339), outcome, p.Input,
			p.DiagnosticCount, p.DeltaDiagnostics, p.AvgDiagnostics, p.FailureRatePct)
	}
	fmt.Fprint(w, b.String())
}
