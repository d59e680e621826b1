package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/removethebg/rtbg/internal/fsutil"
	"github.com/removethebg/rtbg/internal/smoketest"
	"github.com/removethebg/rtbg/internal/vendorer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// RenderVendorReport returns a table of vendored dependencies.
func RenderVendorReport(r *vendorer.Report) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render("📦 Vendored Dependencies"))
	b.WriteString(strings.Repeat("=", 24))
	b.WriteString("\n\n")

	if r.DryRun {
		b.WriteString(dimStyle.Render("dry run, nothing written"))
		b.WriteString("\n")
		return b.String()
	}

	nameWidth := len("import")
	for _, d := range r.Dependencies {
		if len(d.ImportName) > nameWidth {
			nameWidth = len(d.ImportName)
		}
	}

	fmt.Fprintf(&b, "%-*s  %-12s  %8s  %10s  %s\n", nameWidth, "import", "package", "files", "size", "mode")
	for _, d := range r.Dependencies {
		mode := "verbatim"
		if d.Filtered {
			mode = fmt.Sprintf("clean (-%d)", d.Excluded)
		}
		fmt.Fprintf(&b, "%-*s  %-12s  %8d  %10s  %s\n",
			nameWidth, d.ImportName, d.Package, d.Files, fsutil.FormatMB(d.Bytes), mode)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Total: %s  %s\n", fsutil.FormatMB(r.TotalBytes), dimStyle.Render("run "+r.RunID))
	return b.String()
}

// RenderSmokeSummary returns the smoke test results with pass/fail markers.
func RenderSmokeSummary(s smoketest.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render("🧪 Smoke Test Summary"))
	b.WriteString(strings.Repeat("-", 21))
	b.WriteString("\n")

	for _, r := range s.Results {
		if r.Passed() {
			fmt.Fprintf(&b, "%s %s %s\n", okStyle.Render("✓"), r.Name, dimStyle.Render(r.Duration.Round(1e6).String()))
			continue
		}
		fmt.Fprintf(&b, "%s %s: %v\n", failStyle.Render("✗"), r.Name, r.Err)
	}

	verdict := okStyle.Render(fmt.Sprintf("%d/%d passed", s.PassedCount(), len(s.Results)))
	if !s.Passed() {
		verdict = failStyle.Render(fmt.Sprintf("%d/%d passed", s.PassedCount(), len(s.Results)))
	}
	fmt.Fprintf(&b, "\n%s\n", verdict)
	return b.String()
}
