package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	styleGroup   = lipgloss.NewStyle().Bold(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})
	styleIssue   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "204"})
	styleDryRun  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "245"}).Italic(true)
	styleDetail  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})
	styleSummary = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// ColorEnabled decides whether rendering should use color for the given
// output.color setting ("auto", "always", "never").
func ColorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return false
		}
		return termenv.EnvColorProfile() != termenv.Ascii
	}
}

// Render writes the summary grouped by configuration group, with a
// trailing totals line.
func Render(w io.Writer, s *Summary, color bool) {
	group, ok, issue, dry, detail, total := styleGroup, styleOK, styleIssue, styleDryRun, styleDetail, styleSummary
	if !color {
		plain := lipgloss.NewStyle()
		group, ok, issue, dry, detail = plain, plain, plain, plain, plain
		total = lipgloss.NewStyle().MarginTop(1)
	}

	for _, name := range s.GroupNames() {
		fmt.Fprintln(w, group.Render(name))
		for _, o := range s.ForGroup(name) {
			marker := ok.Render("✓")
			style := ok
			if o.Status.IsIssue() {
				marker = issue.Render("✗")
				style = issue
			}
			line := fmt.Sprintf("  %s %s %s", marker, o.Path, style.Render(string(o.Status)))
			if o.DryRun {
				line += " " + dry.Render("(dry run)")
			}
			fmt.Fprintln(w, line)
			if o.Detail != "" {
				fmt.Fprintf(w, "      %s\n", detail.Render(o.Detail))
			}
			if o.Err != nil {
				fmt.Fprintf(w, "      %s\n", issue.Render(o.Err.Error()))
			}
		}
	}

	issues := s.IssueCount()
	okCount := len(s.Outcomes) - issues
	fmt.Fprintln(w, total.Render(fmt.Sprintf("%d source(s) processed, %d ok, %d issue(s)", len(s.Outcomes), okCount, issues)))
}
