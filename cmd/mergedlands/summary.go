package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/DavidVonDerau/merged-lands/internal/app"
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// warningStyle picks a color per error code so the summary reads at a
// glance.
func warningStyle(code string) lipgloss.Style {
	switch code {
	case landscape.ErrCodePluginMalformed, landscape.ErrCodeInvariant:
		return errStyle
	default:
		return warnStyle
	}
}

// printSummary renders the per-kind warning counts and the run outcome.
func printSummary(w io.Writer, outPath string, res *app.RunResult) {
	fmt.Fprintln(w, headerStyle.Render("Merged Lands"))
	fmt.Fprintf(w, "  %s %d plugins, %d cells\n",
		okStyle.Render("merged"), res.PluginCount, res.MergedCells)
	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("wrote"), outPath)

	counts := res.Counts()
	if len(counts) > 0 {
		codes := make([]string, 0, len(counts))
		for code := range counts {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Fprintln(w, headerStyle.Render("Warnings"))
		for _, code := range codes {
			style := warningStyle(code)
			fmt.Fprintf(w, "  %s %d\n", style.Render(code), counts[code])
		}
	}

	if len(res.SkippedPlugins) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Skipped plugins"))
		for _, p := range res.SkippedPlugins {
			fmt.Fprintf(w, "  %s\n", errStyle.Render(p))
		}
	}
}
