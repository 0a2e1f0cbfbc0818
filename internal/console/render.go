// Package console renders the companion's terminal output.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

var (
	messageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 1)

	stateStyles = map[classify.State]lipgloss.Style{
		classify.StateFlow:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		classify.StateWorking:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		classify.StateNeedsNudge: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		classify.StateAFK:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}

	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func stateStyle(state classify.State) lipgloss.Style {
	if style, ok := stateStyles[state]; ok {
		return style
	}
	return dimStyle
}

// Message renders a companion message for the terminal.
func Message(state classify.State, message string, at time.Time) string {
	header := fmt.Sprintf("%s  %s",
		dimStyle.Render(at.Format("15:04")),
		stateStyle(state).Render(string(state)))
	return header + "\n" + messageStyle.Render(message)
}

// CheckTrace renders the verbose trace of one activity check.
func CheckTrace(sums classify.Summaries, cmp classify.Comparison, intervene bool, elapsedMinutes, cooldownMinutes float64) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Activity check") + "\n")

	short := sums["5_minutes"]
	if short != nil {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("pattern:"), short.Pattern)
		fmt.Fprintf(&b, "  %s %.1f min active, %d switches\n", labelStyle.Render("last 5m:"), short.ActiveMinutes, short.TransitionCount)
		fmt.Fprintf(&b, "  %s %d focus, %d distractions\n", labelStyle.Render("signals:"), len(short.FocusSessions), len(short.Distractions))
	}

	fmt.Fprintf(&b, "  %s %s (focus %s, distraction %s)\n",
		labelStyle.Render("state:"),
		stateStyle(cmp.CurrentState).Render(string(cmp.CurrentState)),
		cmp.FocusTrend, cmp.DistractionTrend)

	decision := "skip"
	if intervene {
		decision = "intervene"
	}
	fmt.Fprintf(&b, "  %s %s (%.1f of %.0f cooldown minutes elapsed)",
		labelStyle.Render("decision:"), decision, elapsedMinutes, cooldownMinutes)

	return b.String()
}

// DailySummary renders the end-of-day summary.
func DailySummary(stats classify.DailyStats) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Daily summary") + "\n")
	fmt.Fprintf(&b, "  %s %.1f hours\n", labelStyle.Render("active time:"), stats.ActiveMinutes/60)

	if stats.FocusSessions > 0 {
		fmt.Fprintf(&b, "  %s %d (longest %.0f min)\n", labelStyle.Render("focus sessions:"), stats.FocusSessions, stats.LongestFocusMinutes)
	}
	if stats.DistractionMinutes > 0 {
		fmt.Fprintf(&b, "  %s %.0f min across %d sources\n", labelStyle.Render("distraction time:"), stats.DistractionMinutes, stats.DistractionCount)
	}
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("context switches:"), stats.Transitions)

	if len(stats.TopApps) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("top apps:"), strings.Join(firstN(stats.TopApps, 3), ", "))
	}
	if len(stats.KeyActivities) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("activities:"), strings.Join(firstN(stats.KeyActivities, 3), ", "))
	}
	fmt.Fprintf(&b, "  %s %d", labelStyle.Render("interventions:"), stats.Interventions)

	return messageStyle.Render(b.String())
}

// ConnectionReport renders the result of the startup self-test.
func ConnectionReport(awConnected bool, awErrors []string, ollamaConnected bool, model string) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Connections") + "\n")

	if awConnected {
		b.WriteString("  ActivityWatch: " + stateStyles[classify.StateFlow].Render("connected") + "\n")
	} else {
		b.WriteString("  ActivityWatch: " + stateStyles[classify.StateNeedsNudge].Render("unreachable") + "\n")
	}
	for _, msg := range awErrors {
		b.WriteString(dimStyle.Render("    - "+msg) + "\n")
	}

	if ollamaConnected {
		fmt.Fprintf(&b, "  Ollama: %s (model %s)", stateStyles[classify.StateFlow].Render("connected"), model)
	} else {
		b.WriteString("  Ollama: " + dimStyle.Render("unreachable, using canned responses"))
	}

	return b.String()
}

func firstN(list []string, n int) []string {
	if len(list) < n {
		return list
	}
	return list[:n]
}
