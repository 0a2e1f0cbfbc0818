package classify

import (
	"fmt"
	"strings"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
)

// DescribeActivity renders a concise natural-language description of the
// current activity for the language model. It leans on the short window plus
// the cross-timeframe trends.
func DescribeActivity(sums Summaries, cmp Comparison) string {
	short := summaryAt(sums, activitywatch.Timeframe5Min)

	var parts []string

	if short.IsAFK {
		parts = append(parts, "User is currently away from keyboard.")
	} else if top := short.TopApps(1); len(top) > 0 {
		parts = append(parts, fmt.Sprintf("Currently using %s for %.1f minutes.", top[0], short.AppDurations[top[0]]))
	}

	if short.Pattern != "" {
		parts = append(parts, fmt.Sprintf("Behavior pattern: %s.", strings.ReplaceAll(string(short.Pattern), "_", " ")))
	}

	switch cmp.FocusTrend {
	case FocusEntering:
		parts = append(parts, "Just entering a focus session.")
	case FocusMaintaining:
		parts = append(parts, "Maintaining good focus.")
	case FocusLosing:
		parts = append(parts, "Focus appears to be waning.")
	}

	if cmp.DistractionTrend == DistractionIncreasing && len(short.Distractions) > 0 {
		names := make([]string, 0, 2)
		for _, d := range short.Distractions {
			names = append(names, d.Entity)
			if len(names) == 2 {
				break
			}
		}
		parts = append(parts, fmt.Sprintf("Recent distractions: %s.", strings.Join(names, ", ")))
	}

	if len(short.KeyActivities) > 0 {
		parts = append(parts, fmt.Sprintf("Working on: %s.", short.KeyActivities[0]))
	}

	if short.TransitionCount > 3 {
		parts = append(parts, fmt.Sprintf("High context switching (%d switches).", short.TransitionCount))
	}

	return strings.Join(parts, " ")
}
