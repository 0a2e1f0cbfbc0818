package classify

// DailyStats condenses the since-midnight window into end-of-day numbers.
type DailyStats struct {
	Date                string   `json:"date"`
	ActiveMinutes       float64  `json:"active_minutes"`
	FocusSessions       int      `json:"focus_sessions"`
	LongestFocusMinutes float64  `json:"longest_focus_minutes"`
	DistractionCount    int      `json:"distraction_count"`
	DistractionMinutes  float64  `json:"distraction_minutes"`
	Transitions         int      `json:"transitions"`
	TopApps             []string `json:"top_apps"`
	KeyActivities       []string `json:"key_activities"`
	Interventions       int      `json:"interventions"`
}

// DailyStatsFrom derives daily statistics from the since-midnight summary.
// The intervention count is not derivable from events; the caller fills it in.
func DailyStatsFrom(today *WindowSummary) DailyStats {
	if today == nil {
		return DailyStats{}
	}
	return DailyStats{
		ActiveMinutes:       today.ActiveMinutes,
		FocusSessions:       len(today.FocusSessions),
		LongestFocusMinutes: today.LongestFocus(),
		DistractionCount:    len(today.Distractions),
		DistractionMinutes:  today.DistractionMinutes(),
		Transitions:         today.TransitionCount,
		TopApps:             today.TopApps(5),
		KeyActivities:       today.KeyActivities,
	}
}
