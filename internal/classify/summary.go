package classify

import (
	"sort"
	"strings"
	"time"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
	"github.com/HandsomeHarry/companion-cube/internal/aggregate"
)

// BehaviorPattern labels the dominant activity pattern of one window.
type BehaviorPattern string

const (
	PatternAway              BehaviorPattern = "away"
	PatternFocusedWork       BehaviorPattern = "focused_work"
	PatternHeavilyDistracted BehaviorPattern = "heavily_distracted"
	PatternContextSwitching  BehaviorPattern = "context_switching"
	PatternLightActivity     BehaviorPattern = "light_activity"
	PatternNormalWork        BehaviorPattern = "normal_work"
)

// Thresholds are the tuning constants of the detector and classifier. The
// defaults are hand-tuned product choices; overridable from configuration.
type Thresholds struct {
	// FocusSessionMinutes is the minimum contiguous time on one entity for a
	// focus session.
	FocusSessionMinutes float64
	// AppDistractionMinutes / WebDistractionMinutes are the per-kind floors a
	// distracting entity's total must exceed to count as an episode.
	AppDistractionMinutes float64
	WebDistractionMinutes float64
	// ShortEventSeconds is the floor below which app events are treated as
	// window-manager noise.
	ShortEventSeconds float64
	// FocusedSwitchRate and HighSwitchRate bound switches-per-active-minute
	// for the focused_work and context_switching patterns.
	FocusedSwitchRate float64
	HighSwitchRate    float64
	// HighDistractionRatio is the distraction-minutes share that marks
	// heavily_distracted.
	HighDistractionRatio float64
	// LightActivityMinutes is the active-time floor for normal_work.
	LightActivityMinutes float64
	// DistractionIncreaseRatio / DistractionDecreaseRatio compare short vs
	// medium window episode counts for the distraction trend.
	DistractionIncreaseRatio float64
	DistractionDecreaseRatio float64
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FocusSessionMinutes:      15,
		AppDistractionMinutes:    2,
		WebDistractionMinutes:    1,
		ShortEventSeconds:        3,
		FocusedSwitchRate:        0.2,
		HighSwitchRate:           0.5,
		HighDistractionRatio:     0.5,
		LightActivityMinutes:     5,
		DistractionIncreaseRatio: 0.5,
		DistractionDecreaseRatio: 0.2,
	}
}

// FocusSession is one maximal contiguous run on a single entity that crossed
// the focus threshold.
type FocusSession struct {
	Entity   string    `json:"entity"`
	Minutes  float64   `json:"duration_minutes"`
	Start    time.Time `json:"start_time"`
	Category Category  `json:"category"`
}

// DistractionEpisode is the aggregated time on one distraction-category
// entity that exceeded the per-kind floor. One episode per entity per window.
type DistractionEpisode struct {
	Kind     string   `json:"kind"` // "app" or "web"
	Entity   string   `json:"entity"`
	Minutes  float64  `json:"duration_minutes"`
	Category Category `json:"category"`
}

// WindowSummary is the derived view of one trailing window. It is recomputed
// from scratch every cycle and never mutated across cycles.
type WindowSummary struct {
	Timeframe       activitywatch.Timeframe `json:"timeframe"`
	IsAFK           bool                    `json:"is_afk"`
	ActiveMinutes   float64                 `json:"active_minutes"`
	AppDurations    map[string]float64      `json:"app_durations"`
	WebDurations    map[string]float64      `json:"web_durations"`
	TransitionCount int                     `json:"transition_count"`
	FocusSessions   []FocusSession          `json:"focus_sessions"`
	Distractions    []DistractionEpisode    `json:"distractions"`
	Pattern         BehaviorPattern         `json:"behavior_pattern"`
	KeyActivities   []string                `json:"key_activities"`
}

// Summaries maps each timeframe to its summary.
type Summaries map[activitywatch.Timeframe]*WindowSummary

// BuildSummary derives the WindowSummary of one timeframe from its event
// bundle.
func BuildSummary(tf activitywatch.Timeframe, bundle activitywatch.Bundle, th Thresholds, tax Taxonomy) *WindowSummary {
	apps := aggregate.Apps(bundle.Window, th.ShortEventSeconds)
	web := aggregate.Web(bundle.Web)

	s := &WindowSummary{
		Timeframe:       tf,
		IsAFK:           aggregate.IsAFK(bundle.AFK),
		ActiveMinutes:   apps.ActiveMinutes,
		AppDurations:    apps.Durations,
		WebDurations:    web.Durations,
		TransitionCount: apps.TransitionCount,
		FocusSessions:   detectFocusSessions(apps.Entries, th, tax),
		KeyActivities:   keyActivities(apps),
	}

	s.Distractions = append(s.Distractions, detectDistractions("app", apps.Durations, th.AppDistractionMinutes, tax.App)...)
	s.Distractions = append(s.Distractions, detectDistractions("web", web.Durations, th.WebDistractionMinutes, tax.Domain)...)

	s.Pattern = behaviorPattern(s, th)
	return s
}

// detectFocusSessions walks the timeline, accumulating duration while the
// active entity is unchanged. A run whose accumulated duration reaches the
// focus threshold is emitted when the entity changes or the timeline ends.
func detectFocusSessions(entries []aggregate.Entry, th Thresholds, tax Taxonomy) []FocusSession {
	var sessions []FocusSession

	var current string
	var runStart time.Time
	var runMinutes float64

	flush := func() {
		if current != "" && runMinutes >= th.FocusSessionMinutes {
			sessions = append(sessions, FocusSession{
				Entity:   current,
				Minutes:  runMinutes,
				Start:    runStart,
				Category: tax.App(current),
			})
		}
	}

	for _, e := range entries {
		if e.Entity != current {
			flush()
			current = e.Entity
			runStart = e.Start
			runMinutes = e.Minutes
		} else {
			runMinutes += e.Minutes
		}
	}
	flush()

	return sessions
}

// detectDistractions emits one episode per distraction-category entity whose
// total window duration exceeds floorMinutes. Entities are visited in name
// order so output is deterministic.
func detectDistractions(kind string, durations map[string]float64, floorMinutes float64, categorize func(string) Category) []DistractionEpisode {
	names := make([]string, 0, len(durations))
	for name := range durations {
		names = append(names, name)
	}
	sort.Strings(names)

	var episodes []DistractionEpisode
	for _, name := range names {
		minutes := durations[name]
		if minutes <= floorMinutes {
			continue
		}
		category := categorize(name)
		if !category.IsDistraction() {
			continue
		}
		episodes = append(episodes, DistractionEpisode{
			Kind:     kind,
			Entity:   name,
			Minutes:  minutes,
			Category: category,
		})
	}
	return episodes
}

// DistractionMinutes sums the durations of all distraction episodes.
func (s *WindowSummary) DistractionMinutes() float64 {
	var total float64
	for _, d := range s.Distractions {
		total += d.Minutes
	}
	return total
}

// behaviorPattern derives the window's pattern. The rules are evaluated in a
// fixed order and the first match wins, so the function is total: every valid
// summary maps to exactly one pattern.
func behaviorPattern(s *WindowSummary, th Thresholds) BehaviorPattern {
	if s.IsAFK {
		return PatternAway
	}
	if s.ActiveMinutes == 0 {
		return PatternLightActivity
	}

	switchRate := float64(s.TransitionCount) / s.ActiveMinutes
	distractionRatio := s.DistractionMinutes() / s.ActiveMinutes

	switch {
	case len(s.FocusSessions) > 0 && switchRate < th.FocusedSwitchRate:
		return PatternFocusedWork
	case distractionRatio > th.HighDistractionRatio:
		return PatternHeavilyDistracted
	case switchRate > th.HighSwitchRate:
		return PatternContextSwitching
	case s.ActiveMinutes < th.LightActivityMinutes:
		return PatternLightActivity
	default:
		return PatternNormalWork
	}
}

// TopApps returns up to n app names ordered by descending duration.
func (s *WindowSummary) TopApps(n int) []string {
	type appTime struct {
		name    string
		minutes float64
	}
	apps := make([]appTime, 0, len(s.AppDurations))
	for name, minutes := range s.AppDurations {
		apps = append(apps, appTime{name, minutes})
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].minutes != apps[j].minutes {
			return apps[i].minutes > apps[j].minutes
		}
		return apps[i].name < apps[j].name
	})

	if n > len(apps) {
		n = len(apps)
	}
	names := make([]string, 0, n)
	for _, a := range apps[:n] {
		names = append(names, a.name)
	}
	return names
}

// LongestFocus returns the duration of the longest focus session, in minutes.
func (s *WindowSummary) LongestFocus() float64 {
	var longest float64
	for _, fs := range s.FocusSessions {
		if fs.Minutes > longest {
			longest = fs.Minutes
		}
	}
	return longest
}

// keyActivities infers what the user was working on from window titles,
// capped at five entries.
func keyActivities(apps aggregate.Result) []string {
	var activities []string

	entities := make([]string, 0, len(apps.Titles))
	for entity := range apps.Titles {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	for _, entity := range entities {
		titles := apps.Titles[entity]
		if len(titles) > 3 {
			titles = titles[:3]
		}
		for _, title := range titles {
			activity := inferTask(title)
			if activity != "" && !containsString(activities, activity) {
				activities = append(activities, activity)
			}
		}
	}

	if len(activities) > 5 {
		activities = activities[:5]
	}
	return activities
}

// inferTask maps a window title to a coarse task description.
func inferTask(title string) string {
	if title == "" {
		return ""
	}
	lower := strings.ToLower(title)

	switch {
	case strings.Contains(lower, "github") || strings.Contains(lower, "git"):
		return "Code development"
	case containsAny(lower, "email", "inbox", "gmail", "outlook"):
		return "Email management"
	case containsAny(lower, "meeting", "zoom", "teams", "slack call"):
		return "Video meeting"
	case containsAny(lower, "doc", "document", "writing", "report"):
		return "Document editing"
	case containsAny(lower, "stackoverflow", "documentation", "tutorial"):
		return "Research/learning"
	case strings.Contains(lower, "slack") || strings.Contains(lower, "discord"):
		return "Team communication"
	case containsAny(lower, ".py", ".js", ".java", ".cpp", ".cs", ".go"):
		return "Programming"
	default:
		return ""
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
