// Package aggregate reduces a raw event stream for one time window into
// per-entity durations, title lists, and the ordered transition sequence the
// detector needs. It is a pure reduction: same input, same output.
package aggregate

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
)

// Entry is one kept event on the window's timeline: which entity was active,
// for how long, starting when.
type Entry struct {
	Entity  string
	Title   string
	Minutes float64
	Start   time.Time
}

// Transition records one change of the active entity.
type Transition struct {
	From string
	To   string
	At   time.Time
}

// Result is the aggregation of one window and one event kind.
type Result struct {
	// Entries is the ordered timeline of kept events.
	Entries []Entry
	// Durations maps entity name to total minutes in the window.
	Durations map[string]float64
	// Titles maps entity name to its distinct titles, insertion order.
	Titles map[string][]string
	// Transitions is the ordered sequence of entity changes.
	Transitions []Transition
	// TransitionCount is len(Transitions); kept separate because summaries
	// carry only the count.
	TransitionCount int
	// ActiveMinutes is the sum of all entity durations.
	ActiveMinutes float64
}

func newResult() Result {
	return Result{
		Durations: make(map[string]float64),
		Titles:    make(map[string][]string),
	}
}

// sortByTimestamp orders events ascending. Input ordering is not guaranteed
// by the event source, and every downstream step assumes it.
func sortByTimestamp(events []activitywatch.Event) []activitywatch.Event {
	sorted := make([]activitywatch.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Apps aggregates window events. Events shorter than floorSeconds are
// discarded before transition counting so that window-manager noise does not
// count as a switch. Events without a timestamp or app name are skipped.
func Apps(events []activitywatch.Event, floorSeconds float64) Result {
	res := newResult()

	for _, ev := range sortByTimestamp(events) {
		if ev.Timestamp.IsZero() {
			continue
		}
		app := strings.ToLower(strings.TrimSpace(ev.Str("app")))
		if app == "" {
			continue
		}
		if ev.Duration < floorSeconds {
			continue
		}
		res.append(Entry{
			Entity:  app,
			Title:   ev.Str("title"),
			Minutes: ev.Minutes(),
			Start:   ev.Timestamp,
		})
	}

	res.finish()
	return res
}

// Web aggregates browser events, keyed by domain. No duration floor applies:
// quick page visits still count toward domain totals.
func Web(events []activitywatch.Event) Result {
	res := newResult()

	for _, ev := range sortByTimestamp(events) {
		if ev.Timestamp.IsZero() {
			continue
		}
		rawURL := ev.Str("url")
		if rawURL == "" {
			continue
		}
		res.append(Entry{
			Entity:  Domain(rawURL),
			Title:   ev.Str("title"),
			Minutes: ev.Minutes(),
			Start:   ev.Timestamp,
		})
	}

	res.finish()
	return res
}

// append records a kept event, updating durations, titles, and the
// transition sequence.
func (r *Result) append(e Entry) {
	r.Durations[e.Entity] += e.Minutes
	if e.Title != "" && !contains(r.Titles[e.Entity], e.Title) {
		r.Titles[e.Entity] = append(r.Titles[e.Entity], e.Title)
	}

	if n := len(r.Entries); n > 0 && r.Entries[n-1].Entity != e.Entity {
		r.Transitions = append(r.Transitions, Transition{
			From: r.Entries[n-1].Entity,
			To:   e.Entity,
			At:   e.Start,
		})
	}
	r.Entries = append(r.Entries, e)
}

func (r *Result) finish() {
	r.TransitionCount = len(r.Transitions)
	for _, minutes := range r.Durations {
		r.ActiveMinutes += minutes
	}
}

// IsAFK reports whether the most recent AFK event by timestamp carries
// status "afk". With no AFK events the answer is false: absence of data means
// unknown, not away.
func IsAFK(events []activitywatch.Event) bool {
	var latest *activitywatch.Event
	for i := range events {
		if latest == nil || events[i].Timestamp.After(latest.Timestamp) {
			latest = &events[i]
		}
	}
	if latest == nil {
		return false
	}
	return latest.Str("status") == "afk"
}

// Domain extracts the host from a URL, lowercased and with a leading "www."
// stripped. Unparseable URLs map to "unknown".
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "unknown"
	}
	return host
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
