package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
)

var base = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func appEvent(offset time.Duration, seconds float64, app, title string) activitywatch.Event {
	return activitywatch.Event{
		Timestamp: base.Add(offset),
		Duration:  seconds,
		Data:      map[string]any{"app": app, "title": title},
	}
}

func webEvent(offset time.Duration, seconds float64, url, title string) activitywatch.Event {
	return activitywatch.Event{
		Timestamp: base.Add(offset),
		Duration:  seconds,
		Data:      map[string]any{"url": url, "title": title},
	}
}

func afkEvent(offset time.Duration, status string) activitywatch.Event {
	return activitywatch.Event{
		Timestamp: base.Add(offset),
		Duration:  30,
		Data:      map[string]any{"status": status},
	}
}

func TestAppsDurationsAndTransitions(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 300, "Code", "main.go"),
		appEvent(5*time.Minute, 120, "firefox", "docs"),
		appEvent(7*time.Minute, 180, "Code", "main.go"),
	}

	res := Apps(events, 3)

	if got := res.Durations["code"]; got != 8 {
		t.Fatalf("expected 8 minutes on code, got %v", got)
	}
	if got := res.Durations["firefox"]; got != 2 {
		t.Fatalf("expected 2 minutes on firefox, got %v", got)
	}
	if res.TransitionCount != 2 {
		t.Fatalf("expected 2 transitions, got %d", res.TransitionCount)
	}
	if res.ActiveMinutes != 10 {
		t.Fatalf("expected 10 active minutes, got %v", res.ActiveMinutes)
	}

	want := []Transition{
		{From: "code", To: "firefox", At: base.Add(5 * time.Minute)},
		{From: "firefox", To: "code", At: base.Add(7 * time.Minute)},
	}
	if !reflect.DeepEqual(res.Transitions, want) {
		t.Fatalf("unexpected transitions: %+v", res.Transitions)
	}
}

func TestAppsSortsUnorderedInput(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(7*time.Minute, 180, "Code", ""),
		appEvent(0, 300, "Code", ""),
		appEvent(5*time.Minute, 120, "firefox", ""),
	}

	res := Apps(events, 3)

	// Sorted order is code, firefox, code: two transitions. Processing in
	// the given order would produce a different count.
	if res.TransitionCount != 2 {
		t.Fatalf("expected 2 transitions after sorting, got %d", res.TransitionCount)
	}
	if res.Entries[0].Start != base {
		t.Fatalf("expected first entry at base, got %v", res.Entries[0].Start)
	}
}

func TestAppsShortEventFloor(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 300, "Code", ""),
		appEvent(5*time.Minute, 1, "alt-tab-popup", ""), // Below the 3s floor
		appEvent(5*time.Minute+time.Second, 300, "Code", ""),
	}

	res := Apps(events, 3)

	if res.TransitionCount != 0 {
		t.Fatalf("noise event should not count as a switch, got %d transitions", res.TransitionCount)
	}
	if _, ok := res.Durations["alt-tab-popup"]; ok {
		t.Fatalf("noise event should not accumulate duration")
	}
}

func TestAppsCaseInsensitiveIdentity(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 60, "Firefox", ""),
		appEvent(time.Minute, 60, "firefox", ""),
		appEvent(2*time.Minute, 60, "FIREFOX", ""),
	}

	res := Apps(events, 3)

	if res.TransitionCount != 0 {
		t.Fatalf("case variants are the same entity, got %d transitions", res.TransitionCount)
	}
	if got := res.Durations["firefox"]; got != 3 {
		t.Fatalf("expected 3 merged minutes, got %v", got)
	}
}

func TestAppsSkipsInvalidEvents(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 300, "Code", ""),
		{Timestamp: base.Add(time.Minute), Duration: 300, Data: map[string]any{"title": "no app"}},
		{Duration: 300, Data: map[string]any{"app": "ghost"}}, // Zero timestamp
		{Timestamp: base.Add(2 * time.Minute), Duration: 300, Data: nil},
	}

	res := Apps(events, 3)

	if len(res.Entries) != 1 {
		t.Fatalf("expected only the valid event to survive, got %d entries", len(res.Entries))
	}
}

func TestAppsTitleDeduplication(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 60, "Code", "main.go"),
		appEvent(time.Minute, 60, "Code", "aggregate.go"),
		appEvent(2*time.Minute, 60, "Code", "main.go"),
	}

	res := Apps(events, 3)

	want := []string{"main.go", "aggregate.go"}
	if !reflect.DeepEqual(res.Titles["code"], want) {
		t.Fatalf("expected deduped titles in insertion order, got %v", res.Titles["code"])
	}
}

func TestAppsDurationSumBounded(t *testing.T) {
	// A 20-minute window's entity durations must not exceed the window
	// length plus slack: no double counting.
	var events []activitywatch.Event
	for i := 0; i < 20; i++ {
		events = append(events, appEvent(time.Duration(i)*time.Minute, 60, "Code", ""))
	}

	res := Apps(events, 3)

	var total float64
	for _, minutes := range res.Durations {
		total += minutes
	}
	if total > 20.5 {
		t.Fatalf("durations sum %v exceeds window length", total)
	}
}

func TestAppsIdempotent(t *testing.T) {
	events := []activitywatch.Event{
		appEvent(0, 300, "Code", "main.go"),
		appEvent(5*time.Minute, 120, "firefox", "docs"),
	}

	first := Apps(events, 3)
	second := Apps(events, 3)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not deterministic")
	}
}

func TestWebDomainsNoFloor(t *testing.T) {
	events := []activitywatch.Event{
		webEvent(0, 1, "https://www.reddit.com/r/golang", "golang"),
		webEvent(time.Minute, 120, "https://reddit.com/r/adhd", "adhd"),
		webEvent(2*time.Minute, 60, "https://github.com/foo/bar", "repo"),
	}

	res := Web(events)

	// 1-second visit still counts: web has no short-event floor.
	if got := res.Durations["reddit.com"]; got < 2.0 {
		t.Fatalf("expected reddit.com to include the short visit, got %v", got)
	}
	if _, ok := res.Durations["github.com"]; !ok {
		t.Fatalf("expected github.com in durations")
	}
	if res.TransitionCount != 1 {
		t.Fatalf("expected 1 domain transition, got %d", res.TransitionCount)
	}
}

func TestDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=x", "youtube.com"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"http://REDDIT.com/r/all", "reddit.com"},
		{"not a url", "unknown"},
		{"", "unknown"},
	}

	for _, tc := range cases {
		if got := Domain(tc.url); got != tc.want {
			t.Errorf("Domain(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestIsAFK(t *testing.T) {
	cases := []struct {
		name   string
		events []activitywatch.Event
		want   bool
	}{
		{"no events means unknown, not afk", nil, false},
		{"latest afk", []activitywatch.Event{
			afkEvent(0, "not-afk"),
			afkEvent(5*time.Minute, "afk"),
		}, true},
		{"latest not afk", []activitywatch.Event{
			afkEvent(0, "afk"),
			afkEvent(5*time.Minute, "not-afk"),
		}, false},
		{"latest wins regardless of input order", []activitywatch.Event{
			afkEvent(5*time.Minute, "afk"),
			afkEvent(0, "not-afk"),
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAFK(tc.events); got != tc.want {
				t.Fatalf("IsAFK = %v, want %v", got, tc.want)
			}
		})
	}
}
