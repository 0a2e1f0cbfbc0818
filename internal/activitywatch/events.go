package activitywatch

import (
	"time"
)

// Event is a single timestamped event as returned by the ActivityWatch API.
// Duration is in seconds and may be zero for point events. Data holds the
// watcher-specific payload (app/title for window events, url/title for web
// events, status for AFK events).
type Event struct {
	ID        int64          `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  float64        `json:"duration"`
	Data      map[string]any `json:"data"`
}

// Str returns a string field from the event payload, or "" if the field is
// missing or not a string.
func (e Event) Str(key string) string {
	if e.Data == nil {
		return ""
	}
	if s, ok := e.Data[key].(string); ok {
		return s
	}
	return ""
}

// Minutes returns the event duration in minutes.
func (e Event) Minutes() float64 {
	return e.Duration / 60
}

// Bundle groups the events of one time window by source kind.
type Bundle struct {
	Window []Event
	Web    []Event
	AFK    []Event
}

// Timeframe identifies one of the trailing windows the companion looks at.
type Timeframe string

const (
	Timeframe5Min  Timeframe = "5_minutes"
	Timeframe10Min Timeframe = "10_minutes"
	Timeframe30Min Timeframe = "30_minutes"
	Timeframe1Hour Timeframe = "1_hour"
	TimeframeToday Timeframe = "today"
)

// Timeframes lists all windows in ascending length order.
func Timeframes() []Timeframe {
	return []Timeframe{Timeframe5Min, Timeframe10Min, Timeframe30Min, Timeframe1Hour, TimeframeToday}
}

// Lookback returns the start of the timeframe's window relative to now.
// TimeframeToday starts at local midnight.
func (tf Timeframe) Lookback(now time.Time) time.Time {
	switch tf {
	case Timeframe5Min:
		return now.Add(-5 * time.Minute)
	case Timeframe10Min:
		return now.Add(-10 * time.Minute)
	case Timeframe30Min:
		return now.Add(-30 * time.Minute)
	case Timeframe1Hour:
		return now.Add(-time.Hour)
	case TimeframeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	default:
		return now.Add(-5 * time.Minute)
	}
}

// Minutes returns the window length in minutes.
func (tf Timeframe) Minutes(now time.Time) float64 {
	return now.Sub(tf.Lookback(now)).Minutes()
}
