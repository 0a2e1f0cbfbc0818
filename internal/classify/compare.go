package classify

import (
	"context"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
)

// State is the system's summary judgment of current user engagement.
type State string

const (
	StateFlow       State = "flow"
	StateWorking    State = "working"
	StateNeedsNudge State = "needs_nudge"
	StateAFK        State = "afk"
)

// FocusTrend describes how focus is evolving across timeframes.
type FocusTrend string

const (
	FocusEntering    FocusTrend = "entering_focus"
	FocusMaintaining FocusTrend = "maintaining_focus"
	FocusLosing      FocusTrend = "losing_focus"
	FocusNone        FocusTrend = "no_focus"
)

// DistractionTrend describes how distractions are evolving.
type DistractionTrend string

const (
	DistractionIncreasing DistractionTrend = "increasing"
	DistractionDecreasing DistractionTrend = "decreasing"
	DistractionStable     DistractionTrend = "stable"
)

// Comparison is the cross-timeframe view: one current state plus focus and
// distraction trends. Derived, never persisted.
type Comparison struct {
	FocusTrend       FocusTrend       `json:"focus_trend"`
	DistractionTrend DistractionTrend `json:"distraction_trend"`
	CurrentState     State            `json:"current_state"`
}

// Valid reports whether every field carries a known enum value. Used to vet
// externally supplied comparisons before they may replace the rule-based one.
func (c Comparison) Valid() bool {
	switch c.CurrentState {
	case StateFlow, StateWorking, StateNeedsNudge, StateAFK:
	default:
		return false
	}
	switch c.FocusTrend {
	case FocusEntering, FocusMaintaining, FocusLosing, FocusNone:
	default:
		return false
	}
	switch c.DistractionTrend {
	case DistractionIncreasing, DistractionDecreasing, DistractionStable:
	default:
		return false
	}
	return true
}

// Classifier derives a Comparison from window summaries. Implementations:
// RuleClassifier (pure rules) and the LLM-backed classifier in internal/llm.
type Classifier interface {
	Classify(ctx context.Context, sums Summaries) (Comparison, error)
}

// RuleClassifier is the deterministic rule-based classifier. It performs no
// I/O and never fails.
type RuleClassifier struct {
	Thresholds Thresholds
}

// NewRuleClassifier returns a RuleClassifier with the given tuning.
func NewRuleClassifier(th Thresholds) *RuleClassifier {
	return &RuleClassifier{Thresholds: th}
}

// Classify implements Classifier.
func (r *RuleClassifier) Classify(_ context.Context, sums Summaries) (Comparison, error) {
	return Compare(sums, r.Thresholds), nil
}

// summaryAt returns the summary of a timeframe, substituting an empty summary
// when the window yielded no data. Missing data degrades to zero aggregates,
// never to a failure.
func summaryAt(sums Summaries, tf activitywatch.Timeframe) *WindowSummary {
	if s, ok := sums[tf]; ok && s != nil {
		return s
	}
	return &WindowSummary{Timeframe: tf, Pattern: PatternLightActivity}
}

// Compare derives the cross-timeframe Comparison: the 5-minute window against
// the 30-minute window for focus, and against the 10-minute window for
// distractions. The state mapping is total: every behavior pattern maps to
// exactly one state.
func Compare(sums Summaries, th Thresholds) Comparison {
	short := summaryAt(sums, activitywatch.Timeframe5Min)
	medium := summaryAt(sums, activitywatch.Timeframe10Min)
	long := summaryAt(sums, activitywatch.Timeframe30Min)

	return Comparison{
		FocusTrend:       focusTrend(len(short.FocusSessions), len(long.FocusSessions)),
		DistractionTrend: distractionTrend(len(short.Distractions), len(medium.Distractions), th),
		CurrentState:     StateFor(short.Pattern),
	}
}

// focusTrend compares recent focus sessions against the older part of the
// reference window.
func focusTrend(recent, reference int) FocusTrend {
	older := reference - recent
	if older < 0 {
		older = 0
	}

	switch {
	case recent > 0 && older == 0:
		return FocusEntering
	case recent == 0 && older > 0:
		return FocusLosing
	case recent > 0:
		return FocusMaintaining
	default:
		return FocusNone
	}
}

// distractionTrend compares short-window episode counts against the medium
// reference window. A zero reference degenerates to: increasing iff any
// recent episodes exist.
func distractionTrend(recent, reference int, th Thresholds) DistractionTrend {
	if reference == 0 {
		if recent > 0 {
			return DistractionIncreasing
		}
		return DistractionStable
	}

	ref := float64(reference)
	switch {
	case float64(recent) > ref*th.DistractionIncreaseRatio:
		return DistractionIncreasing
	case float64(recent) < ref*th.DistractionDecreaseRatio:
		return DistractionDecreasing
	default:
		return DistractionStable
	}
}

// StateFor maps a behavior pattern to the behavioral state. Total: unknown
// patterns map to working rather than failing.
func StateFor(pattern BehaviorPattern) State {
	switch pattern {
	case PatternFocusedWork:
		return StateFlow
	case PatternHeavilyDistracted, PatternContextSwitching:
		return StateNeedsNudge
	case PatternAway:
		return StateAFK
	default:
		return StateWorking
	}
}

// FallbackClassifier tries Primary and falls back to Fallback when Primary
// errors or produces a Comparison that fails validation. This is how the
// optional LLM override composes with the rule-based classifier.
type FallbackClassifier struct {
	Primary  Classifier
	Fallback Classifier
}

// Classify implements Classifier.
func (f *FallbackClassifier) Classify(ctx context.Context, sums Summaries) (Comparison, error) {
	if f.Primary != nil {
		if cmp, err := f.Primary.Classify(ctx, sums); err == nil && cmp.Valid() {
			return cmp, nil
		}
	}
	return f.Fallback.Classify(ctx, sums)
}
