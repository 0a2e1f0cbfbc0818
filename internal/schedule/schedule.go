// Package schedule decides whether the companion should speak up. The core
// is a pure decision table over (state, elapsed time, operating mode); the
// only carried state is the time of the last intervention, and the caller
// advances it after a successful intervention.
package schedule

import (
	"time"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

// Mode selects which behavioral states trigger an intervention.
type Mode string

const (
	// ModeGhost observes silently and never intervenes.
	ModeGhost Mode = "ghost"
	// ModeCoach checks in during working and needs_nudge states and greets
	// returns from AFK, but never interrupts flow.
	ModeCoach Mode = "coach"
	// ModeStudyBuddy checks in whenever cooldown allows.
	ModeStudyBuddy Mode = "study_buddy"
	// ModeWeekend only nudges, and only when the user needs it.
	ModeWeekend Mode = "weekend"
)

// KnownModes lists the valid operating modes.
func KnownModes() []Mode {
	return []Mode{ModeGhost, ModeCoach, ModeStudyBuddy, ModeWeekend}
}

// Cooldowns maps each state to the minimum number of minutes between
// interventions while in that state.
type Cooldowns map[classify.State]float64

// DefaultCooldownMinutes applies to states missing from the table.
const DefaultCooldownMinutes = 15

// DefaultCooldowns returns the stock cooldown table.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		classify.StateFlow:       45,
		classify.StateWorking:    15,
		classify.StateNeedsNudge: 5,
		classify.StateAFK:        0,
	}
}

// For returns the cooldown for a state, falling back to the default for
// unknown states. A misconfigured table never fails the cycle.
func (c Cooldowns) For(state classify.State) float64 {
	if c == nil {
		return DefaultCooldownMinutes
	}
	if minutes, ok := c[state]; ok {
		return minutes
	}
	return DefaultCooldownMinutes
}

// ShouldIntervene is the pure decision function: ghost never intervenes, an
// unexpired cooldown blocks, and otherwise the mode policy applies. Unknown
// modes never intervene.
func ShouldIntervene(state classify.State, mode Mode, elapsedMinutes float64, cooldowns Cooldowns) bool {
	if mode == ModeGhost {
		return false
	}
	if elapsedMinutes < cooldowns.For(state) {
		return false
	}

	switch mode {
	case ModeCoach:
		return state == classify.StateNeedsNudge || state == classify.StateWorking || state == classify.StateAFK
	case ModeStudyBuddy:
		return true
	case ModeWeekend:
		return state == classify.StateNeedsNudge
	default:
		return false
	}
}

// Scheduler carries the cooldown table, the mode, and the time of the last
// intervention across cycles.
type Scheduler struct {
	mode             Mode
	cooldowns        Cooldowns
	lastIntervention time.Time
}

// New creates a Scheduler. The last-intervention clock starts at now, so the
// first cycle after startup still honors cooldowns.
func New(mode Mode, cooldowns Cooldowns, now time.Time) *Scheduler {
	if cooldowns == nil {
		cooldowns = DefaultCooldowns()
	}
	return &Scheduler{
		mode:             mode,
		cooldowns:        cooldowns,
		lastIntervention: now,
	}
}

// Mode returns the operating mode.
func (s *Scheduler) Mode() Mode {
	return s.mode
}

// LastIntervention returns when the companion last intervened.
func (s *Scheduler) LastIntervention() time.Time {
	return s.lastIntervention
}

// ElapsedMinutes returns the minutes since the last intervention as of now.
func (s *Scheduler) ElapsedMinutes(now time.Time) float64 {
	return now.Sub(s.lastIntervention).Minutes()
}

// Decide reports whether to intervene for state as of now. It does not
// mutate the scheduler; call MarkIntervened after a successful intervention.
func (s *Scheduler) Decide(state classify.State, now time.Time) bool {
	return ShouldIntervene(state, s.mode, s.ElapsedMinutes(now), s.cooldowns)
}

// MarkIntervened records that an intervention happened at now. Called exactly
// once per intervening cycle, after the decision.
func (s *Scheduler) MarkIntervened(now time.Time) {
	s.lastIntervention = now
}

// CooldownFor exposes the effective cooldown for a state.
func (s *Scheduler) CooldownFor(state classify.State) float64 {
	return s.cooldowns.For(state)
}
