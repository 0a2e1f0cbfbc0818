// Package companion orchestrates the check cycle: collect events across the
// trailing windows, summarize, classify, decide whether to speak up, and if
// so phrase a message, show it, and log it.
//
// One cycle runs to completion before the next begins; cycles are driven by
// a wall-clock ticker, not by events. The only state carried between cycles
// is the scheduler's last-intervention timestamp and the daily counters.
package companion

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HandsomeHarry/companion-cube/internal/activitywatch"
	"github.com/HandsomeHarry/companion-cube/internal/classify"
	"github.com/HandsomeHarry/companion-cube/internal/config"
	"github.com/HandsomeHarry/companion-cube/internal/console"
	"github.com/HandsomeHarry/companion-cube/internal/llm"
	"github.com/HandsomeHarry/companion-cube/internal/notify"
	"github.com/HandsomeHarry/companion-cube/internal/schedule"
	"github.com/HandsomeHarry/companion-cube/internal/storage"
)

// Status is a snapshot of the companion's latest judgment, served by the
// status API.
type Status struct {
	State            classify.State            `json:"state"`
	Pattern          classify.BehaviorPattern  `json:"behavior_pattern"`
	FocusTrend       classify.FocusTrend       `json:"focus_trend"`
	DistractionTrend classify.DistractionTrend `json:"distraction_trend"`
	Mode             schedule.Mode             `json:"mode"`
	LastCheck        time.Time                 `json:"last_check"`
	LastIntervention time.Time                 `json:"last_intervention"`
	LastMessage      string                    `json:"last_message,omitempty"`
}

// dailyCounters tracks per-day cycle statistics, reset at midnight.
type dailyCounters struct {
	focusCycles       int
	distractionCycles int
	interventions     int
}

// Companion wires the collaborators together and runs the check loop.
type Companion struct {
	cfg        *config.Config
	aw         *activitywatch.Client
	model      *llm.Client
	classifier classify.Classifier
	sched      *schedule.Scheduler
	store      *storage.Store
	notifier   *notify.DesktopNotifier
	thresholds classify.Thresholds
	taxonomy   classify.Taxonomy
	verbose    bool

	mu       sync.RWMutex
	status   Status
	counters dailyCounters
}

// New assembles a Companion from configuration. store may be nil; the
// companion then runs without persistence.
func New(cfg *config.Config, store *storage.Store, verbose bool) *Companion {
	model := llm.NewClient(cfg.Ollama.URL, cfg.Ollama.Model,
		time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second)

	thresholds := cfg.ClassifyThresholds()

	var classifier classify.Classifier = classify.NewRuleClassifier(thresholds)
	if cfg.Ollama.ClassifierEnabled {
		classifier = &classify.FallbackClassifier{
			Primary:  llm.NewClassifier(model, thresholds),
			Fallback: classifier,
		}
	}

	return &Companion{
		cfg:        cfg,
		aw:         activitywatch.NewClient(cfg.ActivityWatch.URL, cfg.ActivityWatch.Hostname),
		model:      model,
		classifier: classifier,
		sched:      schedule.New(cfg.OperatingMode(), cfg.ScheduleCooldowns(), time.Now()),
		store:      store,
		notifier:   notify.NewDesktopNotifier(),
		thresholds: thresholds,
		taxonomy:   cfg.Taxonomy(),
		verbose:    verbose,
	}
}

// TestConnections checks the event source and the language model, printing a
// report. Returns an error when the event source is unreachable; the model
// is optional.
func (c *Companion) TestConnections(ctx context.Context) error {
	awStatus := c.aw.TestConnection(ctx)

	ollamaUp := false
	if model, err := c.model.EnsureModel(ctx); err == nil {
		ollamaUp = true
		log.Printf("[llm] Using model %s", model)
	}

	fmt.Println(console.ConnectionReport(awStatus.Connected, awStatus.Errors, ollamaUp, c.model.Model))

	if !awStatus.Connected {
		return fmt.Errorf("ActivityWatch is not reachable at %s", c.cfg.ActivityWatch.URL)
	}
	return nil
}

// Run drives the check loop until ctx is cancelled. A cron job generates the
// end-of-day summary at midnight and resets the daily counters.
func (c *Companion) Run(ctx context.Context) error {
	if err := c.TestConnections(ctx); err != nil {
		return err
	}

	interval := time.Duration(c.cfg.CheckIntervalSeconds) * time.Second
	log.Printf("[companion] Starting in %s mode (interval: %s)", c.sched.Mode(), interval)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 0 * * *", func() {
		if err := c.FinishDay(ctx); err != nil {
			log.Printf("[companion] Daily summary error: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily summary: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately
	if err := c.CheckActivity(ctx, time.Now()); err != nil {
		log.Printf("[companion] Check error: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[companion] Shutting down")
			if err := c.FinishDay(context.Background()); err != nil {
				log.Printf("[companion] Daily summary error: %v", err)
			}
			return nil
		case <-ticker.C:
			if err := c.CheckActivity(ctx, time.Now()); err != nil {
				log.Printf("[companion] Check error: %v", err)
			}
		}
	}
}

// CheckActivity runs one cycle: aggregate, classify, decide, and — when the
// decision is to intervene — respond. now anchors every window so a cycle is
// deterministic for a fixed event stream.
func (c *Companion) CheckActivity(ctx context.Context, now time.Time) error {
	data := c.aw.MultiTimeframe(ctx, now)

	sums := make(classify.Summaries, len(data))
	for tf, bundle := range data {
		sums[tf] = classify.BuildSummary(tf, bundle, c.thresholds, c.taxonomy)
	}

	cmp, err := c.classifier.Classify(ctx, sums)
	if err != nil {
		// Classification never aborts a cycle; fall back to the rules.
		cmp = classify.Compare(sums, c.thresholds)
	}
	state := cmp.CurrentState
	log.Printf("[companion] Detected user state: %s", state)

	short := sums[activitywatch.Timeframe5Min]
	c.updateCounters(short)

	intervene := c.sched.Decide(state, now)

	if c.verbose {
		fmt.Println(console.CheckTrace(sums, cmp, intervene,
			c.sched.ElapsedMinutes(now), c.sched.CooldownFor(state)))
	}

	c.setStatus(func(s *Status) {
		s.State = state
		s.FocusTrend = cmp.FocusTrend
		s.DistractionTrend = cmp.DistractionTrend
		s.Mode = c.sched.Mode()
		s.LastCheck = now
		s.LastIntervention = c.sched.LastIntervention()
		if short != nil {
			s.Pattern = short.Pattern
		}
	})

	if !intervene {
		return nil
	}

	activityContext := classify.DescribeActivity(sums, cmp)
	response := c.model.Respond(ctx, state, activityContext)

	fmt.Println(console.Message(state, response, now))
	if c.cfg.DesktopNotifications {
		if err := c.notifier.SendCompanionMessage(state, response); err != nil {
			log.Printf("[notify] %v", err)
		}
	}

	c.saveInteraction(now, state, response, short)

	c.sched.MarkIntervened(now)
	c.mu.Lock()
	c.counters.interventions++
	c.mu.Unlock()

	c.setStatus(func(s *Status) {
		s.LastIntervention = now
		s.LastMessage = response
	})
	return nil
}

// updateCounters advances the per-day cycle counters.
func (c *Companion) updateCounters(short *classify.WindowSummary) {
	if short == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(short.FocusSessions) > 0 {
		c.counters.focusCycles++
	}
	if len(short.Distractions) > 0 {
		c.counters.distractionCycles++
	}
}

// saveInteraction persists one intervention, when a store is configured.
func (c *Companion) saveInteraction(now time.Time, state classify.State, response string, short *classify.WindowSummary) {
	if c.store == nil {
		return
	}

	rec := &storage.InteractionRecord{
		Timestamp: now,
		State:     state,
		Mode:      string(c.sched.Mode()),
		Response:  response,
	}
	if short != nil {
		rec.Pattern = short.Pattern
		rec.ActiveMinutes = short.ActiveMinutes
		rec.Transitions = short.TransitionCount
		rec.FocusSessions = len(short.FocusSessions)
		rec.Distractions = len(short.Distractions)
	}

	if _, err := c.store.SaveInteraction(rec); err != nil {
		log.Printf("[storage] Failed to save interaction: %v", err)
	}
}

// DailySummary computes the since-midnight statistics as of now.
func (c *Companion) DailySummary(ctx context.Context, now time.Time) classify.DailyStats {
	bundle := c.aw.AllEvents(ctx, activitywatch.TimeframeToday.Lookback(now), now)
	today := classify.BuildSummary(activitywatch.TimeframeToday, bundle, c.thresholds, c.taxonomy)

	stats := classify.DailyStatsFrom(today)
	stats.Date = now.Format("2006-01-02")

	c.mu.RLock()
	stats.Interventions = c.counters.interventions
	c.mu.RUnlock()

	return stats
}

// FinishDay prints and persists the daily summary, then resets the counters.
func (c *Companion) FinishDay(ctx context.Context) error {
	stats := c.DailySummary(ctx, time.Now())
	fmt.Println(console.DailySummary(stats))

	c.mu.Lock()
	c.counters = dailyCounters{}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.SaveDailySummary(stats)
}

// Status returns a snapshot of the latest judgment.
func (c *Companion) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Companion) setStatus(update func(*Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.status)
}
