// Package storage persists the companion's interaction log and daily
// summaries in SQLite.
//
// Directory structure:
//
//	~/.local/share/companion-cube/
//	└── companion.db
//
// Both tables are pruned: interactions keep the most recent 1000 rows,
// daily summaries the last 30 days.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

const (
	maxInteractions   = 1000
	maxDailySummaries = 30
)

// Store handles persistence.
type Store struct {
	db *sql.DB
}

// InteractionRecord is one logged intervention.
type InteractionRecord struct {
	ID            int64                    `json:"id"`
	Timestamp     time.Time                `json:"timestamp"`
	State         classify.State           `json:"state"`
	Mode          string                   `json:"mode"`
	Response      string                   `json:"response"`
	Pattern       classify.BehaviorPattern `json:"behavior_pattern"`
	ActiveMinutes float64                  `json:"active_minutes"`
	Transitions   int                      `json:"transitions"`
	FocusSessions int                      `json:"focus_sessions"`
	Distractions  int                      `json:"distractions"`
}

// New creates a Store backed by a database under baseDir.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "companion.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the database tables.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		state TEXT NOT NULL,
		mode TEXT NOT NULL,
		response TEXT NOT NULL,
		behavior_pattern TEXT,
		active_minutes REAL DEFAULT 0,
		transitions INTEGER DEFAULT 0,
		focus_sessions INTEGER DEFAULT 0,
		distractions INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_interactions_state ON interactions(state);

	CREATE TABLE IF NOT EXISTS daily_summaries (
		date TEXT PRIMARY KEY,
		active_minutes REAL DEFAULT 0,
		focus_sessions INTEGER DEFAULT 0,
		longest_focus_minutes REAL DEFAULT 0,
		distraction_count INTEGER DEFAULT 0,
		distraction_minutes REAL DEFAULT 0,
		transitions INTEGER DEFAULT 0,
		interventions INTEGER DEFAULT 0,
		top_apps JSON,
		key_activities JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInteraction logs one intervention and prunes old rows.
func (s *Store) SaveInteraction(rec *InteractionRecord) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO interactions
			(timestamp, state, mode, response, behavior_pattern, active_minutes, transitions, focus_sessions, distractions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, string(rec.State), rec.Mode, rec.Response, string(rec.Pattern),
		rec.ActiveMinutes, rec.Transitions, rec.FocusSessions, rec.Distractions)
	if err != nil {
		return 0, fmt.Errorf("failed to save interaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = id

	_, err = s.db.Exec(`
		DELETE FROM interactions WHERE id NOT IN
			(SELECT id FROM interactions ORDER BY timestamp DESC LIMIT ?)`,
		maxInteractions)
	return id, err
}

// RecentInteractions returns up to limit interactions, newest first.
func (s *Store) RecentInteractions(limit int) ([]InteractionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, state, mode, response, behavior_pattern,
		       active_minutes, transitions, focus_sessions, distractions
		FROM interactions ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var records []InteractionRecord
	for rows.Next() {
		var rec InteractionRecord
		var state, pattern string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &state, &rec.Mode, &rec.Response, &pattern,
			&rec.ActiveMinutes, &rec.Transitions, &rec.FocusSessions, &rec.Distractions); err != nil {
			return nil, err
		}
		rec.State = classify.State(state)
		rec.Pattern = classify.BehaviorPattern(pattern)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveDailySummary upserts the summary of one day and prunes old days.
func (s *Store) SaveDailySummary(stats classify.DailyStats) error {
	topApps, err := json.Marshal(stats.TopApps)
	if err != nil {
		return err
	}
	keyActivities, err := json.Marshal(stats.KeyActivities)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO daily_summaries
			(date, active_minutes, focus_sessions, longest_focus_minutes,
			 distraction_count, distraction_minutes, transitions, interventions,
			 top_apps, key_activities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			active_minutes = excluded.active_minutes,
			focus_sessions = excluded.focus_sessions,
			longest_focus_minutes = excluded.longest_focus_minutes,
			distraction_count = excluded.distraction_count,
			distraction_minutes = excluded.distraction_minutes,
			transitions = excluded.transitions,
			interventions = excluded.interventions,
			top_apps = excluded.top_apps,
			key_activities = excluded.key_activities`,
		stats.Date, stats.ActiveMinutes, stats.FocusSessions, stats.LongestFocusMinutes,
		stats.DistractionCount, stats.DistractionMinutes, stats.Transitions, stats.Interventions,
		string(topApps), string(keyActivities))
	if err != nil {
		return fmt.Errorf("failed to save daily summary: %w", err)
	}

	_, err = s.db.Exec(`
		DELETE FROM daily_summaries WHERE date NOT IN
			(SELECT date FROM daily_summaries ORDER BY date DESC LIMIT ?)`,
		maxDailySummaries)
	return err
}

// RecentDailySummaries returns up to limit daily summaries, newest first.
func (s *Store) RecentDailySummaries(limit int) ([]classify.DailyStats, error) {
	rows, err := s.db.Query(`
		SELECT date, active_minutes, focus_sessions, longest_focus_minutes,
		       distraction_count, distraction_minutes, transitions, interventions,
		       top_apps, key_activities
		FROM daily_summaries ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []classify.DailyStats
	for rows.Next() {
		var stats classify.DailyStats
		var topApps, keyActivities sql.NullString
		if err := rows.Scan(&stats.Date, &stats.ActiveMinutes, &stats.FocusSessions,
			&stats.LongestFocusMinutes, &stats.DistractionCount, &stats.DistractionMinutes,
			&stats.Transitions, &stats.Interventions, &topApps, &keyActivities); err != nil {
			return nil, err
		}
		if topApps.Valid {
			json.Unmarshal([]byte(topApps.String), &stats.TopApps)
		}
		if keyActivities.Valid {
			json.Unmarshal([]byte(keyActivities.String), &stats.KeyActivities)
		}
		summaries = append(summaries, stats)
	}
	return summaries, rows.Err()
}

// InteractionCount returns the number of stored interactions.
func (s *Store) InteractionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&count)
	return count, err
}
