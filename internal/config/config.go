// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
	"github.com/HandsomeHarry/companion-cube/internal/schedule"
)

// Config holds all configuration for the companion.
type Config struct {
	CheckIntervalSeconds int    `yaml:"check_interval_seconds"`
	Mode                 string `yaml:"mode"`
	StoragePath          string `yaml:"storage_path"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`

	ActivityWatch ActivityWatchConfig `yaml:"activitywatch"`
	Ollama        OllamaConfig        `yaml:"ollama"`
	Server        ServerConfig        `yaml:"server"`

	Thresholds ThresholdsConfig   `yaml:"thresholds"`
	Cooldowns  map[string]float64 `yaml:"cooldown_minutes"`
	Categories CategoriesConfig   `yaml:"categories"`
}

// ActivityWatchConfig locates the activity event source.
type ActivityWatchConfig struct {
	URL      string `yaml:"url"`
	Hostname string `yaml:"hostname"` // Override bucket hostname suffix; empty uses os.Hostname
}

// OllamaConfig holds settings for the local language model.
type OllamaConfig struct {
	URL               string `yaml:"url"`
	Model             string `yaml:"model"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	ClassifierEnabled bool   `yaml:"classifier_enabled"` // Let the LLM override the rule-based classifier
}

// ServerConfig controls the local status API.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ThresholdsConfig exposes the detector and classifier tuning. The values
// are product-tuning choices, not derived invariants.
type ThresholdsConfig struct {
	FocusSessionMinutes      float64 `yaml:"focus_session_minutes"`
	AppDistractionMinutes    float64 `yaml:"app_distraction_minutes"`
	WebDistractionMinutes    float64 `yaml:"web_distraction_minutes"`
	ShortEventSeconds        float64 `yaml:"short_event_seconds"`
	FocusedSwitchRate        float64 `yaml:"focused_switch_rate"`
	HighSwitchRate           float64 `yaml:"high_switch_rate"`
	HighDistractionRatio     float64 `yaml:"high_distraction_ratio"`
	LightActivityMinutes     float64 `yaml:"light_activity_minutes"`
	DistractionIncreaseRatio float64 `yaml:"distraction_increase_ratio"`
	DistractionDecreaseRatio float64 `yaml:"distraction_decrease_ratio"`
}

// CategoriesConfig overrides the keyword taxonomy.
type CategoriesConfig struct {
	ProductiveApps     map[string][]string `yaml:"productive_apps"`
	DistractionApps    map[string][]string `yaml:"distraction_apps"`
	DistractionDomains map[string][]string `yaml:"distraction_domains"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/tmp"
	}

	th := classify.DefaultThresholds()
	tax := classify.DefaultTaxonomy()

	return &Config{
		CheckIntervalSeconds: 60,
		Mode:                 string(schedule.ModeCoach),
		StoragePath:          filepath.Join(home, ".local", "share", "companion-cube"),
		DesktopNotifications: true,

		ActivityWatch: ActivityWatchConfig{
			URL: "http://localhost:5600",
		},
		Ollama: OllamaConfig{
			URL:               "http://localhost:11434",
			Model:             "cas/mistral-7b-instruct-v0.3",
			TimeoutSeconds:    10,
			ClassifierEnabled: false,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:5601",
		},

		Thresholds: ThresholdsConfig{
			FocusSessionMinutes:      th.FocusSessionMinutes,
			AppDistractionMinutes:    th.AppDistractionMinutes,
			WebDistractionMinutes:    th.WebDistractionMinutes,
			ShortEventSeconds:        th.ShortEventSeconds,
			FocusedSwitchRate:        th.FocusedSwitchRate,
			HighSwitchRate:           th.HighSwitchRate,
			HighDistractionRatio:     th.HighDistractionRatio,
			LightActivityMinutes:     th.LightActivityMinutes,
			DistractionIncreaseRatio: th.DistractionIncreaseRatio,
			DistractionDecreaseRatio: th.DistractionDecreaseRatio,
		},
		Cooldowns: map[string]float64{
			string(classify.StateFlow):       45,
			string(classify.StateWorking):    15,
			string(classify.StateNeedsNudge): 5,
			string(classify.StateAFK):        0,
		},
		Categories: CategoriesConfig{
			ProductiveApps:     tax.ProductiveApps,
			DistractionApps:    tax.DistractionApps,
			DistractionDomains: tax.DistractionDomains,
		},
	}
}

// Load loads configuration from the default paths, falling back to defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	configPaths := []string{
		filepath.Join(home, ".config", "companion-cube", "config.yaml"),
		filepath.Join(home, ".local", "share", "companion-cube", "config.yaml"),
	}

	for _, path := range configPaths {
		if err := loadFromFile(cfg, path); err == nil {
			return cfg, nil
		}
	}

	return cfg, nil
}

// loadFromFile reads a YAML config file and merges it into cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.StoragePath = expandTilde(cfg.StoragePath)
	return nil
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Save writes the current config to disk.
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".config", "companion-cube")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600)
}

// EnsureStorageDir creates the storage directory if it doesn't exist.
func (c *Config) EnsureStorageDir() error {
	return os.MkdirAll(c.StoragePath, 0700)
}

// Validate rejects values the companion cannot run with.
func (c *Config) Validate() error {
	if c.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("check_interval_seconds must be positive, got %d", c.CheckIntervalSeconds)
	}
	mode := schedule.Mode(c.Mode)
	for _, known := range schedule.KnownModes() {
		if mode == known {
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q (valid: ghost, coach, study_buddy, weekend)", c.Mode)
}

// OperatingMode returns the configured mode.
func (c *Config) OperatingMode() schedule.Mode {
	return schedule.Mode(c.Mode)
}

// ClassifyThresholds converts the YAML tuning into the classifier's form.
func (c *Config) ClassifyThresholds() classify.Thresholds {
	return classify.Thresholds{
		FocusSessionMinutes:      c.Thresholds.FocusSessionMinutes,
		AppDistractionMinutes:    c.Thresholds.AppDistractionMinutes,
		WebDistractionMinutes:    c.Thresholds.WebDistractionMinutes,
		ShortEventSeconds:        c.Thresholds.ShortEventSeconds,
		FocusedSwitchRate:        c.Thresholds.FocusedSwitchRate,
		HighSwitchRate:           c.Thresholds.HighSwitchRate,
		HighDistractionRatio:     c.Thresholds.HighDistractionRatio,
		LightActivityMinutes:     c.Thresholds.LightActivityMinutes,
		DistractionIncreaseRatio: c.Thresholds.DistractionIncreaseRatio,
		DistractionDecreaseRatio: c.Thresholds.DistractionDecreaseRatio,
	}
}

// Taxonomy converts the category overrides into the classifier's form.
func (c *Config) Taxonomy() classify.Taxonomy {
	return classify.Taxonomy{
		ProductiveApps:     c.Categories.ProductiveApps,
		DistractionApps:    c.Categories.DistractionApps,
		DistractionDomains: c.Categories.DistractionDomains,
	}
}

// ScheduleCooldowns converts the cooldown table into the scheduler's form.
func (c *Config) ScheduleCooldowns() schedule.Cooldowns {
	cooldowns := make(schedule.Cooldowns, len(c.Cooldowns))
	for state, minutes := range c.Cooldowns {
		cooldowns[classify.State(state)] = minutes
	}
	return cooldowns
}
