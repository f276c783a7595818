package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/gradeflow/pkg/compliance"
	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// RunConfig is the run profile: which oracle and model grade, how the
// scheduler paces calls, which review agents sit on the panel, and the
// administrative limits. Delay fields are whole seconds in the YAML.
type RunConfig struct {
	Oracle string `yaml:"oracle"`
	Model  string `yaml:"model"`

	Scheduler SchedulerConfig `yaml:"scheduler,omitempty"`

	Agents         []string `yaml:"agents,omitempty"`
	TopActionItems int      `yaml:"top_action_items,omitempty"`
	TokenBudget    int      `yaml:"token_budget,omitempty"`

	RequiredFiles []string          `yaml:"required_files,omitempty"`
	Compliance    compliance.Limits `yaml:"compliance,omitempty"`
}

// SchedulerConfig mirrors the scoring scheduler knobs in YAML form.
type SchedulerConfig struct {
	MaxConcurrent      int `yaml:"max_concurrent,omitempty"`
	BatchSize          int `yaml:"batch_size,omitempty"`
	WarmupCount        int `yaml:"warmup_count,omitempty"`
	WarmupDelaySeconds int `yaml:"warmup_delay_seconds,omitempty"`
	BaseDelaySeconds   int `yaml:"base_delay_seconds,omitempty"`
	MaxRetries         int `yaml:"max_retries,omitempty"`
}

// LoadRunConfig reads a run profile from a YAML file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRunDefaults(&cfg)
	if err := validateRunConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultRunConfig returns the default run profile.
func DefaultRunConfig() *RunConfig {
	cfg := &RunConfig{
		Oracle: "anthropic",
		Model:  "claude-sonnet-4-20250514",
	}
	applyRunDefaults(cfg)
	return cfg
}

// SchedulerSettings converts the YAML knobs to a scoring.Config.
func (c *RunConfig) SchedulerSettings() scoring.Config {
	return scoring.Config{
		MaxConcurrent: c.Scheduler.MaxConcurrent,
		BatchSize:     c.Scheduler.BatchSize,
		WarmupCount:   c.Scheduler.WarmupCount,
		WarmupDelay:   time.Duration(c.Scheduler.WarmupDelaySeconds) * time.Second,
		BaseDelay:     time.Duration(c.Scheduler.BaseDelaySeconds) * time.Second,
		MaxRetries:    c.Scheduler.MaxRetries,
	}
}

func applyRunDefaults(cfg *RunConfig) {
	if cfg == nil {
		return
	}
	if cfg.Oracle == "" {
		cfg.Oracle = "anthropic"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}

	defaults := scoring.DefaultConfig()
	if cfg.Scheduler.MaxConcurrent == 0 {
		cfg.Scheduler.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.Scheduler.BatchSize == 0 {
		cfg.Scheduler.BatchSize = defaults.BatchSize
	}
	if cfg.Scheduler.WarmupCount == 0 {
		cfg.Scheduler.WarmupCount = defaults.WarmupCount
	}
	if cfg.Scheduler.WarmupDelaySeconds == 0 {
		cfg.Scheduler.WarmupDelaySeconds = int(defaults.WarmupDelay / time.Second)
	}
	if cfg.Scheduler.BaseDelaySeconds == 0 {
		cfg.Scheduler.BaseDelaySeconds = int(defaults.BaseDelay / time.Second)
	}
	if cfg.Scheduler.MaxRetries == 0 {
		cfg.Scheduler.MaxRetries = defaults.MaxRetries
	}

	if cfg.TopActionItems == 0 {
		cfg.TopActionItems = 10
	}
	if cfg.TokenBudget == 0 {
		cfg.TokenBudget = 3000
	}
	if cfg.Compliance == (compliance.Limits{}) {
		cfg.Compliance = compliance.DefaultLimits()
	}
}

func validateRunConfig(cfg *RunConfig) error {
	switch cfg.Oracle {
	case "anthropic", "openai", "google", "mock":
	default:
		return fmt.Errorf("unknown oracle %q", cfg.Oracle)
	}
	if cfg.Scheduler.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1")
	}
	if cfg.Scheduler.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	return nil
}
