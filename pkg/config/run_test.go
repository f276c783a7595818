package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRunFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	if cfg.Oracle != "anthropic" {
		t.Errorf("oracle = %q", cfg.Oracle)
	}
	if cfg.Scheduler.MaxConcurrent != 3 || cfg.Scheduler.MaxRetries != 3 {
		t.Errorf("scheduler defaults = %+v", cfg.Scheduler)
	}
	if cfg.TopActionItems != 10 || cfg.TokenBudget != 3000 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Compliance.ProposalPageLimit != 15 {
		t.Errorf("compliance defaults = %+v", cfg.Compliance)
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := writeRunFile(t, `
oracle: openai
model: gpt-4o
scheduler:
  max_concurrent: 5
  batch_size: 8
  warmup_count: 3
  warmup_delay_seconds: 4
  base_delay_seconds: 2
  max_retries: 2
agents: [tech_lead, panel_scorer]
top_action_items: 7
token_budget: 2000
compliance:
  proposal_page_limit: 20
  max_budget: 250000
  max_subcontract_ratio: 0.5
`)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}

	if cfg.Oracle != "openai" || cfg.Model != "gpt-4o" {
		t.Errorf("oracle/model = %q/%q", cfg.Oracle, cfg.Model)
	}
	if len(cfg.Agents) != 2 || cfg.Agents[0] != "tech_lead" {
		t.Errorf("agents = %v", cfg.Agents)
	}
	if cfg.TopActionItems != 7 {
		t.Errorf("top_action_items = %d", cfg.TopActionItems)
	}
	if cfg.Compliance.MaxBudget != 250000 {
		t.Errorf("compliance = %+v", cfg.Compliance)
	}

	sched := cfg.SchedulerSettings()
	if sched.MaxConcurrent != 5 || sched.BatchSize != 8 || sched.MaxRetries != 2 {
		t.Errorf("scheduler settings = %+v", sched)
	}
	if sched.WarmupDelay != 4*time.Second || sched.BaseDelay != 2*time.Second {
		t.Errorf("delays = %v/%v", sched.WarmupDelay, sched.BaseDelay)
	}
}

func TestLoadRunConfigAppliesDefaults(t *testing.T) {
	path := writeRunFile(t, "oracle: google\n")

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.Scheduler.BatchSize != 5 || cfg.Scheduler.WarmupDelaySeconds != 2 {
		t.Errorf("scheduler defaults not applied: %+v", cfg.Scheduler)
	}
	if cfg.Compliance.ProposalPageLimit != 15 {
		t.Errorf("compliance defaults not applied: %+v", cfg.Compliance)
	}
}

func TestLoadRunConfigAcceptsMockOracle(t *testing.T) {
	// The mock oracle is a valid run profile choice for offline dry runs.
	path := writeRunFile(t, "oracle: mock\nmodel: mock-1\n")

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.Oracle != "mock" {
		t.Errorf("oracle = %q", cfg.Oracle)
	}
}

func TestLoadRunConfigRejectsUnknownOracle(t *testing.T) {
	path := writeRunFile(t, "oracle: psychic\n")
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for unknown oracle")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir := filepath.Join(home, ".gradeflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	fileCfg := "api_keys:\n  anthropic: file-key\n  openai: file-openai\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(fileCfg), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("anthropic key = %q, want env override", cfg.AnthropicAPIKey)
	}
	if cfg.OpenAIAPIKey != "file-openai" {
		t.Errorf("openai key = %q, want file value", cfg.OpenAIAPIKey)
	}
	if !cfg.HasOracle("anthropic") || cfg.HasOracle("google") {
		t.Error("HasOracle does not reflect configured keys")
	}
	if cfg.Run == nil || cfg.Run.Oracle != "anthropic" {
		t.Errorf("run profile = %+v, want defaults", cfg.Run)
	}
}
