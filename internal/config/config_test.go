package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "obot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if len(cfg.Pairs) != 2 || cfg.Pairs[0] != "EURUSD" || cfg.Pairs[1] != "USDJPY" {
		t.Fatalf("unexpected pairs: %+v", cfg.Pairs)
	}
	if cfg.Session.Start != "08:00" || cfg.Session.End != "12:00" {
		t.Fatalf("unexpected session window: %+v", cfg.Session)
	}
	if cfg.Data.Provider != "stub" {
		t.Fatalf("unexpected data provider: %s", cfg.Data.Provider)
	}
	if cfg.Data.Timeframe != "H1" {
		t.Fatalf("unexpected timeframe: %s", cfg.Data.Timeframe)
	}
	if cfg.Data.CandleCount != 100 {
		t.Fatalf("unexpected candle count: %d", cfg.Data.CandleCount)
	}
	if cfg.Data.PollIntervalSecs != 60 {
		t.Fatalf("unexpected poll interval: %d", cfg.Data.PollIntervalSecs)
	}
	if cfg.Data.OffSessionSleepSecs != 300 {
		t.Fatalf("unexpected off-session sleep: %d", cfg.Data.OffSessionSleepSecs)
	}
	if !cfg.Data.Stream.Enabled {
		t.Fatalf("expected stream enabled")
	}
	if cfg.Broker.Name != "paper" || !cfg.Broker.Practice {
		t.Fatalf("unexpected broker block: %+v", cfg.Broker)
	}
	if cfg.Risk.RiskPercentPerTrade != 0.01 {
		t.Fatalf("unexpected risk percent: %.4f", cfg.Risk.RiskPercentPerTrade)
	}
	if cfg.Risk.MaxConcurrentPerPair != 1 {
		t.Fatalf("unexpected concurrency cap: %d", cfg.Risk.MaxConcurrentPerPair)
	}
	if cfg.Risk.MaxDailyLoss != 500 {
		t.Fatalf("unexpected max daily loss: %.2f", cfg.Risk.MaxDailyLoss)
	}
	if cfg.Risk.KillSwitchDrawdown != 0.1 {
		t.Fatalf("unexpected kill switch drawdown: %.2f", cfg.Risk.KillSwitchDrawdown)
	}
	if cfg.Strategy.Mode != "sma_cross" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Strategy.Mode)
	}
	if cfg.Strategy.Params.FastPeriod != 5 || cfg.Strategy.Params.SlowPeriod != 20 {
		t.Fatalf("unexpected sma periods: %+v", cfg.Strategy.Params)
	}
	if cfg.Strategy.Params.SLPips != 20 || cfg.Strategy.Params.TPPips != 40 {
		t.Fatalf("unexpected sl/tp pips: %+v", cfg.Strategy.Params)
	}
	if cfg.Paper.StartingCash != 5000 {
		t.Fatalf("expected starting cash 5000, got %.2f", cfg.Paper.StartingCash)
	}
	if cfg.Paper.SlippagePips != 0.5 {
		t.Fatalf("expected slippage 0.5 pips, got %.2f", cfg.Paper.SlippagePips)
	}
	if cfg.Journal.Path != "data/journal.db" {
		t.Fatalf("unexpected journal path: %s", cfg.Journal.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.App.Name != cfg.App.Name || len(reloaded.Pairs) != len(cfg.Pairs) {
		t.Fatalf("round trip mismatch: %+v vs %+v", reloaded, cfg)
	}
}

func TestApplyEnvOverridesCredentials(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPISecret, "env-secret")

	cfg := &Config{Broker: Broker{APIKey: "yaml-key", APISecret: "yaml-secret"}}
	ApplyEnv(cfg)

	if cfg.Broker.APIKey != "env-key" {
		t.Fatalf("expected env key to win, got %s", cfg.Broker.APIKey)
	}
	if cfg.Broker.APISecret != "env-secret" {
		t.Fatalf("expected env secret to win, got %s", cfg.Broker.APISecret)
	}
}

func TestApplyEnvKeepsYAMLWhenUnset(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPISecret, "")

	cfg := &Config{Broker: Broker{APIKey: "yaml-key", APISecret: "yaml-secret"}}
	ApplyEnv(cfg)

	if cfg.Broker.APIKey != "yaml-key" || cfg.Broker.APISecret != "yaml-secret" {
		t.Fatalf("expected yaml credentials to survive, got %+v", cfg.Broker)
	}
}
