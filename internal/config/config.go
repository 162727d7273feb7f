// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Session bounds the UTC window inside which the engine is allowed to trade.
type Session struct {
	Start string `yaml:"start"` // "08:00"
	End   string `yaml:"end"`   // "12:00"
}

// Stream configures the optional websocket mark feed used between polling cycles.
type Stream struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Data describes where candles come from and how often the engine polls.
type Data struct {
	Provider            string `yaml:"provider"` // stub|binance
	Timeframe           string `yaml:"timeframe"`
	CandleCount         int    `yaml:"candle_count"`
	PollIntervalSecs    int    `yaml:"poll_interval_secs"`
	OffSessionSleepSecs int    `yaml:"off_session_sleep_secs"`
	Stream              Stream `yaml:"stream"`
}

// Broker describes connectivity for a REST broker adapter. Credentials are
// normally injected from the environment rather than committed to YAML.
type Broker struct {
	Name      string `yaml:"name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Practice  bool   `yaml:"practice"`
}

// Risk encodes guard-rails for how much size the engine may take on.
type Risk struct {
	RiskPercentPerTrade  float64 `yaml:"risk_percent_per_trade"`
	MaxConcurrentPerPair int     `yaml:"max_concurrent_per_pair"`
	MaxNotionalPerTrade  float64 `yaml:"max_notional_per_trade"`
	MaxPortfolioNotional float64 `yaml:"max_portfolio_notional"`
	MaxDailyLoss         float64 `yaml:"max_daily_loss"`
	KillSwitchDrawdown   float64 `yaml:"kill_switch_drawdown"`
}

// StrategyParams groups tunable knobs for strategy implementations.
type StrategyParams struct {
	FastPeriod   int     `yaml:"fast_period"`
	SlowPeriod   int     `yaml:"slow_period"`
	LookbackBars int     `yaml:"lookback_bars"`
	Threshold    float64 `yaml:"threshold"`
	SLPips       float64 `yaml:"sl_pips"`
	TPPips       float64 `yaml:"tp_pips"`
}

// Strategy specifies which strategy is active along with the parameter bundle.
type Strategy struct {
	Mode   string         `yaml:"mode"`
	Params StrategyParams `yaml:"params"`
}

// Paper captures paper-trading account settings.
type Paper struct {
	StartingCash float64 `yaml:"starting_cash"`
	SlippagePips float64 `yaml:"slippage_pips"`
	FillsPath    string  `yaml:"fills_path"`
}

// Journal points at the SQLite trade journal file.
type Journal struct {
	Path string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Pairs    []string `yaml:"pairs"`
	Session  Session  `yaml:"session"`
	Data     Data     `yaml:"data"`
	Broker   Broker   `yaml:"broker"`
	Risk     Risk     `yaml:"risk"`
	Strategy Strategy `yaml:"strategy"`
	Paper    Paper    `yaml:"paper"`
	Journal  Journal  `yaml:"journal"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
