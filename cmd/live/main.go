// Binary live is the entry point for live execution. No broker connectors
// ship in this repository, so the only runnable mode is -dry-run, which
// drives the full engine but routes every order to a logging trader instead
// of a venue. Paper trading with simulated fills lives in ./cmd/obot.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"obot-go/internal/broker"
	"obot-go/internal/config"
	"obot-go/internal/data"
	"obot-go/internal/engine"
	"obot-go/internal/metrics"
	"obot-go/internal/paper"
	"obot-go/internal/risk"
	"obot-go/internal/session"
	"obot-go/internal/strategy"
	"obot-go/internal/util"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "log orders instead of routing them to a venue")
	flag.Parse()

	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	config.ApplyEnv(cfg)
	log := util.NewLogger(cfg.App.LogLevel)

	if !*dryRun {
		log.Fatal().Msg("no live broker connectors are wired; run with -dry-run or use ./cmd/obot")
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)

	window, err := session.Parse(cfg.Session.Start, cfg.Session.End)
	if err != nil {
		log.Fatal().Err(err).Msg("parse session window")
	}
	provider, err := data.New(cfg.Data.Provider, cfg.Broker.APIKey, cfg.Broker.APISecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build data provider")
	}

	// sizing and drawdown checks run off the configured paper bankroll;
	// the dry-run trader itself holds no book
	account := paper.NewAccount(cfg.Paper.StartingCash)
	trader := broker.NewLogTrader(log)

	strat := strategy.Build(cfg.Strategy.Mode, strategy.Params{
		FastPeriod:   cfg.Strategy.Params.FastPeriod,
		SlowPeriod:   cfg.Strategy.Params.SlowPeriod,
		LookbackBars: cfg.Strategy.Params.LookbackBars,
		Threshold:    cfg.Strategy.Params.Threshold,
		SLPips:       cfg.Strategy.Params.SLPips,
		TPPips:       cfg.Strategy.Params.TPPips,
	})
	limits := risk.Limits{
		MaxNotionalPerTrade:  cfg.Risk.MaxNotionalPerTrade,
		MaxPortfolioNotional: cfg.Risk.MaxPortfolioNotional,
		MaxDailyLoss:         cfg.Risk.MaxDailyLoss,
		KillSwitchDrawdown:   cfg.Risk.KillSwitchDrawdown,
		MaxConcurrentPerPair: cfg.Risk.MaxConcurrentPerPair,
	}

	eng := engine.New(
		engine.Params{
			Pairs:           cfg.Pairs,
			Timeframe:       cfg.Data.Timeframe,
			CandleCount:     cfg.Data.CandleCount,
			PollInterval:    time.Duration(cfg.Data.PollIntervalSecs) * time.Second,
			OffSessionSleep: time.Duration(cfg.Data.OffSessionSleepSecs) * time.Second,
			RiskPercent:     cfg.Risk.RiskPercentPerTrade,
		},
		window, provider, trader, strat, limits, account, log,
	)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("dry-run mode: orders are logged, not sent")
	if err := eng.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("engine stopped")
	}
}
