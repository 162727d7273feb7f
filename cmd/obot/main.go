package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"obot-go/internal/config"
	"obot-go/internal/data"
	"obot-go/internal/engine"
	"obot-go/internal/journal"
	"obot-go/internal/metrics"
	"obot-go/internal/paper"
	"obot-go/internal/risk"
	"obot-go/internal/session"
	sig "obot-go/internal/signal"
	"obot-go/internal/strategy"
	"obot-go/internal/util"
)

func main() {
	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	config.ApplyEnv(cfg)

	log := util.NewLogger(cfg.App.LogLevel)
	if cfg.App.Env == "dev" {
		log = util.NewConsoleLogger(cfg.App.LogLevel)
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	window, err := session.Parse(cfg.Session.Start, cfg.Session.End)
	if err != nil {
		log.Fatal().Err(err).Msg("parse session window")
	}

	provider, err := data.New(cfg.Data.Provider, cfg.Broker.APIKey, cfg.Broker.APISecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build data provider")
	}

	jour, err := journal.New(cfg.Journal.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open journal")
	}
	defer jour.Close()

	recorder, err := paper.NewJSONLRecorder(cfg.Paper.FillsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open fill recorder")
	}
	defer recorder.Close()

	account := paper.NewAccount(cfg.Paper.StartingCash)
	ledger := paper.NewLedger(0)
	trader := paper.NewBroker(log, account, cfg.Paper.SlippagePips, recorder, jour, ledger)

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
		engine.WithMarker(trader),
		engine.WithJournal(jour),
	)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var marks chan sig.Mark
	if cfg.Data.Stream.Enabled {
		marks = make(chan sig.Mark, 1024)
		stream := data.NewStream(cfg.Data.Stream.Endpoint, cfg.Pairs, log)
		go func() {
			if err := stream.Run(ctx, marks); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("mark stream stopped")
			}
		}()
	}

	runErr := eng.Run(ctx, marks)

	sum := ledger.Summary()
	log.Info().
		Int("fills", sum.Fills).
		Int("entries", sum.Entries).
		Int("closes", sum.Closes).
		Float64("realized", sum.Realized).
		Msg("session summary")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatal().Err(runErr).Msg("engine stopped")
	}
}
