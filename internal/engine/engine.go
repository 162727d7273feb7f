// Package engine orchestrates the low-frequency trading cycle: session
// gating, candle polling, strategy evaluation, risk checks, and execution.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"obot-go/internal/broker"
	"obot-go/internal/data"
	"obot-go/internal/journal"
	"obot-go/internal/metrics"
	"obot-go/internal/risk"
	"obot-go/internal/session"
	"obot-go/internal/signal"
	"obot-go/internal/strategy"
)

// Valuer reports account value for sizing, drawdown, and exposure checks.
// *paper.Account satisfies it; a live broker adapter would wrap its account
// endpoints the same way.
type Valuer interface {
	StartingCash() float64
	Cash() float64
	Equity(prices map[string]float64) float64
	RealizedPnL() float64
	GrossNotional(prices map[string]float64) float64
}

// Marker receives price marks and closes positions whose stop or target the
// price has breached. The paper broker implements it; pure dry-run trading
// leaves it nil.
type Marker interface {
	MarkPrice(pair string, price float64)
	CheckStops(pair string, price float64) []broker.Fill
}

// Params bundles the cycle-level knobs of the engine.
type Params struct {
	Pairs           []string
	Timeframe       string
	CandleCount     int
	PollInterval    time.Duration
	OffSessionSleep time.Duration
	RiskPercent     float64
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithMarker wires stop checking against streamed and polled prices.
func WithMarker(m Marker) Option {
	return func(e *Engine) { e.marker = m }
}

// WithJournal persists fills' context (equity snapshots) each cycle.
func WithJournal(j *journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine drives the trade loop. It is single-goroutine: Run consumes marks
// and timers on one select loop, so no internal locking is needed.
type Engine struct {
	params   Params
	window   session.Window
	provider data.Provider
	trader   broker.Trader
	strat    strategy.Strategy
	limits   risk.Limits
	valuer   Valuer
	log      zerolog.Logger

	marker  Marker
	journal *journal.Journal
	now     func() time.Time

	marks            map[string]float64
	day              time.Time
	dayStartRealized float64
	haltLogged       bool
}

// New assembles an engine. Params get conservative defaults when zero.
func New(params Params, window session.Window, provider data.Provider, trader broker.Trader, strat strategy.Strategy, limits risk.Limits, valuer Valuer, log zerolog.Logger, opts ...Option) *Engine {
	if params.Timeframe == "" {
		params.Timeframe = "H1"
	}
	if params.CandleCount <= 0 {
		params.CandleCount = 100
	}
	if params.PollInterval <= 0 {
		params.PollInterval = time.Minute
	}
	if params.OffSessionSleep <= 0 {
		params.OffSessionSleep = 5 * time.Minute
	}
	if params.RiskPercent <= 0 {
		params.RiskPercent = 0.01
	}
	e := &Engine{
		params:   params,
		window:   window,
		provider: provider,
		trader:   trader,
		strat:    strat,
		limits:   limits,
		valuer:   valuer,
		log:      log,
		now:      time.Now,
		marks:    make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes trading cycles until the context is canceled. The marks
// channel may be nil when no live stream is configured.
func (e *Engine) Run(ctx context.Context, marks <-chan signal.Mark) error {
	e.log.Info().
		Str("strategy", e.strat.Name()).
		Str("window", e.window.String()).
		Strs("pairs", e.params.Pairs).
		Msg("engine started")

	for {
		wait := e.params.PollInterval
		if e.window.Contains(e.now()) {
			e.Cycle(ctx)
		} else {
			metrics.SessionSkipsTotal.Inc()
			e.log.Debug().Str("window", e.window.String()).Msg("outside trading session, sleeping")
			wait = e.params.OffSessionSleep
		}

		timer := time.NewTimer(wait)
	drain:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				e.log.Info().Msg("engine stopped")
				return ctx.Err()
			case mark := <-marks:
				e.onMark(mark)
			case <-timer.C:
				break drain
			}
		}
	}
}

// Cycle runs one full pass over all pairs. Exported so tests and alternative
// schedulers can drive the engine directly.
func (e *Engine) Cycle(ctx context.Context) {
	now := e.now().UTC()
	e.rolloverDay(now)

	equity := e.valuer.Equity(e.marks)
	metrics.Equity.Set(equity)
	if e.journal != nil {
		if err := e.journal.RecordEquity(ctx, now, equity, e.valuer.Cash(), e.valuer.RealizedPnL()); err != nil {
			e.log.Error().Err(err).Msg("journal equity failed")
		}
	}

	halted := e.entriesHalted(equity)
	for _, pair := range e.params.Pairs {
		if ctx.Err() != nil {
			return
		}
		if err := e.processPair(ctx, pair, equity, halted); err != nil {
			e.log.Error().Err(err).Str("pair", pair).Msg("pair cycle failed")
		}
	}
}

func (e *Engine) processPair(ctx context.Context, pair string, equity float64, halted bool) error {
	open, err := e.trader.OpenPositions(ctx, pair)
	if err != nil {
		return fmt.Errorf("open positions: %w", err)
	}
	if !e.limits.AllowConcurrent(len(open)) {
		return nil
	}

	candles, err := e.provider.Candles(ctx, pair, e.params.Timeframe, e.params.CandleCount)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) == 0 {
		return nil
	}
	last := candles[len(candles)-1]
	e.applyMark(signal.Mark{Pair: pair, Price: last.Close, Ts: last.Ts})

	advice := e.strat.Evaluate(pair, candles)
	if advice == nil || advice.Direction == 0 {
		return nil
	}
	metrics.AdvicesTotal.WithLabelValues(pair, directionLabel(advice.Direction)).Inc()
	e.log.Info().
		Str("pair", pair).
		Int("direction", advice.Direction).
		Str("reason", advice.Reason).
		Msg("strategy advice")

	if halted {
		e.log.Warn().Str("pair", pair).Msg("entries halted, advice ignored")
		return nil
	}

	lots := risk.LotSize(equity, e.params.RiskPercent, advice.SLPips)
	units := risk.Units(lots)
	if units <= 0 {
		e.log.Debug().Str("pair", pair).Msg("sizing produced no units")
		return nil
	}

	notional := risk.AccountNotional(pair, units, last.Close)
	if !e.limits.AllowTrade(notional) {
		e.log.Warn().Str("pair", pair).Float64("notional", notional).Msg("trade notional over limit")
		return nil
	}
	if !e.limits.AllowExposure(e.valuer.GrossNotional(e.marks) + notional) {
		e.log.Warn().Str("pair", pair).Msg("portfolio exposure over limit")
		return nil
	}

	side := broker.Buy
	if advice.Direction < 0 {
		side = broker.Sell
	}
	slPrice, tpPrice := stopPrices(pair, side, last.Close, advice.SLPips, advice.TPPips)

	pos, err := e.trader.PlaceOrder(ctx, broker.Order{
		Pair:    pair,
		Side:    side,
		Units:   units,
		Price:   0, // market
		SLPrice: slPrice,
		TPPrice: tpPrice,
	})
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	e.log.Info().
		Str("pair", pair).
		Str("side", string(side)).
		Float64("lots", lots).
		Float64("units", units).
		Str("id", pos.ID).
		Msg("order placed")
	return nil
}

func (e *Engine) onMark(mark signal.Mark) {
	if mark.Pair == "" || mark.Price <= 0 {
		return
	}
	e.applyMark(mark)
}

func (e *Engine) applyMark(mark signal.Mark) {
	e.marks[mark.Pair] = mark.Price
	if e.marker == nil {
		return
	}
	e.marker.MarkPrice(mark.Pair, mark.Price)
	for _, fill := range e.marker.CheckStops(mark.Pair, mark.Price) {
		e.log.Info().
			Str("pair", fill.Pair).
			Str("reason", fill.Reason).
			Float64("pnl", fill.RealizedPnL).
			Msg("stop closed position")
	}
}

// entriesHalted applies the account-level circuit breakers: daily loss cap
// and kill-switch drawdown. Open positions keep their stops either way.
func (e *Engine) entriesHalted(equity float64) bool {
	dailyPnL := e.valuer.RealizedPnL() - e.dayStartRealized
	switch {
	case e.limits.DailyLossExceeded(dailyPnL):
		if !e.haltLogged {
			e.log.Warn().Float64("daily_pnl", dailyPnL).Msg("daily loss cap hit, halting entries")
			e.haltLogged = true
		}
		return true
	case e.limits.KillSwitchTripped(equity, e.valuer.StartingCash()):
		if !e.haltLogged {
			e.log.Warn().Float64("equity", equity).Msg("kill switch tripped, halting entries")
			e.haltLogged = true
		}
		return true
	default:
		e.haltLogged = false
		return false
	}
}

func (e *Engine) rolloverDay(now time.Time) {
	day := now.Truncate(24 * time.Hour)
	if day.Equal(e.day) {
		return
	}
	e.day = day
	e.dayStartRealized = e.valuer.RealizedPnL()
	e.haltLogged = false
}

func directionLabel(direction int) string {
	if direction < 0 {
		return "short"
	}
	return "long"
}

// stopPrices converts pip distances into absolute stop and target levels.
// Zero distances disable the corresponding level.
func stopPrices(pair string, side broker.Side, price, slPips, tpPips float64) (float64, float64) {
	pip := risk.PipSize(pair)
	var sl, tp float64
	if side == broker.Buy {
		if slPips > 0 {
			sl = price - slPips*pip
		}
		if tpPips > 0 {
			tp = price + tpPips*pip
		}
		return sl, tp
	}
	if slPips > 0 {
		sl = price + slPips*pip
	}
	if tpPips > 0 {
		tp = price - tpPips*pip
	}
	return sl, tp
}
