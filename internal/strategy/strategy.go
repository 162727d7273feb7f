// Package strategy contains trading signal generation logic fed from candles.
package strategy

import (
	"strings"

	"obot-go/internal/signal"
)

// Strategy defines behaviour shared by strategy implementations used by the engine.
type Strategy interface {
	Evaluate(pair string, candles []signal.Candle) *signal.Advice
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	FastPeriod   int
	SlowPeriod   int
	LookbackBars int
	Threshold    float64
	SLPips       float64
	TPPips       float64
}

// Build returns a strategy implementation matching the configured mode.
// Unknown and empty modes fall back to the idle strategy, which never trades;
// proprietary signal logic plugs in as additional modes.
func Build(mode string, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "sma_cross", "sma", "cross":
		return NewSMACross(params.FastPeriod, params.SlowPeriod, params.SLPips, params.TPPips)
	case "momentum", "trend":
		return NewMomentum(params.LookbackBars, params.Threshold, params.SLPips, params.TPPips)
	default:
		return NewIdle()
	}
}
