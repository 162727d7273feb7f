package strategy

import (
	"fmt"
	"math"

	"obot-go/internal/signal"
)

// Momentum advises in the direction of the percent change over a lookback
// window once it exceeds a threshold.
type Momentum struct {
	lookback  int
	threshold float64
	slPips    float64
	tpPips    float64
}

// NewMomentum builds a momentum strategy using percent change over lookback bars.
func NewMomentum(lookback int, threshold, slPips, tpPips float64) *Momentum {
	if lookback <= 0 {
		lookback = 24
	}
	if threshold <= 0 {
		threshold = 0.003
	}
	return &Momentum{lookback: lookback, threshold: threshold, slPips: slPips, tpPips: tpPips}
}

// Name returns the identifier for logging.
func (s *Momentum) Name() string { return "Momentum" }

// Evaluate compares the latest close against the close lookback bars ago.
func (s *Momentum) Evaluate(pair string, candles []signal.Candle) *signal.Advice {
	if len(candles) < s.lookback+1 {
		return nil
	}
	latest := candles[len(candles)-1]
	anchor := candles[len(candles)-1-s.lookback]
	if anchor.Close <= 0 {
		return nil
	}

	change := (latest.Close - anchor.Close) / anchor.Close
	if math.Abs(change) < s.threshold {
		return nil
	}

	direction := 1
	if change < 0 {
		direction = -1
	}
	confidence := math.Min(1, math.Abs(change)/(s.threshold*2))
	return &signal.Advice{
		Pair:       pair,
		Direction:  direction,
		SLPips:     s.slPips,
		TPPips:     s.tpPips,
		Confidence: confidence,
		Reason:     fmt.Sprintf("chg=%.3f%% over %d bars", change*100, s.lookback),
		Ts:         latest.Ts,
	}
}
