package strategy

import (
	"fmt"

	"obot-go/internal/signal"
)

// SMACross advises long when the fast moving average crosses above the slow
// one on the latest bar, and short on the inverse cross. Bars in between
// produce no advice, so a standing trend is not re-entered every cycle.
type SMACross struct {
	fast   int
	slow   int
	slPips float64
	tpPips float64
}

// NewSMACross builds an SMA crossover strategy with sane period fallbacks.
func NewSMACross(fast, slow int, slPips, tpPips float64) *SMACross {
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = fast * 3
	}
	return &SMACross{fast: fast, slow: slow, slPips: slPips, tpPips: tpPips}
}

// Name returns the identifier for logging.
func (s *SMACross) Name() string { return "SMACross" }

// Evaluate detects a crossover between the previous and latest completed bars.
func (s *SMACross) Evaluate(pair string, candles []signal.Candle) *signal.Advice {
	// need one extra bar to see the pre-cross state
	if len(candles) < s.slow+1 {
		return nil
	}

	latest := candles[len(candles)-1]
	prev := candles[:len(candles)-1]

	fastNow := smaClose(candles, s.fast)
	slowNow := smaClose(candles, s.slow)
	fastPrev := smaClose(prev, s.fast)
	slowPrev := smaClose(prev, s.slow)

	var direction int
	switch {
	case fastPrev <= slowPrev && fastNow > slowNow:
		direction = 1
	case fastPrev >= slowPrev && fastNow < slowNow:
		direction = -1
	default:
		return nil
	}

	return &signal.Advice{
		Pair:       pair,
		Direction:  direction,
		SLPips:     s.slPips,
		TPPips:     s.tpPips,
		Confidence: 1,
		Reason:     fmt.Sprintf("sma%d/%d cross fast=%.5f slow=%.5f", s.fast, s.slow, fastNow, slowNow),
		Ts:         latest.Ts,
	}
}

// smaClose averages the closing prices of the trailing period bars.
func smaClose(candles []signal.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}
	var sum float64
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close
	}
	return sum / float64(period)
}
