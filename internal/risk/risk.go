// Package risk implements position sizing and the guard-rails the engine
// consults before submitting orders.
package risk

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnitsPerLot converts standard lots into base-currency units.
const UnitsPerLot = 100_000

// PipSize returns the price increment of one pip for the pair: 0.01 for
// JPY-quoted pairs, 0.0001 otherwise. Separators and case in broker-specific
// pair names are ignored.
func PipSize(pair string) float64 {
	if strings.HasSuffix(normalize(pair), "JPY") {
		return 0.01
	}
	return 0.0001
}

// AccountNotional converts a fill's size into account (USD) currency terms so
// notional limits compare like with like. units * price is quote-currency
// notional: correct for USD-quoted pairs, but ~150x overstated for USDJPY.
// USD-based pairs are worth their base units directly. Crosses have no USD
// leg to convert through and keep the quote notional as a conservative bound.
func AccountNotional(pair string, units, price float64) float64 {
	normalized := normalize(pair)
	switch {
	case strings.HasPrefix(normalized, "USD"):
		return units
	case strings.HasSuffix(normalized, "USD"):
		return units * price
	default:
		return units * price
	}
}

func normalize(pair string) string {
	normalized := strings.ToUpper(pair)
	return strings.NewReplacer("_", "", "/", "", "-", "").Replace(normalized)
}

// LotSize computes the lot count that risks riskPercent of balance given the
// stop distance in pips: balance * riskPercent / (slPips * 10), rounded to
// two decimals. Returns 0 when any input is non-positive.
func LotSize(balance, riskPercent, slPips float64) float64 {
	if balance <= 0 || riskPercent <= 0 || slPips <= 0 {
		return 0
	}
	riskAmount := decimal.NewFromFloat(balance).Mul(decimal.NewFromFloat(riskPercent))
	lots := riskAmount.Div(decimal.NewFromFloat(slPips).Mul(decimal.NewFromInt(10)))
	return lots.Round(2).InexactFloat64()
}

// Units converts a lot count into tradable units.
func Units(lots float64) float64 {
	if lots <= 0 {
		return 0
	}
	return decimal.NewFromFloat(lots).Mul(decimal.NewFromInt(UnitsPerLot)).InexactFloat64()
}

// Limits encodes guard-rails for how much size the engine may take on.
// Zero-valued fields disable the corresponding check.
type Limits struct {
	MaxNotionalPerTrade  float64
	MaxPortfolioNotional float64
	MaxDailyLoss         float64
	KillSwitchDrawdown   float64
	MaxConcurrentPerPair int
}

// AllowTrade reports whether a single order of the given notional is within limits.
func (l Limits) AllowTrade(notional float64) bool {
	if l.MaxNotionalPerTrade <= 0 {
		return true
	}
	return notional <= l.MaxNotionalPerTrade
}

// AllowExposure reports whether total portfolio notional after the trade stays capped.
func (l Limits) AllowExposure(portfolioNotional float64) bool {
	if l.MaxPortfolioNotional <= 0 {
		return true
	}
	return portfolioNotional <= l.MaxPortfolioNotional
}

// AllowConcurrent reports whether another position may be opened on a pair
// that already has openCount positions.
func (l Limits) AllowConcurrent(openCount int) bool {
	if l.MaxConcurrentPerPair <= 0 {
		return true
	}
	return openCount < l.MaxConcurrentPerPair
}

// DailyLossExceeded reports whether realized losses for the UTC day have
// breached the configured cap. dailyPnL is negative when losing.
func (l Limits) DailyLossExceeded(dailyPnL float64) bool {
	if l.MaxDailyLoss <= 0 {
		return false
	}
	return dailyPnL <= -l.MaxDailyLoss
}

// KillSwitchTripped reports whether equity has drawn down far enough from the
// starting balance to halt new entries.
func (l Limits) KillSwitchTripped(equity, startingBalance float64) bool {
	if l.KillSwitchDrawdown <= 0 || startingBalance <= 0 {
		return false
	}
	drawdown := (startingBalance - equity) / startingBalance
	return drawdown >= l.KillSwitchDrawdown
}
