// Package paper simulates a margin trading account and broker so the engine
// can run end-to-end without live broker connectivity.
package paper

import (
	"errors"
	"math"
	"sync"

	"obot-go/internal/risk"
)

const epsilon = 1e-9

type exposureState struct {
	Units    float64 // signed: positive long, negative short
	AvgPrice float64
}

// Account tracks cash, realized PnL, and signed per-pair exposure for a
// margin-style paper account. Opening a position does not consume cash; only
// realized PnL moves the balance.
type Account struct {
	mu           sync.Mutex
	startingCash float64
	cash         float64
	realizedPnL  float64
	exposure     map[string]exposureState
}

// ExposureSnapshot exposes a read-only view of a single pair's net exposure.
type ExposureSnapshot struct {
	Units      float64
	AvgPrice   float64
	Unrealized float64
}

// Snapshot represents a thread-safe view of the account, marked to the
// provided prices where available.
type Snapshot struct {
	Cash        float64
	RealizedPnL float64
	Equity      float64
	Exposure    map[string]ExposureSnapshot
}

// NewAccount constructs an account funded with starting cash.
func NewAccount(startingCash float64) *Account {
	return &Account{
		startingCash: startingCash,
		cash:         startingCash,
		exposure:     make(map[string]exposureState),
	}
}

// StartingCash returns the initial bankroll used to compute drawdown.
func (a *Account) StartingCash() float64 { return a.startingCash }

// Apply adjusts exposure for pair by signed delta units executed at price and
// returns the PnL realized by any reduced or flipped exposure.
func (a *Account) Apply(pair string, delta, price float64) (float64, error) {
	if delta == 0 {
		return 0, errors.New("delta must be non-zero")
	}
	if price <= 0 {
		return 0, errors.New("price must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.exposure[pair]
	var realized float64

	switch {
	case state.Units == 0 || sameSign(state.Units, delta):
		total := math.Abs(state.Units) + math.Abs(delta)
		state.AvgPrice = (state.AvgPrice*math.Abs(state.Units) + price*math.Abs(delta)) / total
		state.Units += delta

	default:
		closed := math.Min(math.Abs(delta), math.Abs(state.Units))
		direction := 1.0
		if state.Units < 0 {
			direction = -1.0
		}
		realized = (price - state.AvgPrice) * closed * direction
		state.Units += delta
		if math.Abs(state.Units) <= epsilon {
			state.Units = 0
		} else if sameSign(state.Units, delta) {
			// exposure flipped through zero; remainder opens at fill price
			state.AvgPrice = price
		}
	}

	a.realizedPnL += realized
	a.cash += realized

	if state.Units == 0 {
		delete(a.exposure, pair)
	} else {
		a.exposure[pair] = state
	}
	return realized, nil
}

// Snapshot returns a copy of balances, marked using the supplied prices map.
// Pairs without a mark contribute zero unrealized PnL.
func (a *Account) Snapshot(prices map[string]float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	exposure := make(map[string]ExposureSnapshot, len(a.exposure))
	equity := a.cash
	for pair, state := range a.exposure {
		var unrealized float64
		if mark := prices[pair]; mark > 0 {
			unrealized = (mark - state.AvgPrice) * state.Units
		}
		exposure[pair] = ExposureSnapshot{
			Units:      state.Units,
			AvgPrice:   state.AvgPrice,
			Unrealized: unrealized,
		}
		equity += unrealized
	}

	return Snapshot{
		Cash:        a.cash,
		RealizedPnL: a.realizedPnL,
		Equity:      equity,
		Exposure:    exposure,
	}
}

// GrossNotional sums absolute exposure in account currency, marked where
// possible and falling back to average entry price.
func (a *Account) GrossNotional(prices map[string]float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total float64
	for pair, state := range a.exposure {
		px := prices[pair]
		if px <= 0 {
			px = state.AvgPrice
		}
		total += risk.AccountNotional(pair, math.Abs(state.Units), px)
	}
	return total
}

// Cash returns the current balance (starting cash plus realized PnL).
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Equity returns cash plus unrealized PnL at the supplied marks.
func (a *Account) Equity(prices map[string]float64) float64 {
	return a.Snapshot(prices).Equity
}

// RealizedPnL returns total closed-trade profit and loss.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL
}

// NetUnits returns the signed exposure for the supplied pair.
func (a *Account) NetUnits(pair string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exposure[pair].Units
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
