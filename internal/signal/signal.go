// Package signal standardizes payloads shared between data ingestion, strategy, and engine layers.
package signal

import "time"

// Candle models a single OHLCV bar for one pair. Pair naming is broker-specific
// (EURUSD, EUR_USD, EUR/USD) and passed through untouched.
type Candle struct {
	Pair   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Ts     time.Time
}

// Mark is a last-trade price update used to mark open positions between cycles.
type Mark struct {
	Pair  string
	Price float64
	Ts    time.Time
}

// Advice expresses a trading decision produced by a strategy implementation.
type Advice struct {
	Pair       string
	Direction  int // +1 buy, -1 sell, 0 none
	SLPips     float64
	TPPips     float64
	Confidence float64
	Reason     string
	Ts         time.Time
}
