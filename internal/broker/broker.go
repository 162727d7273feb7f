// Package broker defines the order-execution seam and venue-facing types.
package broker

import (
	"context"
	"time"
)

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order represents a placement request a Trader can process.
type Order struct {
	Pair    string
	Side    Side
	Units   float64
	Price   float64 // 0 for market
	SLPrice float64
	TPPrice float64
}

// Position is an open trade held at a venue.
type Position struct {
	ID         string
	Pair       string
	Side       Side
	Units      float64
	EntryPrice float64
	SLPrice    float64
	TPPrice    float64
	OpenedAt   time.Time
}

// Notional returns the position's entry notional in quote currency.
func (p Position) Notional() float64 {
	return p.Units * p.EntryPrice
}

// Fill records an execution, including realized PnL when it closes exposure.
type Fill struct {
	PositionID  string    `json:"position_id"`
	Pair        string    `json:"pair"`
	Side        Side      `json:"side"`
	Units       float64   `json:"units"`
	Price       float64   `json:"price"`
	RealizedPnL float64   `json:"realized_pnl"`
	Reason      string    `json:"reason,omitempty"` // entry|manual|stop_loss|take_profit
	Ts          time.Time `json:"ts"`
}

// Trader is the execution interface broker adapters implement.
type Trader interface {
	PlaceOrder(ctx context.Context, order Order) (*Position, error)
	OpenPositions(ctx context.Context, pair string) ([]Position, error)
	ClosePosition(ctx context.Context, positionID string) (*Fill, error)
}
