package broker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"obot-go/internal/metrics"
)

// LogTrader is a dry-run Trader that records orders in the log and metrics
// without touching any venue. It keeps no book, so OpenPositions is always
// empty and ClosePosition always fails.
type LogTrader struct {
	log zerolog.Logger
	seq atomic.Uint64
}

// NewLogTrader wraps a zerolog logger for dry-run order submissions.
func NewLogTrader(log zerolog.Logger) *LogTrader { return &LogTrader{log: log} }

// PlaceOrder logs the order request and returns a synthetic position.
func (t *LogTrader) PlaceOrder(_ context.Context, order Order) (*Position, error) {
	metrics.OrdersTotal.WithLabelValues(order.Pair, string(order.Side)).Inc()
	t.log.Info().
		Str("pair", order.Pair).
		Str("side", string(order.Side)).
		Float64("units", order.Units).
		Float64("px", order.Price).
		Float64("sl", order.SLPrice).
		Float64("tp", order.TPPrice).
		Msg("submit order (dry-run)")
	id := fmt.Sprintf("dry-%d", t.seq.Add(1))
	return &Position{
		ID:         id,
		Pair:       order.Pair,
		Side:       order.Side,
		Units:      order.Units,
		EntryPrice: order.Price,
		SLPrice:    order.SLPrice,
		TPPrice:    order.TPPrice,
		OpenedAt:   time.Now().UTC(),
	}, nil
}

// OpenPositions reports no open trades; the dry-run trader holds nothing.
func (t *LogTrader) OpenPositions(context.Context, string) ([]Position, error) {
	return nil, nil
}

// ClosePosition always errors because nothing was ever held.
func (t *LogTrader) ClosePosition(_ context.Context, positionID string) (*Fill, error) {
	return nil, fmt.Errorf("dry-run trader holds no position %s", positionID)
}
