package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"obot-go/internal/broker"
	"obot-go/internal/metrics"
	"obot-go/internal/risk"
)

// FillRecorder captures fills for later inspection.
type FillRecorder interface {
	Record(broker.Fill)
}

// Fill close reasons written into the journal and fill log.
const (
	ReasonEntry      = "entry"
	ReasonManual     = "manual"
	ReasonStopLoss   = "stop_loss"
	ReasonTakeProfit = "take_profit"
)

// Broker is a paper-trading implementation of broker.Trader. Market orders
// fill at the last mark plus configured slippage; stop-loss and take-profit
// levels are honored when CheckStops observes a breaching mark.
type Broker struct {
	mu           sync.Mutex
	log          zerolog.Logger
	account      *Account
	slippagePips float64
	positions    map[string]broker.Position
	marks        map[string]float64
	recorders    []FillRecorder
	seq          uint64
}

// NewBroker wires a paper broker around an account. Recorders receive every fill.
func NewBroker(log zerolog.Logger, account *Account, slippagePips float64, recorders ...FillRecorder) *Broker {
	return &Broker{
		log:          log,
		account:      account,
		slippagePips: slippagePips,
		positions:    make(map[string]broker.Position),
		marks:        make(map[string]float64),
		recorders:    recorders,
	}
}

// PlaceOrder fills the order immediately at the limit price or last mark.
func (b *Broker) PlaceOrder(_ context.Context, order broker.Order) (*broker.Position, error) {
	if order.Units <= 0 {
		return nil, errors.New("units must be positive")
	}
	if order.Side != broker.Buy && order.Side != broker.Sell {
		return nil, fmt.Errorf("unknown order side %q", order.Side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	price := order.Price
	if price <= 0 {
		price = b.marks[order.Pair]
	}
	if price <= 0 {
		return nil, fmt.Errorf("no mark price for %s", order.Pair)
	}
	price = b.applySlippage(order.Pair, order.Side, price)

	delta := order.Units
	if order.Side == broker.Sell {
		delta = -order.Units
	}
	if _, err := b.account.Apply(order.Pair, delta, price); err != nil {
		return nil, fmt.Errorf("apply fill: %w", err)
	}

	b.seq++
	pos := broker.Position{
		ID:         fmt.Sprintf("paper-%d", b.seq),
		Pair:       order.Pair,
		Side:       order.Side,
		Units:      order.Units,
		EntryPrice: price,
		SLPrice:    order.SLPrice,
		TPPrice:    order.TPPrice,
		OpenedAt:   time.Now().UTC(),
	}
	b.positions[pos.ID] = pos

	metrics.OrdersTotal.WithLabelValues(order.Pair, string(order.Side)).Inc()
	b.record(broker.Fill{
		PositionID: pos.ID,
		Pair:       pos.Pair,
		Side:       pos.Side,
		Units:      pos.Units,
		Price:      price,
		Reason:     ReasonEntry,
		Ts:         pos.OpenedAt,
	})
	b.log.Info().
		Str("pair", pos.Pair).
		Str("side", string(pos.Side)).
		Float64("units", pos.Units).
		Float64("px", price).
		Float64("sl", pos.SLPrice).
		Float64("tp", pos.TPPrice).
		Str("id", pos.ID).
		Msg("paper fill")
	return &pos, nil
}

// OpenPositions lists open positions, optionally filtered by pair.
func (b *Broker) OpenPositions(_ context.Context, pair string) ([]broker.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]broker.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		if pair != "" && pos.Pair != pair {
			continue
		}
		out = append(out, pos)
	}
	return out, nil
}

// ClosePosition closes an open position at the last mark.
func (b *Broker) ClosePosition(_ context.Context, positionID string) (*broker.Fill, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("unknown position %s", positionID)
	}
	price := b.marks[pos.Pair]
	if price <= 0 {
		price = pos.EntryPrice
	}
	price = b.applySlippage(pos.Pair, pos.Side.Opposite(), price)
	fill, err := b.closeLocked(pos, price, ReasonManual)
	if err != nil {
		return nil, err
	}
	return fill, nil
}

// MarkPrice records the latest observed price for a pair.
func (b *Broker) MarkPrice(pair string, price float64) {
	if price <= 0 {
		return
	}
	b.mu.Lock()
	b.marks[pair] = price
	b.mu.Unlock()
}

// Marks returns a copy of the latest observed prices.
func (b *Broker) Marks() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.marks))
	for pair, px := range b.marks {
		out[pair] = px
	}
	return out
}

// CheckStops records the mark and closes any position whose stop-loss or
// take-profit the price has breached. Fills execute at the stop level, not
// the observed mark.
func (b *Broker) CheckStops(pair string, price float64) []broker.Fill {
	if price <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marks[pair] = price

	var fills []broker.Fill
	for _, pos := range b.positions {
		if pos.Pair != pair {
			continue
		}
		level, reason, hit := stopHit(pos, price)
		if !hit {
			continue
		}
		fill, err := b.closeLocked(pos, level, reason)
		if err != nil {
			b.log.Error().Err(err).Str("id", pos.ID).Msg("stop close failed")
			continue
		}
		fills = append(fills, *fill)
	}
	return fills
}

// Account exposes the underlying paper account.
func (b *Broker) Account() *Account { return b.account }

func (b *Broker) closeLocked(pos broker.Position, price float64, reason string) (*broker.Fill, error) {
	delta := -pos.Units
	if pos.Side == broker.Sell {
		delta = pos.Units
	}
	realized, err := b.account.Apply(pos.Pair, delta, price)
	if err != nil {
		return nil, fmt.Errorf("apply close: %w", err)
	}
	delete(b.positions, pos.ID)

	fill := broker.Fill{
		PositionID:  pos.ID,
		Pair:        pos.Pair,
		Side:        pos.Side.Opposite(),
		Units:       pos.Units,
		Price:       price,
		RealizedPnL: realized,
		Reason:      reason,
		Ts:          time.Now().UTC(),
	}
	b.record(fill)
	b.log.Info().
		Str("pair", pos.Pair).
		Str("id", pos.ID).
		Str("reason", reason).
		Float64("px", price).
		Float64("pnl", realized).
		Msg("paper close")
	return &fill, nil
}

func (b *Broker) applySlippage(pair string, side broker.Side, price float64) float64 {
	if b.slippagePips <= 0 {
		return price
	}
	slip := b.slippagePips * risk.PipSize(pair)
	if side == broker.Buy {
		return price + slip
	}
	return price - slip
}

func (b *Broker) record(fill broker.Fill) {
	for _, recorder := range b.recorders {
		recorder.Record(fill)
	}
}

func stopHit(pos broker.Position, price float64) (float64, string, bool) {
	if pos.Side == broker.Buy {
		if pos.SLPrice > 0 && price <= pos.SLPrice {
			return pos.SLPrice, ReasonStopLoss, true
		}
		if pos.TPPrice > 0 && price >= pos.TPPrice {
			return pos.TPPrice, ReasonTakeProfit, true
		}
		return 0, "", false
	}
	if pos.SLPrice > 0 && price >= pos.SLPrice {
		return pos.SLPrice, ReasonStopLoss, true
	}
	if pos.TPPrice > 0 && price <= pos.TPPrice {
		return pos.TPPrice, ReasonTakeProfit, true
	}
	return 0, "", false
}
