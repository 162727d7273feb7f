package paper

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"obot-go/internal/broker"
)

func newTestBroker(recorders ...FillRecorder) *Broker {
	return NewBroker(zerolog.Nop(), NewAccount(10000), 0, recorders...)
}

func TestPlaceOrderFillsAtMark(t *testing.T) {
	b := newTestBroker()
	b.MarkPrice("EURUSD", 1.1000)

	pos, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: broker.Buy, Units: 10000})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if pos.EntryPrice != 1.1000 {
		t.Fatalf("expected fill at mark, got %v", pos.EntryPrice)
	}
	open, err := b.OpenPositions(context.Background(), "EURUSD")
	if err != nil {
		t.Fatalf("OpenPositions returned error: %v", err)
	}
	if len(open) != 1 || open[0].ID != pos.ID {
		t.Fatalf("expected one open position, got %+v", open)
	}
}

func TestPlaceOrderWithoutMarkFails(t *testing.T) {
	b := newTestBroker()
	if _, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: broker.Buy, Units: 10000}); err == nil {
		t.Fatalf("expected error without mark price")
	}
}

func TestPlaceOrderAppliesSlippage(t *testing.T) {
	b := NewBroker(zerolog.Nop(), NewAccount(10000), 2)
	b.MarkPrice("EURUSD", 1.1000)

	pos, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: broker.Buy, Units: 10000})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if !almostEqual(pos.EntryPrice, 1.1002) {
		t.Fatalf("expected 2 pips slippage, got %v", pos.EntryPrice)
	}
}

func TestClosePositionRealizesPnL(t *testing.T) {
	ledger := NewLedger(4)
	b := newTestBroker(ledger)
	b.MarkPrice("EURUSD", 1.1000)

	pos, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: broker.Buy, Units: 10000})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	b.MarkPrice("EURUSD", 1.1050)

	fill, err := b.ClosePosition(context.Background(), pos.ID)
	if err != nil {
		t.Fatalf("ClosePosition returned error: %v", err)
	}
	if fill.Side != broker.Sell || fill.Reason != ReasonManual {
		t.Fatalf("unexpected close fill: %+v", fill)
	}
	if !almostEqual(fill.RealizedPnL, 50) {
		t.Fatalf("expected realized 50, got %v", fill.RealizedPnL)
	}
	if fills := ledger.Recent(); len(fills) != 2 {
		t.Fatalf("expected entry+close fills, got %d", len(fills))
	}
	open, _ := b.OpenPositions(context.Background(), "")
	if len(open) != 0 {
		t.Fatalf("expected no open positions, got %+v", open)
	}
}

func TestCheckStopsLongStopLoss(t *testing.T) {
	b := newTestBroker()
	b.MarkPrice("EURUSD", 1.1000)

	_, err := b.PlaceOrder(context.Background(), broker.Order{
		Pair: "EURUSD", Side: broker.Buy, Units: 10000, SLPrice: 1.0980, TPPrice: 1.1040,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	if fills := b.CheckStops("EURUSD", 1.0990); len(fills) != 0 {
		t.Fatalf("expected no stop at 1.0990, got %+v", fills)
	}
	fills := b.CheckStops("EURUSD", 1.0975)
	if len(fills) != 1 {
		t.Fatalf("expected one stop fill, got %+v", fills)
	}
	if fills[0].Reason != ReasonStopLoss {
		t.Fatalf("expected stop_loss reason, got %s", fills[0].Reason)
	}
	// fill executes at the stop level, not the breaching mark
	if !almostEqual(fills[0].Price, 1.0980) {
		t.Fatalf("expected fill at stop level, got %v", fills[0].Price)
	}
	if !almostEqual(fills[0].RealizedPnL, -20) {
		t.Fatalf("expected realized -20, got %v", fills[0].RealizedPnL)
	}
}

func TestCheckStopsShortTakeProfit(t *testing.T) {
	b := newTestBroker()
	b.MarkPrice("USDJPY", 150.00)

	_, err := b.PlaceOrder(context.Background(), broker.Order{
		Pair: "USDJPY", Side: broker.Sell, Units: 1000, SLPrice: 150.50, TPPrice: 149.40,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	fills := b.CheckStops("USDJPY", 149.30)
	if len(fills) != 1 || fills[0].Reason != ReasonTakeProfit {
		t.Fatalf("expected take_profit fill, got %+v", fills)
	}
	// short 1000 from 150.00 to 149.40 = +600
	if !almostEqual(fills[0].RealizedPnL, 600) {
		t.Fatalf("expected realized 600, got %v", fills[0].RealizedPnL)
	}
}

func TestPlaceOrderRejectsBadOrders(t *testing.T) {
	b := newTestBroker()
	b.MarkPrice("EURUSD", 1.1)
	if _, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: broker.Buy, Units: 0}); err == nil {
		t.Fatalf("expected error for zero units")
	}
	if _, err := b.PlaceOrder(context.Background(), broker.Order{Pair: "EURUSD", Side: "HOLD", Units: 1}); err == nil {
		t.Fatalf("expected error for unknown side")
	}
	if _, err := b.ClosePosition(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error closing unknown position")
	}
}
