package strategy

import (
	"testing"
	"time"

	"obot-go/internal/signal"
)

func candlesFromCloses(pair string, closes ...float64) []signal.Candle {
	base := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	out := make([]signal.Candle, len(closes))
	for i, c := range closes {
		out[i] = signal.Candle{
			Pair:  pair,
			Open:  c,
			High:  c + 0.0002,
			Low:   c - 0.0002,
			Close: c,
			Ts:    base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestBuildModes(t *testing.T) {
	if _, ok := Build("sma_cross", Params{}).(*SMACross); !ok {
		t.Fatalf("expected SMACross for sma_cross mode")
	}
	if _, ok := Build("momentum", Params{}).(*Momentum); !ok {
		t.Fatalf("expected Momentum for momentum mode")
	}
	if _, ok := Build("", Params{}).(*Idle); !ok {
		t.Fatalf("expected Idle for empty mode")
	}
	if _, ok := Build("proprietary", Params{}).(*Idle); !ok {
		t.Fatalf("expected Idle fallback for unknown mode")
	}
}

func TestIdleNeverAdvises(t *testing.T) {
	strat := NewIdle()
	if advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 1, 2, 3, 4, 5)); advice != nil {
		t.Fatalf("expected nil advice from idle strategy, got %+v", advice)
	}
}

func TestSMACrossLong(t *testing.T) {
	strat := NewSMACross(2, 3, 20, 40)
	advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 10, 10, 10, 10, 20))
	if advice == nil {
		t.Fatalf("expected long advice")
	}
	if advice.Direction != 1 {
		t.Fatalf("expected direction +1, got %d", advice.Direction)
	}
	if advice.SLPips != 20 || advice.TPPips != 40 {
		t.Fatalf("expected configured sl/tp pips, got %+v", advice)
	}
}

func TestSMACrossShort(t *testing.T) {
	strat := NewSMACross(2, 3, 20, 40)
	advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 10, 10, 10, 10, 5))
	if advice == nil || advice.Direction != -1 {
		t.Fatalf("expected short advice, got %+v", advice)
	}
}

func TestSMACrossNoCrossNoAdvice(t *testing.T) {
	strat := NewSMACross(2, 3, 20, 40)
	if advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 10, 10, 10, 10, 10)); advice != nil {
		t.Fatalf("expected nil advice without a cross, got %+v", advice)
	}
}

func TestSMACrossNeedsEnoughBars(t *testing.T) {
	strat := NewSMACross(2, 3, 20, 40)
	if advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 10, 20)); advice != nil {
		t.Fatalf("expected nil advice on short history, got %+v", advice)
	}
}

func TestMomentumLong(t *testing.T) {
	strat := NewMomentum(3, 0.01, 20, 40)
	advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 1.0, 1.0, 1.0, 1.02))
	if advice == nil || advice.Direction != 1 {
		t.Fatalf("expected long advice, got %+v", advice)
	}
	if advice.Confidence != 1 {
		t.Fatalf("expected full confidence, got %v", advice.Confidence)
	}
}

func TestMomentumShort(t *testing.T) {
	strat := NewMomentum(3, 0.01, 20, 40)
	advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 1.0, 1.0, 1.0, 0.98))
	if advice == nil || advice.Direction != -1 {
		t.Fatalf("expected short advice, got %+v", advice)
	}
}

func TestMomentumBelowThreshold(t *testing.T) {
	strat := NewMomentum(3, 0.01, 20, 40)
	if advice := strat.Evaluate("EURUSD", candlesFromCloses("EURUSD", 1.0, 1.0, 1.0, 1.001)); advice != nil {
		t.Fatalf("expected nil advice below threshold, got %+v", advice)
	}
}
