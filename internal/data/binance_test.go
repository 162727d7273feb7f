package data

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		"EURUSD":    "EURUSD",
		"eur_usd":   "EURUSD",
		"EUR/USDT":  "EURUSDT",
		" gbp-usd ": "GBPUSD",
	}
	for in, want := range cases {
		if got := NormalizeSymbol(in); got != want {
			t.Fatalf("NormalizeSymbol(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestBinanceInterval(t *testing.T) {
	cases := map[string]string{
		"M1": "1m", "M15": "15m", "H1": "1h", "h4": "4h", "D": "1d",
	}
	for tf, want := range cases {
		got, err := binanceInterval(tf)
		if err != nil {
			t.Fatalf("binanceInterval(%s) returned error: %v", tf, err)
		}
		if got != want {
			t.Fatalf("binanceInterval(%s) = %s, want %s", tf, got, want)
		}
	}
	if _, err := binanceInterval("W1"); err == nil {
		t.Fatalf("expected error for unsupported timeframe")
	}
}

func TestKlineToCandle(t *testing.T) {
	ts := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	k := &binance.Kline{
		OpenTime: ts.UnixMilli(),
		Open:     "1.1000",
		High:     "1.1050",
		Low:      "1.0990",
		Close:    "1.1020",
		Volume:   "12345.6",
	}
	candle, err := klineToCandle("EURUSD", k)
	if err != nil {
		t.Fatalf("klineToCandle returned error: %v", err)
	}
	if candle.Pair != "EURUSD" {
		t.Fatalf("unexpected pair: %s", candle.Pair)
	}
	if candle.Open != 1.1 || candle.High != 1.105 || candle.Low != 1.099 || candle.Close != 1.102 {
		t.Fatalf("unexpected OHLC: %+v", candle)
	}
	if !candle.Ts.Equal(ts) {
		t.Fatalf("unexpected timestamp: %v", candle.Ts)
	}
}

func TestKlineToCandleRejectsMalformed(t *testing.T) {
	if _, err := klineToCandle("EURUSD", nil); err == nil {
		t.Fatalf("expected error for nil kline")
	}
	k := &binance.Kline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}
	if _, err := klineToCandle("EURUSD", k); err == nil {
		t.Fatalf("expected error for malformed open")
	}
}
