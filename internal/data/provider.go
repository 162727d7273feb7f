// Package data hosts candle providers and the live mark stream.
package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"obot-go/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic candles (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance fetches REST klines from Binance.
	ProviderBinance = "binance"
)

// Provider is the market data seam strategies are fed from.
type Provider interface {
	Candles(ctx context.Context, pair, timeframe string, count int) ([]signal.Candle, error)
}

// New constructs a provider by name. Credentials are only used by providers
// that need them.
func New(name, apiKey, apiSecret string, log zerolog.Logger) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderStub:
		return NewStubProvider(), nil
	case ProviderBinance:
		return NewBinanceProvider(apiKey, apiSecret, log), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", name)
	}
}

// ParseTimeframe converts a timeframe label (M1..M30, H1, H4, D) into a bar duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	switch strings.ToUpper(strings.TrimSpace(tf)) {
	case "M1":
		return time.Minute, nil
	case "M5":
		return 5 * time.Minute, nil
	case "M15":
		return 15 * time.Minute, nil
	case "M30":
		return 30 * time.Minute, nil
	case "H1":
		return time.Hour, nil
	case "H4":
		return 4 * time.Hour, nil
	case "D":
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown timeframe %q", tf)
	}
}
