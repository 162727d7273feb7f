package data

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"

	"obot-go/internal/metrics"
	"obot-go/internal/signal"
)

// BinanceProvider fetches klines over the Binance REST API. Pair names are
// normalized by stripping separators, so EUR_USDT and EUR/USDT both resolve
// to EURUSDT on the wire while the caller's spelling is preserved in the
// returned candles.
type BinanceProvider struct {
	client *binance.Client
	log    zerolog.Logger
}

// NewBinanceProvider wraps a Binance REST client. Public kline endpoints work
// with empty credentials.
func NewBinanceProvider(apiKey, apiSecret string, log zerolog.Logger) *BinanceProvider {
	return &BinanceProvider{client: binance.NewClient(apiKey, apiSecret), log: log}
}

// Candles fetches count bars of the requested timeframe for pair.
func (p *BinanceProvider) Candles(ctx context.Context, pair, timeframe string, count int) ([]signal.Candle, error) {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("candle count must be positive, got %d", count)
	}

	symbol := NormalizeSymbol(pair)
	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(count).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s: %w", symbol, err)
	}

	candles := make([]signal.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := klineToCandle(pair, k)
		if err != nil {
			p.log.Warn().Err(err).Str("pair", pair).Msg("skipping malformed kline")
			continue
		}
		candles = append(candles, candle)
	}
	metrics.CandlesTotal.WithLabelValues(pair).Add(float64(len(candles)))
	return candles, nil
}

// NormalizeSymbol strips broker-specific separators and uppercases the pair.
func NormalizeSymbol(pair string) string {
	return strings.NewReplacer("_", "", "/", "", "-", "").Replace(strings.ToUpper(strings.TrimSpace(pair)))
}

func binanceInterval(timeframe string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(timeframe)) {
	case "M1":
		return "1m", nil
	case "M5":
		return "5m", nil
	case "M15":
		return "15m", nil
	case "M30":
		return "30m", nil
	case "H1":
		return "1h", nil
	case "H4":
		return "4h", nil
	case "D":
		return "1d", nil
	default:
		return "", fmt.Errorf("no binance interval for timeframe %q", timeframe)
	}
}

func klineToCandle(pair string, k *binance.Kline) (signal.Candle, error) {
	if k == nil {
		return signal.Candle{}, fmt.Errorf("nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return signal.Candle{}, fmt.Errorf("parse open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return signal.Candle{}, fmt.Errorf("parse high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return signal.Candle{}, fmt.Errorf("parse low: %w", err)
	}
	clos, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return signal.Candle{}, fmt.Errorf("parse close: %w", err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return signal.Candle{}, fmt.Errorf("parse volume: %w", err)
	}
	return signal.Candle{
		Pair:   pair,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  clos,
		Volume: volume,
		Ts:     time.UnixMilli(k.OpenTime),
	}, nil
}
