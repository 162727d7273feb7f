package data

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"obot-go/internal/metrics"
	"obot-go/internal/signal"
)

// StubProvider serves deterministic synthetic candles: a slow sine drift with
// per-pair phase so different pairs do not move in lockstep. The final candle
// closes at the most recent completed bar boundary.
type StubProvider struct {
	now func() time.Time
}

// NewStubProvider builds a stub provider using the wall clock.
func NewStubProvider() *StubProvider {
	return &StubProvider{now: time.Now}
}

// Candles generates count bars of the requested timeframe for pair.
func (p *StubProvider) Candles(_ context.Context, pair, timeframe string, count int) ([]signal.Candle, error) {
	dur, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 1
	}

	seed := hashPair(pair)
	base := basePrice(pair, seed)
	pip := 0.0001
	if strings.Contains(strings.ToUpper(pair), "JPY") {
		pip = 0.01
	}

	end := p.now().UTC().Truncate(dur)
	candles := make([]signal.Candle, 0, count)
	for i := 0; i < count; i++ {
		ts := end.Add(-time.Duration(count-i) * dur)
		phase := float64(seed%360) * math.Pi / 180
		step := float64(ts.Unix()) / float64(dur/time.Second)
		drift := math.Sin(step/12+phase) * 40 * pip
		wobble := math.Sin(step*3.7+phase) * 8 * pip

		open := base + drift
		clos := base + drift + wobble
		high := math.Max(open, clos) + 2*pip
		low := math.Min(open, clos) - 2*pip
		candles = append(candles, signal.Candle{
			Pair:   pair,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  clos,
			Volume: 1000 + float64(seed%500),
			Ts:     ts,
		})
	}
	metrics.CandlesTotal.WithLabelValues(pair).Add(float64(len(candles)))
	return candles, nil
}

func hashPair(pair string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(pair)))
	return h.Sum32()
}

func basePrice(pair string, seed uint32) float64 {
	base := 0.8 + float64(seed%4000)/10000 // 0.8 .. 1.2
	if strings.Contains(strings.ToUpper(pair), "JPY") {
		base *= 120
	}
	return base
}
