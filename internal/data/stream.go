package data

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"obot-go/internal/metrics"
	"obot-go/internal/signal"
)

const defaultStreamEndpoint = "wss://stream.binance.com:9443/stream"

// streamTarget maps a configured pair onto the wire symbol it subscribes to.
// Pairs may carry an explicit wire symbol as "EURUSD@eurusdt"; without one
// the normalized pair name is used.
type streamTarget struct {
	Alias  string
	Symbol string
}

// Stream consumes a combined trade websocket and emits marks so open
// positions can be marked and stop levels checked between polling cycles.
type Stream struct {
	endpoint string
	targets  []streamTarget
	log      zerolog.Logger
}

// NewStream builds a mark stream for the given pairs.
func NewStream(endpoint string, pairs []string, log zerolog.Logger) *Stream {
	if endpoint == "" {
		endpoint = defaultStreamEndpoint
	}
	targets := make([]streamTarget, 0, len(pairs))
	for _, raw := range pairs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		alias := raw
		symbol := raw
		if parts := strings.SplitN(raw, "@", 2); len(parts) == 2 {
			alias = parts[0]
			symbol = parts[1]
		}
		targets = append(targets, streamTarget{Alias: alias, Symbol: strings.ToLower(NormalizeSymbol(symbol))})
	}
	return &Stream{endpoint: strings.TrimSuffix(endpoint, "/"), targets: targets, log: log}
}

type streamEnvelope struct {
	Stream string      `json:"stream"`
	Data   streamTrade `json:"data"`
}

type streamTrade struct {
	Price     string `json:"p"`
	TradeTime int64  `json:"T"`
}

// Run pushes marks onto the provided channel until the context is canceled,
// reconnecting with exponential backoff on stream errors.
func (s *Stream) Run(ctx context.Context, out chan<- signal.Mark) error {
	if len(s.targets) == 0 {
		return fmt.Errorf("mark stream requires at least one pair")
	}

	streams := make([]string, len(s.targets))
	for i, target := range s.targets {
		streams[i] = target.Symbol + "@trade"
	}
	url := fmt.Sprintf("%s?streams=%s", s.endpoint, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.consume(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Msg("mark stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (s *Stream) consume(ctx context.Context, url string, out chan<- signal.Mark) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info().Int("pairs", len(s.targets)).Msg("connected mark stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		// unblock ReadMessage when the context ends
		<-pingCtx.Done()
		conn.Close()
	}()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.log.Warn().Err(err).Msg("mark stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	aliases := make(map[string]string, len(s.targets))
	for _, target := range s.targets {
		aliases[target.Symbol] = target.Alias
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env streamEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.log.Warn().Err(err).Msg("failed to decode stream message")
			continue
		}
		symbol := strings.SplitN(env.Stream, "@", 2)[0]
		pair, ok := aliases[symbol]
		if !ok {
			continue
		}
		px, err := strconv.ParseFloat(env.Data.Price, 64)
		if err != nil || px <= 0 {
			s.log.Warn().Str("raw", env.Data.Price).Msg("invalid price from stream")
			continue
		}

		mark := signal.Mark{Pair: pair, Price: px, Ts: time.UnixMilli(env.Data.TradeTime)}
		select {
		case out <- mark:
			metrics.MarksTotal.WithLabelValues(pair).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
