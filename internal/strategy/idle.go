package strategy

import "obot-go/internal/signal"

// Idle is the sanitized placeholder strategy: it never advises a trade.
// It keeps the engine runnable without shipping any edge.
type Idle struct{}

// NewIdle returns the no-op strategy.
func NewIdle() *Idle { return &Idle{} }

// Name returns the identifier for logging.
func (s *Idle) Name() string { return "Idle" }

// Evaluate always declines to trade.
func (s *Idle) Evaluate(string, []signal.Candle) *signal.Advice { return nil }
