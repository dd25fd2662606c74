package serialrw

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/serialrw/internal"
	"github.com/cooldogedev/serialrw/internal/protocol"
)

// Generator writes a fixed set of payloads to a port at a steady interval.
type Generator struct {
	port     *Port
	interval time.Duration
	payloads [][]byte
	next     int
	sent     atomic.Uint64
	latency  *internal.EWMA
}

// NewGenerator returns a Generator cycling through payloads. A zero interval
// means protocol.DefaultWriteInterval and no payloads means protocol.DefaultPayload.
func NewGenerator(port *Port, interval time.Duration, payloads ...[]byte) (*Generator, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: nil port", ErrInvalidArgument)
	}
	if interval < 0 {
		return nil, fmt.Errorf("%w: interval %s", ErrInvalidArgument, interval)
	}
	if interval == 0 {
		interval = protocol.DefaultWriteInterval
	}
	if len(payloads) == 0 {
		payloads = [][]byte{protocol.DefaultPayload}
	}
	for i, payload := range payloads {
		if len(payload) == 0 {
			return nil, fmt.Errorf("%w: payload %d is empty", ErrInvalidArgument, i)
		}
	}
	return &Generator{
		port:     port,
		interval: interval,
		payloads: payloads,
		latency:  internal.NewEWMA(),
	}, nil
}

// Run writes the first payload immediately and one more on every tick until
// ctx is done or the port closes.
func (g *Generator) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		if err := g.send(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.port.Context().Done():
			return context.Cause(g.port.Context())
		case <-ticker.C:
		}
	}
}

// Sent returns the number of payloads written in full.
func (g *Generator) Sent() uint64 {
	return g.sent.Load()
}

// Latency returns the smoothed time a single payload write took.
func (g *Generator) Latency() time.Duration {
	return g.latency.Value()
}

func (g *Generator) send() error {
	payload := g.payloads[g.next]
	g.next = (g.next + 1) % len(g.payloads)

	start := time.Now()
	if _, err := g.port.Write(payload); err != nil {
		return err
	}
	elapsed := time.Since(start)
	g.latency.Add(elapsed)
	g.sent.Add(1)
	g.port.logger.Log("generator_write", "bytes", len(payload), "elapsed", elapsed)
	return nil
}
