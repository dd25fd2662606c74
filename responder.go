package serialrw

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

const outboxCapacity = 16

// Responder answers requests arriving on a port with the matching response
// from a query table.
type Responder struct {
	port    *Port
	queries []Query
	window  *RingBuffer[byte]
	scratch []byte
	outbox  *RingBuffer[Query]
	matched atomic.Uint64
}

// NewResponder returns a Responder for every query with a non-empty request.
func NewResponder(port *Port, queries []Query) (*Responder, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: nil port", ErrInvalidArgument)
	}

	var (
		kept    []Query
		longest int
	)
	for _, q := range queries {
		if q.Request == "" {
			continue
		}
		kept = append(kept, q)
		longest = max(longest, len(q.Request))
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no query has a request", ErrInvalidQuery)
	}

	window, err := NewRingBuffer[byte](longest)
	if err != nil {
		return nil, err
	}
	outbox, err := NewRingBuffer[Query](outboxCapacity)
	if err != nil {
		return nil, err
	}
	return &Responder{
		port:    port,
		queries: kept,
		window:  window,
		scratch: make([]byte, longest),
		outbox:  outbox,
	}, nil
}

// Run reads from the port and writes responses until ctx is done or the port
// closes.
func (r *Responder) Run(ctx context.Context) error {
	buf := make([]byte, r.port.cfg.BufferSize)
	for {
		n, err := r.port.ReadContext(ctx, buf)
		if err != nil {
			return err
		}

		for _, b := range buf[:n] {
			r.feed(b)
		}
		if err := r.flush(); err != nil {
			return err
		}
	}
}

// Matched returns how many requests have been recognised.
func (r *Responder) Matched() uint64 {
	return r.matched.Load()
}

func (r *Responder) feed(b byte) {
	if r.window.IsFull() {
		_, _ = r.window.PopFront()
	}
	_ = r.window.Put(b)

	content := r.scratch[:r.window.Len()]
	_ = r.window.CopyTo(content, 0)
	for _, q := range r.queries {
		if !strings.HasSuffix(string(content), q.Request) {
			continue
		}

		r.matched.Add(1)
		r.port.logger.Log("query_match", "name", q.Name)
		if err := r.outbox.Put(q); err != nil {
			r.port.logger.Log("outbox_full", "name", q.Name)
		}
		r.window.Clear()
		return
	}
}

func (r *Responder) flush() error {
	for !r.outbox.IsEmpty() {
		q, _ := r.outbox.PopFront()
		if q.Response == "" {
			continue
		}

		if _, err := r.port.Write([]byte(q.Response)); err != nil {
			return err
		}
		r.port.logger.Log("response_sent", "name", q.Name, "bytes", len(q.Response))
	}
	return nil
}
