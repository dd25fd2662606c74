package serialrw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/serialrw/internal/capture"
	"github.com/cooldogedev/serialrw/internal/log"
	"github.com/cooldogedev/serialrw/internal/pacing"
	"github.com/cooldogedev/serialrw/internal/protocol"
	"github.com/google/uuid"
)

var (
	ErrPortClosed          = errors.New("port closed")
	ErrUnsupportedPlatform = errors.New("serial ports are not supported on this platform")
)

// Port is an open serial line. Received bytes are collected by a background
// reader into a fixed-size ring buffer and handed out through Read.
type Port struct {
	name       string
	dev        io.ReadWriteCloser
	cfg        Config
	sessionID  uuid.UUID
	rx         *RingBuffer[byte]
	mu         sync.Mutex
	writeMu    sync.Mutex
	dropped    atomic.Uint64
	notify     chan struct{}
	pacer      *pacing.Pacer
	recorder   *capture.Recorder
	ctx        context.Context
	cancelFunc context.CancelCauseFunc
	once       sync.Once
	done       chan struct{}
	logger     log.Logger
}

// Open opens and configures the named serial device, e.g. "/dev/ttyUSB0" or "COM4".
func Open(name string, cfg Config) (*Port, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dev, err := openDevice(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	p, err := newPort(name, dev, cfg)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	return p, nil
}

// ListPorts returns the serial devices present on the system.
func ListPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, err
	}
	slices.Sort(ports)
	return ports, nil
}

func newPort(name string, dev io.ReadWriteCloser, cfg Config) (*Port, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rx, err := NewRingBuffer[byte](cfg.BufferSize)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	logger := log.NewLogger(name)
	logger.SetSessionID(sessionID)
	ctx, cancelFunc := context.WithCancelCause(context.Background())
	p := &Port{
		name:       name,
		dev:        dev,
		cfg:        cfg,
		sessionID:  sessionID,
		rx:         rx,
		notify:     make(chan struct{}, 1),
		ctx:        ctx,
		cancelFunc: cancelFunc,
		done:       make(chan struct{}),
		logger:     logger,
	}
	if cfg.Pace {
		p.pacer = pacing.NewPacer(time.Now(), pacing.BytesPerSecond(cfg.BaudRate, cfg.DataBits, cfg.Parity != ParityNone, cfg.stopBitCount()))
	}

	if cfg.Capture != nil {
		p.recorder, err = capture.NewRecorder(cfg.Capture, cfg.CaptureFormat, sessionID.String())
		if err != nil {
			cancelFunc(err)
			logger.Close()
			return nil, err
		}
	}
	p.logger.Log("port_open", "name", name, "baud", cfg.BaudRate, "data_bits", cfg.DataBits, "parity", cfg.Parity, "stop_bits", cfg.stopBitCount(), "buffer", cfg.BufferSize)
	go p.run()
	return p, nil
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) SessionID() uuid.UUID {
	return p.sessionID
}

// Context is cancelled once the port is closed. Its cause is ErrPortClosed for
// a local Close or the device error that ended the reader.
func (p *Port) Context() context.Context {
	return p.ctx
}

// Dropped returns how many received bytes were discarded because the receive
// buffer was full.
func (p *Port) Dropped() uint64 {
	return p.dropped.Load()
}

// Buffered returns the number of received bytes waiting to be read.
func (p *Port) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.Len()
}

// Snapshot returns a copy of the buffered bytes without consuming them.
func (p *Port) Snapshot() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := make([]byte, p.rx.Len())
	_ = p.rx.CopyTo(b, 0)
	return b
}

// Contains reports whether v is currently buffered.
func (p *Port) Contains(v byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.Contains(v)
}

// TryRead copies up to len(b) buffered bytes into b and never blocks.
func (p *Port) TryRead(b []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.Read(b)
}

// WaitReadable blocks until data is buffered, the port is closed or ctx is done.
func (p *Port) WaitReadable(ctx context.Context) error {
	for {
		if p.Buffered() > 0 {
			return nil
		}

		select {
		case <-p.notify:
		case <-p.ctx.Done():
			if p.Buffered() > 0 {
				return nil
			}
			return context.Cause(p.ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadContext blocks until at least one byte is available and reads up to len(b).
// Bytes buffered before a close are still returned before the close cause.
func (p *Port) ReadContext(ctx context.Context, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	for {
		if n := p.TryRead(b); n > 0 {
			return n, nil
		}

		if err := p.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

func (p *Port) Read(b []byte) (int, error) {
	return p.ReadContext(context.Background(), b)
}

// Write sends b to the device. With Config.Pace set the data is split into
// bursts released at the line rate.
func (p *Port) Write(b []byte) (int, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	select {
	case <-p.ctx.Done():
		return 0, context.Cause(p.ctx)
	default:
	}

	if p.pacer == nil {
		return p.writeChunk(b)
	}

	written := 0
	for written < len(b) {
		end := min(len(b), written+p.pacer.Burst())
		if err := p.pace(uint64(end - written)); err != nil {
			return written, err
		}

		n, err := p.writeChunk(b[written:end])
		p.pacer.OnSend(uint64(n))
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (p *Port) Close() error {
	err := p.close(ErrPortClosed)
	<-p.done
	return err
}

func (p *Port) run() {
	defer close(p.done)
	for {
		c := newChunk()
		n, err := p.dev.Read(c.b)
		if n > 0 {
			p.receive(c.b[:n])
		}
		c.reset()

		if err != nil {
			select {
			case <-p.ctx.Done():
			default:
				p.logger.Log("read_err", "err", err.Error())
				_ = p.close(fmt.Errorf("read %s: %w", p.name, err))
			}
			return
		}

		select {
		case <-p.ctx.Done():
			return
		default:
		}
	}
}

func (p *Port) receive(b []byte) {
	if p.recorder != nil {
		if err := p.recorder.Record(protocol.DirectionRX, time.Now(), b); err != nil {
			p.logger.Log("capture_err", "direction", protocol.DirectionRX, "err", err.Error())
		}
	}

	p.mu.Lock()
	n := min(len(b), p.rx.Free())
	_, _ = p.rx.Write(b[:n])
	p.mu.Unlock()

	if dropped := len(b) - n; dropped > 0 {
		p.dropped.Add(uint64(dropped))
		p.logger.Log("rx_overflow", "dropped", dropped, "capacity", p.rx.Cap())
	}

	if n > 0 {
		p.wake()
	}
}

func (p *Port) pace(bytes uint64) error {
	for {
		now := time.Now()
		t := p.pacer.Delay(now, bytes)
		if t.IsZero() {
			return nil
		}

		wait := t.Sub(now)
		p.logger.Log("pace_wait", "bytes", bytes, "wait", wait)
		timer := time.NewTimer(wait)
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return context.Cause(p.ctx)
		case <-timer.C:
		}
	}
}

func (p *Port) writeChunk(b []byte) (int, error) {
	n, err := p.dev.Write(b)
	if n > 0 && p.recorder != nil {
		if err := p.recorder.Record(protocol.DirectionTX, time.Now(), b[:n]); err != nil {
			p.logger.Log("capture_err", "direction", protocol.DirectionTX, "err", err.Error())
		}
	}

	if err != nil {
		p.logger.Log("write_err", "err", err.Error())
		return n, fmt.Errorf("write %s: %w", p.name, err)
	}
	return n, nil
}

func (p *Port) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Port) close(cause error) (err error) {
	p.once.Do(func() {
		p.cancelFunc(cause)
		err = p.dev.Close()
		p.logger.Log("port_close", "cause", cause.Error(), "dropped", p.dropped.Load())
		p.logger.Close()
	})
	return
}
