package serialrw

import (
	"errors"
	"fmt"
	"io"

	"github.com/cooldogedev/serialrw/internal/capture"
	"github.com/cooldogedev/serialrw/internal/protocol"
)

var ErrInvalidConfig = errors.New("invalid port config")

// Parity defines the parity setting used for the line.
type Parity uint8

const (
	// ParityNone disables parity generation and checking.
	ParityNone Parity = iota
	// ParityEven sets even parity.
	ParityEven
	// ParityOdd sets odd parity.
	ParityOdd
)

type StopBits uint8

const (
	StopBitsOne StopBits = iota
	StopBitsTwo
)

type CaptureFormat = capture.Format

const (
	CaptureMsgpack = capture.FormatMsgpack
	CaptureCBOR    = capture.FormatCBOR
)

// Config describes how a port is opened. The zero value is 9600 8N1 with a
// DefaultCapacity receive buffer.
type Config struct {
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits StopBits
	// BufferSize is the capacity of the receive ring buffer.
	BufferSize int
	// Pace limits writes to the line rate instead of handing everything to the driver at once.
	Pace bool

	Capture       io.Writer
	CaptureFormat CaptureFormat
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = protocol.DefaultBaudRate
	}
	if c.DataBits == 0 {
		c.DataBits = protocol.DefaultDataBits
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultCapacity
	}
	return c
}

func (c Config) validate() error {
	if c.BaudRate < 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidConfig, c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("%w: data bits %d not in [5, 8]", ErrInvalidConfig, c.DataBits)
	}
	if c.Parity > ParityOdd {
		return fmt.Errorf("%w: parity %d", ErrInvalidConfig, c.Parity)
	}
	if c.StopBits > StopBitsTwo {
		return fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, c.StopBits)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, c.BufferSize)
	}
	return nil
}

func (c Config) stopBitCount() int {
	if c.StopBits == StopBitsTwo {
		return 2
	}
	return 1
}
