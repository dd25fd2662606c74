package protocol

import "time"

const DefaultBaudRate = 9600

const DefaultDataBits = 8

const ReadChunkSize = 256

const DefaultWriteInterval = time.Second

var DefaultPayload = []byte("Test it.")

// Direction tells whether bytes were received from or sent to the line.
type Direction byte

const (
	DirectionRX Direction = iota
	DirectionTX
)

func (d Direction) String() string {
	switch d {
	case DirectionRX:
		return "rx"
	case DirectionTX:
		return "tx"
	default:
		return "invalid"
	}
}
