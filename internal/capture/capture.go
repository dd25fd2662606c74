package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cooldogedev/serialrw/internal/protocol"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnknownFormat = errors.New("unknown capture format")

type Format byte

const (
	FormatMsgpack Format = iota
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	default:
		return "invalid"
	}
}

// ParseFormat maps "msgpack" or "cbor" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "msgpack":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Record is a single chunk of line traffic.
type Record struct {
	Session   string             `msgpack:"session" cbor:"1,keyasint"`
	Time      int64              `msgpack:"time" cbor:"2,keyasint"`
	Direction protocol.Direction `msgpack:"direction" cbor:"3,keyasint"`
	Data      []byte             `msgpack:"data" cbor:"4,keyasint"`
}

type encoder interface {
	Encode(v any) error
}

type decoder interface {
	Decode(v any) error
}

type Recorder struct {
	session string
	enc     encoder
	mu      sync.Mutex
}

func NewRecorder(w io.Writer, format Format, session string) (*Recorder, error) {
	var enc encoder
	switch format {
	case FormatMsgpack:
		enc = msgpack.NewEncoder(w)
	case FormatCBOR:
		enc = cbor.NewEncoder(w)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, byte(format))
	}
	return &Recorder{session: session, enc: enc}, nil
}

func (r *Recorder) Record(direction protocol.Direction, t time.Time, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(&Record{
		Session:   r.session,
		Time:      t.UnixNano(),
		Direction: direction,
		Data:      data,
	})
}

type Reader struct {
	dec decoder
}

func NewReader(r io.Reader, format Format) (*Reader, error) {
	switch format {
	case FormatMsgpack:
		return &Reader{dec: msgpack.NewDecoder(r)}, nil
	case FormatCBOR:
		return &Reader{dec: cbor.NewDecoder(r)}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, byte(format))
	}
}

// Next decodes the following record. It returns io.EOF once the stream is exhausted.
func (r *Reader) Next() (*Record, error) {
	record := &Record{}
	if err := r.dec.Decode(record); err != nil {
		return nil, err
	}
	return record, nil
}
