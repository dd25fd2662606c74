package serialrw

import (
	"sync"

	"github.com/cooldogedev/serialrw/internal/protocol"
)

var chunkPool = sync.Pool{
	New: func() any {
		return &chunk{b: make([]byte, protocol.ReadChunkSize)}
	},
}

type chunk struct {
	b []byte
}

func newChunk() *chunk {
	c := chunkPool.Get().(*chunk)
	c.b = c.b[:cap(c.b)]
	return c
}

func (c *chunk) reset() {
	if cap(c.b) == protocol.ReadChunkSize {
		chunkPool.Put(c)
	}
}
