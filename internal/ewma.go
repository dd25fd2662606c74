package internal

import (
	"sync/atomic"
	"time"
)

const (
	alpha         = 0.125
	alphaMinusOne = 1.0 - alpha
)

// EWMA is an exponentially weighted moving average of durations.
type EWMA struct {
	value atomic.Int64
}

func NewEWMA() *EWMA {
	return &EWMA{}
}

func (e *EWMA) Add(sample time.Duration) {
	if sample <= 0 {
		return
	}

	current := float64(e.value.Load())
	if current == 0 {
		e.value.Store(int64(sample))
	} else {
		e.value.Store(int64(alpha*float64(sample) + alphaMinusOne*current))
	}
}

func (e *EWMA) Value() time.Duration {
	return time.Duration(e.value.Load())
}
