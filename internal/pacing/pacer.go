package pacing

import (
	"time"
)

const (
	burstInterval = time.Millisecond * 20
	minBurstSize  = 16
	maxBurstSize  = 4096
)

// Pacer is a token bucket refilled at the line rate of a serial port.
type Pacer struct {
	rate     uint64
	capacity uint64
	tokens   uint64
	prev     time.Time
}

func NewPacer(now time.Time, bytesPerSecond uint64) *Pacer {
	rate := max(bytesPerSecond, 1)
	capacity := optimalCapacity(rate)
	return &Pacer{
		rate:     rate,
		capacity: capacity,
		tokens:   capacity,
		prev:     now,
	}
}

// Delay returns the zero time if bytes may be sent now, or the time at which
// enough tokens will have accumulated.
func (p *Pacer) Delay(now time.Time, bytes uint64) (t time.Time) {
	bytes = min(bytes, p.capacity)
	if p.tokens >= bytes {
		return
	}

	if elapsed := now.Sub(p.prev); elapsed > 0 {
		newTokens := uint64(elapsed.Seconds() * float64(p.rate))
		p.tokens = min(p.tokens+newTokens, p.capacity)
		p.prev = now
	}
	if p.tokens >= bytes {
		return
	}
	missing := bytes - p.tokens
	return now.Add(time.Duration(missing * uint64(time.Second) / p.rate))
}

func (p *Pacer) OnSend(bytes uint64) {
	if bytes >= p.tokens {
		p.tokens = 0
		return
	}
	p.tokens -= bytes
}

// Burst is the largest chunk the pacer lets through at once.
func (p *Pacer) Burst() int {
	return int(p.capacity)
}

// BytesPerSecond is the payload rate of a UART line: every character costs a
// start bit, the data bits, an optional parity bit and the stop bits.
func BytesPerSecond(baud, dataBits int, parity bool, stopBits int) uint64 {
	frame := 1 + dataBits + stopBits
	if parity {
		frame++
	}
	if baud <= 0 || frame <= 0 {
		return 1
	}
	return max(uint64(baud/frame), 1)
}

func optimalCapacity(rate uint64) uint64 {
	capacity := rate * uint64(burstInterval) / uint64(time.Second)
	return clamp(capacity, minBurstSize, maxBurstSize)
}

func clamp(value, min, max uint64) uint64 {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}
