package pacing

import (
	"testing"
	"time"
)

func TestBytesPerSecond(t *testing.T) {
	for _, tc := range []struct {
		baud, data int
		parity     bool
		stop, want int
	}{
		{9600, 8, false, 1, 960},
		{9600, 7, true, 1, 960},
		{115200, 8, false, 2, 10472},
		{0, 8, false, 1, 1},
	} {
		if got := BytesPerSecond(tc.baud, tc.data, tc.parity, tc.stop); got != uint64(tc.want) {
			t.Fatalf("BytesPerSecond(%d,%d,%v,%d)=%d want %d", tc.baud, tc.data, tc.parity, tc.stop, got, tc.want)
		}
	}
}

func TestBurstIsClamped(t *testing.T) {
	now := time.Now()
	if got := NewPacer(now, 500).Burst(); got != minBurstSize {
		t.Fatalf("slow line burst=%d want %d", got, minBurstSize)
	}
	if got := NewPacer(now, 10_000_000).Burst(); got != maxBurstSize {
		t.Fatalf("fast line burst=%d want %d", got, maxBurstSize)
	}
	if got := NewPacer(now, 10000).Burst(); got != 200 {
		t.Fatalf("burst=%d want 200", got)
	}
}

func TestDelayRefillsAtLineRate(t *testing.T) {
	now := time.Now()
	p := NewPacer(now, 1000)
	burst := uint64(p.Burst())

	if d := p.Delay(now, burst); !d.IsZero() {
		t.Fatalf("full bucket should not delay, got %v", d.Sub(now))
	}
	p.OnSend(burst)

	d := p.Delay(now, 10)
	if d.IsZero() {
		t.Fatal("empty bucket should delay")
	}
	if wait := d.Sub(now); wait != 10*time.Millisecond {
		t.Fatalf("wait=%v want 10ms", wait)
	}

	later := now.Add(11 * time.Millisecond)
	if d := p.Delay(later, 10); !d.IsZero() {
		t.Fatalf("refilled bucket should not delay, got %v", d.Sub(later))
	}
}

func TestOnSendDoesNotUnderflow(t *testing.T) {
	p := NewPacer(time.Now(), 1000)
	p.OnSend(1 << 20)
	if p.tokens != 0 {
		t.Fatalf("tokens=%d want 0", p.tokens)
	}
}
