package internal

import (
	"testing"
	"time"
)

func TestEWMAFirstSampleIsTaken(t *testing.T) {
	e := NewEWMA()
	e.Add(0)
	e.Add(-time.Second)
	if e.Value() != 0 {
		t.Fatalf("non-positive samples changed value: %v", e.Value())
	}

	e.Add(80 * time.Millisecond)
	if e.Value() != 80*time.Millisecond {
		t.Fatalf("got %v want 80ms", e.Value())
	}
}

func TestEWMASmoothing(t *testing.T) {
	e := NewEWMA()
	e.Add(80 * time.Millisecond)
	e.Add(160 * time.Millisecond)
	// 0.125*160 + 0.875*80 = 90
	if want := 90 * time.Millisecond; e.Value() != want {
		t.Fatalf("got %v want %v", e.Value(), want)
	}
}
