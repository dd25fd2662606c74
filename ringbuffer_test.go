package serialrw

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func newTestRing[T comparable](t *testing.T, capacity int) *RingBuffer[T] {
	t.Helper()
	r, err := NewRingBuffer[T](capacity)
	if err != nil {
		t.Fatalf("NewRingBuffer(%d): %v", capacity, err)
	}
	return r
}

func TestNewRingBufferRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -256} {
		if _, err := NewRingBuffer[int](capacity); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("NewRingBuffer(%d) err=%v; want ErrInvalidArgument", capacity, err)
		}
	}
}

func TestNewDefaultRingBuffer(t *testing.T) {
	r := NewDefaultRingBuffer[byte]()
	if r.Cap() != DefaultCapacity || !r.IsEmpty() || r.Len() != 0 {
		t.Fatalf("cap=%d len=%d empty=%v; want %d,0,true", r.Cap(), r.Len(), r.IsEmpty(), DefaultCapacity)
	}
}

func TestPopFrontIsFIFO(t *testing.T) {
	r := newTestRing[string](t, 8)
	for _, v := range []string{"a", "b", "c"} {
		if err := r.Put(v); err != nil {
			t.Fatalf("Put(%q): %v", v, err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := r.PopFront()
		if err != nil || got != want {
			t.Fatalf("PopFront()=%q,%v; want %q,nil", got, err, want)
		}
	}
	if _, err := r.PopFront(); !errors.Is(err, ErrBufferEmpty) {
		t.Fatalf("PopFront on empty err=%v; want ErrBufferEmpty", err)
	}
}

func TestPutRejectsWhenFull(t *testing.T) {
	const n = 5
	r := newTestRing[int](t, n)
	for i := 0; i < n; i++ {
		if err := r.Put(i); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	if !r.IsFull() {
		t.Fatal("buffer should be full")
	}

	if err := r.Put(99); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("Put on full err=%v; want ErrBufferFull", err)
	}
	if r.Len() != n {
		t.Fatalf("Len=%d after rejected Put; want %d", r.Len(), n)
	}
	if got := slices.Collect(r.All()); !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("contents changed after rejected Put: %v", got)
	}
}

func TestWraparoundReclaimsSpace(t *testing.T) {
	r := newTestRing[int](t, 4)
	for i := 1; i <= 4; i++ {
		_ = r.Put(i)
	}
	if v, _ := r.PopFront(); v != 1 {
		t.Fatalf("PopFront=%d; want 1", v)
	}
	if err := r.Put(5); err != nil {
		t.Fatalf("Put(5) after pop: %v", err)
	}

	for _, want := range []int{2, 3, 4, 5} {
		got, err := r.PopFront()
		if err != nil || got != want {
			t.Fatalf("PopFront()=%d,%v; want %d,nil", got, err, want)
		}
	}
}

func TestClearResetsState(t *testing.T) {
	r := newTestRing[int](t, 3)
	_ = r.Put(7)
	_ = r.Put(8)
	_, _ = r.PopFront()
	r.Clear()

	if !r.IsEmpty() || r.Len() != 0 {
		t.Fatalf("after Clear empty=%v len=%d", r.IsEmpty(), r.Len())
	}
	if r.Contains(8) {
		t.Fatal("cleared element still reported by Contains")
	}
	for i := 0; i < r.Cap(); i++ {
		if err := r.Put(i); err != nil {
			t.Fatalf("Put(%d) after Clear: %v", i, err)
		}
	}
	if got := slices.Collect(r.All()); !slices.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("got %v; want [0 1 2]", got)
	}
}

func TestCopyToPreservesOrderAndBuffer(t *testing.T) {
	r := newTestRing[int](t, 4)
	for i := 1; i <= 4; i++ {
		_ = r.Put(i)
	}
	_, _ = r.PopFront()
	_, _ = r.PopFront()
	_ = r.Put(5)
	_ = r.Put(6)

	dst := make([]int, 6)
	if err := r.CopyTo(dst, 2); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}
	if want := []int{0, 0, 3, 4, 5, 6}; !slices.Equal(dst, want) {
		t.Fatalf("dst=%v; want %v", dst, want)
	}
	if r.Len() != 4 || !r.Contains(3) || !r.Contains(6) {
		t.Fatalf("CopyTo mutated the buffer: len=%d", r.Len())
	}
}

func TestCopyToRejectsShortDestination(t *testing.T) {
	r := newTestRing[int](t, 4)
	_ = r.Put(1)
	_ = r.Put(2)

	for _, tc := range []struct {
		length, offset int
	}{
		{1, 0},
		{2, 1},
		{4, -1},
		{2, 5},
	} {
		dst := make([]int, tc.length)
		if err := r.CopyTo(dst, tc.offset); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("CopyTo(len=%d, off=%d) err=%v; want ErrInvalidArgument", tc.length, tc.offset, err)
		}
	}
	if err := newTestRing[int](t, 1).CopyTo(nil, 0); err != nil {
		t.Fatalf("CopyTo of empty buffer into nil: %v", err)
	}
}

func TestContains(t *testing.T) {
	r := newTestRing[Query](t, 2)
	status := Query{Name: "GetStatus", Request: "\xf0\x55", Response: "\xf0\xa6"}
	if r.Contains(status) {
		t.Fatal("empty buffer reported a match")
	}

	_ = r.Put(status)
	_ = r.Put(Query{Name: "GetSoftwareVersion"})
	if !r.Contains(Query{Name: "GetStatus", Request: "\xf0\x55", Response: "\xf0\xa6"}) {
		t.Fatal("equal value not found")
	}
	if r.Contains(Query{Name: "GetStatus"}) {
		t.Fatal("different value reported as contained")
	}

	_, _ = r.PopFront()
	if r.Contains(status) {
		t.Fatal("popped element still contained")
	}
}

func TestPopBackRemovesMostRecent(t *testing.T) {
	r := newTestRing[int](t, 4)
	_ = r.Put(1)
	_ = r.Put(2)
	_ = r.Put(3)

	if v, err := r.PopBack(); err != nil || v != 3 {
		t.Fatalf("PopBack()=%d,%v; want 3,nil", v, err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len=%d; want 2", r.Len())
	}
	if v, _ := r.PopFront(); v != 1 {
		t.Fatalf("PopFront()=%d; want 1", v)
	}
	if r.Len() != 1 || !r.Contains(2) {
		t.Fatalf("Len=%d contains(2)=%v; want 1,true", r.Len(), r.Contains(2))
	}
}

func TestPopBackAcrossWrap(t *testing.T) {
	r := newTestRing[int](t, 3)
	_ = r.Put(1)
	_ = r.Put(2)
	_ = r.Put(3)
	_, _ = r.PopFront()
	_ = r.Put(4) // tail wraps to index 1

	for _, want := range []int{4, 3, 2} {
		if v, err := r.PopBack(); err != nil || v != want {
			t.Fatalf("PopBack()=%d,%v; want %d,nil", v, err, want)
		}
	}
	if _, err := r.PopBack(); !errors.Is(err, ErrBufferEmpty) {
		t.Fatalf("PopBack on empty err=%v; want ErrBufferEmpty", err)
	}
	if err := r.Put(9); err != nil {
		t.Fatalf("Put after draining: %v", err)
	}
	if v, _ := r.PopFront(); v != 9 {
		t.Fatalf("PopFront()=%d; want 9", v)
	}
}

func TestAllIsRestartableAndStoppable(t *testing.T) {
	r := newTestRing[int](t, 3)
	_ = r.Put(1)
	_ = r.Put(2)
	_ = r.Put(3)
	_, _ = r.PopFront()
	_ = r.Put(4)

	seq := r.All()
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, []int{2, 3, 4}) || !slices.Equal(first, second) {
		t.Fatalf("first=%v second=%v; want [2 3 4] twice", first, second)
	}

	var seen []int
	for v := range seq {
		seen = append(seen, v)
		if v == 3 {
			break
		}
	}
	if !slices.Equal(seen, []int{2, 3}) || r.Len() != 3 {
		t.Fatalf("seen=%v len=%d", seen, r.Len())
	}
}

func TestWriteIsAllOrNothing(t *testing.T) {
	r := newTestRing[byte](t, 4)
	if n, err := r.Write([]byte("abc")); err != nil || n != 3 {
		t.Fatalf("Write=%d,%v; want 3,nil", n, err)
	}
	if n, err := r.Write([]byte("de")); !errors.Is(err, ErrBufferFull) || n != 0 {
		t.Fatalf("Write=%d,%v; want 0,ErrBufferFull", n, err)
	}
	if r.Len() != 3 || r.Free() != 1 {
		t.Fatalf("len=%d free=%d; want 3,1", r.Len(), r.Free())
	}

	p := make([]byte, 8)
	if n := r.Read(p); n != 3 || string(p[:n]) != "abc" {
		t.Fatalf("Read=%d %q; want 3 \"abc\"", n, p[:n])
	}
	if n := r.Read(p); n != 0 {
		t.Fatalf("Read on empty=%d; want 0", n)
	}
}

func TestRandomOperationsMatchModel(t *testing.T) {
	const capacity = 7
	rng := rand.New(rand.NewSource(1))
	r := newTestRing[int](t, capacity)
	var model []int

	for i := 0; i < 5000; i++ {
		switch op := rng.Intn(6); op {
		case 0, 1:
			err := r.Put(i)
			if len(model) == capacity {
				if !errors.Is(err, ErrBufferFull) {
					t.Fatalf("step %d: Put on full err=%v", i, err)
				}
			} else {
				if err != nil {
					t.Fatalf("step %d: Put: %v", i, err)
				}
				model = append(model, i)
			}
		case 2:
			v, err := r.PopFront()
			if len(model) == 0 {
				if !errors.Is(err, ErrBufferEmpty) {
					t.Fatalf("step %d: PopFront on empty err=%v", i, err)
				}
			} else if err != nil || v != model[0] {
				t.Fatalf("step %d: PopFront=%d,%v; want %d", i, v, err, model[0])
			} else {
				model = model[1:]
			}
		case 3:
			v, err := r.PopBack()
			if len(model) == 0 {
				if !errors.Is(err, ErrBufferEmpty) {
					t.Fatalf("step %d: PopBack on empty err=%v", i, err)
				}
			} else if err != nil || v != model[len(model)-1] {
				t.Fatalf("step %d: PopBack=%d,%v; want %d", i, v, err, model[len(model)-1])
			} else {
				model = model[:len(model)-1]
			}
		case 4:
			probe := i - rng.Intn(20)
			if got, want := r.Contains(probe), slices.Contains(model, probe); got != want {
				t.Fatalf("step %d: Contains(%d)=%v; want %v", i, probe, got, want)
			}
		case 5:
			if rng.Intn(50) == 0 {
				r.Clear()
				model = model[:0]
			}
		}

		if r.Len() < 0 || r.Len() > r.Cap() || r.Len() != len(model) {
			t.Fatalf("step %d: len=%d cap=%d model=%d", i, r.Len(), r.Cap(), len(model))
		}
		if got := slices.Collect(r.All()); !slices.Equal(got, model) && !(len(got) == 0 && len(model) == 0) {
			t.Fatalf("step %d: contents %v; want %v", i, got, model)
		}
	}
}
