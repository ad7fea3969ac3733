package airspy

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// seq builds n distinguishable samples starting at value start.
func seq(start, n int) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		v := float32(start + i)
		out[i] = complex(v, v+0.5)
	}
	return out
}

func TestNewBufferRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -1000} {
		if _, err := NewBuffer(capacity); err == nil {
			t.Errorf("NewBuffer(%d) should fail", capacity)
		}
	}
}

func TestBlockingPushReturnsFullLength(t *testing.T) {
	buf, err := NewBuffer(16)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}

	data := seq(0, 10)
	if n := buf.Push(data, true); n != len(data) {
		t.Fatalf("blocking push wrote %d of %d", n, len(data))
	}
	if buf.Len() != 10 {
		t.Fatalf("Len after push = %d, want 10", buf.Len())
	}
	if buf.Capacity() != 16 {
		t.Fatalf("Capacity = %d, want 16", buf.Capacity())
	}
}

func TestRoundTripAcrossWraparound(t *testing.T) {
	buf, err := NewBuffer(4)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}

	first := seq(0, 3)
	second := seq(100, 3)

	if n := buf.Push(first, true); n != 3 {
		t.Fatalf("first push wrote %d", n)
	}
	got, err := buf.Pop(2, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if len(got) != 2 || got[0] != first[0] || got[1] != first[1] {
		t.Fatalf("first pop returned %v", got)
	}

	// tail wraps past the end of storage here
	if n := buf.Push(second, true); n != 3 {
		t.Fatalf("second push wrote %d", n)
	}

	got, err = buf.Pop(4, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	want := []complex64{first[2], second[0], second[1], second[2]}
	if len(got) != 4 {
		t.Fatalf("pop returned %d samples, want 4", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("Len after drain = %d", buf.Len())
	}
}

func TestNonBlockingPopEmptyReturnsImmediately(t *testing.T) {
	buf, _ := NewBuffer(8)

	start := time.Now()
	got, err := buf.Pop(5, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("pop on empty buffer returned %d samples", len(got))
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("non-blocking pop took %v", elapsed)
	}
}

func TestNonBlockingPushReportsShortfall(t *testing.T) {
	buf, _ := NewBuffer(4)

	data := seq(0, 7)
	written := buf.Push(data, false)
	if written != 4 {
		t.Fatalf("non-blocking push wrote %d, want 4", written)
	}
	if dropped := len(data) - written; dropped != 3 {
		t.Fatalf("shortfall = %d, want 3", dropped)
	}

	// what was stored is the head of the input, in order
	got, err := buf.Pop(4, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	for i := range got {
		if got[i] != data[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], data[i])
		}
	}

	// a full buffer accepts nothing without blocking
	buf.Push(seq(0, 4), false)
	if n := buf.Push(seq(50, 2), false); n != 0 {
		t.Fatalf("push into full buffer wrote %d", n)
	}
}

func TestPopRejectsNonPositiveCount(t *testing.T) {
	buf, _ := NewBuffer(8)
	for _, count := range []int{0, -5} {
		if _, err := buf.Pop(count, false); err == nil {
			t.Errorf("Pop(%d) should fail", count)
		}
	}
}

func TestNonBlockingPopReturnsPartial(t *testing.T) {
	buf, _ := NewBuffer(8)
	data := seq(0, 3)
	buf.Push(data, true)

	got, err := buf.Pop(10, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("pop returned %d samples, want 3", len(got))
	}
	for i := range got {
		if got[i] != data[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestBlockingPopWaitsForConcurrentPush(t *testing.T) {
	buf, _ := NewBuffer(64)
	data := seq(42, 8)

	result := make(chan []complex64, 1)
	go func() {
		got, err := buf.Pop(8, true)
		if err != nil {
			t.Errorf("pop failed: %v", err)
		}
		result <- got
	}()

	// give the consumer a moment to park before supplying data
	time.Sleep(20 * time.Millisecond)
	buf.Push(data, true)

	select {
	case got := <-result:
		if len(got) != 8 {
			t.Fatalf("pop returned %d samples", len(got))
		}
		for i := range got {
			if got[i] != data[i] {
				t.Errorf("sample %d = %v, want %v", i, got[i], data[i])
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocking pop never completed")
	}
}

func TestBlockingPushWaitsForSpace(t *testing.T) {
	buf, _ := NewBuffer(4)
	buf.Push(seq(0, 4), true)

	pushed := make(chan int, 1)
	go func() {
		pushed <- buf.Push(seq(100, 3), true)
	}()

	select {
	case n := <-pushed:
		t.Fatalf("push into full buffer returned early with %d", n)
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := buf.Pop(3, false); err != nil {
		t.Fatalf("pop failed: %v", err)
	}

	select {
	case n := <-pushed:
		if n != 3 {
			t.Fatalf("push wrote %d, want 3", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocking push never completed")
	}
}

func TestClearUnblocksParkedWriter(t *testing.T) {
	buf, _ := NewBuffer(2)
	buf.Push(seq(0, 2), true)

	replacement := seq(200, 2)
	pushed := make(chan int, 1)
	go func() {
		pushed <- buf.Push(replacement, true)
	}()

	time.Sleep(20 * time.Millisecond)
	buf.Clear()

	select {
	case n := <-pushed:
		if n != 2 {
			t.Fatalf("push wrote %d, want 2", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("clear did not unblock the writer")
	}

	got, err := buf.Pop(2, false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	for i := range got {
		if got[i] != replacement[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], replacement[i])
		}
	}
}

func TestConcurrentConsumersNeverOverlap(t *testing.T) {
	const total = 1000
	const perPop = 50

	buf, _ := NewBuffer(128)

	var mu sync.Mutex
	received := make([]complex64, 0, total)
	var wg sync.WaitGroup
	for c := 0; c < 2; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < total/perPop/2; i++ {
				got, err := buf.Pop(perPop, true)
				if err != nil {
					t.Errorf("pop failed: %v", err)
					return
				}
				mu.Lock()
				received = append(received, got...)
				mu.Unlock()
			}
		}()
	}

	buf.Push(seq(0, total), true)
	wg.Wait()

	if len(received) != total {
		t.Fatalf("consumers received %d samples, want %d", len(received), total)
	}
	sort.Slice(received, func(i, j int) bool { return real(received[i]) < real(received[j]) })
	for i, s := range received {
		if real(s) != float32(i) {
			t.Fatalf("sample %d missing or duplicated: got %v", i, s)
		}
	}
}
