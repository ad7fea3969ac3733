package airspy

import (
	"fmt"
	"sync"
)

// Buffer is a fixed-capacity circular store of IQ samples shared between one
// producer and any number of consumers. Each sample is a complex64 whose real
// part carries I and whose imaginary part carries Q.
//
// All access is serialized by an internal monitor. Blocking operations wait
// with the classic "for !predicate { wait }" loop, so spurious wakeups and
// Clear-driven broadcasts are safe: progress is re-checked, never assumed.
type Buffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	storage []complex64
	head    int // next sample index to read
	tail    int // next slot to write
	size    int // buffered IQ samples
}

// NewBuffer allocates a buffer holding at most capacity IQ samples.
// The capacity is fixed for the lifetime of the buffer.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("buffer capacity must be positive, got %d", capacity)
	}
	b := &Buffer{storage: make([]complex64, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

// Capacity returns the maximum number of IQ samples the buffer can hold.
func (b *Buffer) Capacity() int { return len(b.storage) }

// Len returns the number of buffered IQ samples at this instant.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Push inserts samples into the buffer and returns how many were stored.
//
// With block=true it waits whenever the buffer is full and only returns once
// the entire slice has been written, so the result equals len(samples). With
// block=false it stores as many samples as currently fit, possibly zero, and
// returns immediately; the shortfall is the caller's to account for as
// dropped. Writes wrap at capacity and wake all waiting readers.
func (b *Buffer) Push(samples []complex64, block bool) int {
	total := len(samples)
	written := 0

	b.mu.Lock()
	defer b.mu.Unlock()

	for written < total {
		space := len(b.storage) - b.size
		if space == 0 {
			if !block {
				break
			}
			b.cond.Wait()
			continue
		}

		chunk := min(space, total-written)
		b.writeChunk(samples[written : written+chunk])
		written += chunk
		b.size += chunk
		b.cond.Broadcast()
	}

	return written
}

// Pop removes up to count samples from the buffer.
//
// With block=true it waits until count samples are buffered and returns
// exactly count. With block=false it returns min(count, Len()) samples
// immediately, possibly an empty slice. Reads wrap at capacity and wake all
// waiting writers. A non-positive count is rejected.
func (b *Buffer) Pop(count int, block bool) ([]complex64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("pop count must be positive, got %d", count)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	target := count
	for b.size < target {
		if !block {
			target = min(target, b.size)
			break
		}
		b.cond.Wait()
	}

	if target == 0 {
		return []complex64{}, nil
	}

	out := b.readChunk(target)
	b.cond.Broadcast()
	return out, nil
}

// Clear discards all buffered samples and wakes every waiter. Blocked readers
// and writers re-observe an empty buffer and either proceed or wait again
// according to their mode.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.head = 0
	b.tail = 0
	b.size = 0
	b.cond.Broadcast()
	b.mu.Unlock()
}

// writeChunk stores data starting at tail, splitting at the wrap point.
// Caller holds the lock and has verified the data fits.
func (b *Buffer) writeChunk(data []complex64) {
	first := min(len(data), len(b.storage)-b.tail)
	copy(b.storage[b.tail:], data[:first])
	if remaining := len(data) - first; remaining > 0 {
		copy(b.storage, data[first:])
	}
	b.tail = (b.tail + len(data)) % len(b.storage)
}

// readChunk removes count samples starting at head, splitting at the wrap
// point. Caller holds the lock and has verified count <= size.
func (b *Buffer) readChunk(count int) []complex64 {
	out := make([]complex64, count)
	first := min(count, len(b.storage)-b.head)
	copy(out, b.storage[b.head:b.head+first])
	if remaining := count - first; remaining > 0 {
		copy(out[first:], b.storage[:remaining])
	}
	b.head = (b.head + count) % len(b.storage)
	b.size -= count
	return out
}
