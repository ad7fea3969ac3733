package airspy

import (
	"fmt"
	"sync"
	"time"
)

// MockBackend stands in for the Airspy Mini driver in tests and probe
// programs. It delivers a scripted sequence of blocks from its own goroutine,
// mimicking the driver's callback behaviour, and remembers the last
// StreamRequest for inspection.
type MockBackend struct {
	// Interval inserts a pause between delivered blocks; zero delivers
	// back to back.
	Interval time.Duration

	mu        sync.Mutex
	blocks    [][]complex64
	lastReq   StreamRequest
	streaming bool
	quit      chan struct{}
	done      chan struct{}
}

// NewMockBackend builds a backend that will deliver the given blocks in order
// once streaming starts, then idle until StopStream.
func NewMockBackend(blocks [][]complex64) *MockBackend {
	return &MockBackend{blocks: blocks}
}

// StartStream records the request and begins delivering the scripted blocks.
func (m *MockBackend) StartStream(req StreamRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streaming {
		return fmt.Errorf("mock backend is already streaming")
	}
	if req.Deliver == nil {
		return fmt.Errorf("mock backend needs a delivery callback")
	}

	m.lastReq = req
	m.quit = make(chan struct{})
	m.done = make(chan struct{})
	m.streaming = true
	go m.deliver(req, m.blocks, m.quit, m.done)
	return nil
}

// StopStream halts delivery and waits for the delivery goroutine to exit.
func (m *MockBackend) StopStream() error {
	m.mu.Lock()
	if !m.streaming {
		m.mu.Unlock()
		return nil
	}
	close(m.quit)
	done := m.done
	m.streaming = false
	m.mu.Unlock()

	<-done
	return nil
}

// LastRequest returns the StreamRequest from the most recent StartStream.
func (m *MockBackend) LastRequest() StreamRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

func (m *MockBackend) deliver(req StreamRequest, blocks [][]complex64, quit, done chan struct{}) {
	defer close(done)
	for _, blk := range blocks {
		select {
		case <-quit:
			return
		default:
		}
		req.Deliver(blk)

		if m.Interval > 0 {
			select {
			case <-quit:
				return
			case <-time.After(m.Interval):
			}
		}
	}
	// Script exhausted: idle like a quiet device until StopStream.
	<-quit
}
