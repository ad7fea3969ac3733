package airspy

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rjboer/GoAirspy/internal/logging"
)

// SupportedSampleRate is the only sample rate the reader accepts: the Airspy
// Mini's 3 MSPS high-accuracy float mode.
const SupportedSampleRate = 3_000_000

// DefaultBufferCapacity sizes the buffer a producer creates when the caller
// does not inject one: two-thirds of a second at 3 MSPS.
const DefaultBufferCapacity = 2_000_000

// StreamConfig carries the device parameters validated at Reader construction.
type StreamConfig struct {
	SampleRate      int
	CenterFrequency float64
	Gain            GainProfile
}

// Reader streams float32 IQ samples from an Airspy Mini backend into a
// Buffer. The backend delivers blocks on its own goroutine; each block is
// pushed without blocking, and any samples the full buffer cannot take are
// counted as dropped rather than stalling the USB callback path.
type Reader struct {
	cfg     StreamConfig
	backend Backend
	buf     *Buffer
	log     logging.Logger

	mu      sync.Mutex
	running bool
	dropped atomic.Uint64
}

// NewReader validates the configuration and builds a Reader. A nil buf means
// the reader owns a fresh buffer of DefaultBufferCapacity samples. All
// configuration failures surface here, never at Start.
func NewReader(cfg StreamConfig, backend Backend, buf *Buffer) (*Reader, error) {
	if cfg.SampleRate != SupportedSampleRate {
		return nil, fmt.Errorf("%w: only %d sps high-accuracy mode is supported, got %d",
			ErrConfig, SupportedSampleRate, cfg.SampleRate)
	}
	if cfg.CenterFrequency <= 0 {
		return nil, fmt.Errorf("%w: center frequency must be positive, got %g", ErrConfig, cfg.CenterFrequency)
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrConfig)
	}
	if buf == nil {
		var err error
		if buf, err = NewBuffer(DefaultBufferCapacity); err != nil {
			return nil, err
		}
	}

	return &Reader{
		cfg:     cfg,
		backend: backend,
		buf:     buf,
		log: logging.Default().With(
			logging.F("subsystem", "airspy"),
			logging.F("center_frequency_hz", cfg.CenterFrequency),
		),
	}, nil
}

// Start instructs the backend to begin streaming into this reader's buffer.
// Calling Start while running is a no-op.
func (r *Reader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	err := r.backend.StartStream(StreamRequest{
		SampleRate:      r.cfg.SampleRate,
		CenterFrequency: r.cfg.CenterFrequency,
		Gain:            r.cfg.Gain,
		HighAccuracy:    true,
		Deliver:         r.handleSamples,
	})
	if err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	r.running = true
	r.log.Info("device stream started", logging.F("sample_rate_hz", r.cfg.SampleRate))
	return nil
}

// Stop instructs the backend to stop streaming. Calling Stop while idle is a
// no-op. The drop counter survives Stop.
func (r *Reader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}

	err := r.backend.StopStream()
	r.running = false
	r.log.Info("device stream stopped", logging.F("dropped_samples", r.dropped.Load()))
	if err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	return nil
}

// Read removes up to count samples from the owned buffer, delegating to
// Buffer.Pop.
func (r *Reader) Read(count int, block bool) ([]complex64, error) {
	return r.buf.Pop(count, block)
}

// Buffer exposes the owned buffer so additional consumers can share it.
// Starting and stopping remain the constructor owner's job.
func (r *Reader) Buffer() *Buffer { return r.buf }

// DroppedSamples reports how many delivered samples the full buffer could
// not take. The counter is monotonically non-decreasing across the reader's
// lifetime; drops are a metric, not an error.
func (r *Reader) DroppedSamples() uint64 { return r.dropped.Load() }

// Running reports whether the backend is currently streaming.
func (r *Reader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// handleSamples is the backend delivery path. It must never block: overflow
// is converted into the drop counter instead of backpressure on the USB
// callback thread.
func (r *Reader) handleSamples(samples []complex64) {
	accepted := r.buf.Push(samples, false)
	if dropped := len(samples) - accepted; dropped > 0 {
		r.dropped.Add(uint64(dropped))
		r.log.Debug("buffer full, dropping samples",
			logging.F("dropped", dropped),
			logging.F("dropped_total", r.dropped.Load()))
	}
}
