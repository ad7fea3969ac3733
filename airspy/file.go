package airspy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rjboer/GoAirspy/internal/logging"
)

// DefaultChunkSamples is the number of IQ samples read from the source file
// per iteration when the caller does not choose a chunk size.
const DefaultChunkSamples = 131_072

// FileReaderConfig describes a recorded IQ capture to stream from. The file
// holds interleaved float32 little-endian pairs (see DecodeIQ). With Loop set
// the file is reopened and replayed when a pass reaches the end.
type FileReaderConfig struct {
	Path         string
	ChunkSamples int // 0 selects DefaultChunkSamples
	Loop         bool
}

// FileReader streams IQ samples from a capture file into a Buffer on a
// dedicated goroutine. Unlike the device path it pushes blocking: recorded
// data is never dropped, the file is simply consumed at the pace the
// consumers free space.
//
// An error inside the loop is never raised on the loop's own goroutine; it is
// recorded and returned from the next Stop or Join call.
type FileReader struct {
	cfg FileReaderConfig
	buf *Buffer
	log logging.Logger

	mu      sync.Mutex
	running bool
	eof     bool
	err     error
	quit    chan struct{}
	done    chan struct{}
}

// NewFileReader validates the configuration and builds a FileReader. The
// source file must already exist. A nil buf means a fresh buffer of
// DefaultBufferCapacity samples. The chunk size must fit the buffer so that
// a single Clear always lets a parked push finish (see Stop).
func NewFileReader(cfg FileReaderConfig, buf *Buffer) (*FileReader, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: source file path is required", ErrConfig)
	}
	info, err := os.Stat(cfg.Path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: source file %s does not exist", ErrConfig, cfg.Path)
	}
	if cfg.ChunkSamples == 0 {
		cfg.ChunkSamples = DefaultChunkSamples
	}
	if cfg.ChunkSamples < 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, cfg.ChunkSamples)
	}
	if buf == nil {
		if buf, err = NewBuffer(DefaultBufferCapacity); err != nil {
			return nil, err
		}
	}
	if cfg.ChunkSamples > buf.Capacity() {
		return nil, fmt.Errorf("%w: chunk of %d samples exceeds buffer capacity %d",
			ErrConfig, cfg.ChunkSamples, buf.Capacity())
	}

	return &FileReader{
		cfg: cfg,
		buf: buf,
		log: logging.Default().With(
			logging.F("subsystem", "iqfile"),
			logging.F("path", cfg.Path),
		),
	}, nil
}

// Start launches the reading goroutine. Calling Start while running is a
// no-op.
func (r *FileReader) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	r.quit = make(chan struct{})
	r.done = make(chan struct{})
	r.eof = false
	r.running = true
	go r.run(r.quit, r.done)
	r.log.Info("file streaming started", logging.F("loop", r.cfg.Loop))
}

// Stop signals the reading goroutine, waits for it to exit, and returns any
// error recorded during streaming, clearing the slot. Calling Stop while idle
// just drains the slot.
//
// A goroutine parked in a blocking push cannot see the quit signal, so Stop
// keeps clearing the buffer until the goroutine confirms exit. Each clear
// frees at least a full chunk of space, which lets the parked push complete
// its remainder in one lock hold and return to the quit check.
func (r *FileReader) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return r.takeErr()
	}
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
	done := r.done
	r.mu.Unlock()

	for {
		select {
		case <-done:
			return r.takeErr()
		case <-time.After(10 * time.Millisecond):
			r.buf.Clear()
		}
	}
}

// Join waits for the goroutine to finish on its own (end of a non-looping
// file, or a recorded error) and returns that error, clearing the slot.
// Join never clears the buffer, so samples read before a failure stay
// available to consumers.
func (r *FileReader) Join() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
	return r.takeErr()
}

// Read removes up to count samples from the owned buffer, delegating to
// Buffer.Pop.
func (r *FileReader) Read(count int, block bool) ([]complex64, error) {
	return r.buf.Pop(count, block)
}

// Buffer exposes the owned buffer so additional consumers can share it.
func (r *FileReader) Buffer() *Buffer { return r.buf }

// EOF reports whether the reading goroutine has exited, whether by reaching
// the end of a non-looping file, by Stop, or by a recorded error.
func (r *FileReader) EOF() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eof
}

// Running reports whether the reading goroutine is active.
func (r *FileReader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *FileReader) run(quit, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.eof = true
		r.mu.Unlock()
		r.log.Info("file streaming finished")
		close(done)
	}()

	for {
		select {
		case <-quit:
			return
		default:
		}

		if err := r.streamFile(quit); err != nil {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			r.log.Warn("file streaming failed", logging.F("error", err))
			return
		}
		if !r.cfg.Loop {
			return
		}
	}
}

// streamFile performs one pass over the source file, pushing each decoded
// chunk in blocking mode. Returning nil means the pass reached end of file
// or was told to quit.
func (r *FileReader) streamFile(quit chan struct{}) error {
	f, err := os.Open(r.cfg.Path)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	raw := make([]byte, r.cfg.ChunkSamples*BytesPerSample)
	for {
		select {
		case <-quit:
			return nil
		default:
		}

		n, err := io.ReadFull(f, raw)
		if n == 0 {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read capture: %w", err)
		}

		// Whole pairs are delivered even when the tail of the file is
		// truncated, so everything valid stays readable by consumers.
		if whole := n - n%BytesPerSample; whole > 0 {
			samples, derr := DecodeIQ(raw[:whole])
			if derr != nil {
				return fmt.Errorf("capture %s: %w", r.cfg.Path, derr)
			}
			r.buf.Push(samples, true)
		}
		if n%BytesPerSample != 0 {
			return fmt.Errorf("capture %s: %w: file ends mid IQ pair", r.cfg.Path, ErrCorruptData)
		}

		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
	}
}

func (r *FileReader) takeErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.err
	r.err = nil
	return err
}
