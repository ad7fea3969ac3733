package airspy

// StreamRequest carries everything a backend needs to begin streaming.
// Deliver is invoked from the backend's own goroutine with each newly
// captured block until StopStream is called.
type StreamRequest struct {
	SampleRate      int
	CenterFrequency float64
	Gain            GainProfile
	HighAccuracy    bool
	Deliver         func(samples []complex64)
}

// Backend is the minimal driver surface needed to talk to an Airspy Mini
// device. Implementations own the USB transfer machinery; the reader only
// ever sees decoded sample blocks through the Deliver callback.
type Backend interface {
	StartStream(req StreamRequest) error
	StopStream() error
}
