package airspy

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BytesPerSample is the on-disk size of one IQ sample: two little-endian
// float32 components.
const BytesPerSample = 8

// DecodeIQ converts raw interleaved float32 little-endian IQ bytes into
// complex64 samples. This is the Airspy Mini float output format. A length
// that is not a whole number of IQ pairs means the stream was cut mid-sample
// and is rejected as corrupt.
func DecodeIQ(buf []byte) ([]complex64, error) {
	if len(buf)%BytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of IQ pairs", ErrCorruptData, len(buf))
	}

	samples := make([]complex64, len(buf)/BytesPerSample)
	for n := range samples {
		off := n * BytesPerSample
		i := math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
		q := math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4 : off+8]))
		samples[n] = complex(i, q)
	}
	return samples, nil
}

// EncodeIQ converts complex64 samples into interleaved float32 little-endian
// bytes, the inverse of DecodeIQ. Used for writing capture files.
func EncodeIQ(samples []complex64) []byte {
	buf := make([]byte, len(samples)*BytesPerSample)
	for n, s := range samples {
		off := n * BytesPerSample
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(imag(s)))
	}
	return buf
}
