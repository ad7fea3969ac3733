// Generates a float32 LE IQ capture file containing a complex tone, for
// exercising the file reader and the probe programs without hardware.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/rjboer/GoAirspy/airspy"
)

func main() {
	out := flag.String("out", "testsignal.iq", "output capture file")
	samples := flag.Int("samples", 3_000_000, "number of IQ samples to write")
	tone := flag.Float64("tone", 10e3, "tone frequency in Hz")
	rate := flag.Float64("rate", float64(airspy.SupportedSampleRate), "sample rate in Hz")
	amplitude := flag.Float64("amp", 0.8, "tone amplitude (0-1)")
	flag.Parse()

	if *samples <= 0 {
		log.Fatal("samples must be positive")
	}

	data := make([]complex64, *samples)
	step := 2 * math.Pi * *tone / *rate
	for i := range data {
		phase := step * float64(i)
		data[i] = complex(
			float32(*amplitude*math.Cos(phase)),
			float32(*amplitude*math.Sin(phase)),
		)
	}

	if err := os.WriteFile(*out, airspy.EncodeIQ(data), 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %d IQ samples (%d bytes) to %s", *samples, *samples*airspy.BytesPerSample, *out)
}
