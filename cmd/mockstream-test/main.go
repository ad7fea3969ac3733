// Probe program: run a device Reader against the mock backend with a small
// buffer and a deliberately slow consumer to demonstrate non-blocking
// overflow accounting.
package main

import (
	"flag"
	"log"
	"math"
	"time"

	"github.com/rjboer/GoAirspy/airspy"
)

func main() {
	frequency := flag.Float64("freq", 100e6, "center frequency in Hz")
	preset := flag.Int("linearity", 10, "linearity gain preset (0-21)")
	blocks := flag.Int("blocks", 50, "number of scripted blocks")
	blockSize := flag.Int("block-size", 8192, "samples per delivered block")
	capacity := flag.Int("capacity", 16384, "buffer capacity in samples")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("====================================================")
	log.Println(" GoAirspy Mock Streaming Test")
	log.Println("====================================================")

	gain, err := airspy.LinearityGain(*preset)
	if err != nil {
		log.Fatalf("bad gain preset: %v", err)
	}
	lna, mixer, vga := gain.StageGains()
	log.Printf("[INFO] gain %v resolves to lna=%d mixer=%d vga=%d", gain.Mode(), lna, mixer, vga)

	log.Println("[STEP 1] Scripting backend blocks...")
	backend := airspy.NewMockBackend(toneBlocks(*blocks, *blockSize))
	backend.Interval = 2 * time.Millisecond

	buf, err := airspy.NewBuffer(*capacity)
	if err != nil {
		log.Fatalf("NewBuffer failed: %v", err)
	}
	reader, err := airspy.NewReader(airspy.StreamConfig{
		SampleRate:      airspy.SupportedSampleRate,
		CenterFrequency: *frequency,
		Gain:            gain,
	}, backend, buf)
	if err != nil {
		log.Fatalf("NewReader failed: %v", err)
	}

	log.Println("[STEP 2] Streaming with a slow consumer...")
	if err := reader.Start(); err != nil {
		log.Fatalf("Start failed: %v", err)
	}

	total := 0
	for i := 0; i < *blocks; i++ {
		samples, err := reader.Read(*blockSize/4, false)
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}
		total += len(samples)
		time.Sleep(5 * time.Millisecond) // slower than the backend delivers
	}

	log.Println("[CLEANUP] Stopping reader...")
	if err := reader.Stop(); err != nil {
		log.Fatalf("Stop failed: %v", err)
	}

	log.Printf("[INFO] consumed=%d buffered=%d dropped=%d",
		total, reader.Buffer().Len(), reader.DroppedSamples())
	log.Println("[DONE]")
}

// toneBlocks synthesizes a unit-amplitude complex tone split into blocks.
func toneBlocks(blocks, blockSize int) [][]complex64 {
	const cycles = 0.01
	out := make([][]complex64, blocks)
	n := 0
	for b := range out {
		blk := make([]complex64, blockSize)
		for i := range blk {
			phase := 2 * math.Pi * cycles * float64(n)
			blk[i] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
			n++
		}
		out[b] = blk
	}
	return out
}
