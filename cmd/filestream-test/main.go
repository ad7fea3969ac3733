// Probe program: stream a recorded IQ capture through a FileReader while a
// telemetry hub watches the buffer, optionally serving diagnostics and
// Prometheus metrics over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/rjboer/GoAirspy/airspy"
	"github.com/rjboer/GoAirspy/internal/logging"
	"github.com/rjboer/GoAirspy/internal/telemetry"
)

func main() {
	file := flag.String("file", "", "IQ capture file (interleaved float32 LE pairs)")
	chunk := flag.Int("chunk", airspy.DefaultChunkSamples, "samples read from the file per iteration")
	loop := flag.Bool("loop", false, "replay the file when a pass ends")
	count := flag.Int("count", 1<<20, "total IQ samples to consume before exiting")
	blockSize := flag.Int("block", 65536, "samples consumed per read")
	telemetryAddr := flag.String("telemetry", "", "serve diagnostics and /metrics on this address (empty disables)")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("bad log level: %v", err)
	}
	logging.SetDefault(logging.New(level, logging.Text, os.Stderr))

	if *file == "" {
		log.Fatal("a capture file is required: --file capture.iq")
	}

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("====================================================")
	log.Println(" GoAirspy File Streaming Test")
	log.Println("====================================================")

	log.Println("[STEP 1] Creating file reader...")
	reader, err := airspy.NewFileReader(airspy.FileReaderConfig{
		Path:         *file,
		ChunkSamples: *chunk,
		Loop:         *loop,
	}, nil)
	if err != nil {
		log.Fatalf("NewFileReader failed: %v", err)
	}

	log.Println("[STEP 2] Wiring telemetry...")
	hub := telemetry.NewHub(500, logging.Default())
	metrics := telemetry.NewCaptureMetrics()
	hub.AttachMetrics(metrics)
	stopWatch := hub.Watch(250*time.Millisecond, func() telemetry.CaptureStats {
		return telemetry.CaptureStats{
			Source:          "file",
			BufferedSamples: reader.Buffer().Len(),
			BufferCapacity:  reader.Buffer().Capacity(),
			EOF:             reader.EOF(),
		}
	})
	defer stopWatch()

	if *telemetryAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv := telemetry.NewWebServer(*telemetryAddr, hub, metrics)
		go srv.Start(ctx)
		log.Printf("[INFO] telemetry on http://%s/api/diagnostics and /metrics", *telemetryAddr)
	}

	log.Println("[STEP 3] Streaming...")
	reader.Start()
	start := time.Now()

	total := 0
	for total < *count {
		want := min(*blockSize, *count-total)
		samples, err := reader.Read(want, false)
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}
		total += len(samples)
		if len(samples) == 0 {
			if reader.EOF() && reader.Buffer().Len() == 0 {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	elapsed := time.Since(start)
	log.Printf("[INFO] consumed %d IQ samples in %v (%.2f MSPS)",
		total, elapsed, float64(total)/elapsed.Seconds()/1e6)

	log.Println("[CLEANUP] Stopping reader...")
	if err := reader.Stop(); err != nil {
		log.Fatalf("Stop reported: %v", err)
	}
	log.Println("[DONE]")
}
