package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/rjboer/GoAirspy/airspy"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		log.Fatal(err)
	}
}

// run streams a recorded IQ capture and reports how many samples it read.
// The capture path comes from the --file flag or the GOAIRSPY_FILE
// environment variable.
func run(args []string, out io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("goairspy", flag.ContinueOnError)
	file := fs.String("file", "", "IQ capture file (interleaved float32 LE pairs)")
	count := fs.Int("count", 4096, "IQ samples to read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *file
	if path == "" {
		path = getenv("GOAIRSPY_FILE")
	}
	if path == "" {
		return fmt.Errorf("no capture file given: use --file or GOAIRSPY_FILE")
	}

	reader, err := airspy.NewFileReader(airspy.FileReaderConfig{Path: path}, nil)
	if err != nil {
		return err
	}
	reader.Start()

	total := 0
	for total < *count {
		got, err := reader.Read(*count-total, false)
		if err != nil {
			return err
		}
		total += len(got)
		if len(got) == 0 {
			if reader.EOF() && reader.Buffer().Len() == 0 {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	fmt.Fprintf(out, "read %d IQ samples from %s\n", total, path)
	return reader.Stop()
}
