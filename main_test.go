package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rjboer/GoAirspy/airspy"
)

func writeTestCapture(t *testing.T, samples int) string {
	t.Helper()
	data := make([]complex64, samples)
	for i := range data {
		data[i] = complex(float32(i), -float32(i))
	}
	path := filepath.Join(t.TempDir(), "capture.iq")
	if err := os.WriteFile(path, airspy.EncodeIQ(data), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

func TestRunReadsCaptureFromFlag(t *testing.T) {
	path := writeTestCapture(t, 64)
	out := &strings.Builder{}

	err := run([]string{"--file", path, "--count", "64"}, out, func(string) string { return "" })
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "read 64 IQ samples") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunFallsBackToEnv(t *testing.T) {
	path := writeTestCapture(t, 16)
	out := &strings.Builder{}
	getenv := func(key string) string {
		if key == "GOAIRSPY_FILE" {
			return path
		}
		return ""
	}

	if err := run([]string{"--count", "16"}, out, getenv); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "read 16 IQ samples") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunRequiresCapturePath(t *testing.T) {
	err := run(nil, &strings.Builder{}, func(string) string { return "" })
	if err == nil || !strings.Contains(err.Error(), "no capture file") {
		t.Fatalf("expected missing-file error, got %v", err)
	}
}
