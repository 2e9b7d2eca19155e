//go:build e2e

package extcodec_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/discochess/extcodec/internal/resultlog"
)

func TestE2E_CLIRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("Skipping: cp not found")
	}

	tmpDir := t.TempDir()
	imgPath := filepath.Join(tmpDir, "gradient.png")
	resultsPath := filepath.Join(tmpDir, "run.jsonl.zst")

	// Step 1: Write a source image.
	pixels := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			pixels.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 64, A: 255})
		}
	}
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatalf("Error creating image: %v", err)
	}
	if err := png.Encode(f, pixels); err != nil {
		t.Fatalf("Error encoding image: %v", err)
	}
	f.Close()

	// Step 2: Benchmark cp as a lossless codec through the CLI.
	t.Log("Running benchmark...")
	start := time.Now()
	cmd := exec.Command("go", "run", "./cmd/extcodec", "run",
		"--codec", "png:cp:cp",
		"--iterations", "3",
		"--results", resultsPath,
		"--format", "markdown",
		"--work-dir", tmpDir,
		imgPath,
	)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("Error running benchmark: %v", err)
	}
	t.Logf("   Finished in %v", time.Since(start))

	if !strings.Contains(string(out), "| png:cp |") {
		t.Errorf("report missing codec row:\n%s", out)
	}

	// Step 3: Check the saved results.
	records, err := resultlog.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("Error reading results: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Error != "" {
		t.Fatalf("round trip failed: %s", r.Error)
	}
	if !r.Lossless() {
		t.Errorf("cp round trip not lossless: max diff %f", r.MaxAbsDiff)
	}
	if len(r.CompressSeconds) != 3 || len(r.DecompressSeconds) != 3 {
		t.Errorf("got %d/%d timings, want 3/3", len(r.CompressSeconds), len(r.DecompressSeconds))
	}
}
