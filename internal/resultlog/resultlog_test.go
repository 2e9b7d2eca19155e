package resultlog

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecords() []Record {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []Record{
		{
			Time: ts, Codec: "jxl:cjxl:d1", Image: "kodim01.png",
			Width: 768, Height: 512, CompressedBytes: 53211, BitsPerPixel: 1.0826,
			CompressSeconds: []float64{0.21, 0.19}, DecompressSeconds: []float64{0.05, 0.04},
			MaxAbsDiff: 0.03, PSNR: 41.2,
		},
		{
			Time: ts, Codec: "png:optipng:cp", Image: "kodim02.png",
			Width: 768, Height: 512, CompressedBytes: 610000, BitsPerPixel: 12.41,
			PSNR: math.Inf(1),
		},
		{
			Time: ts, Codec: "jxl:cjxl:d1", Image: "broken.png",
			Error: "running cjxl: runner: command failed: cjxl exited with status 1",
		},
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	for _, ext := range []string{".jsonl", ".jsonl.zst", ".jsonl.gz", ".jsonl.lz4", ".jsonl.br", ".jsonl.sz"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "results"+ext)

			w, err := Create(path)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for _, r := range sampleRecords() {
				if err := w.Write(r); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if w.Count() != 3 {
				t.Errorf("Count() = %d, want 3", w.Count())
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("ReadFile() returned %d records, want 3", len(got))
			}
			if got[0].CompressedBytes != 53211 || got[0].Codec != "jxl:cjxl:d1" {
				t.Errorf("record 0 = %+v", got[0])
			}
			if len(got[0].CompressSeconds) != 2 {
				t.Errorf("CompressSeconds = %v", got[0].CompressSeconds)
			}
			if got[1].PSNR != 0 || !got[1].Lossless() {
				t.Errorf("lossless record = %+v", got[1])
			}
			if got[2].Lossless() || got[2].Error == "" {
				t.Errorf("failed record = %+v", got[2])
			}
			if !got[0].Time.Equal(sampleRecords()[0].Time) {
				t.Errorf("Time = %v", got[0].Time)
			}
		})
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		path    string
		ext     string
		wantErr bool
	}{
		{"out.jsonl", "", false},
		{"/tmp/out.jsonl.zst", "zst", false},
		{"out.jsonl.gz", "gz", false},
		{"out.jsonl.lz4", "lz4", false},
		{"out.jsonl.br", "br", false},
		{"out.jsonl.sz", "sz", false},
		{"out.json", "", true},
		{"out.jsonl.xz", "", true},
		{"out.zst", "", true},
		{"out", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, err := CodecFor(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownExtension) {
					t.Errorf("CodecFor() error = %v, want ErrUnknownExtension", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CodecFor() error = %v", err)
			}
			if c.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", c.Extension(), tt.ext)
			}
		})
	}
}

func TestReadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := w.zw.Write([]byte("{not json\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile() expected error for corrupt log")
	}
}
