package main

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/extcodec/benchmark/roundtrip"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/resultlog"
	"github.com/discochess/extcodec/internal/stats"
	promstats "github.com/discochess/extcodec/internal/stats/prometheus"
	"github.com/discochess/extcodec/internal/stats/zapstats"
)

var runCmd = &cobra.Command{
	Use:   "run [images...]",
	Short: "Benchmark codecs on a set of images",
	Long: `Run every --codec over every image, repeating each round trip
--iterations times, and print a report of size, speed and distortion.

Results can also be saved as JSON lines with --results; the file extension
selects compression (.jsonl, .jsonl.zst, .jsonl.gz, .jsonl.lz4, .jsonl.br,
.jsonl.sz). Saved results can be re-reported with "extcodec report".

Examples:
  extcodec run --codec jxl:cjxl:djxl:-d:1 --iterations 5 kodim*.png
  extcodec run --codec png:optipng-wrapper:cp --results run.jsonl.zst --format markdown *.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runCodecs      []string
	runIterations  int
	runResults     string
	runMetricsAddr string
	runReport      reportFlags
)

func init() {
	runCmd.Flags().StringArrayVar(&runCodecs, "codec", nil, "codec spec EXT:COMPRESSOR:DECOMPRESSOR[:ARG...] (repeatable)")
	runCmd.Flags().IntVarP(&runIterations, "iterations", "n", 1, "round trips per image")
	runCmd.Flags().StringVar(&runResults, "results", "", "write results as JSON lines to this file")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	runReport.register(runCmd)
	runCmd.MarkFlagRequired("codec")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	var collector stats.Collector = zapstats.NewAtLevel(logger, zapcore.DebugLevel)
	if runMetricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector = promstats.New(registry)
		srv := &http.Server{
			Addr:    runMetricsAddr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", runMetricsAddr))
	}

	p := pool.New(workers)

	images := make([]roundtrip.Image, 0, len(args))
	for _, path := range args {
		img, err := loadImage(ctx, path, logger, p)
		if err != nil {
			return err
		}
		images = append(images, roundtrip.Image{Name: filepath.Base(path), Image: img})
	}

	codecs := make([]roundtrip.Codec, 0, len(runCodecs))
	for _, spec := range runCodecs {
		c, err := newCodec(spec, logger, collector)
		if err != nil {
			return err
		}
		codecs = append(codecs, c)
	}

	var log *resultlog.Writer
	if runResults != "" {
		log, err = resultlog.Create(runResults)
		if err != nil {
			return err
		}
	}

	var records []resultlog.Record
	h := roundtrip.NewHarness(runIterations, p, logger, codecs...)
	err = h.Run(ctx, images, func(r resultlog.Record) error {
		records = append(records, r)
		if log != nil {
			return log.Write(r)
		}
		return nil
	})
	if log != nil {
		if cerr := log.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	return runReport.write(cmd.OutOrStdout(), records)
}
