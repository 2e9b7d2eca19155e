package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/extcodec/benchmark/analysis"
	"github.com/discochess/extcodec/benchmark/reporting"
	"github.com/discochess/extcodec/internal/resultlog"
)

const (
	bootstrapIterations = 1000
	confidence          = 0.95
)

var reportCmd = &cobra.Command{
	Use:   "report RESULTS",
	Short: "Report on results saved by run --results",
	Long: `Summarize a result log written by "extcodec run --results" and compare
each codec's timings against a baseline.

Examples:
  extcodec report run.jsonl.zst
  extcodec report --format markdown --baseline jxl:cjxl:d1 --output REPORT.md run.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runReportCmd,
}

var reportOpts reportFlags

func init() {
	reportOpts.register(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	records, err := resultlog.ReadFile(args[0])
	if err != nil {
		return err
	}
	return reportOpts.write(cmd.OutOrStdout(), records)
}

// reportFlags are the report options shared by run and report.
type reportFlags struct {
	format   string
	output   string
	baseline string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", reporting.FormatText, "report format: text or markdown")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&f.baseline, "baseline", "", "codec the others are compared against (default: first codec)")
}

func (f *reportFlags) write(stdout io.Writer, records []resultlog.Record) (err error) {
	w := stdout
	if f.output != "" {
		file, cerr := os.Create(f.output)
		if cerr != nil {
			return fmt.Errorf("creating report: %w", cerr)
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		w = file
	}

	r, err := reporting.New(f.format, w)
	if err != nil {
		return err
	}

	groups := analysis.GroupByCodec(records)
	baseline := f.baseline
	if baseline == "" && len(groups) > 0 {
		baseline = groups[0].Codec
	}

	r.WriteHeader("Custom codec benchmark")
	r.WriteSummaryTable(analysis.SummarizeAll(groups))
	for _, dir := range []analysis.Direction{analysis.Compress, analysis.Decompress} {
		for _, comp := range analysis.CompareAll(groups, baseline, dir, bootstrapIterations, confidence) {
			r.WriteComparison(comp)
		}
	}
	r.WriteFooter()
	return nil
}
