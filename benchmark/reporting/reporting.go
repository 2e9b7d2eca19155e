// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/discochess/extcodec/benchmark/analysis"
)

// Report writes benchmark results in one format.
type Report interface {
	WriteHeader(title string)
	WriteSummaryTable(summaries []*analysis.CodecSummary)
	WriteComparison(comp *analysis.CodecComparison)
	WriteFooter()
}

// Formats accepted by New.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// New returns a Report writing format to w.
func New(format string, w io.Writer) (Report, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewTextReport(w), nil
	case FormatMarkdown, "md":
		return NewMarkdownReport(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func formatPSNR(db float64) string {
	if math.IsInf(db, 1) {
		return "lossless"
	}
	return fmt.Sprintf("%.2f", db)
}
