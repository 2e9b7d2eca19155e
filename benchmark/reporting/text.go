package reporting

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/discochess/extcodec/benchmark/analysis"
)

// TextReport writes aligned plain-text tables for terminals.
type TextReport struct {
	w io.Writer
}

// NewTextReport creates a new plain-text report writer.
func NewTextReport(w io.Writer) *TextReport {
	return &TextReport{w: w}
}

// WriteHeader writes the title underlined.
func (r *TextReport) WriteHeader(title string) {
	fmt.Fprintln(r.w, title)
	fmt.Fprintln(r.w, strings.Repeat("=", len(title)))
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes one row per codec.
func (r *TextReport) WriteSummaryTable(summaries []*analysis.CodecSummary) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Codec\tImages\tFailed\tBytes\tBPP\tMaxDiff\tPSNR\tEnc MP/s\tDec MP/s\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.4f\t%.5f\t%s\t%.2f\t%.2f\t\n",
			s.Codec, s.Images, s.Failures, s.Bytes, s.BitsPerPixel,
			s.MaxAbsDiff, formatPSNR(s.MinPSNR), s.CompressMPs, s.DecompressMPs)
	}
	tw.Flush()
	fmt.Fprintln(r.w)
}

// WriteComparison writes the comparison summary.
func (r *TextReport) WriteComparison(comp *analysis.CodecComparison) {
	fmt.Fprintln(r.w, comp.Summary())
	fmt.Fprintln(r.w)
}

// WriteFooter writes nothing; plain text has no footer.
func (r *TextReport) WriteFooter() {}
