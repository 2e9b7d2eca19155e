package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/extcodec/benchmark/analysis"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteSummaryTable writes one row per codec.
func (r *MarkdownReport) WriteSummaryTable(summaries []*analysis.CodecSummary) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Codec | Images | Failures | Bytes | BPP | Max Abs Diff | Min PSNR | Enc MP/s | Dec MP/s |")
	fmt.Fprintln(r.w, "|-------|--------|----------|-------|-----|--------------|----------|----------|----------|")
	for _, s := range summaries {
		fmt.Fprintf(r.w, "| %s | %d | %d | %d | %.4f | %.5f | %s | %.2f | %.2f |\n",
			s.Codec, s.Images, s.Failures, s.Bytes, s.BitsPerPixel,
			s.MaxAbsDiff, formatPSNR(s.MinPSNR), s.CompressMPs, s.DecompressMPs)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.CodecComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Codec1, comp.Codec2)

	fmt.Fprintln(r.w, "### Timing (seconds)")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Codec1+" | "+comp.Codec2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Codec1)+2)+"|"+strings.Repeat("-", len(comp.Codec2)+2)+"|")
	fmt.Fprintf(r.w, "| Runs | %d | %d |\n", comp.Stats1.N, comp.Stats2.N)
	fmt.Fprintf(r.w, "| Median | %.4f | %.4f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Mean | %.4f | %.4f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Std Dev | %.4f | %.4f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.4f | %.4f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.4f | %.4f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.4f, %.4f]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** is significantly faster than %s ",
			comp.Winner, otherCodec(comp.Winner, comp.Codec1, comp.Codec2))
		fmt.Fprintf(r.w, "(p < %.2f, effect size: %s).\n", analysis.Significance, comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintf(r.w, "No statistically significant difference detected between codecs (p >= %.2f).\n", analysis.Significance)
	}
	fmt.Fprintln(r.w)
}

func otherCodec(winner, c1, c2 string) string {
	if winner == c1 {
		return c2
	}
	return c1
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by extcodec*")
}
