// Package report renders the dataset overview as a markdown or HTML document.
package report

import (
	"fmt"
	"sort"
	"strings"

	"trialdash/domain/dataset"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown writes the overview: dataset shape, column schema, treatment group
// and outcome frequency tables, and one row per numeric column summary.
func Markdown(summary *dataset.Summary, ov *dataset.Overview) string {
	var b strings.Builder

	title := "Clinical Trial Dataset"
	if ov != nil && ov.Name != "" {
		title += ": " + escape(ov.Name)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if ov != nil {
		fmt.Fprintf(&b, "- Rows: %d\n- Columns: %d\n\n", ov.Rows, len(ov.Columns))
		b.WriteString("## Columns\n\n| Column | Type | Missing |\n|---|---|---:|\n")
		for _, c := range ov.Columns {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", escape(c.Name), c.Type, c.Missing)
		}
		b.WriteString("\n")
	}

	if summary == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "## Patients\n\nTotal patients: %d\n\n", summary.TotalPatients)
	writeCounts(&b, "Treatment Groups", "Group", summary.TreatmentGroupCounts)
	writeCounts(&b, "Outcomes", "Outcome", summary.OutcomeCounts)

	if len(summary.NumericSummaries) > 0 {
		b.WriteString("## Numeric Summary\n\n")
		b.WriteString("| Column | Count | Mean | Std | Min | 25% | 50% | 75% | Max |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, name := range sortedKeys(summary.NumericSummaries) {
			s := summary.NumericSummaries[name]
			fmt.Fprintf(&b, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				escape(name), s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeCounts(b *strings.Builder, heading, label string, counts map[string]int) {
	fmt.Fprintf(b, "## %s\n\n| %s | Patients |\n|---|---:|\n", heading, label)
	for _, k := range sortedKeys(counts) {
		fmt.Fprintf(b, "| %s | %d |\n", escape(k), counts[k])
	}
	b.WriteString("\n")
}

// HTML renders the markdown report as a complete HTML page
func HTML(summary *dataset.Summary, ov *dataset.Overview) []byte {
	md := []byte(Markdown(summary, ov))

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Clinical Trial Report",
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank | html.SkipHTML | html.Safelink,
	})
	return markdown.ToHTML(md, p, renderer)
}

// escape keeps cell text from breaking table rows and renders markup in
// uploaded names and labels as literal text
func escape(s string) string {
	return cellEscaper.Replace(s)
}

var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"&", `\&`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"[", `\[`,
	"]", `\]`,
	"!", `\!`,
	"`", "\\`",
	"\n", " ",
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
