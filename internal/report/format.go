package report

import (
	"fmt"
	"strings"
)

// blockDelimiter separates records in a detail report.
const blockDelimiter = "\n————————————\n"

// emptySummary is returned when no record survives the profit filter.
const emptySummary = "📊 Nothing to report: no positions with a non-zero profit."

// Summary renders the short report: one line per position with a coercible,
// non-zero current profit, plus a trailing aggregate. Records whose profit is
// absent, textual, or exactly zero are excluded from both the lines and the
// total.
func Summary(records []AccountRecord) string {
	var (
		b     strings.Builder
		total float64
		count int
	)
	b.WriteString("📊 Portfolio summary\n\n")

	for _, r := range records {
		profit, ok := r.CurrentProfit.Float()
		if !ok || profit == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %.2f\n", r.Name, profit)
		total += profit
		count++
	}

	if count == 0 {
		return emptySummary
	}

	fmt.Fprintf(&b, "\nTotal profit: %.2f (%d positions)", total, count)
	return b.String()
}

// Detail renders the full report: every record, every field, in input order,
// with no filtering. Sentinel values are printed as-is so schema gaps stay
// visible to the operator.
func Detail(records []AccountRecord) string {
	if len(records) == 0 {
		return "📋 The database returned no records."
	}

	blocks := make([]string, len(records))
	for i, r := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "💎 %s\n", r.Name)
		for _, f := range r.Fields() {
			fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
		}
		blocks[i] = strings.TrimRight(b.String(), "\n")
	}

	return "📋 Full portfolio report\n" + blockDelimiter +
		strings.Join(blocks, blockDelimiter)
}
