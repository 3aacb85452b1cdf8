// Package report turns raw Notion pages into normalized account records and
// renders them as user-facing reports.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel texts for values that could not be normalized. NoRelation is a
// valid empty state and kept distinct from NA, which marks a parsing gap.
const (
	NA         = "N/A"
	NoRelation = "—"

	// unnamedPlaceholder is used when a page has an empty title. Every
	// AccountRecord is guaranteed a non-empty Name.
	unnamedPlaceholder = "N/A (unnamed)"
)

// FieldValue is either a number or a text. Sentinels are plain text values;
// numeric-looking text stays text until a formatter explicitly coerces it.
type FieldValue struct {
	isNumber bool
	num      float64
	text     string
}

// Number wraps a numeric value.
func Number(v float64) FieldValue { return FieldValue{isNumber: true, num: v} }

// Text wraps a textual value.
func Text(s string) FieldValue { return FieldValue{text: s} }

// Missing is the "N/A" sentinel for absent or unparseable properties.
func Missing() FieldValue { return Text(NA) }

// Unsupported marks a property kind the normalizer has no mapping for. The
// kind name is embedded so operators can spot schema drift in detail reports
// without the bot crashing.
func Unsupported(kind string) FieldValue {
	return Text(fmt.Sprintf("N/A (unsupported: %s)", kind))
}

// String renders the value: numbers with two decimals, text verbatim.
func (v FieldValue) String() string {
	if v.isNumber {
		return strconv.FormatFloat(v.num, 'f', 2, 64)
	}
	return v.text
}

// Float attempts numeric coercion: a number directly, or text parsed as a
// float. Sentinels and non-numeric text report ok=false. Only formatters
// call this; normalization never coerces.
func (v FieldValue) Float() (float64, bool) {
	if v.isNumber {
		return v.num, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AccountRecord is the flat normalized form of one portfolio position.
type AccountRecord struct {
	PageID         string
	Name           string
	CurrentProfit  FieldValue
	Capitalization FieldValue
	Turnover       FieldValue
	DepositPct     FieldValue
	AvgPrice       FieldValue
	CurrentPrice   FieldValue
}

// Field pairs a display label with a value for detail rendering.
type Field struct {
	Label string
	Value FieldValue
}

// Fields returns every declared field in fixed order.
func (r AccountRecord) Fields() []Field {
	return []Field{
		{"Current profit", r.CurrentProfit},
		{"Capitalization", r.Capitalization},
		{"Turnover", r.Turnover},
		{"Deposit %", r.DepositPct},
		{"Average price", r.AvgPrice},
		{"Current price", r.CurrentPrice},
	}
}
