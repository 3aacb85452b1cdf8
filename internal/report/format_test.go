package report

import (
	"strings"
	"testing"
)

func rec(name string, profit FieldValue) AccountRecord {
	return AccountRecord{
		Name:           name,
		CurrentProfit:  profit,
		Capitalization: Missing(),
		Turnover:       Missing(),
		DepositPct:     Missing(),
		AvgPrice:       Missing(),
		CurrentPrice:   Missing(),
	}
}

func TestSummary_Empty(t *testing.T) {
	for _, records := range [][]AccountRecord{nil, {}} {
		got := Summary(records)
		if got != emptySummary {
			t.Errorf("Summary(%v) = %q, want the fixed empty message", records, got)
		}
	}
}

func TestSummary_FiltersAndTotals(t *testing.T) {
	records := []AccountRecord{
		rec("BTC", Number(15.5)),
		rec("ETH", Number(0)),       // exactly zero: excluded
		rec("SOL", Text("0.0")),     // coerces to zero: excluded
		rec("ADA", Missing()),       // N/A: excluded
		rec("DOT", Text("oops")),    // non-coercible: excluded
		rec("XRP", Number(-3.0)),
	}
	got := Summary(records)

	if !strings.Contains(got, "BTC: 15.50") {
		t.Errorf("summary missing BTC line:\n%s", got)
	}
	if !strings.Contains(got, "XRP: -3.00") {
		t.Errorf("summary missing XRP line:\n%s", got)
	}
	for _, excluded := range []string{"ETH", "SOL", "ADA", "DOT"} {
		if strings.Contains(got, excluded) {
			t.Errorf("summary should exclude %s:\n%s", excluded, got)
		}
	}
	if !strings.Contains(got, "12.50") {
		t.Errorf("aggregate total should be 12.50:\n%s", got)
	}
	if !strings.Contains(got, "2 positions") {
		t.Errorf("aggregate count should be 2:\n%s", got)
	}
}

func TestSummary_TextualProfitCoerced(t *testing.T) {
	got := Summary([]AccountRecord{rec("BTC", Text("15.5"))})
	if !strings.Contains(got, "BTC: 15.50") {
		t.Errorf("coercible text profit should be included:\n%s", got)
	}
}

func TestSummary_OnlyZeroes(t *testing.T) {
	got := Summary([]AccountRecord{rec("BTC", Number(0)), rec("ETH", Missing())})
	if got != emptySummary {
		t.Errorf("all-filtered summary = %q, want the fixed empty message", got)
	}
}

func TestDetail_OneBlockPerRecordInOrder(t *testing.T) {
	records := []AccountRecord{
		rec("BTC", Number(1)),
		rec("ETH", Missing()),
		rec("SOL", Text("n/a-ish")),
	}
	got := Detail(records)

	blocks := strings.Split(got, blockDelimiter)
	// Leading header block plus one block per record.
	if len(blocks) != len(records)+1 {
		t.Fatalf("got %d blocks, want %d:\n%s", len(blocks)-1, len(records), got)
	}
	for i, name := range []string{"BTC", "ETH", "SOL"} {
		if !strings.Contains(blocks[i+1], name) {
			t.Errorf("block %d should describe %s:\n%s", i, name, blocks[i+1])
		}
	}
}

func TestDetail_SentinelsPrintedAsIs(t *testing.T) {
	got := Detail([]AccountRecord{rec("BTC", Missing())})
	if !strings.Contains(got, NA) {
		t.Errorf("detail should print %q unsuppressed:\n%s", NA, got)
	}
}

func TestDetail_Empty(t *testing.T) {
	if got := Detail(nil); got == "" {
		t.Error("Detail(nil) should not be empty")
	}
}

func TestFieldValue_Float(t *testing.T) {
	tests := []struct {
		v      FieldValue
		want   float64
		wantOK bool
	}{
		{Number(15.5), 15.5, true},
		{Text("15.5"), 15.5, true},
		{Text(" -3.0 "), -3.0, true},
		{Text("0.0"), 0, true},
		{Missing(), 0, false},
		{Text("growing"), 0, false},
		{Text(NoRelation), 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.v.Float()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Float(%q) = (%v, %v), want (%v, %v)", tt.v.String(), got, ok, tt.want, tt.wantOK)
		}
	}
}
