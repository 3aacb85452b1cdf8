package report

import (
	"strings"

	"cryptobot/internal/notion"
)

// Mapping names the database properties each record field is read from.
// The defaults match the portfolio database this bot was built against;
// deployments with a different schema override them via config.
type Mapping struct {
	Title          string
	CurrentProfit  string
	Capitalization string
	Turnover       string
	DepositPct     string
	AvgPrice       string
	CurrentPrice   string
}

// DefaultMapping returns the property names of the reference database.
// The profit source is deliberately the rollup property "Текущая", not the
// similarly named formula; the rollup is canonical.
func DefaultMapping() Mapping {
	return Mapping{
		Title:          "Name",
		CurrentProfit:  "Текущая",
		Capitalization: "Капитализация",
		Turnover:       "Оборот",
		DepositPct:     "Депозит %",
		AvgPrice:       "Средняя цена",
		CurrentPrice:   "Текущая цена",
	}
}

// Normalize flattens one Notion page into an AccountRecord. It is pure and
// total: every missing or unexpectedly shaped property degrades to a sentinel
// value instead of failing the batch, and Name is never empty.
func Normalize(page notion.Page, m Mapping) AccountRecord {
	return AccountRecord{
		PageID:         page.ID,
		Name:           titleText(page.Prop(m.Title)),
		CurrentProfit:  normalizeValue(page.Prop(m.CurrentProfit)),
		Capitalization: normalizeValue(page.Prop(m.Capitalization)),
		Turnover:       normalizeValue(page.Prop(m.Turnover)),
		DepositPct:     normalizeValue(page.Prop(m.DepositPct)),
		AvgPrice:       normalizeValue(page.Prop(m.AvgPrice)),
		CurrentPrice:   normalizeValue(page.Prop(m.CurrentPrice)),
	}
}

// NormalizeAll maps Normalize over a batch, preserving order.
func NormalizeAll(pages []notion.Page, m Mapping) []AccountRecord {
	records := make([]AccountRecord, len(pages))
	for i, p := range pages {
		records[i] = Normalize(p, m)
	}
	return records
}

func normalizeValue(p notion.Property) FieldValue {
	switch p.Type {
	case "":
		// Property absent from the page.
		return Missing()

	case notion.TypeNumber:
		if p.Number == nil {
			return Missing()
		}
		return Number(*p.Number)

	case notion.TypeRichText:
		if s := firstRun(p.RichText); s != "" {
			return Text(s)
		}
		return Missing()

	case notion.TypeDate:
		if p.Date == nil || p.Date.Start == "" {
			return Missing()
		}
		return Text(p.Date.Start)

	case notion.TypeFormula:
		return unwrap(p.Formula)

	case notion.TypeRollup:
		return unwrap(p.Rollup)

	case notion.TypeRelation:
		if len(p.Relation) == 0 {
			return Text(NoRelation)
		}
		ref := p.Relation[0]
		if ref.Name != "" {
			return Text(ref.Name)
		}
		return Text(ref.ID)

	case notion.TypeTitle:
		return Text(titleText(p))

	default:
		return Unsupported(p.Type)
	}
}

// unwrap extracts the inner value of a formula or rollup, preferring the
// populated variant in number → string → date order.
func unwrap(w *notion.WrappedValue) FieldValue {
	if w == nil {
		return Missing()
	}
	switch {
	case w.Number != nil:
		return Number(*w.Number)
	case w.String != nil && *w.String != "":
		return Text(*w.String)
	case w.Date != nil && w.Date.Start != "":
		return Text(w.Date.Start)
	default:
		return Missing()
	}
}

func titleText(p notion.Property) string {
	if s := firstRun(p.Title); s != "" {
		return s
	}
	return unnamedPlaceholder
}

func firstRun(runs []notion.RichText) string {
	if len(runs) == 0 {
		return ""
	}
	return strings.TrimSpace(runs[0].PlainText)
}
