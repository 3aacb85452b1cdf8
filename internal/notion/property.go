package notion

// Property is a closed tagged variant over the Notion property types this bot
// understands. Type selects the populated payload field; JSON decoding fills
// only the field matching the vendor's "type" discriminator, the rest stay nil.
// A property missing from a page decodes to the zero Property (Type == ""),
// which normalization treats as absent rather than as an error.
type Property struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title    []RichText   `json:"title,omitempty"`
	RichText []RichText   `json:"rich_text,omitempty"`
	Number   *float64     `json:"number,omitempty"`
	Date     *DateValue   `json:"date,omitempty"`
	Formula  *WrappedValue `json:"formula,omitempty"`
	Rollup   *WrappedValue `json:"rollup,omitempty"`
	Relation []RelationRef `json:"relation,omitempty"`
}

// Known values of Property.Type.
const (
	TypeTitle    = "title"
	TypeRichText = "rich_text"
	TypeNumber   = "number"
	TypeDate     = "date"
	TypeFormula  = "formula"
	TypeRollup   = "rollup"
	TypeRelation = "relation"
)

// RichText is one run of rich text; only the plain content matters here.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// DateValue is a date property payload. Normalization takes the start bound.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// WrappedValue is the inner value of a formula or rollup property. The vendor
// evaluates these server-side and reports the result as exactly one of a
// number, a string, or a date.
type WrappedValue struct {
	Type   string     `json:"type"`
	Number *float64   `json:"number,omitempty"`
	String *string    `json:"string,omitempty"`
	Date   *DateValue `json:"date,omitempty"`
}

// RelationRef points at a related page. The vendor only guarantees the ID;
// Name is filled when the relation was resolved upstream.
type RelationRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Page is one database row as returned by a query.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Prop looks up a property by name. An absent name yields the zero Property,
// never an error.
func (p Page) Prop(name string) Property {
	return p.Properties[name]
}
