package outline

// StyleProperty names a style attribute. The set of valid values is
// defined by the style catalog.
type StyleProperty string

// StyleUnit is the unit attached to a numeric style value.
type StyleUnit string

// Style is the persisted value of one property on one item.
// At most one row exists per (ItemID, Property).
type Style struct {
	ItemID      string        `json:"item_id" db:"item_id"`
	Property    StyleProperty `json:"property" db:"property"`
	ValueNumber *int32        `json:"value_number" db:"value_number"`
	ValueString *string       `json:"value_string" db:"value_string"`
	Unit        *StyleUnit    `json:"unit" db:"unit"`
}

// StyleEdit is a requested value for one property, as submitted by a client.
type StyleEdit struct {
	Property    StyleProperty `json:"property"`
	ValueString *string       `json:"value_string,omitempty"`
	ValueNumber *int32        `json:"value_number,omitempty"`
	Unit        *StyleUnit    `json:"unit,omitempty"`
}

// ToStyle binds the edit to an item.
func (e StyleEdit) ToStyle(itemID string) Style {
	return Style{
		ItemID:      itemID,
		Property:    e.Property,
		ValueNumber: e.ValueNumber,
		ValueString: e.ValueString,
		Unit:        e.Unit,
	}
}
