package model

import "github.com/shopspring/decimal"

// LineItem is one priced row on a quote or invoice.
type LineItem struct {
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	GSTInclusive bool            `json:"gst_inclusive"`
}

// NewLineItem builds a validated LineItem.
func NewLineItem(description string, quantity, unitPrice decimal.Decimal, gstInclusive bool) (LineItem, error) {
	li := LineItem{
		Description:  description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		GSTInclusive: gstInclusive,
	}
	if err := li.Validate(); err != nil {
		return LineItem{}, err
	}
	return li, nil
}

// Validate checks quantity > 0, unit price >= 0 and cent precision.
func (li LineItem) Validate() error {
	v := newValidator("line_item")
	if li.Description == "" {
		v.addf("description", "must not be empty")
	}
	if !li.Quantity.IsPositive() {
		v.addf("quantity", "must be greater than 0, got %s", li.Quantity)
	} else if !hasCents(li.Quantity) {
		v.addf("quantity", "%s has more than 2 decimal places", li.Quantity)
	}
	if li.UnitPrice.IsNegative() {
		v.addf("unit_price", "must not be negative, got %s", li.UnitPrice)
	} else if !hasCents(li.UnitPrice) {
		v.addf("unit_price", "%s has more than 2 decimal places", li.UnitPrice)
	}
	return v.err()
}

// Subtotal is quantity x unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return RoundCents(li.Quantity.Mul(li.UnitPrice))
}

// GST is subtotal/11 for inclusive pricing, subtotal x 10% otherwise.
func (li LineItem) GST() decimal.Decimal {
	return GSTComponent(li.Subtotal(), li.GSTInclusive)
}

// Total is the subtotal when inclusive, subtotal plus GST otherwise.
func (li LineItem) Total() decimal.Decimal {
	if li.GSTInclusive {
		return li.Subtotal()
	}
	return RoundCents(li.Subtotal().Add(li.GST()))
}

func sumItems(items []LineItem, f func(LineItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(f(li))
	}
	return RoundCents(total)
}

func validateItems(v *validator, items []LineItem) {
	if len(items) == 0 {
		v.addf("line_items", "at least one line item is required")
	}
	for _, li := range items {
		v.merge(li.Validate())
	}
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
