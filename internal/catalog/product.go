// Package catalog defines the denormalized product record that cart and
// favorite entries embed at add time. The live catalog is served by an
// upstream API and remains the source of truth; the copy carried here is
// frozen at insertion and may go stale.
package catalog

// ProductSnapshot is a copy of selected catalog fields taken when a product
// is added to the cart or to favorites. Prices are in minor units (cents).
type ProductSnapshot struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discountPrice,omitempty"`
}

// Valid reports whether the snapshot carries a usable product reference.
// Entries failing this check are dropped silently during rehydration.
func (p ProductSnapshot) Valid() bool {
	return p.ID != ""
}

// EffectivePrice returns the discounted price when one is present, otherwise
// the list price.
func (p ProductSnapshot) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
