package cart

// Total returns the line total: the effective unit price times the quantity.
// A line with a missing product reference prices at zero rather than failing.
func (it Item) Total() int64 {
	if !it.Product.Valid() {
		return 0
	}
	return it.Product.EffectivePrice() * int64(it.Quantity)
}

// Savings returns how much the line saves against the list price. Only a
// discount price strictly below the list price counts; the result is never
// negative.
func (it Item) Savings() int64 {
	if !it.Product.Valid() || it.Product.DiscountPrice == nil {
		return 0
	}
	if *it.Product.DiscountPrice >= it.Product.Price {
		return 0
	}
	return (it.Product.Price - *it.Product.DiscountPrice) * int64(it.Quantity)
}

// Subtotal is the sum of line totals, recomputed from the live collection.
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, it := range s.items {
		sum += it.Total()
	}
	return sum
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int32
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// TotalSavings is the sum of line savings.
func (s *Store) TotalSavings() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, it := range s.items {
		sum += it.Savings()
	}
	return sum
}
