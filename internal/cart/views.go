package cart

import "github.com/shopspring/decimal"

// LineCount is the number of distinct lines, not the unit total.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Subtotal is sum(price * quantity) rendered with two decimal places.
// Unparseable prices and non-positive quantities contribute nothing
// instead of poisoning the aggregate.
func (s *Store) Subtotal() string {
	total := decimal.Zero

	s.mu.Lock()
	for _, ln := range s.lines {
		if ln.Quantity <= 0 {
			continue
		}
		price, err := decimal.NewFromString(ln.Product.Price)
		if err != nil {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	s.mu.Unlock()

	return total.StringFixed(2)
}
