package domain

// FinalUnitPrice applies a percentage discount to a unit price, rounding
// half-up and clamping to zero. A discount outside 0-100 is clamped into
// range before applying.
func FinalUnitPrice(unitPrice int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		if unitPrice < 0 {
			return 0
		}
		return unitPrice
	}
	if discountPercent >= 100 {
		return 0
	}
	discounted := (unitPrice*int64(100-discountPercent) + 50) / 100
	if discounted < 0 {
		return 0
	}
	return discounted
}

// LineTotal returns the final charge for a line of the given quantity.
func LineTotal(finalUnitPrice int64, quantity int) int64 {
	if quantity <= 0 {
		return 0
	}
	return finalUnitPrice * int64(quantity)
}
