package catalog

// EffectivePrice returns the price of a standard at a center. A center
// override wins over the base price; a nil override falls back to base.
func EffectivePrice(basePrice float64, override *float64) float64 {
	if override != nil {
		return *override
	}
	return basePrice
}

// OrderTotal sums the effective standard price and the selected add-on
// prices. Callers resolve add-on IDs first; unknown IDs never reach here.
func OrderTotal(standardPrice float64, addOns []AddOn) float64 {
	total := standardPrice
	for _, a := range addOns {
		total += a.Price
	}
	return total
}
