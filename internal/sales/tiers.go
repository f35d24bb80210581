package sales

// PriceTier is a half-open (Lower, Upper] unit price bucket
type PriceTier struct {
	Label string
	Lower Money
	Upper Money
}

// Contains reports whether Lower < price <= Upper
func (t PriceTier) Contains(price Money) bool {
	return price.Cmp(t.Lower) > 0 && price.Cmp(t.Upper) <= 0
}

// PriceTiers are ordered from cheapest to most expensive.
var PriceTiers = []PriceTier{
	{Label: "Económico", Lower: MoneyFromInt(0), Upper: MoneyFromInt(20)},
	{Label: "Medio", Lower: MoneyFromInt(20), Upper: MoneyFromInt(100)},
	{Label: "Premium", Lower: MoneyFromInt(100), Upper: MoneyFromInt(500)},
	{Label: "Alta Gama", Lower: MoneyFromInt(500), Upper: MoneyFromInt(1000)},
	{Label: "Lujo", Lower: MoneyFromInt(1000), Upper: MoneyFromInt(10000)},
}

// TierFor returns the tier label for price. Prices outside every tier
// (above 10000) get "".
func TierFor(price Money) string {
	for _, t := range PriceTiers {
		if t.Contains(price) {
			return t.Label
		}
	}
	return ""
}

// TierLabels returns the tier labels in order
func TierLabels() []string {
	labels := make([]string, len(PriceTiers))
	for i, t := range PriceTiers {
		labels[i] = t.Label
	}
	return labels
}

// IsTierLabel reports whether label names one of PriceTiers
func IsTierLabel(label string) bool {
	for _, t := range PriceTiers {
		if t.Label == label {
			return true
		}
	}
	return false
}
