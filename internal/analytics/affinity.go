package analytics

import (
	"sort"

	"salespulse/internal/sales"
)

// DefaultMaxBasket skips orders with more distinct products than this when
// counting pairs.
const DefaultMaxBasket = 20

// Pair is two distinct products bought in the same order. A sorts before B.
type Pair struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Orders  int     `json:"orders"`
	// Support is the share of multi-product orders containing the pair, in percent
	Support float64 `json:"support"`
}

// Affinity counts product pairs per order. Each pair counts once per order no
// matter how many line items repeat it. Results are sorted by count with ties
// in first-seen order, truncated to n when n > 0.
func Affinity(records []sales.Record, n, maxBasket int) []Pair {
	if maxBasket <= 0 {
		maxBasket = DefaultMaxBasket
	}

	orderIndex := make(map[string]int)
	var baskets [][]string
	seen := make([]map[string]struct{}, 0)
	for i := range records {
		r := &records[i]
		pos, ok := orderIndex[r.OrderID]
		if !ok {
			pos = len(baskets)
			orderIndex[r.OrderID] = pos
			baskets = append(baskets, nil)
			seen = append(seen, make(map[string]struct{}))
		}
		if _, dup := seen[pos][r.Product]; dup {
			continue
		}
		seen[pos][r.Product] = struct{}{}
		baskets[pos] = append(baskets[pos], r.Product)
	}

	type pairKey struct{ a, b string }
	pairIndex := make(map[pairKey]int)
	pairs := []Pair{}
	multi := 0
	for _, basket := range baskets {
		if len(basket) < 2 || len(basket) > maxBasket {
			continue
		}
		multi++
		for i := 0; i < len(basket); i++ {
			for j := i + 1; j < len(basket); j++ {
				a, b := basket[i], basket[j]
				if b < a {
					a, b = b, a
				}
				k := pairKey{a, b}
				pos, ok := pairIndex[k]
				if !ok {
					pos = len(pairs)
					pairIndex[k] = pos
					pairs = append(pairs, Pair{A: a, B: b})
				}
				pairs[pos].Orders++
			}
		}
	}

	for i := range pairs {
		pairs[i].Support = float64(pairs[i].Orders) / float64(multi) * 100
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Orders > pairs[j].Orders })
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
