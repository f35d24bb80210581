package sales

import "strings"

// Category labels
const (
	CategoryBatteries  = "Baterías"
	CategoryCables     = "Cables"
	CategoryHeadphones = "Auriculares"
	CategoryMonitors   = "Monitores"
	CategoryComputers  = "Computadoras"
	CategoryPhones     = "Teléfonos"
	CategoryTVs        = "Televisores"
	CategoryAppliances = "Electrodomésticos"
	CategoryOther      = "Otros"
)

// CategoryRule assigns Label to any product whose lower-cased name contains
// one of Keywords.
type CategoryRule struct {
	Label    string
	Keywords []string
}

// Matches reports whether the lower-cased product name hits a keyword
func (r CategoryRule) Matches(lowerName string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerName, kw) {
			return true
		}
	}
	return false
}

// CategoryRules is evaluated in order and the first matching rule wins.
type CategoryRules []CategoryRule

var (
	ruleBatteries  = CategoryRule{CategoryBatteries, []string{"batteries"}}
	ruleCables     = CategoryRule{CategoryCables, []string{"cable"}}
	ruleHeadphones = CategoryRule{CategoryHeadphones, []string{"headphones", "airpods", "earpods", "bose"}}
	ruleMonitors   = CategoryRule{CategoryMonitors, []string{"monitor", "screen"}}
	ruleComputers  = CategoryRule{CategoryComputers, []string{"laptop", "macbook", "thinkpad"}}
	rulePhones     = CategoryRule{CategoryPhones, []string{"phone", "iphone"}}
	ruleTVs        = CategoryRule{CategoryTVs, []string{"tv", "television"}}
	ruleAppliances = CategoryRule{CategoryAppliances, []string{"washing", "dryer", "lg"}}
)

// DefaultCategoryRules tests TV terms before appliance terms, so a name
// containing both "lg" and "tv" is a television.
var DefaultCategoryRules = CategoryRules{
	ruleBatteries, ruleCables, ruleHeadphones, ruleMonitors,
	ruleComputers, rulePhones, ruleTVs, ruleAppliances,
}

// ApplianceFirstCategoryRules tests appliance terms before TV terms.
var ApplianceFirstCategoryRules = CategoryRules{
	ruleBatteries, ruleCables, ruleHeadphones, ruleMonitors,
	ruleComputers, rulePhones, ruleAppliances, ruleTVs,
}

// Assign returns the label of the first matching rule, or CategoryOther.
func (rules CategoryRules) Assign(product string) string {
	name := strings.ToLower(product)
	for _, r := range rules {
		if r.Matches(name) {
			return r.Label
		}
	}
	return CategoryOther
}
