package sales

import "strings"

// Unknown is used for city and state when an address cannot be decomposed.
const Unknown = "Unknown"

// ParseAddress extracts city and state code from a ship address of the form
// "street, city, ST zip". Addresses with fewer than three comma segments give
// Unknown for both.
func ParseAddress(address string) (city, stateCode string) {
	parts := strings.Split(address, ",")
	if len(parts) < 3 {
		return Unknown, Unknown
	}
	city = strings.TrimSpace(parts[1])
	stateCode = Unknown
	if fields := strings.Fields(parts[2]); len(fields) > 0 {
		stateCode = fields[0]
	}
	return city, stateCode
}
