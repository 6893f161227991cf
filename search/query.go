package search

import (
	"campus-market/domain"
	"strconv"
	"strings"
)

const DefaultLimit = 20

// Query is a parsed search box input.
type Query struct {
	RawInput string
	Terms    string
	Category domain.Category
	Limit    int
}

// ParseQuery extracts command-line style flags from the search box.
// Example: "desk lamp --category furniture --limit 5"
// Unknown flags are dropped with their value, a bad limit keeps the default.
func ParseQuery(input string) Query {
	query := Query{RawInput: input, Limit: DefaultLimit}

	parts := strings.Fields(input)
	var terms []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			value := parts[i+1]
			switch strings.TrimPrefix(part, "--") {
			case "category":
				query.Category = domain.Category(strings.ToLower(value))
			case "limit":
				if limit, err := strconv.Atoi(value); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++
			continue
		}
		terms = append(terms, part)
	}
	query.Terms = strings.Join(terms, " ")
	return query
}
