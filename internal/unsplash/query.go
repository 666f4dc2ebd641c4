package unsplash

const (
	DefaultCategory = "outfits"
	DefaultPage     = 1
	DefaultPerPage  = 20

	// MaxPerPage is the largest page size the upstream API serves.
	MaxPerPage = 30

	fallbackQuery = "fashion outfit style"
)

// categoryQueries maps a browse category to the search phrase used when the
// user has not typed a query.
var categoryQueries = map[string]string{
	"outfits": "fashion outfit style clothing",
	"home":    "home interior design decor",
	"kitchen": "kitchen design modern interior",
	"couples": "couple outfit matching style",
	"girls":   "women fashion beauty lifestyle",
	"cars":    "luxury cars automotive",
}

// Categories lists the browse categories in display order.
var Categories = []string{"outfits", "home", "kitchen", "couples", "girls", "cars"}

// QueryFor returns the search phrase for a request. A non-empty query wins;
// otherwise the category's phrase is used, falling back to a generic one.
func QueryFor(category, query string) string {
	if query != "" {
		return query
	}
	if q, ok := categoryQueries[category]; ok {
		return q
	}
	return fallbackQuery
}
