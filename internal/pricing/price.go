package pricing

import "regexp"

// Category name with per-size pricing.
const sunCatcherCategory = "Glass Sun Catchers"

// Retail prices by sun catcher size, in cents.
var sunCatcherPrices = map[string]int64{
	"6 inch":  7200,
	"10 inch": 9800,
	"12 inch": 11900,
	"15 inch": 15300,
}

// defaultSunCatcherPrice is used when no size token matches (6 inch default).
const defaultSunCatcherPrice int64 = 7200

// Default retail prices by category, in cents.
var categoryPrices = map[string]int64{
	"Glass Ornaments":     3500,
	"Paper Cut Ornaments": 1500,
	"Wooden Ornaments":    3500,
}

// globalDefaultPrice applies when the category is unknown.
const globalDefaultPrice int64 = 3500

// sizePatterns are checked in order, largest size first; the first match wins.
var sizePatterns = []struct {
	re   *regexp.Regexp
	size string
}{
	{regexp.MustCompile(`(?i)15\s*(?:inch|in|")`), "15 inch"},
	{regexp.MustCompile(`(?i)12\s*(?:inch|in|")`), "12 inch"},
	{regexp.MustCompile(`(?i)10\s*(?:inch|in|")`), "10 inch"},
	{regexp.MustCompile(`(?i)6\s*(?:inch|in|")`), "6 inch"},
}

// DetectSize infers a size variant from a free-text product title.
// Returns the empty string when no size token matches.
func DetectSize(title string) string {
	for _, p := range sizePatterns {
		if p.re.MatchString(title) {
			return p.size
		}
	}
	return ""
}

// ResolveRetailPrice returns the retail price for a product by category and
// title: size-variant price for sun catchers, then the per-category default,
// then the global default.
func ResolveRetailPrice(category, title string) int64 {
	if category == sunCatcherCategory {
		if size := DetectSize(title); size != "" {
			if price, ok := sunCatcherPrices[size]; ok {
				return price
			}
		}
		return defaultSunCatcherPrice
	}

	if price, ok := categoryPrices[category]; ok {
		return price
	}
	return globalDefaultPrice
}
