package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PlaceholderImage substitutes for products and categories without a picture.
const PlaceholderImage = "/static/placeholder.jpg"

var pricePrinter = message.NewPrinter(language.French)

// NormalizeImageURL fixes up catalog image references:
// empty -> placeholder, protocol-relative -> https, absolute -> unchanged,
// anything else -> unchanged.
func NormalizeImageURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}

// FormatPrice renders an amount the way the storefront always has: French
// locale, euro sign after the number, non-breaking space between.
func FormatPrice(amount float64) string {
	return pricePrinter.Sprintf("%.2f €", amount)
}

// recognized weight/volume units
var weightUnits = map[string]struct{}{
	"kg": {}, "g": {}, "l": {}, "ml": {},
	"piece": {}, "portion": {}, "tray": {}, "sachet": {}, "pack": {},
}

// FormatWeight derives the weight/volume display for a tile.
//
// With a positive numeric value and a unit: sub-kilogram weights show in
// grams, sub-liter volumes in centiliters, everything else as given. A value
// <= 0 suppresses the display. Without a numeric value, a non-empty free-text
// weight shows verbatim.
func FormatWeight(value float64, unit, freeText string) string {
	if value > 0 {
		u := strings.ToLower(strings.TrimSpace(unit))
		if u == "" {
			return ""
		}
		if _, ok := weightUnits[u]; ok {
			switch {
			case u == "kg" && value < 1:
				value, u = value*1000, "g"
			case u == "l" && value < 1:
				value, u = value*100, "cl"
			}
		}
		return formatQuantity(value) + " " + u
	}
	if value < 0 {
		return ""
	}

	text := strings.TrimSpace(freeText)
	if text == "" || text == "0" {
		return ""
	}
	return text
}

// formatQuantity prints whole numbers bare and everything else with up to
// three decimals, trailing zeros trimmed.
func formatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}
