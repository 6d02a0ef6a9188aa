package category

import (
	"strings"

	"github.com/rfduarte/feira/internal/model"
)

// Categorize returns the category for the given item name.
// It performs case-insensitive matching: exact match first, then substring
// match. Falls back to "other" if no match is found.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return "other"
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return "other"
}

// Normalize lowers the given category and maps anything outside the fixed
// set to "other".
func Normalize(cat string) string {
	cat = strings.ToLower(strings.TrimSpace(cat))
	if model.ValidCategory(cat) {
		return cat
	}
	return "other"
}

var exactMatch = map[string]string{
	// Produce
	"apple":        "produce",
	"apples":       "produce",
	"banana":       "produce",
	"bananas":      "produce",
	"orange":       "produce",
	"oranges":      "produce",
	"lemon":        "produce",
	"lime":         "produce",
	"tomato":       "produce",
	"tomatoes":     "produce",
	"potato":       "produce",
	"potatoes":     "produce",
	"onion":        "produce",
	"onions":       "produce",
	"garlic":       "produce",
	"lettuce":      "produce",
	"spinach":      "produce",
	"carrots":      "produce",
	"cucumber":     "produce",
	"grapes":       "produce",
	"strawberries": "produce",
	"mango":        "produce",

	// Dairy
	"milk":       "dairy",
	"eggs":       "dairy",
	"butter":     "dairy",
	"cheese":     "dairy",
	"yogurt":     "dairy",
	"sour cream": "dairy",

	// Meat
	"chicken":      "meat",
	"beef":         "meat",
	"pork":         "meat",
	"fish":         "meat",
	"salmon":       "meat",
	"shrimp":       "meat",
	"ground beef":  "meat",
	"bacon":        "meat",
	"sausage":      "meat",
	"turkey":       "meat",
	"chicken legs": "meat",

	// Grains
	"rice":      "grains",
	"beans":     "grains",
	"pasta":     "grains",
	"flour":     "grains",
	"oats":      "grains",
	"cereal":    "grains",
	"spaghetti": "grains",
	"lentils":   "grains",

	// Bakery
	"bread":     "bakery",
	"baguette":  "bakery",
	"croissant": "bakery",
	"buns":      "bakery",
	"cake":      "bakery",

	// Beverages
	"coffee":       "beverages",
	"tea":          "beverages",
	"juice":        "beverages",
	"soda":         "beverages",
	"beer":         "beverages",
	"wine":         "beverages",
	"water":        "beverages",
	"orange juice": "beverages",

	// Frozen
	"ice cream":    "frozen",
	"frozen pizza": "frozen",
	"frozen peas":  "frozen",

	// Cleaning
	"detergent":     "cleaning",
	"bleach":        "cleaning",
	"sponge":        "cleaning",
	"dish soap":     "cleaning",
	"paper towels":  "cleaning",
	"trash bags":    "cleaning",
	"laundry soap":  "cleaning",
	"disinfectant":  "cleaning",
	"fabric softener": "cleaning",

	// Hygiene
	"shampoo":      "hygiene",
	"conditioner":  "hygiene",
	"soap":         "hygiene",
	"toothpaste":   "hygiene",
	"toilet paper": "hygiene",
	"deodorant":    "hygiene",
	"razor":        "hygiene",
}

var substringMatches = []struct {
	keyword  string
	category string
}{
	{"frozen", "frozen"},
	{"cleaner", "cleaning"},
	{"cleaning", "cleaning"},
	{"toothbrush", "hygiene"},
	{"shaving", "hygiene"},
	{"juice", "beverages"},
	{"drink", "beverages"},
	{"cola", "beverages"},
	{"bread", "bakery"},
	{"cookie", "bakery"},
	{"muffin", "bakery"},
	{"cheese", "dairy"},
	{"yogurt", "dairy"},
	{"cream", "dairy"},
	{"chicken", "meat"},
	{"steak", "meat"},
	{"fillet", "meat"},
	{"rice", "grains"},
	{"bean", "grains"},
	{"noodle", "grains"},
	{"berr", "produce"},
	{"salad", "produce"},
	{"pepper", "produce"},
}
