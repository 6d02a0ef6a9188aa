package category

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Milk", "dairy"},
		{"rice", "grains"},
		{"Chicken", "meat"},
		{"bananas", "produce"},
		{"Coffee", "beverages"},
		{"detergent", "cleaning"},
		{"shampoo", "hygiene"},
		{"bread", "bakery"},
		{"ice cream", "frozen"},
	}

	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"frozen lasagna", "frozen"},
		{"glass cleaner", "cleaning"},
		{"chicken thighs", "meat"},
		{"blueberries", "produce"},
		{"grape juice box", "beverages"},
		{"whole wheat bread loaf", "bakery"},
	}

	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	if got := Categorize("mystery gadget"); got != "other" {
		t.Errorf("Categorize fallback = %q, want %q", got, "other")
	}
	if got := Categorize("  "); got != "other" {
		t.Errorf("Categorize empty = %q, want %q", got, "other")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dairy", "dairy"},
		{"DAIRY", "dairy"},
		{" produce ", "produce"},
		{"electronics", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
