// Package category resolves category names to their canonical display
// attributes and classifies free-text titles into categories.
package category

import (
	"strings"

	"expensex/internal/core"
)

// FallbackColor is returned when no canonical category matches.
const FallbackColor = "#808080"

var defaultCategories = []core.Category{
	{Name: "Food", Icon: "🍔", Color: "#FFD700"},
	{Name: "Bills/Utilities", Icon: "💡", Color: "#FFA07A"},
	{Name: "Family", Icon: "👨‍👩‍👧‍👦", Color: "#90EE90"},
	{Name: "Healthcare", Icon: "🏥", Color: "#FF7F7F"},
	{Name: "Fuel", Icon: "⛽", Color: "#FF8C00"},
	{Name: "Phone/Internet", Icon: "📱", Color: "#87CEEB"},
	{Name: "Education", Icon: "📚", Color: "#9370DB"},
	{Name: "Entertainment", Icon: "🎬", Color: "#E6E6FA"},
	{Name: "Shopping", Icon: "🛍️", Color: "#FF69B4"},
	{Name: "Travel", Icon: "✈️", Color: "#00CED1"},
	{Name: "Socializing", Icon: "🍻", Color: "#CD853F"},
	{Name: "Withdrawal", Icon: "🏧", Color: "#D3D3D3"},
	{Name: "Transfer", Icon: "💸", Color: "#32CD32"},
	{Name: "Transportation", Icon: "🚗", Color: "#FFA500"},
	{Name: "Housing", Icon: "🏠", Color: "#ADD8E6"},
	{Name: "Miscellaneous", Icon: "📦", Color: "#808080"},
	{Name: core.GeneralCategory, Icon: "🧾", Color: "#94A3B8"},
}

// Catalog is an ordered, read-only list of canonical categories. Lookups
// scan in declaration order, so the first entry wins on duplicate colors.
type Catalog struct {
	categories []core.Category
}

// NewCatalog builds a catalog from the given categories. Entries with a
// blank name are dropped; later duplicates of a name are ignored.
func NewCatalog(categories []core.Category) *Catalog {
	seen := make(map[string]struct{}, len(categories))
	out := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		c.Name = name
		out = append(out, c)
	}
	return &Catalog{categories: out}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(defaultCategories)
}

// All returns a copy of the catalog entries in declaration order.
func (c *Catalog) All() []core.Category {
	return append([]core.Category(nil), c.categories...)
}

// Lookup finds a category by exact name.
func (c *Catalog) Lookup(name string) (core.Category, bool) {
	for _, cat := range c.categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return core.Category{}, false
}

// Details returns the category for name, or the General entry when the name
// is unknown.
func (c *Catalog) Details(name string) core.Category {
	if cat, ok := c.Lookup(core.CategoryName(name)); ok {
		return cat
	}
	if cat, ok := c.Lookup(core.GeneralCategory); ok {
		return cat
	}
	return core.Category{Name: core.GeneralCategory, Color: FallbackColor}
}

// ColorOf returns the canonical color of the named category, or
// FallbackColor.
func (c *Catalog) ColorOf(name string) string {
	if cat, ok := c.Lookup(name); ok && cat.Color != "" {
		return cat.Color
	}
	return FallbackColor
}

// ResolveColor normalizes a user-selected color to the canonical color of
// the first category carrying it, or FallbackColor when none does.
func (c *Catalog) ResolveColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return FallbackColor
	}
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Color, color) {
			return cat.Color
		}
	}
	return FallbackColor
}

// DisplayName returns the display name of a category value.
func DisplayName(cat core.Category) string {
	return core.CategoryName(strings.TrimSpace(cat.Name))
}
