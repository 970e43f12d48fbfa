package ui

import (
	"fmt"
	"strings"

	"github.com/five82/storefront/internal/catalog"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// stars renders a rating as filled and empty stars.
func stars(rating int) string {
	rating = max(catalog.MinRating-1, min(rating, catalog.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", catalog.MaxRating-rating)
}

func stockLabel(inStock bool) string {
	if inStock {
		return "in-stock"
	}
	return "out-of-stock"
}
