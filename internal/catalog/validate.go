package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Review ratings are bounded.
const (
	MinRating = 1
	MaxRating = 5
)

// ErrNotFound marks a missing entity in mutation results. Selectors never
// return it; they report absence with nil or false.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed mutation input. It is returned before
// any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewProduct is the input for creating a product.
type NewProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	CategoryID  int     `json:"categoryId"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	InStock     bool    `json:"inStock"`
}

// Validate checks n before it is sent.
func (n NewProduct) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if err := validatePrice(n.Price); err != nil {
		return err
	}
	if n.CategoryID <= 0 {
		return invalid("categoryId", "must be a positive id")
	}
	return nil
}

// Validate checks p before it is sent.
func (p ProductPatch) Validate() error {
	if p.IsEmpty() {
		return invalid("patch", "must set at least one field")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		return invalid("categoryId", "must be a positive id")
	}
	return nil
}

// NewReview is the input for adding a review to a product.
type NewReview struct {
	ProductID int
	Text      string
	Rating    int
	AuthorID  int
}

// Validate checks n before it is sent.
func (n NewReview) Validate() error {
	if n.ProductID <= 0 {
		return invalid("productId", "must be a positive id")
	}
	if strings.TrimSpace(n.Text) == "" {
		return invalid("text", "must not be empty")
	}
	if n.Rating < MinRating || n.Rating > MaxRating {
		return invalid("rating", fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}
	if n.AuthorID <= 0 {
		return invalid("authorId", "must be a positive id")
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return invalid("price", "must be a non-negative number")
	}
	return nil
}
