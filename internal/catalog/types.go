package catalog

import (
	"slices"
	"time"
)

// NoCategory is the "no filter" sentinel for category selection.
const NoCategory = 0

// Category is a leaf entity.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// User is a leaf entity; reviews reference it as their author.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Review references its author and product by ID.
type Review struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	AuthorID  int       `json:"authorId"`
	ProductID int       `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product references its category by ID and its reviews by an ordered ID
// list. ReviewIDs may name reviews that are not cached.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	CategoryID  int     `json:"categoryId"`
	ReviewIDs   []int   `json:"reviewIds"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	InStock     bool    `json:"inStock"`
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	p.ReviewIDs = slices.Clone(p.ReviewIDs)
	return p
}

// Equal reports whether p and o hold the same values.
func (p Product) Equal(o Product) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Price == o.Price &&
		p.Description == o.Description &&
		p.CategoryID == o.CategoryID &&
		p.ImageURL == o.ImageURL &&
		p.InStock == o.InStock &&
		slices.Equal(p.ReviewIDs, o.ReviewIDs)
}

// AddReviewID appends id to ReviewIDs unless it is already linked. The
// returned product never shares its ReviewIDs backing array with p.
func (p Product) AddReviewID(id int) (Product, bool) {
	if slices.Contains(p.ReviewIDs, id) {
		return p, false
	}
	ids := make([]int, len(p.ReviewIDs), len(p.ReviewIDs)+1)
	copy(ids, p.ReviewIDs)
	p.ReviewIDs = append(ids, id)
	return p, true
}

// Normalized is the flat form of a denormalized response: one ordered list
// per entity type, in first-seen order.
type Normalized struct {
	Products   []Product
	Categories []Category
	Users      []User
	Reviews    []Review
}

// IsEmpty reports whether n carries no entities.
func (n Normalized) IsEmpty() bool {
	return len(n.Products) == 0 && len(n.Categories) == 0 && len(n.Users) == 0 && len(n.Reviews) == 0
}
