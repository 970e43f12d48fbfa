package catalog

import "strings"

// FieldSet is a bit set of patchable product fields.
type FieldSet uint8

const (
	FieldName FieldSet = 1 << iota
	FieldPrice
	FieldDescription
	FieldCategoryID
	FieldImageURL
	FieldInStock

	AllFields = FieldName | FieldPrice | FieldDescription | FieldCategoryID | FieldImageURL | FieldInStock
)

// Has reports whether every field in o is in s.
func (s FieldSet) Has(o FieldSet) bool { return s&o == o }

// String lists the fields by their wire names.
func (s FieldSet) String() string {
	var parts []string
	for _, f := range []struct {
		bit  FieldSet
		name string
	}{
		{FieldName, "name"},
		{FieldPrice, "price"},
		{FieldDescription, "description"},
		{FieldCategoryID, "categoryId"},
		{FieldImageURL, "imageUrl"},
		{FieldInStock, "inStock"},
	} {
		if s.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, ",")
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

// ProductPatch is a partial product update. Nil fields are left alone.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	CategoryID  *int     `json:"categoryId,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
}

// Fields returns the set of fields the patch writes.
func (p ProductPatch) Fields() FieldSet {
	var s FieldSet
	if p.Name != nil {
		s |= FieldName
	}
	if p.Price != nil {
		s |= FieldPrice
	}
	if p.Description != nil {
		s |= FieldDescription
	}
	if p.CategoryID != nil {
		s |= FieldCategoryID
	}
	if p.ImageURL != nil {
		s |= FieldImageURL
	}
	if p.InStock != nil {
		s |= FieldInStock
	}
	return s
}

// IsEmpty reports whether the patch writes nothing.
func (p ProductPatch) IsEmpty() bool { return p.Fields() == 0 }

// Only keeps the fields in s.
func (p ProductPatch) Only(s FieldSet) ProductPatch {
	return p.Without(^s)
}

// Without drops the fields in s.
func (p ProductPatch) Without(s FieldSet) ProductPatch {
	if s.Has(FieldName) {
		p.Name = nil
	}
	if s.Has(FieldPrice) {
		p.Price = nil
	}
	if s.Has(FieldDescription) {
		p.Description = nil
	}
	if s.Has(FieldCategoryID) {
		p.CategoryID = nil
	}
	if s.Has(FieldImageURL) {
		p.ImageURL = nil
	}
	if s.Has(FieldInStock) {
		p.InStock = nil
	}
	return p
}

// Merge returns p with every field set in o overriding it.
func (p ProductPatch) Merge(o ProductPatch) ProductPatch {
	if o.Name != nil {
		p.Name = o.Name
	}
	if o.Price != nil {
		p.Price = o.Price
	}
	if o.Description != nil {
		p.Description = o.Description
	}
	if o.CategoryID != nil {
		p.CategoryID = o.CategoryID
	}
	if o.ImageURL != nil {
		p.ImageURL = o.ImageURL
	}
	if o.InStock != nil {
		p.InStock = o.InStock
	}
	return p
}

// Capture returns the current values of the fields in s.
func (p Product) Capture(s FieldSet) ProductPatch {
	var out ProductPatch
	if s.Has(FieldName) {
		out.Name = Ptr(p.Name)
	}
	if s.Has(FieldPrice) {
		out.Price = Ptr(p.Price)
	}
	if s.Has(FieldDescription) {
		out.Description = Ptr(p.Description)
	}
	if s.Has(FieldCategoryID) {
		out.CategoryID = Ptr(p.CategoryID)
	}
	if s.Has(FieldImageURL) {
		out.ImageURL = Ptr(p.ImageURL)
	}
	if s.Has(FieldInStock) {
		out.InStock = Ptr(p.InStock)
	}
	return out
}

// Apply writes patch onto p. It returns the patched product and the inverse
// patch that restores the overwritten values.
func (p Product) Apply(patch ProductPatch) (Product, ProductPatch) {
	inverse := p.Capture(patch.Fields())
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	return p, inverse
}

// Diff returns the patch that turns from into to, limited to patchable
// fields.
func Diff(from, to Product) ProductPatch {
	var s FieldSet
	if from.Name != to.Name {
		s |= FieldName
	}
	if from.Price != to.Price {
		s |= FieldPrice
	}
	if from.Description != to.Description {
		s |= FieldDescription
	}
	if from.CategoryID != to.CategoryID {
		s |= FieldCategoryID
	}
	if from.ImageURL != to.ImageURL {
		s |= FieldImageURL
	}
	if from.InStock != to.InStock {
		s |= FieldInStock
	}
	return to.Capture(s)
}
