// Package domain defines the catalog's persistent records, value types,
// error kinds and the persistence contracts shared by every store driver.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identity is the opaque, comparable identity of a caller as supplied by the
// transport layer after authentication.
type Identity string

// AnonymousIdentity is used when the transport supplies no caller identity.
const AnonymousIdentity Identity = "anonymous"

// String returns the raw identity value.
func (i Identity) String() string { return string(i) }

// Category classifies a resource. The set is closed and totally ordered by
// declaration order.
type Category string

// Supported categories, in index order.
const (
	CategoryTreatment     Category = "Treatment"
	CategoryPrevention    Category = "Prevention"
	CategoryResearch      Category = "Research"
	CategoryDietAdvice    Category = "DietAdvice"
	CategoryTestimonial   Category = "Testimonial"
	CategoryMedicalAdvice Category = "MedicalAdvice"
)

// Categories lists every category in index order.
var Categories = []Category{
	CategoryTreatment,
	CategoryPrevention,
	CategoryResearch,
	CategoryDietAdvice,
	CategoryTestimonial,
	CategoryMedicalAdvice,
}

// CategoryCount is the number of declared categories.
const CategoryCount = 6

// Ordinal returns the position of the category in index order, or -1 when the
// value is not a declared category.
func (c Category) Ordinal() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool { return c.Ordinal() >= 0 }

// Less orders categories by declaration order.
func (c Category) Less(other Category) bool { return c.Ordinal() < other.Ordinal() }

// ParseCategory resolves a category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", InvalidInput(fmt.Sprintf("unknown category %q", raw))
	}
	return c, nil
}

// UnmarshalText rejects undeclared categories, including when used as a JSON map key.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %q", string(c))
	}
	return []byte(c), nil
}

// Resource is a catalog record. Timestamps are unix seconds.
type Resource struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	CreatedAt   uint64   `json:"created_at"`
	UpdatedAt   uint64   `json:"updated_at"`
	Verified    bool     `json:"verified"`
	CreatedBy   Identity `json:"created_by"`
}

// ResourcePayload carries the caller-supplied fields for create and update.
type ResourcePayload struct {
	Title       string   `json:"title" validate:"required,utf8,max=100"`
	Description string   `json:"description" validate:"required,utf8,max=1000"`
	Category    Category `json:"category" validate:"category"`
}

// UnmarshalJSON decodes a resource while refusing unknown fields so that a
// snapshot of a different shape is rejected rather than partially applied.
func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	var decoded plain
	if err := strictUnmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Resource(decoded)
	return nil
}

func strictUnmarshal(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
