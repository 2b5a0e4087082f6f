package product

import (
	"time"

	"github.com/google/uuid"
)

// Document is one structured content section of a product (header, details
// or footer). Its keys are agreed between the submitting client and the
// consuming storefront; the backend stores them verbatim.
type Document map[string]interface{}

// SectionImages holds the single image slot of the header or footer section.
type SectionImages struct {
	Logo string `json:"logo,omitempty"`
}

// ImageSet maps each section to its stored image paths. Details carries an
// ordered list; header and footer carry at most one logo each.
type ImageSet struct {
	Header  SectionImages `json:"header"`
	Details []string      `json:"details"`
	Footer  SectionImages `json:"footer"`
}

// NewImageSet returns an empty image set with a non-nil details list so it
// serializes as [] rather than null.
func NewImageSet() ImageSet {
	return ImageSet{Details: []string{}}
}

// Paths lists every stored path the set references.
func (s ImageSet) Paths() []string {
	paths := make([]string, 0, len(s.Details)+2)
	if s.Header.Logo != "" {
		paths = append(paths, s.Header.Logo)
	}
	paths = append(paths, s.Details...)
	if s.Footer.Logo != "" {
		paths = append(paths, s.Footer.Logo)
	}
	return paths
}

// Product is a catalog entry: three structured documents plus the stored
// paths of the images attached to them.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Header    Document  `json:"header"`
	Details   Document  `json:"details"`
	Footer    Document  `json:"footer"`
	Images    ImageSet  `json:"images"`
	CreatedBy uuid.UUID `json:"created_by"`
	UpdatedBy uuid.UUID `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
