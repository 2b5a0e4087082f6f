package product

import (
	"github.com/google/uuid"

	"github.com/storefrontlabs/catalog-backend/internal/storage"
)

// Resource is the public representation of a product: the stored image
// paths resolved into browser-reachable URLs.
type Resource struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	Header  Document  `json:"header"`
	Details Document  `json:"details"`
	Footer  Document  `json:"footer"`
	Images  ImageSet  `json:"images"`
}

// NewResource maps a stored product onto its public shape. Resolution is
// pure: the product's stored paths are never mutated.
func NewResource(p *Product, store storage.Store) *Resource {
	images := NewImageSet()
	if p.Images.Header.Logo != "" {
		images.Header.Logo = store.URL(p.Images.Header.Logo)
	}
	if p.Images.Footer.Logo != "" {
		images.Footer.Logo = store.URL(p.Images.Footer.Logo)
	}
	for _, path := range p.Images.Details {
		images.Details = append(images.Details, store.URL(path))
	}

	return &Resource{
		ID:      p.ID,
		Slug:    p.Slug,
		Name:    p.Name,
		Header:  p.Header,
		Details: p.Details,
		Footer:  p.Footer,
		Images:  images,
	}
}
