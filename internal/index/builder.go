// internal/index/builder.go
package index

import (
	"maginhawa-directory/internal/place"
)

// Entry is the reduced-field projection of one record, kept small so the
// listing/search payload stays cheap. Contact, media, hours, and location are
// deliberately absent.
type Entry struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	PriceRange   string   `json:"priceRange"`
	CuisineTypes []string `json:"cuisineTypes"`
	Tags         []string `json:"tags,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Specialties  []string `json:"specialties,omitempty"`
	Verified     bool     `json:"verified,omitempty"`
}

// Index is the published artifact: an ordered sequence of projections.
type Index struct {
	Places []Entry `json:"places"`
}

// EntryOf is the pure projection from a full record to its index entry.
func EntryOf(p *place.Place) Entry {
	return Entry{
		ID:           p.ID,
		Slug:         p.Slug,
		Name:         p.Name,
		Description:  p.Description,
		Address:      p.Address,
		PriceRange:   p.PriceRange,
		CuisineTypes: p.CuisineTypes,
		Tags:         p.Tags,
		Amenities:    p.Amenities,
		Specialties:  p.Specialties,
		Verified:     p.Verified,
	}
}

// Build projects every valid record in input order. The caller guarantees the
// set is non-empty; publishing an empty index is a collection-level error
// handled before this point.
func Build(places []place.Place) *Index {
	entries := make([]Entry, 0, len(places))
	for i := range places {
		entries = append(entries, EntryOf(&places[i]))
	}
	return &Index{Places: entries}
}
