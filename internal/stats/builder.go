// internal/stats/builder.go
package stats

import (
	"sort"
	"time"

	"maginhawa-directory/internal/place"
)

// Stats is the published collection-wide aggregate consumed by the filtering
// UI. Value arrays are sorted lexicographically so repeated runs over the same
// input produce identical artifacts apart from generatedAt.
type Stats struct {
	TotalPlaces     int      `json:"totalPlaces"`
	UniqueCuisines  int      `json:"uniqueCuisines"`
	UniqueAmenities int      `json:"uniqueAmenities"`
	UniqueTags      int      `json:"uniqueTags"`
	PriceRanges     []string `json:"priceRanges"`
	PaymentMethods  []string `json:"paymentMethods"`
	CuisineTypes    []string `json:"cuisineTypes"`
	Amenities       []string `json:"amenities"`
	Tags            []string `json:"tags"`
	GeneratedAt     string   `json:"generatedAt"`
}

// Build computes distinct values per categorical field across all valid
// records. Original casing is preserved; duplicates collapse; records with
// missing or empty arrays simply contribute nothing.
func Build(places []place.Place, now time.Time) *Stats {
	priceRanges := make(map[string]struct{})
	paymentMethods := make(map[string]struct{})
	cuisineTypes := make(map[string]struct{})
	amenities := make(map[string]struct{})
	tags := make(map[string]struct{})

	for i := range places {
		p := &places[i]
		if p.PriceRange != "" {
			priceRanges[p.PriceRange] = struct{}{}
		}
		collect(paymentMethods, p.PaymentMethods)
		collect(cuisineTypes, p.CuisineTypes)
		collect(amenities, p.Amenities)
		collect(tags, p.Tags)
	}

	s := &Stats{
		TotalPlaces:    len(places),
		PriceRanges:    sorted(priceRanges),
		PaymentMethods: sorted(paymentMethods),
		CuisineTypes:   sorted(cuisineTypes),
		Amenities:      sorted(amenities),
		Tags:           sorted(tags),
		GeneratedAt:    place.Timestamp(now),
	}
	s.UniqueCuisines = len(s.CuisineTypes)
	s.UniqueAmenities = len(s.Amenities)
	s.UniqueTags = len(s.Tags)
	return s
}

func collect(set map[string]struct{}, values []string) {
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
