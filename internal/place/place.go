// internal/place/place.go
package place

import (
	"regexp"
	"strings"
	"time"
)

// Price range tiers, ordered cheapest to most expensive.
const (
	PriceBudget   = "$"
	PriceModerate = "$$"
	PriceUpscale  = "$$$"
	PricePremium  = "$$$$"
)

// PriceRanges lists the four accepted tiers.
var PriceRanges = []string{PriceBudget, PriceModerate, PriceUpscale, PricePremium}

// Contributor actions recorded in the append-only contributor log.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// DayHours describes one day's opening window. A closed day carries
// Closed=true and no open/close times.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// Contributor is one entry in a record's append-only contribution log.
type Contributor struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	GitHub        string `json:"github,omitempty"`
	ContributedAt string `json:"contributedAt"`
	Action        string `json:"action"`
}

// Place is one restaurant's full record, the source-of-truth unit of the
// directory. Timestamps stay as strings so that malformed values surface as
// field validation errors instead of breaking the decode of the whole record.
type Place struct {
	// Identity
	ID   string `json:"id"`
	Slug string `json:"slug"`

	// Descriptive
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`

	// Contact (optional)
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	// Media (optional)
	LogoURL       string   `json:"logoUrl,omitempty"`
	CoverImageURL string   `json:"coverImageUrl,omitempty"`
	PhotosURLs    []string `json:"photosUrls,omitempty"`

	// Business details
	OperatingHours map[string]DayHours `json:"operatingHours,omitempty"`
	PriceRange     string              `json:"priceRange"`
	PaymentMethods []string            `json:"paymentMethods,omitempty"`

	// Categorization
	Tags         []string `json:"tags,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	CuisineTypes []string `json:"cuisineTypes"`
	Specialties  []string `json:"specialties,omitempty"`

	// Location (optional)
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Metadata
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
	CreatedBy    string        `json:"createdBy,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`

	// Optional future fields
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Verified    bool     `json:"verified,omitempty"`
}

// FileName derives the record's file identifier from its slug.
func (p *Place) FileName() string {
	return p.Slug + ".json"
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a kebab-case slug from a display name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugCleanup.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Timestamp formats t the way record metadata stores timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
