// internal/stats/builder_test.go
package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maginhawa-directory/internal/place"
)

// ==========================
// Test Helper Functions
// ==========================

func recordWith(cuisines, amenities, tags []string, price string) place.Place {
	return place.Place{
		Slug:         "some-place",
		CuisineTypes: cuisines,
		Amenities:    amenities,
		Tags:         tags,
		PriceRange:   price,
	}
}

// ==========================
// Aggregation Tests
// ==========================

func TestBuild_DistinctSortedValues(t *testing.T) {
	places := []place.Place{
		recordWith([]string{"korean", "filipino"}, []string{"wifi"}, []string{"late-night"}, "$"),
		recordWith([]string{"filipino"}, []string{"parking", "wifi"}, nil, "$$"),
		recordWith([]string{"italian"}, nil, []string{"date-spot", "late-night"}, "$"),
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Build(places, now)

	assert.Equal(t, 3, s.TotalPlaces)
	assert.Equal(t, []string{"filipino", "italian", "korean"}, s.CuisineTypes)
	assert.Equal(t, 3, s.UniqueCuisines)
	assert.Equal(t, []string{"parking", "wifi"}, s.Amenities)
	assert.Equal(t, 2, s.UniqueAmenities)
	assert.Equal(t, []string{"date-spot", "late-night"}, s.Tags)
	assert.Equal(t, 2, s.UniqueTags)
	assert.Equal(t, []string{"$", "$$"}, s.PriceRanges)
	assert.Equal(t, "2024-06-01T12:00:00Z", s.GeneratedAt)
}

func TestBuild_EmptyArraysContributeNothing(t *testing.T) {
	places := []place.Place{
		recordWith([]string{"filipino"}, nil, nil, "$"),
		recordWith(nil, []string{}, []string{}, ""),
	}

	s := Build(places, time.Now())

	assert.Equal(t, 2, s.TotalPlaces)
	assert.Equal(t, []string{"filipino"}, s.CuisineTypes)
	assert.Empty(t, s.Amenities)
	assert.Empty(t, s.Tags)
	assert.Equal(t, []string{"$"}, s.PriceRanges)
}

func TestBuild_PaymentMethodsDistinctAndSorted(t *testing.T) {
	places := []place.Place{
		{Slug: "mangan-ti-ama", PaymentMethods: []string{"gcash", "cash"}},
		{Slug: "crazy-katsu", PaymentMethods: []string{"cash", "maya"}},
		{Slug: "tomato-kick"},
	}

	s := Build(places, time.Now())

	assert.Equal(t, []string{"cash", "gcash", "maya"}, s.PaymentMethods)
}

func TestBuild_PreservesOriginalCasing(t *testing.T) {
	places := []place.Place{
		recordWith([]string{"Filipino", "filipino"}, nil, nil, "$"),
	}

	s := Build(places, time.Now())

	// Distinct values are case-sensitive; normalization is the records' job.
	assert.Equal(t, []string{"Filipino", "filipino"}, s.CuisineTypes)
	assert.Equal(t, 2, s.UniqueCuisines)
}

func TestBuild_DeterministicApartFromGeneratedAt(t *testing.T) {
	places := []place.Place{
		recordWith([]string{"korean", "japanese"}, []string{"wifi"}, []string{"cozy"}, "$$"),
		recordWith([]string{"japanese"}, []string{"outdoor-seating"}, nil, "$$$"),
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	first := Build(places, now)
	second := Build(places, now)

	require.Equal(t, first, second)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkBuild(b *testing.B) {
	places := make([]place.Place, 100)
	for i := range places {
		places[i] = recordWith(
			[]string{"filipino", "korean"},
			[]string{"wifi", "parking"},
			[]string{"late-night"},
			"$$",
		)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Build(places, time.Now())
	}
}
