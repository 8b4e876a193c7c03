// internal/submission/schema.go
package submission

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// placeSchema is the structural contract for submitted place payloads. It
// rejects malformed shapes (wrong types, non-object roots) before field
// validation runs, so collaborators get one clear parse-level answer instead
// of a cascade of field errors.
const placeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "slug": {"type": "string"},
    "name": {"type": "string"},
    "description": {"type": "string"},
    "address": {"type": "string"},
    "phone": {"type": "string"},
    "email": {"type": "string"},
    "website": {"type": "string"},
    "logoUrl": {"type": "string"},
    "coverImageUrl": {"type": "string"},
    "photosUrls": {"type": "array", "items": {"type": "string"}},
    "cuisineTypes": {"type": "array", "items": {"type": "string"}},
    "priceRange": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "amenities": {"type": "array", "items": {"type": "string"}},
    "specialties": {"type": "array", "items": {"type": "string"}},
    "paymentMethods": {"type": "array", "items": {"type": "string"}},
    "operatingHours": {"type": "object"},
    "latitude": {"type": "number"},
    "longitude": {"type": "number"},
    "rating": {"type": "number"},
    "reviewCount": {"type": "integer"},
    "verified": {"type": "boolean"},
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"},
    "createdBy": {"type": "string"},
    "contributors": {"type": "array", "items": {"type": "object"}}
  }
}`

var placeSchemaLoader = gojsonschema.NewStringLoader(placeSchema)

// CheckShape validates the raw payload against the structural schema.
// It returns human-readable descriptions of every structural violation.
func CheckShape(raw []byte) ([]string, error) {
	result, err := gojsonschema.Validate(placeSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema check failed: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return violations, nil
}
