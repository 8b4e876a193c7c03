// internal/validation/validator.go
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"maginhawa-directory/internal/place"

	"github.com/google/uuid"
)

// Error codes attached to field-level violations.
const (
	CodeParseError      = "PARSE_ERROR"
	CodeRequiredMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeMinLength       = "MIN_LENGTH_VIOLATION"
	CodeInvalidEnum     = "INVALID_ENUM_VALUE"
	CodeTimestampOrder  = "TIMESTAMP_ORDER"
)

// RootField is the field path used for record-level (non-field) errors.
const RootField = "(record)"

const minDescriptionLength = 10

var (
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlRegex   = regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
	hhmmRegex  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// FieldError names one offending field path and a human-readable reason.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the verdict for a single record. All checks run; every violation
// in the record is reported in one pass.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ErrorMessages flattens the result into "field: message" lines.
func (r *Result) ErrorMessages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasError reports whether the result contains an error for the given field
// path, including nested paths like "operatingHours.monday".
func (r *Result) HasError(field string) bool {
	for _, err := range r.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			return true
		}
	}
	return false
}

// ValidateRecord parses raw JSON and validates the record. Malformed JSON
// (including wrong-typed fields that break decoding) yields a single
// root-level parse error, never field errors.
func ValidateRecord(raw []byte) (*place.Place, *Result) {
	var p place.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &Result{
			Valid: false,
			Errors: []FieldError{{
				Field:   RootField,
				Code:    CodeParseError,
				Message: fmt.Sprintf("record is not well-formed JSON: %s", err.Error()),
			}},
		}
	}
	return &p, ValidatePlace(&p)
}

// ValidatePlace runs every field check against a parsed record and collects
// all violations. It never short-circuits.
func ValidatePlace(p *place.Place) *Result {
	var errs []FieldError

	errs = append(errs, checkIdentity(p)...)
	errs = append(errs, checkDescriptive(p)...)
	errs = append(errs, checkContact(p)...)
	errs = append(errs, checkMedia(p)...)
	errs = append(errs, checkBusiness(p)...)
	errs = append(errs, checkLocation(p)...)
	errs = append(errs, checkMetadata(p)...)
	errs = append(errs, checkOptional(p)...)

	return &Result{Valid: len(errs) == 0, Errors: errs}
}

func checkIdentity(p *place.Place) []FieldError {
	var errs []FieldError

	if p.ID == "" {
		errs = append(errs, FieldError{
			Field:   "id",
			Code:    CodeRequiredMissing,
			Message: "id is required",
		})
	} else if _, err := uuid.Parse(p.ID); err != nil {
		errs = append(errs, FieldError{
			Field:   "id",
			Code:    CodeInvalidFormat,
			Message: "id must be a valid UUID",
		})
	}

	if p.Slug == "" {
		errs = append(errs, FieldError{
			Field:   "slug",
			Code:    CodeRequiredMissing,
			Message: "slug is required",
		})
	} else if !slugRegex.MatchString(p.Slug) {
		errs = append(errs, FieldError{
			Field:   "slug",
			Code:    CodeInvalidFormat,
			Message: "slug must be kebab-case (lowercase letters, digits, single hyphens)",
		})
	}

	return errs
}

func checkDescriptive(p *place.Place) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, FieldError{
			Field:   "name",
			Code:    CodeRequiredMissing,
			Message: "name must be a non-empty string",
		})
	}

	if utf8.RuneCountInString(p.Description) < minDescriptionLength {
		errs = append(errs, FieldError{
			Field:   "description",
			Code:    CodeMinLength,
			Message: fmt.Sprintf("description must be at least %d characters", minDescriptionLength),
		})
	}

	if strings.TrimSpace(p.Address) == "" {
		errs = append(errs, FieldError{
			Field:   "address",
			Code:    CodeRequiredMissing,
			Message: "address must be a non-empty string",
		})
	}

	return errs
}

func checkContact(p *place.Place) []FieldError {
	var errs []FieldError

	if p.Email != "" && !emailRegex.MatchString(p.Email) {
		errs = append(errs, FieldError{
			Field:   "email",
			Code:    CodeInvalidFormat,
			Message: "email must be empty or a valid email address",
		})
	}

	if p.Website != "" && !urlRegex.MatchString(p.Website) {
		errs = append(errs, FieldError{
			Field:   "website",
			Code:    CodeInvalidFormat,
			Message: "website must be empty or a valid absolute URL",
		})
	}

	return errs
}

func checkMedia(p *place.Place) []FieldError {
	var errs []FieldError

	if p.LogoURL != "" && !urlRegex.MatchString(p.LogoURL) {
		errs = append(errs, FieldError{
			Field:   "logoUrl",
			Code:    CodeInvalidFormat,
			Message: "logoUrl must be empty or a valid absolute URL",
		})
	}

	if p.CoverImageURL != "" && !urlRegex.MatchString(p.CoverImageURL) {
		errs = append(errs, FieldError{
			Field:   "coverImageUrl",
			Code:    CodeInvalidFormat,
			Message: "coverImageUrl must be empty or a valid absolute URL",
		})
	}

	for i, u := range p.PhotosURLs {
		if u != "" && !urlRegex.MatchString(u) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("photosUrls[%d]", i),
				Code:    CodeInvalidFormat,
				Message: "photo URL must be empty or a valid absolute URL",
			})
		}
	}

	return errs
}

func checkBusiness(p *place.Place) []FieldError {
	var errs []FieldError

	for day, hours := range p.OperatingHours {
		if hours.Closed {
			continue
		}
		if !hhmmRegex.MatchString(hours.Open) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("operatingHours.%s.open", day),
				Code:    CodeInvalidFormat,
				Message: "open must be HH:MM unless the day is marked closed",
			})
		}
		if !hhmmRegex.MatchString(hours.Close) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("operatingHours.%s.close", day),
				Code:    CodeInvalidFormat,
				Message: "close must be HH:MM unless the day is marked closed",
			})
		}
	}

	valid := false
	for _, tier := range place.PriceRanges {
		if p.PriceRange == tier {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, FieldError{
			Field:   "priceRange",
			Code:    CodeInvalidEnum,
			Message: fmt.Sprintf("priceRange must be one of %v", place.PriceRanges),
		})
	}

	if len(p.CuisineTypes) == 0 {
		errs = append(errs, FieldError{
			Field:   "cuisineTypes",
			Code:    CodeRequiredMissing,
			Message: "cuisineTypes must have at least one element",
		})
	}

	return errs
}

func checkLocation(p *place.Place) []FieldError {
	var errs []FieldError

	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		errs = append(errs, FieldError{
			Field:   "latitude",
			Code:    CodeInvalidValue,
			Message: "latitude must be between -90 and 90",
		})
	}

	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		errs = append(errs, FieldError{
			Field:   "longitude",
			Code:    CodeInvalidValue,
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

func checkMetadata(p *place.Place) []FieldError {
	var errs []FieldError

	createdAt, createdErr := time.Parse(time.RFC3339, p.CreatedAt)
	if createdErr != nil {
		errs = append(errs, FieldError{
			Field:   "createdAt",
			Code:    CodeInvalidFormat,
			Message: "createdAt must be an ISO 8601 date-time",
		})
	}

	updatedAt, updatedErr := time.Parse(time.RFC3339, p.UpdatedAt)
	if updatedErr != nil {
		errs = append(errs, FieldError{
			Field:   "updatedAt",
			Code:    CodeInvalidFormat,
			Message: "updatedAt must be an ISO 8601 date-time",
		})
	}

	if createdErr == nil && updatedErr == nil && updatedAt.Before(createdAt) {
		errs = append(errs, FieldError{
			Field:   "updatedAt",
			Code:    CodeTimestampOrder,
			Message: "updatedAt must not be earlier than createdAt",
		})
	}

	for i, c := range p.Contributors {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("contributors[%d].name", i),
				Code:    CodeRequiredMissing,
				Message: "contributor name is required",
			})
		}
		if c.Action != place.ActionCreated && c.Action != place.ActionUpdated {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("contributors[%d].action", i),
				Code:    CodeInvalidEnum,
				Message: "contributor action must be created or updated",
			})
		}
		if _, err := time.Parse(time.RFC3339, c.ContributedAt); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("contributors[%d].contributedAt", i),
				Code:    CodeInvalidFormat,
				Message: "contributedAt must be an ISO 8601 date-time",
			})
		}
	}

	return errs
}

func checkOptional(p *place.Place) []FieldError {
	var errs []FieldError

	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		errs = append(errs, FieldError{
			Field:   "rating",
			Code:    CodeInvalidValue,
			Message: "rating must be between 0 and 5",
		})
	}

	if p.ReviewCount != nil && *p.ReviewCount < 0 {
		errs = append(errs, FieldError{
			Field:   "reviewCount",
			Code:    CodeInvalidValue,
			Message: "reviewCount must be a non-negative integer",
		})
	}

	return errs
}
