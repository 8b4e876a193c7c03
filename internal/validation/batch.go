// internal/validation/batch.go
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"maginhawa-directory/internal/collection"
	"maginhawa-directory/internal/common/metrics"
	"maginhawa-directory/internal/place"
)

// Duplicate-identity error codes. Uniqueness of id and slug is a collection
// property, so it is checked here rather than in the single-record validator.
const (
	CodeDuplicateID   = "DUPLICATE_ID"
	CodeDuplicateSlug = "DUPLICATE_SLUG"
)

// FileResult pairs a file identifier with its field errors.
type FileResult struct {
	File   string       `json:"file"`
	Errors []FieldError `json:"errors"`
}

// ValidRecord is a record that passed validation, with its source file kept so
// downstream builders preserve file order.
type ValidRecord struct {
	File  string
	Place *place.Place
}

// Summary is the outcome of validating a whole collection. Each record is
// validated independently; a failure in one never aborts the others.
type Summary struct {
	Total    int          `json:"total"`
	Valid    int          `json:"valid"`
	Invalid  int          `json:"invalid"`
	Failures []FileResult `json:"failures,omitempty"`

	records []ValidRecord
}

// AllValid reports whether every record in the collection passed.
func (s *Summary) AllValid() bool {
	return s.Invalid == 0
}

// ValidRecords returns the records that passed, in file order.
func (s *Summary) ValidRecords() []ValidRecord {
	return s.records
}

// Places returns just the parsed records that passed, in file order.
func (s *Summary) Places() []place.Place {
	out := make([]place.Place, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r.Place)
	}
	return out
}

// ValidateCollection validates every record file and partitions the results.
// Duplicate ids and slugs across the collection are charged to the later file
// so the first-committed record stays valid.
func ValidateCollection(files []collection.File) *Summary {
	summary := &Summary{Total: len(files)}

	seenIDs := make(map[string]string)   // id -> first file
	seenSlugs := make(map[string]string) // slug -> first file

	for _, f := range files {
		p, result := ValidateRecord(f.Data)

		if p != nil && result.Valid {
			if first, dup := seenIDs[p.ID]; dup {
				result.Valid = false
				result.Errors = append(result.Errors, FieldError{
					Field:   "id",
					Code:    CodeDuplicateID,
					Message: fmt.Sprintf("id already used by %s", first),
				})
			}
			if first, dup := seenSlugs[p.Slug]; dup {
				result.Valid = false
				result.Errors = append(result.Errors, FieldError{
					Field:   "slug",
					Code:    CodeDuplicateSlug,
					Message: fmt.Sprintf("slug already used by %s", first),
				})
			}
		}

		if p != nil {
			if _, dup := seenIDs[p.ID]; !dup && p.ID != "" {
				seenIDs[p.ID] = f.Name
			}
			if _, dup := seenSlugs[p.Slug]; !dup && p.Slug != "" {
				seenSlugs[p.Slug] = f.Name
			}
		}

		if result.Valid {
			summary.Valid++
			summary.records = append(summary.records, ValidRecord{File: f.Name, Place: p})
			metrics.RecordsValidated.WithLabelValues("valid").Inc()
		} else {
			summary.Invalid++
			summary.Failures = append(summary.Failures, FileResult{File: f.Name, Errors: result.Errors})
			metrics.RecordsValidated.WithLabelValues("invalid").Inc()
			for _, fe := range result.Errors {
				metrics.ValidationErrors.WithLabelValues(fe.Code).Inc()
			}
		}
	}

	return summary
}

// Report renders the verbose human-readable report: one block per invalid
// record, errors bulleted, followed by the totals line.
func (s *Summary) Report() string {
	var b strings.Builder

	for _, failure := range s.Failures {
		fmt.Fprintf(&b, "%s\n", failure.File)
		for _, e := range failure.Errors {
			fmt.Fprintf(&b, "  - %s: %s\n", e.Field, e.Message)
		}
	}

	fmt.Fprintf(&b, "total: %d, valid: %d, invalid: %d\n", s.Total, s.Valid, s.Invalid)
	return b.String()
}

// MachineReport renders the machine-parseable JSON summary for automated
// pipelines.
func (s *Summary) MachineReport() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	return string(data), nil
}
