// internal/submission/service_test.go
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
	"maginhawa-directory/internal/place"
)

// ==========================
// Test Helper Functions
// ==========================

type memorySink struct {
	saved []*Proposal
}

func (s *memorySink) Save(p *Proposal) error {
	s.saved = append(s.saved, p)
	return nil
}

type recordingNotifier struct {
	received []*Proposal
}

func (n *recordingNotifier) ProposalReceived(_ context.Context, p *Proposal) error {
	n.received = append(n.received, p)
	return nil
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

type serviceEnv struct {
	recordsDir string
	sink       *memorySink
	notifier   *recordingNotifier
	service    *Service
}

func newServiceEnv(t *testing.T, limiter Limiter) *serviceEnv {
	t.Helper()
	env := &serviceEnv{
		recordsDir: t.TempDir(),
		sink:       &memorySink{},
		notifier:   &recordingNotifier{},
	}
	env.service = NewService(env.recordsDir, limiter, env.sink, env.notifier, logger.NewTestLogger(t)).
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	return env
}

func (e *serviceEnv) seedRecord(t *testing.T, p *place.Place) {
	t.Helper()
	data, err := json.MarshalIndent(p, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(e.recordsDir, p.FileName()), data, 0o644))
}

func testSubmitter() Submitter {
	return Submitter{Name: "Juan dela Cruz", Email: "juan@example.ph", GitHub: "jdelacruz"}
}

func createPayload(t *testing.T, name string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"name":         name,
		"description":  "A hole-in-the-wall serving silog meals until midnight.",
		"address":      "Maginhawa St, Quezon City",
		"priceRange":   "$",
		"cuisineTypes": []string{"filipino"},
	})
	require.NoError(t, err)
	return data
}

func existingRecord(slug string) *place.Place {
	return &place.Place{
		ID:           "550e8400-e29b-41d4-a716-446655440000",
		Slug:         slug,
		Name:         "Existing Place",
		Description:  "The record already committed to the collection.",
		Address:      "Maginhawa St, Quezon City",
		PriceRange:   place.PriceBudget,
		CuisineTypes: []string{"filipino"},
		CreatedAt:    "2024-01-15T08:30:00Z",
		UpdatedAt:    "2024-01-15T08:30:00Z",
		CreatedBy:    "原author",
		Contributors: []place.Contributor{
			{Name: "Original Author", ContributedAt: "2024-01-15T08:30:00Z", Action: place.ActionCreated},
		},
	}
}

// ==========================
// Create Submission Tests
// ==========================

func TestService_Create_StampsLifecycleFields(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	proposal, rejection, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), createPayload(t, "Kanto Freestyle Breakfast"))

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, proposal)

	assert.Equal(t, ActionCreate, proposal.Action)
	assert.Equal(t, "kanto-freestyle-breakfast", proposal.Slug)
	assert.Equal(t, "2024-06-01T12:00:00Z", proposal.SubmittedAt)

	record := proposal.Record
	require.NotNil(t, record)
	_, err = uuid.Parse(record.ID)
	assert.NoError(t, err, "create must assign a fresh UUID")
	assert.Equal(t, "kanto-freestyle-breakfast", record.Slug)
	assert.Equal(t, "2024-06-01T12:00:00Z", record.CreatedAt)
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
	assert.Equal(t, "jdelacruz", record.CreatedBy)
	assert.False(t, record.Verified, "submissions can never self-verify")

	require.Len(t, record.Contributors, 1)
	assert.Equal(t, place.ActionCreated, record.Contributors[0].Action)
	assert.Equal(t, "Juan dela Cruz", record.Contributors[0].Name)

	require.Len(t, env.sink.saved, 1)
	require.Len(t, env.notifier.received, 1)
}

func TestService_Create_IgnoresClientSuppliedIdentity(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	payload := map[string]interface{}{
		"id":           "99999999-9999-4999-8999-999999999999",
		"slug":         "hand-picked-slug",
		"name":         "Kanto Freestyle Breakfast",
		"description":  "A hole-in-the-wall serving silog meals until midnight.",
		"address":      "Maginhawa St, Quezon City",
		"priceRange":   "$",
		"cuisineTypes": []string{"filipino"},
		"verified":     true,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	proposal, rejection, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), raw)
	require.NoError(t, err)
	require.Nil(t, rejection)

	assert.NotEqual(t, "99999999-9999-4999-8999-999999999999", proposal.Record.ID)
	assert.Equal(t, "kanto-freestyle-breakfast", proposal.Record.Slug, "slug derives from the name, not the payload")
	assert.False(t, proposal.Record.Verified)
}

func TestService_Create_RejectsInvalidRecord(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	raw, err := json.Marshal(map[string]interface{}{
		"name":         "Bad Place",
		"description":  "short",
		"address":      "",
		"priceRange":   "$$$$$",
		"cuisineTypes": []string{},
	})
	require.NoError(t, err)

	proposal, rejection, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), raw)

	require.NoError(t, err)
	assert.Nil(t, proposal)
	require.NotNil(t, rejection)
	assert.Empty(t, rejection.Shape)
	assert.NotEmpty(t, rejection.Fields)
	assert.Empty(t, env.sink.saved, "rejected submissions must not produce proposals")
	assert.Empty(t, env.notifier.received)
}

func TestService_Create_RejectsWrongShapedPayload(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	raw := []byte(`{"name": 42, "cuisineTypes": "filipino"}`)

	proposal, rejection, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), raw)

	require.NoError(t, err)
	assert.Nil(t, proposal)
	require.NotNil(t, rejection)
	assert.NotEmpty(t, rejection.Shape)
	assert.Empty(t, rejection.Fields, "shape failures must not cascade into field errors")
}

func TestService_Create_RejectsSlugCollision(t *testing.T) {
	env := newServiceEnv(t, allowAll{})
	env.seedRecord(t, existingRecord("kanto-freestyle-breakfast"))

	_, _, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), createPayload(t, "Kanto Freestyle Breakfast"))

	require.Error(t, err)
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeDuplicateSlug, code)
}

func TestService_Create_RateLimited(t *testing.T) {
	env := newServiceEnv(t, denyAll{})

	_, _, err := env.service.Create(context.Background(), "juan@example.ph", testSubmitter(), createPayload(t, "Some Place"))

	require.Error(t, err)
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRateLimitExceeded, code)
	assert.Empty(t, env.sink.saved)
}

// ==========================
// Update Submission Tests
// ==========================

func TestService_Update_PreservesProvenance(t *testing.T) {
	env := newServiceEnv(t, allowAll{})
	env.seedRecord(t, existingRecord("existing-place"))

	raw, err := json.Marshal(map[string]interface{}{
		"name":         "Existing Place",
		"description":  "Updated description with the new house specialty.",
		"address":      "Maginhawa St, Quezon City",
		"priceRange":   "$$",
		"cuisineTypes": []string{"filipino", "fusion"},
	})
	require.NoError(t, err)

	proposal, rejection, err := env.service.Update(context.Background(), "juan@example.ph", testSubmitter(), "existing-place", raw)

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, proposal)

	record := proposal.Record
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", record.ID, "update must keep the original id")
	assert.Equal(t, "existing-place", record.Slug)
	assert.Equal(t, "2024-01-15T08:30:00Z", record.CreatedAt)
	assert.Equal(t, "原author", record.CreatedBy)
	assert.Equal(t, "2024-06-01T12:00:00Z", record.UpdatedAt)
	assert.Equal(t, place.PriceModerate, record.PriceRange)

	require.Len(t, record.Contributors, 2, "update appends to the contributor log")
	assert.Equal(t, place.ActionCreated, record.Contributors[0].Action)
	assert.Equal(t, place.ActionUpdated, record.Contributors[1].Action)
	assert.Equal(t, "Juan dela Cruz", record.Contributors[1].Name)
}

func TestService_Update_UnknownSlug(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	_, _, err := env.service.Update(context.Background(), "juan@example.ph", testSubmitter(), "no-such-place", createPayload(t, "No Such Place"))

	require.Error(t, err)
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRecordNotFound, code)
}

// ==========================
// Delete Submission Tests
// ==========================

func TestService_Delete(t *testing.T) {
	env := newServiceEnv(t, allowAll{})
	env.seedRecord(t, existingRecord("existing-place"))

	proposal, err := env.service.Delete(context.Background(), "juan@example.ph", testSubmitter(), "existing-place")

	require.NoError(t, err)
	assert.Equal(t, ActionDelete, proposal.Action)
	assert.Equal(t, "existing-place", proposal.Slug)
	assert.Nil(t, proposal.Record, "delete proposals carry no record")
	require.Len(t, env.sink.saved, 1)
}

func TestService_Delete_UnknownSlug(t *testing.T) {
	env := newServiceEnv(t, allowAll{})

	_, err := env.service.Delete(context.Background(), "juan@example.ph", testSubmitter(), "no-such-place")

	require.Error(t, err)
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRecordNotFound, code)
}

// ==========================
// Proposal Sink Tests
// ==========================

func TestDirectorySink_WritesProposalFile(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirectorySink(dir)

	proposal := newProposal(ActionCreate, "kanto-freestyle-breakfast", nil, testSubmitter(), time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, sink.Save(proposal))

	path := filepath.Join(dir, fmt.Sprintf("2024-06-01-create-kanto-freestyle-breakfast-%s.json", proposal.ID))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Proposal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, proposal.ID, decoded.ID)
	assert.Equal(t, ActionCreate, decoded.Action)
	assert.Equal(t, "juan@example.ph", decoded.Submitter.Email)
}

func TestDirectorySink_SameDayProposalsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirectorySink(dir)

	morning := newProposal(ActionUpdate, "rodics-diner", nil, testSubmitter(), time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	afternoon := newProposal(ActionUpdate, "rodics-diner", nil, testSubmitter(), time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))

	require.NoError(t, sink.Save(morning))
	require.NoError(t, sink.Save(afternoon))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "a second same-day proposal for a slug must not overwrite the first")
}
