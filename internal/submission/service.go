// internal/submission/service.go
package submission

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
	"maginhawa-directory/internal/common/metrics"
	"maginhawa-directory/internal/place"
	"maginhawa-directory/internal/validation"
)

// Rejection explains why a submission was not turned into a proposal.
// Shape violations come from the structural schema check; field errors come
// from record validation. Exactly one of the two is populated.
type Rejection struct {
	Shape  []string
	Fields []validation.FieldError
}

// Service turns collaborator submissions into reviewable change proposals.
// It never mutates the live record collection.
type Service struct {
	recordsDir string
	limiter    Limiter
	sink       ProposalSink
	notifier   Notifier
	logger     logger.Logger
	now        func() time.Time
}

func NewService(recordsDir string, limiter Limiter, sink ProposalSink, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		recordsDir: recordsDir,
		limiter:    limiter,
		sink:       sink,
		notifier:   notifier,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock fixes the service clock. Tests use this to control proposal
// timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates a new place submission and, if it passes, records a
// create proposal. Lifecycle fields (id, slug, timestamps, contributor
// history) are assigned here, never trusted from the payload.
func (s *Service) Create(ctx context.Context, identity string, sub Submitter, raw []byte) (*Proposal, *Rejection, error) {
	if err := s.checkRate(ctx, identity, ActionCreate); err != nil {
		return nil, nil, err
	}

	shape, err := CheckShape(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(shape) > 0 {
		metrics.Submissions.WithLabelValues(ActionCreate, "rejected").Inc()
		return nil, &Rejection{Shape: shape}, nil
	}

	var p place.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		metrics.Submissions.WithLabelValues(ActionCreate, "rejected").Inc()
		return nil, &Rejection{Shape: []string{"payload is not a valid place record: " + err.Error()}}, nil
	}

	now := s.now()
	p.ID = uuid.New().String()
	p.Slug = place.Slugify(p.Name)
	p.Verified = false
	p.CreatedAt = place.Timestamp(now)
	p.UpdatedAt = p.CreatedAt
	p.CreatedBy = sub.GitHub
	if p.CreatedBy == "" {
		p.CreatedBy = sub.Email
	}
	p.Contributors = []place.Contributor{{
		Name:          sub.Name,
		Email:         sub.Email,
		GitHub:        sub.GitHub,
		ContributedAt: p.CreatedAt,
		Action:        place.ActionCreated,
	}}

	if result := validation.ValidatePlace(&p); !result.Valid {
		metrics.Submissions.WithLabelValues(ActionCreate, "rejected").Inc()
		return nil, &Rejection{Fields: result.Errors}, nil
	}

	if _, err := os.Stat(s.recordPath(p.Slug)); err == nil {
		return nil, nil, errors.NewDuplicateSlugError(p.Slug, p.FileName(), "submission")
	}

	return s.accept(ctx, newProposal(ActionCreate, p.Slug, &p, sub, now))
}

// Update validates a replacement record for an existing place and records an
// update proposal. Identity and provenance fields are carried over from the
// current record; the submission cannot rewrite them.
func (s *Service) Update(ctx context.Context, identity string, sub Submitter, slug string, raw []byte) (*Proposal, *Rejection, error) {
	if err := s.checkRate(ctx, identity, ActionUpdate); err != nil {
		return nil, nil, err
	}

	existing, err := s.loadRecord(slug)
	if err != nil {
		return nil, nil, err
	}

	shape, err := CheckShape(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(shape) > 0 {
		metrics.Submissions.WithLabelValues(ActionUpdate, "rejected").Inc()
		return nil, &Rejection{Shape: shape}, nil
	}

	var p place.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		metrics.Submissions.WithLabelValues(ActionUpdate, "rejected").Inc()
		return nil, &Rejection{Shape: []string{"payload is not a valid place record: " + err.Error()}}, nil
	}

	now := s.now()
	p.ID = existing.ID
	p.Slug = existing.Slug
	p.CreatedAt = existing.CreatedAt
	p.CreatedBy = existing.CreatedBy
	p.UpdatedAt = place.Timestamp(now)
	p.Contributors = append(existing.Contributors, place.Contributor{
		Name:          sub.Name,
		Email:         sub.Email,
		GitHub:        sub.GitHub,
		ContributedAt: p.UpdatedAt,
		Action:        place.ActionUpdated,
	})

	if result := validation.ValidatePlace(&p); !result.Valid {
		metrics.Submissions.WithLabelValues(ActionUpdate, "rejected").Inc()
		return nil, &Rejection{Fields: result.Errors}, nil
	}

	return s.accept(ctx, newProposal(ActionUpdate, slug, &p, sub, now))
}

// Delete records a delete proposal for an existing place.
func (s *Service) Delete(ctx context.Context, identity string, sub Submitter, slug string) (*Proposal, error) {
	if err := s.checkRate(ctx, identity, ActionDelete); err != nil {
		return nil, err
	}

	if _, err := s.loadRecord(slug); err != nil {
		return nil, err
	}

	proposal, _, err := s.accept(ctx, newProposal(ActionDelete, slug, nil, sub, s.now()))
	return proposal, err
}

func (s *Service) checkRate(ctx context.Context, identity, action string) error {
	ok, err := s.limiter.Allow(ctx, identity)
	if err != nil {
		return errors.NewRateLimitCheckFailedError(err)
	}
	if !ok {
		metrics.RateLimitRejections.Inc()
		metrics.Submissions.WithLabelValues(action, "rate_limited").Inc()
		s.logger.Warn("Submission rate limit exceeded", map[string]interface{}{
			"identity": identity,
			"action":   action,
		})
		return errors.NewRateLimitExceededError(identity)
	}
	return nil
}

func (s *Service) accept(ctx context.Context, p *Proposal) (*Proposal, *Rejection, error) {
	if err := s.sink.Save(p); err != nil {
		metrics.Submissions.WithLabelValues(p.Action, "failed").Inc()
		return nil, nil, err
	}

	// Review continues even when the notification cannot be delivered; the
	// proposal is already persisted.
	if err := s.notifier.ProposalReceived(ctx, p); err != nil {
		s.logger.WithError(err).Warn("Proposal saved but notification failed", map[string]interface{}{
			"proposal_id": p.ID,
		})
	}

	metrics.Submissions.WithLabelValues(p.Action, "accepted").Inc()
	s.logger.Info("Change proposal recorded", map[string]interface{}{
		"proposal_id": p.ID,
		"action":      p.Action,
		"slug":        p.Slug,
	})
	return p, nil, nil
}

func (s *Service) recordPath(slug string) string {
	return filepath.Join(s.recordsDir, slug+".json")
}

func (s *Service) loadRecord(slug string) (*place.Place, error) {
	data, err := os.ReadFile(s.recordPath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRecordNotFoundError(slug)
		}
		return nil, errors.NewCollectionUnreadableError(s.recordsDir, err)
	}

	var p place.Place
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewParseError(slug+".json", err)
	}
	return &p, nil
}
