// internal/submission/proposal.go
package submission

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/place"
)

// Proposal actions. A submission never mutates the live collection; it
// produces a change proposal for maintainer review.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Submitter identifies the external collaborator behind a proposal.
type Submitter struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	GitHub string `json:"github,omitempty"`
}

// Proposal is the reviewable artifact produced by an accepted submission.
type Proposal struct {
	ID          string       `json:"id"`
	Action      string       `json:"action"`
	Slug        string       `json:"slug"`
	Record      *place.Place `json:"record,omitempty"`
	Submitter   Submitter    `json:"submitter"`
	SubmittedAt string       `json:"submittedAt"`
}

// ProposalSink persists accepted proposals for review.
type ProposalSink interface {
	Save(p *Proposal) error
}

// DirectorySink writes each proposal as a standalone JSON file under dir.
type DirectorySink struct {
	dir string
}

func NewDirectorySink(dir string) *DirectorySink {
	return &DirectorySink{dir: dir}
}

func (s *DirectorySink) Save(p *Proposal) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.NewProposalWriteFailedError(err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.NewProposalWriteFailedError(err)
	}
	data = append(data, '\n')

	// The proposal id keeps same-day resubmissions for one slug from
	// overwriting each other.
	name := fmt.Sprintf("%s-%s-%s-%s.json", p.SubmittedAt[:10], p.Action, p.Slug, p.ID)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewProposalWriteFailedError(err)
	}
	return nil
}

func newProposal(action, slug string, record *place.Place, sub Submitter, now time.Time) *Proposal {
	return &Proposal{
		ID:          uuid.New().String(),
		Action:      action,
		Slug:        slug,
		Record:      record,
		Submitter:   sub,
		SubmittedAt: place.Timestamp(now),
	}
}
