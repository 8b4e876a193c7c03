// internal/submission/notify.go
package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
)

// Notifier tells maintainers that a proposal is waiting for review.
type Notifier interface {
	ProposalReceived(ctx context.Context, p *Proposal) error
}

// SESService abstracts the SES client for testing.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SESNotifier emails maintainers through Amazon SES.
type SESNotifier struct {
	client    SESService
	fromEmail string
	toEmails  []string
	logger    logger.Logger
}

func NewSESNotifier(client SESService, fromEmail string, toEmails []string, log logger.Logger) *SESNotifier {
	return &SESNotifier{
		client:    client,
		fromEmail: fromEmail,
		toEmails:  toEmails,
		logger:    log,
	}
}

func (n *SESNotifier) ProposalReceived(ctx context.Context, p *Proposal) error {
	subject := fmt.Sprintf("[directory] %s proposal for %s", p.Action, p.Slug)

	var body strings.Builder
	fmt.Fprintf(&body, "A new change proposal is awaiting review.\n\n")
	fmt.Fprintf(&body, "Proposal ID: %s\n", p.ID)
	fmt.Fprintf(&body, "Action:      %s\n", p.Action)
	fmt.Fprintf(&body, "Place slug:  %s\n", p.Slug)
	fmt.Fprintf(&body, "Submitter:   %s <%s>\n", p.Submitter.Name, p.Submitter.Email)
	fmt.Fprintf(&body, "Submitted:   %s\n", p.SubmittedAt)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.toEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body.String()),
				},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		n.logger.WithError(err).Error("Failed to send proposal notification", map[string]interface{}{
			"proposal_id": p.ID,
			"slug":        p.Slug,
		})
		return errors.NewNotificationFailedError(err)
	}

	n.logger.Info("Proposal notification sent", map[string]interface{}{
		"proposal_id": p.ID,
		"recipients":  len(n.toEmails),
	})
	return nil
}

// NoOpNotifier is used when email notifications are disabled.
type NoOpNotifier struct{}

func (NoOpNotifier) ProposalReceived(context.Context, *Proposal) error { return nil }
