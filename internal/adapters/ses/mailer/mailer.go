// Package mailer delivers portal invitations through Amazon SES.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	mailerport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/mailer"
)

// Client is the SES surface used by the mailer; *ses.Client satisfies it.
type Client interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	client Client
	from   string
}

func NewMailer(client Client, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

func (m *Mailer) SendInvitation(ctx context.Context, inv mailerport.Invitation) error {
	subject := "You're invited to the coach portal"
	body := fmt.Sprintf(
		"Hello,\n\nYou've been invited to set up your coach profile.\n\nGet started here: %s\n",
		inv.SetupURL,
	)

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{inv.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send invitation: %w", err)
	}
	return nil
}
