package mailer

import "context"

// Invitation is the message sent when a coach is invited to the portal.
type Invitation struct {
	Email    string
	SetupURL string
}

// Mailer delivers portal notifications. Delivery failures are logged by the
// caller and never fail the triggering operation.
type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}
