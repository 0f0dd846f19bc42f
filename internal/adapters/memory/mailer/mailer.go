package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/mailer"
)

// LogMailer logs invitations instead of delivering them. Default backend for
// local development.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) SendInvitation(ctx context.Context, inv mailer.Invitation) error {
	_ = ctx
	m.log.Info("invitation (not delivered: log mailer)",
		zap.String("email", inv.Email),
		zap.String("setupUrl", inv.SetupURL),
	)
	return nil
}

// Capture records invitations for test assertions.
type Capture struct {
	mu   sync.Mutex
	sent []mailer.Invitation

	// Err, when set, is returned from SendInvitation after recording.
	Err error
}

func NewCapture() *Capture { return &Capture{} }

func (c *Capture) SendInvitation(ctx context.Context, inv mailer.Invitation) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, inv)
	return c.Err
}

func (c *Capture) Sent() []mailer.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mailer.Invitation(nil), c.sent...)
}
