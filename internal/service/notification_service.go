package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/events"
	"github.com/lcs-staffing/admin-console/internal/notify"
)

// ErrMailNotConfigured is returned when a reset mail is requested without a relay.
var ErrMailNotConfigured = errors.New("password reset mail is not configured")

// MailSender delivers one email.
type MailSender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// EventPoster forwards job events to an external endpoint.
type EventPoster interface {
	Post(ctx context.Context, event events.Event) error
}

// NotificationService handles emitting notifications for domain events and reset mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     MailSender
	webhook    EventPoster
	logger     *zap.Logger
	unsub      []func()
}

// NewNotificationService creates the service. mailer and webhook may be nil.
func NewNotificationService(dispatcher events.Dispatcher, mailer MailSender, webhook EventPoster, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		webhook:    webhook,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.unsub = append(n.unsub,
		n.dispatcher.Subscribe(events.EventJobCreated, n.handleJobCreated),
		n.dispatcher.Subscribe(events.EventJobStatusChanged, n.handleJobStatusChanged),
		n.dispatcher.Subscribe(events.EventJobDeleted, n.handleJobDeleted),
	)
}

// Unregister removes the handlers added by RegisterHandlers.
func (n *NotificationService) Unregister() {
	for _, fn := range n.unsub {
		fn()
	}
	n.unsub = nil
}

func (n *NotificationService) handleJobCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("JobCreated", zap.String("job_id", event.JobID), zap.String("by", event.Actor.Email), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleJobStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("JobStatusChanged", zap.String("job_id", event.JobID), zap.String("by", event.Actor.Email), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleJobDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("JobDeleted", zap.String("job_id", event.JobID), zap.String("by", event.Actor.Email), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

// forward posts events raised on this instance; replays from peers were posted by their origin.
func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.webhook == nil || event.Remote {
		return nil
	}
	return n.webhook.Post(ctx, event)
}

// SendPasswordReset mails the reset link to email.
func (n *NotificationService) SendPasswordReset(ctx context.Context, email, link string) error {
	if n.mailer == nil {
		n.logger.Warn("reset email not sent: no mail relay configured", zap.String("to", email))
		return ErrMailNotConfigured
	}
	err := n.mailer.Send(ctx, notify.Message{
		To:      email,
		Subject: "Reset your LCS admin console password",
		Body: "A password reset was requested for your LCS admin console account.\n\n" +
			"Open this link to choose a new password:\n" + link + "\n\n" +
			"If you did not request this, you can ignore this email.",
	})
	if err != nil {
		n.logger.Warn("reset email failed", zap.String("to", email), zap.Error(err))
		return err
	}
	n.logger.Info("reset email sent", zap.String("to", email))
	return nil
}
