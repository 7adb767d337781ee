package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lcs-staffing/admin-console/internal/events"
	"github.com/lcs-staffing/admin-console/internal/notify"
)

type fakeMailer struct {
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePoster struct {
	posted []events.Event
	err    error
}

func (p *fakePoster) Post(_ context.Context, event events.Event) error {
	p.posted = append(p.posted, event)
	return p.err
}

func TestNotificationService_ForwardsJobEventsUntilUnregistered(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	hook := &fakePoster{}
	svc := NewNotificationService(dispatcher, nil, hook, zap.New(core))
	svc.RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventJobCreated,
		JobID:     "job-1",
		Actor:     events.Actor{UID: "ops", Email: "ops@lcsstaffing.com"},
		Timestamp: time.Now(),
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventJobDeleted, JobID: "job-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventJobDeleted, JobID: "job-peer", Remote: true}))
	assert.Equal(t, 1, logs.FilterMessage("JobCreated").Len())
	assert.Equal(t, 2, logs.FilterMessage("JobDeleted").Len())

	require.Len(t, hook.posted, 2)
	assert.Equal(t, events.EventJobCreated, hook.posted[0].Type)
	assert.Equal(t, "job-1", hook.posted[1].JobID)

	svc.Unregister()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventJobCreated, JobID: "job-2"}))
	assert.Equal(t, 1, logs.FilterMessage("JobCreated").Len())
	assert.Len(t, hook.posted, 2)
}

func TestNotificationService_WebhookFailureIsReported(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dispatcher := events.NewInMemoryDispatcher(zap.New(core))
	svc := NewNotificationService(dispatcher, nil, &fakePoster{err: errors.New("webhook: unexpected status 502")}, zap.NewNop())
	svc.RegisterHandlers()
	defer svc.Unregister()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventJobStatusChanged, JobID: "job-1"}))
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestNotificationService_SendPasswordReset(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mailer := &fakeMailer{}
	svc := NewNotificationService(nil, mailer, nil, zap.New(core))
	link := "https://console.test/reset?token=abc"

	require.NoError(t, svc.SendPasswordReset(context.Background(), "ops@lcsstaffing.com", link))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ops@lcsstaffing.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, link)

	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "token=abc")
		for key, v := range entry.ContextMap() {
			if str, ok := v.(string); ok {
				assert.NotContains(t, str, "token=abc", key)
			}
		}
	}
}

func TestNotificationService_SendPasswordResetFailures(t *testing.T) {
	ctx := context.Background()

	relayDown := errors.New("smtp dial: connection refused")
	failing := NewNotificationService(nil, &fakeMailer{err: relayDown}, nil, nil)
	assert.ErrorIs(t, failing.SendPasswordReset(ctx, "ops@lcsstaffing.com", "link"), relayDown)

	unconfigured := NewNotificationService(nil, nil, nil, nil)
	assert.ErrorIs(t, unconfigured.SendPasswordReset(ctx, "ops@lcsstaffing.com", "link"), ErrMailNotConfigured)
}
